// Package components holds the templ components shared by every page.
package components

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// DatastarScript is the client bundle matching the datastar-go SDK.
const DatastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0/bundles/datastar.js"

// HTML collects markup and escapes interpolated text. The first write error
// sticks and is returned by Err.
type HTML struct {
	w   io.Writer
	err error
}

// NewHTML wraps a writer.
func NewHTML(w io.Writer) *HTML {
	return &HTML{w: w}
}

// Raw writes trusted markup.
func (h *HTML) Raw(parts ...string) *HTML {
	for _, p := range parts {
		if h.err != nil {
			return h
		}
		_, h.err = io.WriteString(h.w, p)
	}
	return h
}

// Text writes escaped text.
func (h *HTML) Text(s string) *HTML {
	return h.Raw(templ.EscapeString(s))
}

// Attr writes ` name="value"` with the value escaped.
func (h *HTML) Attr(name, value string) *HTML {
	return h.Raw(" ", name, `="`, templ.EscapeString(value), `"`)
}

// Render renders a child component in place.
func (h *HTML) Render(ctx context.Context, c templ.Component) *HTML {
	if h.err != nil || c == nil {
		return h
	}
	h.err = c.Render(ctx, h.w)
	return h
}

// Err returns the first error.
func (h *HTML) Err() error {
	return h.err
}

// Classes joins the non-empty class names.
func Classes(names ...string) string {
	var out []string
	for _, n := range names {
		if n != "" {
			out = append(out, n)
		}
	}
	return strings.Join(out, " ")
}
