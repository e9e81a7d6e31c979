package components

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/leapstack-labs/covidlens/internal/ui/features/common"
	"github.com/leapstack-labs/covidlens/internal/ui/resources"
)

// Layout is the full page shell: head, sidebar and the main column.
func Layout(data common.PageData, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := NewHTML(w)
		h.Raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`,
			`<meta name="viewport" content="width=device-width, initial-scale=1">`,
			`<title>`).Text(data.Title).Raw(` · covidlens</title>`,
			`<link rel="stylesheet"`).Attr("href", resources.StaticPath("app.css")).Raw(`>`,
			`<script type="module"`).Attr("src", DatastarScript).Raw(`></script>`,
			`</head><body><div class="app">`)
		h.Render(ctx, Sidebar(data.Nav))
		h.Raw(`<main class="main">`)
		if data.Stale != "" {
			h.Render(ctx, Banner(data.Stale))
		}
		h.Render(ctx, body)
		h.Raw(`</main></div></body></html>`)
		return h.Err()
	})
}

// Sidebar lists the views and the run history.
func Sidebar(items []common.NavItem) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := NewHTML(w)
		h.Raw(`<nav class="sidebar"><div class="brand">covidlens</div><ul>`)
		for _, item := range items {
			h.Raw(`<li><a`).Attr("href", item.Path)
			if item.Active {
				h.Raw(` class="active" aria-current="page"`)
			}
			h.Raw(`>`).Text(item.Label).Raw(`</a></li>`)
		}
		h.Raw(`</ul></nav>`)
		return h.Err()
	})
}

// Banner shows a warning above the content.
func Banner(msg string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return NewHTML(w).Raw(`<div class="banner" role="alert">`).Text(msg).Raw(`</div>`).Err()
	})
}

// ErrorPanel replaces the content of a view that cannot be rendered.
func ErrorPanel(id, msg string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return NewHTML(w).Raw(`<section class="panel error"`).Attr("id", id).Raw(`><p>`).
			Text(msg).Raw(`</p></section>`).Err()
	})
}
