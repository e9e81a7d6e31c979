package output

import (
	"math"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var numberPrinter = message.NewPrinter(language.English)

// DateLayout is the layout used for every rendered date.
const DateLayout = "2006-01-02"

// FormatCount formats v as a grouped integer, e.g. 1,234,567.
func FormatCount(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return numberPrinter.Sprintf("%d", int64(math.Round(v)))
}

// FormatNumber formats v with grouping and up to two decimals.
// Whole numbers print without a fraction.
func FormatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return FormatCount(v)
	}
	s := numberPrinter.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// FormatCoefficient formats a correlation coefficient.
func FormatCoefficient(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return numberPrinter.Sprintf("%.3f", v)
}

// FormatDate formats a date, or "-" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(DateLayout)
}
