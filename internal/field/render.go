package field

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// NotAvailable is the fixed rendering of an Absent value. Callers compare
// against this constant, not against its wording.
const NotAvailable = "Not available in uploaded dataset"

// maxFractionDigits matches the default precision of a browser locale
// number format.
const maxFractionDigits = 3

var printer = message.NewPrinter(language.English)

// Render turns a value into display text. It is total: every value has a
// rendering, and Absent always yields NotAvailable whatever the suffix.
func Render(v Value, suffix string) string {
	switch v.kind {
	case KindNumber:
		return formatNumber(v.text) + suffix
	case KindString:
		return v.text + suffix
	default:
		return NotAvailable
	}
}

// RenderBool renders a flag with the given labels for true and false.
func RenderBool(b Bool, yes, no string) string {
	if !b.set {
		return NotAvailable
	}
	if b.val {
		return yes
	}
	return no
}

// Rendered is display text together with whether it stands for an Absent
// value. A dataset cell may hold the NotAvailable wording as real data, so
// callers classify on Absent and never on Text.
type Rendered struct {
	Text   string
	Absent bool
}

// Display is Render that keeps the absence flag.
func Display(v Value, suffix string) Rendered {
	return Rendered{Text: Render(v, suffix), Absent: v.IsAbsent()}
}

// DisplayBool is RenderBool that keeps the absence flag.
func DisplayBool(b Bool, yes, no string) Rendered {
	return Rendered{Text: RenderBool(b, yes, no), Absent: b.IsAbsent()}
}

func formatNumber(text string) string {
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return printer.Sprint(number.Decimal(n))
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return text
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 && !strings.ContainsAny(text, "eE") {
		return printer.Sprint(number.Decimal(int64(f)))
	}
	return printer.Sprint(number.Decimal(f, number.MaxFractionDigits(maxFractionDigits)))
}
