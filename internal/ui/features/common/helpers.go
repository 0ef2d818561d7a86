package common

import (
	"strconv"
	"strings"

	"github.com/leapstack-labs/routelens/internal/field"
	"github.com/leapstack-labs/routelens/internal/session"
)

// Itoa formats an int for component code.
func Itoa(n int) string { return strconv.Itoa(n) }

// CountLabel renders a count reported by the service, "N/A" when absent.
func CountLabel(v field.Value) string { return field.Render(v, "") }

// PhaseHint is the prompt shown above the selects for the next level to choose.
func PhaseHint(st session.State) string {
	if !st.Data.Loaded && st.Options.Sources.Len() == 0 {
		return "Upload a dataset or load the default one to begin."
	}
	switch st.Phase() {
	case session.PhaseEmpty:
		return "Choose a source plant."
	case session.PhaseSourceChosen:
		return "Choose a destination."
	case session.PhaseDestinationChosen:
		if st.Selection.Mode == "" {
			return "Choose a transport mode."
		}
		return "Choose a period."
	default:
		return ""
	}
}

// JoinNonEmpty joins the non-empty parts with sep.
func JoinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
