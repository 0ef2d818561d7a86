package commands

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/routelens/internal/cli/output"
	"github.com/leapstack-labs/routelens/internal/dataservice"
	"github.com/leapstack-labs/routelens/internal/field"
	"github.com/leapstack-labs/routelens/internal/insight"
	"github.com/leapstack-labs/routelens/internal/journal"
	"github.com/leapstack-labs/routelens/internal/session"
)

// InsightOutput is the data-mode rendering of a route insight. Every value
// has already passed through the formatting adapter.
type InsightOutput struct {
	Tuple    insight.Tuple     `json:"tuple" yaml:"tuple"`
	Verdict  string            `json:"verdict" yaml:"verdict"`
	Sections []insight.Section `json:"sections" yaml:"sections"`
}

// renderInsight prints the current insight, or returns the failure that
// replaced it.
func renderInsight(r *output.Renderer, st session.State) error {
	is := st.Insight
	switch is.Status {
	case session.InsightFailed:
		if st.Failure != nil {
			return st.Failure
		}
		return fmt.Errorf("route insight for %s failed", is.Tuple)
	case session.InsightReady:
	default:
		return fmt.Errorf("no route insight: selection is %s", st.Phase())
	}

	ri := is.Insight
	out := InsightOutput{Tuple: is.Tuple, Verdict: ri.Feasibility.Verdict(), Sections: ri.Sections()}
	if handled, err := r.Data(out); handled {
		return err
	}

	r.Header(1, "Route insight: "+is.Tuple.String())
	r.KeyValue("Verdict", out.Verdict)
	r.Println()
	for _, s := range out.Sections {
		if len(s.Rows) == 0 {
			continue
		}
		r.Header(2, s.Title)
		rows := make([][]string, 0, len(s.Rows))
		for _, row := range s.Rows {
			rows = append(rows, []string{row.Label, row.Text})
		}
		r.Table([]string{"Field", "Value"}, rows)
		r.Println()
	}
	return nil
}

// renderIngest prints the outcome of an upload or default load.
func renderIngest(r *output.Renderer, res session.IngestionResult) error {
	if ve, ok := res.Validation(); ok {
		if handled, err := r.Data(ve); handled {
			if err != nil {
				return err
			}
			return ve
		}
		r.Error("The dataset was rejected:")
		for _, msg := range ve.Messages {
			_, _ = fmt.Fprintln(r.ErrOut(), "  - "+msg)
		}
		return ve
	}
	if !res.OK() {
		return res.Err
	}

	s := res.Success
	if handled, err := r.Data(s); handled {
		return err
	}
	r.Success("Dataset loaded")
	r.KeyValue("Sheets", strings.Join(s.Sheets, ", "))
	r.KeyValue("Routes", field.Render(s.RouteCount, ""))
	r.KeyValue("Plants", field.Render(s.PlantCount, ""))
	r.KeyValue("Periods", strings.Join(s.Periods, ", "))
	return nil
}

// renderStrings prints an id list under title.
func renderStrings(r *output.Renderer, title string, items []string) error {
	if handled, err := r.Data(map[string][]string{strings.ToLower(title): items}); handled {
		return err
	}
	r.Header(2, title)
	r.List(items)
	return nil
}

// renderModes prints a mode table with capacity rendered by the adapter.
func renderModes(r *output.Renderer, modes []dataservice.Mode) error {
	if handled, err := r.Data(map[string][]dataservice.Mode{"modes": modes}); handled {
		return err
	}
	r.Header(2, "Modes")
	rows := make([][]string, 0, len(modes))
	for _, m := range modes {
		rows = append(rows, []string{m.Code, field.Render(m.Name, ""), field.Render(m.VehicleCapacity, " tons")})
	}
	r.Table([]string{"Code", "Name", "Vehicle capacity"}, rows)
	return nil
}

// renderRecord prints a flattened record as a key/value table.
func renderRecord(r *output.Renderer, title string, rec field.Record) error {
	if handled, err := r.Data(rec); handled {
		return err
	}
	r.Header(2, title)
	rows := make([][]string, 0, rec.Len())
	for _, e := range rec.Entries {
		rows = append(rows, []string{e.Key, field.Render(e.Value, "")})
	}
	r.Table([]string{"Field", "Value"}, rows)
	return nil
}

// renderModel prints the static model description.
func renderModel(r *output.Renderer, md *insight.ModelDescription) error {
	if handled, err := r.Data(md); handled {
		return err
	}
	m := md.Model
	r.Header(1, "Model: "+field.Render(m.Name, ""))
	r.Println(field.Render(m.Description, ""))
	r.Println()
	r.KeyValue("Objective", field.Render(m.Objective.Type, "")+": "+field.Render(m.Objective.Formula, ""))
	r.Println()

	if len(m.Variables) > 0 {
		r.Header(2, "Decision variables")
		rows := make([][]string, 0, len(m.Variables))
		for _, v := range m.Variables {
			rows = append(rows, []string{
				field.Render(v.Get("symbol"), ""),
				field.Render(v.Get("name"), ""),
				field.Render(v.Get("description"), ""),
			})
		}
		r.Table([]string{"Symbol", "Name", "Description"}, rows)
		r.Println()
	}
	if len(m.Constraints) > 0 {
		r.Header(2, "Constraints")
		rows := make([][]string, 0, len(m.Constraints))
		for _, c := range m.Constraints {
			rows = append(rows, []string{field.Render(c.Get("name"), ""), field.Render(c.Get("formula"), "")})
		}
		r.Table([]string{"Name", "Formula"}, rows)
		r.Println()
	}
	if md.Summary.Len() > 0 {
		return renderRecord(r, "Dataset summary", md.Summary)
	}
	return nil
}

// StatusOutput is the data-mode rendering of a session snapshot.
type StatusOutput struct {
	Phase     string            `json:"phase" yaml:"phase"`
	Selection session.Selection `json:"selection" yaml:"selection"`
	Insight   string            `json:"insight" yaml:"insight"`
	Data      string            `json:"data" yaml:"data"`
	Stats     session.Stats     `json:"stats" yaml:"stats"`
	Failure   string            `json:"failure,omitempty" yaml:"failure,omitempty"`
	Rejected  []string          `json:"validation,omitempty" yaml:"validation,omitempty"`
}

func renderStatus(r *output.Renderer, st session.State, stats session.Stats) error {
	out := StatusOutput{
		Phase:     st.Phase().String(),
		Selection: st.Selection,
		Insight:   st.Insight.Status.String(),
		Data:      "not loaded",
		Stats:     stats,
	}
	if st.Data.Loaded {
		out.Data = st.Data.Origin
	}
	if st.Failure != nil {
		out.Failure = st.Failure.Message()
	}
	if st.Validation != nil {
		out.Rejected = st.Validation.Messages
	}
	if handled, err := r.Data(out); handled {
		return err
	}

	r.KeyValue("Dataset", out.Data)
	r.KeyValue("Phase", out.Phase)
	r.KeyValue("Source", orDash(st.Selection.Source))
	r.KeyValue("Destination", orDash(st.Selection.Destination))
	r.KeyValue("Mode", orDash(st.Selection.Mode))
	r.KeyValue("Period", orDash(st.Selection.Period))
	r.KeyValue("Insight", out.Insight)
	r.KeyValue("Requests", fmt.Sprintf("%d issued, %d applied, %d discarded, %d failed",
		stats.RouteRequests, stats.RouteApplied, stats.RouteDiscarded, stats.RouteFailed))
	if out.Failure != "" {
		r.Warning(out.Failure)
	}
	for _, msg := range out.Rejected {
		r.Warning(msg)
	}
	return nil
}

// renderHistory prints journal entries newest first.
func renderHistory(r *output.Renderer, entries []journal.Entry) error {
	if handled, err := r.Data(entries); handled {
		return err
	}
	title := cases.Title(language.English)
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.At.Format(time.TimeOnly),
			title.String(string(e.Kind)),
			title.String(string(e.Outcome)),
			e.Subject,
			e.Duration.String(),
		})
	}
	r.Table([]string{"Time", "Kind", "Outcome", "Subject", "Took"}, rows)
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
