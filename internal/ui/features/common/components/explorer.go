package components

import (
	"strings"

	"github.com/a-h/templ"

	"github.com/leapstack-labs/routelens/internal/dataservice"
	"github.com/leapstack-labs/routelens/internal/field"
	"github.com/leapstack-labs/routelens/internal/insight"
	"github.com/leapstack-labs/routelens/internal/session"
	"github.com/leapstack-labs/routelens/internal/ui/features/common"
)

// AppID is the element every state push replaces.
const AppID = "app"

// AppShell is the whole explorer for one browser session.
func AppShell(v common.View) templ.Component {
	return component(func(w *writer) {
		w.open("main", attr("id", AppID))
		w.open("header", `class="masthead"`)
		w.el("h1", "", "RouteLens")
		w.el("p", `class="muted"`, "Clinker route insights from the uploaded dataset")
		w.el("a", `href="/history" class="nav"`, "Session history")
		w.close("header")

		if v.Notice != "" {
			w.el("p", `id="notice" class="banner banner-warning"`, v.Notice)
		}
		w.child(Banners(v.State))
		w.child(DatasetPanel(v.State.Data))
		w.child(SelectionPanel(v.State))
		w.child(InsightPanel(v.State.Insight))
		w.child(ModelPanel(v.State.Model))
		w.close("main")
	})
}

// Banners shows the validation list and the transport error, each with a
// dismiss action.
func Banners(st session.State) templ.Component {
	return component(func(w *writer) {
		if st.Validation != nil {
			w.open("section", `id="validation" class="banner banner-warning"`)
			w.el("h2", "", "The dataset was rejected")
			w.open("ul", "")
			for _, msg := range st.Validation.Messages {
				w.el("li", "", msg)
			}
			w.close("ul")
			w.el("button", `type="button" data-on:click="@post('/dismiss/validation')"`, "Dismiss")
			w.close("section")
		}
		if st.Failure != nil {
			w.open("section", `id="failure" class="banner banner-error"`)
			w.el("p", "", st.Failure.Message())
			w.el("button", `type="button" data-on:click="@post('/dismiss/error')"`, "Dismiss")
			w.close("section")
		}
	})
}

// DatasetPanel holds the upload form, the default-load action and the
// status of the loaded dataset.
func DatasetPanel(d session.DataStatus) templ.Component {
	return component(func(w *writer) {
		w.open("section", `id="dataset" class="panel"`)
		w.el("h2", "", "Dataset")

		w.open("form", `method="post" action="/upload" enctype="multipart/form-data" class="upload"`)
		w.raw(`<input type="file" name="file" ` + attr("accept", strings.Join(dataservice.AllowedExtensions, ",")) + ` required>`)
		w.el("button", `type="submit"`, "Upload")
		w.el("button", `type="button" data-on:click="@post('/load-default')"`, "Load default dataset")
		w.close("form")

		if !d.Loaded {
			w.el("p", `class="muted"`, "No dataset loaded.")
			w.close("section")
			return
		}
		w.open("dl", `class="facts"`)
		fact(w, "Source", d.Origin)
		fact(w, "Sheets", common.JoinNonEmpty(", ", d.Sheets...))
		fact(w, "Routes", common.CountLabel(d.RouteCount))
		fact(w, "Plants", common.CountLabel(d.PlantCount))
		fact(w, "Periods", common.JoinNonEmpty(", ", d.Periods...))
		for _, e := range d.RecordCounts.Entries {
			fact(w, e.Key+" rows", field.Render(e.Value, ""))
		}
		w.close("dl")
		w.close("section")
	})
}

func fact(w *writer, term, desc string) {
	w.el("dt", "", term)
	w.el("dd", "", desc)
}

// SelectionPanel renders the four dependent selects. A level is disabled
// until its option list for the current parent has arrived.
func SelectionPanel(st session.State) templ.Component {
	return component(func(w *writer) {
		sel, opts := st.Selection, st.Options
		w.open("section", `id="selection" class="panel"`)
		w.el("h2", "", "Route")
		if hint := common.PhaseHint(st); hint != "" {
			w.el("p", `class="muted"`, hint)
		}

		sources := choices(opts.Sources.Items)
		selectField(w, "source", "Source plant", sources, sel.Source, len(sources) == 0)

		dests := choices(opts.Destinations.Items)
		destReady := sel.Source != "" && opts.Destinations.Scope == sel.Source
		selectField(w, "destination", "Destination", dests, sel.Destination, !destReady)

		modes := make([]choice, 0, opts.Modes.Len())
		for _, m := range opts.Modes.Items {
			modes = append(modes, choice{Value: m.Code, Label: m.Label()})
		}
		modeReady := sel.Destination != "" && opts.Modes.Scope == session.ModeScope(sel.Source, sel.Destination)
		selectField(w, "mode", "Transport mode", modes, sel.Mode, !modeReady)

		periods := choices(opts.Periods.Items)
		selectField(w, "period", "Period", periods, sel.Period, len(periods) == 0)

		if sel.Ready() {
			w.el("button", `type="button" class="secondary" data-on:click="@post('/reselect')"`, "Refresh insight")
		}
		w.close("section")
	})
}

type choice struct {
	Value string
	Label string
}

func choices(items []string) []choice {
	out := make([]choice, len(items))
	for i, it := range items {
		out[i] = choice{Value: it, Label: it}
	}
	return out
}

func selectField(w *writer, level, label string, items []choice, selected string, disabled bool) {
	id := "select-" + level
	w.open("label", attr("for", id))
	w.text(label)
	w.close("label")

	a := attrs(
		attr("id", id),
		attr("data-bind", level),
		attr("data-on:change", "@post('/select/"+level+"')"),
	)
	if disabled {
		a += " disabled"
	}
	w.open("select", a)
	w.el("option", `value=""`, "Select "+strings.ToLower(label))
	for _, c := range items {
		oa := attr("value", c.Value)
		if c.Value == selected {
			oa += " selected"
		}
		w.el("option", oa, c.Label)
	}
	w.close("select")
}

// InsightPanel renders the insight sections, or the status while there is
// none to show.
func InsightPanel(is session.InsightState) templ.Component {
	return component(func(w *writer) {
		w.open("section", attrs(`id="insight"`, attr("class", "panel insight-"+is.Status.String())))
		w.el("h2", "", "Route insight")
		switch is.Status {
		case session.InsightIdle:
			w.el("p", `class="muted"`, "Select a source, destination, mode and period to see the route insight.")
		case session.InsightLoading:
			w.el("p", `class="loading"`, "Loading insight for "+is.Tuple.String()+"...")
		case session.InsightFailed:
			w.el("p", `class="muted"`, "No insight is available for "+is.Tuple.String()+".")
		case session.InsightReady:
			w.el("p", `class="tuple"`, is.Tuple.String())
			if is.Insight != nil {
				f := is.Insight.Feasibility
				w.el("p", attr("class", "verdict "+verdictClass(f)), f.Verdict())
				for _, s := range is.Insight.Sections() {
					w.child(SectionTable(s))
				}
			}
		}
		w.close("section")
	})
}

func verdictClass(f insight.Feasibility) string {
	ok, present := f.IsFeasible.Get()
	switch {
	case !present:
		return "verdict-unknown"
	case ok:
		return "verdict-feasible"
	default:
		return "verdict-infeasible"
	}
}

// SectionTable renders one section as a two-column table.
func SectionTable(s insight.Section) templ.Component {
	return component(func(w *writer) {
		if len(s.Rows) == 0 {
			return
		}
		w.open("table", `class="section"`)
		w.el("caption", "", s.Title)
		w.open("tbody", "")
		for _, r := range s.Rows {
			class := ""
			if r.Absent {
				class = `class="absent"`
			}
			w.open("tr", "")
			w.el("th", `scope="row"`, r.Label)
			w.el("td", class, r.Text)
			w.close("tr")
		}
		w.close("tbody")
		w.close("table")
	})
}

// ModelPanel shows the static model description once it has loaded.
func ModelPanel(md *insight.ModelDescription) templ.Component {
	return component(func(w *writer) {
		if md == nil {
			return
		}
		w.open("details", `id="model" class="panel"`)
		w.el("summary", "", "Model: "+field.Render(md.Model.Name, ""))
		w.el("p", "", field.Render(md.Model.Description, ""))
		w.el("p", `class="formula"`, field.Render(md.Model.Objective.Formula, ""))
		for _, v := range md.Model.Variables {
			w.el("p", `class="variable"`, field.Render(v.Get("symbol"), "")+": "+field.Render(v.Get("description"), ""))
		}
		w.close("details")
	})
}
