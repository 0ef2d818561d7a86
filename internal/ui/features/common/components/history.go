package components

import (
	"strconv"
	"time"

	"github.com/a-h/templ"

	"github.com/leapstack-labs/routelens/internal/journal"
)

// HistoryShell is the journal page for one browser session.
func HistoryShell(entries []journal.Entry, counts []journal.Count) templ.Component {
	return component(func(w *writer) {
		w.open("main", attr("id", AppID))
		w.open("header", `class="masthead"`)
		w.el("h1", "", "Session history")
		w.el("a", `href="/" class="nav"`, "Back to the explorer")
		w.close("header")

		w.open("section", `class="panel"`)
		w.el("h2", "", "Summary")
		if len(counts) == 0 {
			w.el("p", `class="muted"`, "Nothing has happened in this session yet.")
		} else {
			w.open("ul", `id="summary"`)
			for _, c := range counts {
				w.el("li", "", string(c.Kind)+" "+string(c.Outcome)+": "+strconv.Itoa(c.N))
			}
			w.close("ul")
		}
		w.close("section")

		w.open("section", `class="panel"`)
		w.el("h2", "", "Recent activity")
		w.child(HistoryTable(entries))
		w.close("section")
		w.close("main")
	})
}

// HistoryTable lists journal entries newest first.
func HistoryTable(entries []journal.Entry) templ.Component {
	return component(func(w *writer) {
		if len(entries) == 0 {
			w.el("p", `class="muted"`, "No entries.")
			return
		}
		w.open("table", `class="history"`)
		w.raw("<thead><tr><th>Time</th><th>Kind</th><th>Outcome</th><th>Subject</th><th>Took</th></tr></thead>")
		w.open("tbody", "")
		for _, e := range entries {
			w.open("tr", "")
			w.el("td", "", e.At.Format(time.TimeOnly))
			w.el("td", "", string(e.Kind))
			w.el("td", attr("class", "outcome-"+string(e.Outcome)), string(e.Outcome))
			w.el("td", "", e.Subject)
			w.el("td", "", e.Duration.Round(time.Millisecond).String())
			w.close("tr")
		}
		w.close("tbody")
		w.close("table")
	})
}
