package output

import (
	"github.com/jedib0t/go-pretty/v6/table"
)

// Table writes rows under header. Text mode draws a light box; markdown
// mode writes a pipe table.
func (r *Renderer) Table(header []string, rows [][]string) {
	if len(rows) == 0 {
		r.Muted("(none)")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)

	if len(header) > 0 {
		hr := make(table.Row, len(header))
		for i, h := range header {
			hr[i] = h
		}
		t.AppendHeader(hr)
	}
	for _, row := range rows {
		tr := make(table.Row, len(row))
		for i, cell := range row {
			tr[i] = cell
		}
		t.AppendRow(tr)
	}

	if r.EffectiveMode() == ModeMarkdown {
		t.RenderMarkdown()
		r.Println()
		return
	}
	t.Render()
}

// List writes one bullet per item.
func (r *Renderer) List(items []string) {
	if len(items) == 0 {
		r.Muted("(none)")
		return
	}
	bullet := "  • "
	if r.EffectiveMode() == ModeMarkdown {
		bullet = "- "
	}
	for _, item := range items {
		r.Println(bullet + item)
	}
}
