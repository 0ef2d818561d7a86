// Package components renders the explorer UI as templ components.
package components

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// writer accumulates the first write error so component bodies read as
// straight-line markup.
type writer struct {
	ctx context.Context
	w   io.Writer
	err error
}

func (w *writer) raw(s string) {
	if w.err != nil {
		return
	}
	_, w.err = io.WriteString(w.w, s)
}

func (w *writer) text(s string) { w.raw(templ.EscapeString(s)) }

// el writes <tag attrs>text</tag>; attrs must already be escaped.
func (w *writer) el(tag, attrs, text string) {
	w.open(tag, attrs)
	w.text(text)
	w.close(tag)
}

func (w *writer) open(tag, attrs string) {
	if attrs != "" {
		w.raw("<" + tag + " " + attrs + ">")
		return
	}
	w.raw("<" + tag + ">")
}

func (w *writer) close(tag string) { w.raw("</" + tag + ">") }

func (w *writer) child(c templ.Component) {
	if w.err != nil {
		return
	}
	w.err = c.Render(w.ctx, w.w)
}

func attr(name, value string) string {
	return name + `="` + templ.EscapeString(value) + `"`
}

func attrs(parts ...string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += " "
		}
		out += p
	}
	return out
}

func component(fn func(w *writer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{ctx: ctx, w: out}
		fn(w)
		return w.err
	})
}
