package components

import (
	"github.com/a-h/templ"

	"github.com/leapstack-labs/routelens/internal/ui/resources"
)

// DatastarScript is the client runtime the pages load.
const DatastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0/bundles/datastar.js"

// Page wraps body in the HTML document. The body element opens the update
// stream on load.
func Page(title string, isDev bool, signals string, body templ.Component) templ.Component {
	return Document(title, isDev, signals, "/updates", body)
}

// Document wraps body in the HTML document. An empty stream renders a
// static page.
func Document(title string, isDev bool, signals, stream string, body templ.Component) templ.Component {
	return component(func(w *writer) {
		w.raw("<!doctype html>")
		w.open("html", `lang="en"`)
		w.open("head", "")
		w.raw(`<meta charset="utf-8">`)
		w.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		w.el("title", "", title+" - RouteLens")
		w.raw(`<link rel="stylesheet" ` + attr("href", resources.StaticPath("routelens.css")) + `>`)
		w.raw(`<script type="module" ` + attr("src", DatastarScript) + `></script>`)
		w.close("head")

		bodyAttrs := []string{}
		if signals != "" {
			bodyAttrs = append(bodyAttrs, attr("data-signals", signals))
		}
		if stream != "" {
			bodyAttrs = append(bodyAttrs, attr("data-init", "@get('"+stream+"')"))
		}
		w.open("body", attrs(bodyAttrs...))
		if isDev {
			w.raw(`<div data-init="@get('/reload', {openWhenHidden: true})"></div>`)
		}
		w.child(body)
		w.close("body")
		w.close("html")
	})
}
