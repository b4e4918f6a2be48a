package web

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"stylegen/css"
	"stylegen/markup"
)

// ViewFunc builds document for request. Returned document is rendered once
// and may be mutated during rendering.
type ViewFunc func(r *http.Request) (*markup.Document, error)

type ViewOption func(*viewOptions)

type viewOptions struct {
	pwa      bool
	manifest *Manifest
}

// WithPWA turns route into installable progressive web app. Nil manifest
// gets default one built from application title.
func WithPWA(m *Manifest) ViewOption {
	return func(o *viewOptions) {
		o.pwa = true
		o.manifest = m
	}
}

const cloakID = "stylegen-cloak"

// View registers GET route rendering documents produced by fn.
func (a *App) View(path string, fn ViewFunc, opts ...ViewOption) {
	var o viewOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.pwa {
		a.registerPWA(path, o.manifest)
	}

	a.router.Get(path, func(w http.ResponseWriter, r *http.Request) {
		doc, err := fn(r)
		if err != nil {
			a.log.Error("View failed", zap.String("path", path), zap.Error(err))
			http.Error(w, "unable to build page", http.StatusInternalServerError)
			return
		}

		var buf bytes.Buffer
		if err := a.renderDocument(&buf, doc, path, o.pwa); err != nil {
			a.log.Error("Unable to render document", zap.String("path", path), zap.Error(err))
			http.Error(w, "unable to render page", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(buf.Bytes())
	})
}

func (a *App) renderDocument(buf *bytes.Buffer, doc *markup.Document, path string, pwa bool) error {
	if doc.Head.Title == "" {
		doc.Head.Title = a.title
	}
	if doc.Head.Favicon == "" && a.favicon != "" {
		doc.Head.Favicon = a.versionURL("/favicon.ico")
	}

	a.registerDocumentStyles(doc)

	if doc.HasBindings() {
		if err := a.injectClient(doc); err != nil {
			return err
		}
	}
	if pwa {
		if err := a.injectPWA(doc, path); err != nil {
			return err
		}
	}
	return doc.Render(buf)
}

// registerDocumentStyles serves linked stylesheets carrying sheet objects.
func (a *App) registerDocumentStyles(doc *markup.Document) {
	for _, res := range doc.Head.Styles {
		if res.Sheet != nil && res.Href != "" && !res.Inline {
			a.Style(res.Href, res.Sheet)
		}
	}
}

func (a *App) versionURL(url string) string {
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + "v=" + a.version
}

func isLocalURL(url string) bool {
	return url != "" && !strings.HasPrefix(url, "http") && !strings.HasPrefix(url, "//")
}

func (a *App) injectClient(doc *markup.Document) error {
	if a.fadeIn > 0 {
		cloak := css.NewStyle().Opacity(0).Rule("pointer-events", "none")
		script := fmt.Sprintf(`var cloak = document.createElement("style");
cloak.id = %q;
cloak.textContent = "body { %s; }";
document.head.appendChild(cloak);`, cloakID, cloak.Inline())
		if err := doc.Script(markup.ScriptResource{Content: script}); err != nil {
			return err
		}
	}
	return doc.Script(markup.ScriptResource{Src: a.versionURL(basePath + "/client.js"), Defer: true})
}
