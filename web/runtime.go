package web

import (
	"bytes"
	_ "embed"
	"net/http"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"
	"go.uber.org/zap"
)

//go:embed assets/client.js.tmpl
var clientTmpl string

var clientTemplate = template.Must(template.New("client.js").Funcs(sprig.FuncMap()).Parse(clientTmpl))

// ClientScript returns client runtime for this application.
func (a *App) ClientScript() (string, error) {
	var buf bytes.Buffer
	err := clientTemplate.Execute(&buf, map[string]any{
		"Base":    basePath,
		"Version": a.version,
		"CloakID": cloakID,
		"FadeIn":  a.fadeIn.Milliseconds(),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (a *App) handleClient(w http.ResponseWriter, _ *http.Request) {
	text, err := a.ClientScript()
	if err != nil {
		a.log.Error("Unable to render client runtime", zap.Error(err))
		http.Error(w, "unable to render client runtime", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/javascript")
	_, _ = w.Write([]byte(text))
}
