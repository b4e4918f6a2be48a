package web_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"stylegen/markup"
	"stylegen/web"
)

func TestScopeHash(t *testing.T) {
	if got := web.ScopeHash("/"); got != "6666cd76" {
		t.Errorf("ScopeHash(/) = %q", got)
	}
	if web.ScopeHash("/app") == web.ScopeHash("/other") {
		t.Error("different paths must have different scopes")
	}
}

func TestServiceWorker(t *testing.T) {
	sw := web.NewServiceWorker("v7")
	sw.AddAssets("/page-10.css", "", "/page-2.css", "/page-2.css")

	assets := sw.Assets()
	if strings.Join(assets, ",") != "/page-2.css,/page-10.css" {
		t.Errorf("Assets() = %v", assets)
	}

	text, err := sw.Render()
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(text, `const CACHE_NAME = "stylegen-v7";`) {
		t.Errorf("cache name missing:\n%s", text)
	}
	if !strings.Contains(text, `const ASSETS = ["/page-2.css","/page-10.css"];`) {
		t.Errorf("assets missing:\n%s", text)
	}
}

func TestManifest_Render(t *testing.T) {
	m := web.NewManifest("Notes").AddIcon("/icon.png", "192x192")
	data, err := m.Render()
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("invalid manifest JSON: %v", err)
	}
	if _, ok := got["short_name"]; ok {
		t.Error("empty short_name must be omitted")
	}
	if got["display"] != "standalone" || got["name"] != "Notes" {
		t.Errorf("manifest = %v", got)
	}
	if icons, ok := got["icons"].([]any); !ok || len(icons) != 1 {
		t.Errorf("icons = %v", got["icons"])
	}
}

func TestApp_PWA(t *testing.T) {
	app := web.NewApp(zaptest.NewLogger(t), web.WithTitle("Notes"), web.WithVersion("v1"))
	sheet := newSheet(t)

	app.View("/app", func(*http.Request) (*markup.Document, error) {
		doc := markup.NewDocument("", markup.Div().Class("card"))
		if err := doc.Style(markup.StyleResource{Sheet: sheet, Href: "/static/app.css"}); err != nil {
			return nil, err
		}
		if err := doc.Style(markup.StyleResource{Href: "https://cdn.example.com/x.css"}); err != nil {
			return nil, err
		}
		return doc, nil
	}, web.WithPWA(nil))

	srv := httptest.NewServer(app)
	defer srv.Close()

	scope := web.ScopeHash("/app")

	_, page := get(t, srv, "/app")
	if !strings.Contains(page, `rel="manifest" href="/_stylegen/pwa/`+scope+`/manifest.json"`) {
		t.Errorf("manifest link missing:\n%s", page)
	}
	if !strings.Contains(page, "/_stylegen/pwa/"+scope+"/sw.js") {
		t.Error("service worker registration missing")
	}
	if !strings.Contains(page, `href="/static/app.css?v=v1"`) {
		t.Error("local stylesheet must be versioned")
	}
	if !strings.Contains(page, `href="https://cdn.example.com/x.css"`) {
		t.Error("remote stylesheet must stay untouched")
	}

	resp, body := get(t, srv, "/static/app.css?v=v1")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, ".card {") {
		t.Errorf("versioned stylesheet not served, status = %d", resp.StatusCode)
	}

	resp, body = get(t, srv, "/_stylegen/pwa/"+scope+"/manifest.json")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("manifest status = %d", resp.StatusCode)
	}
	var manifest web.Manifest
	if err := json.Unmarshal([]byte(body), &manifest); err != nil {
		t.Fatalf("invalid manifest: %v", err)
	}
	if manifest.Name != "Notes" || manifest.Scope != "/app" || manifest.StartURL != "/app" {
		t.Errorf("manifest = %+v", manifest)
	}

	resp, body = get(t, srv, "/_stylegen/pwa/"+scope+"/sw.js")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("sw.js status = %d", resp.StatusCode)
	}
	if resp.Header.Get("Service-Worker-Allowed") != "/" {
		t.Error("Service-Worker-Allowed header missing")
	}
	for _, want := range []string{`"stylegen-v1"`, `"/app"`, `"/static/app.css?v=v1"`, `"/_stylegen/client.js?v=v1"`} {
		if !strings.Contains(body, want) {
			t.Errorf("service worker lacks %s:\n%s", want, body)
		}
	}
	if strings.Contains(body, "cdn.example.com") {
		t.Error("remote assets must not be cached")
	}

	if resp, _ := get(t, srv, "/_stylegen/pwa/deadbeef/manifest.json"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown scope status = %d", resp.StatusCode)
	}
}
