package web_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"stylegen/css"
	"stylegen/markup"
	"stylegen/web"
)

func newSheet(t *testing.T) *css.StyleSheet {
	t.Helper()

	sheet := css.NewStyleSheet(zaptest.NewLogger(t), css.WithPreamble(false))
	sheet.MustSelect(".card").Rule("padding", "1rem")
	sheet.MustSelect(".unused").Rule("color", "red")
	return sheet
}

func get(t *testing.T, srv *httptest.Server, path string) (*http.Response, string) {
	t.Helper()

	resp, err := http.Get(srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return resp, string(body)
}

func TestApp_Health(t *testing.T) {
	app := web.NewApp(zaptest.NewLogger(t), web.WithVersion("v1"))
	srv := httptest.NewServer(app)
	defer srv.Close()

	resp, body := get(t, srv, "/health")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var reply map[string]string
	if err := json.Unmarshal([]byte(body), &reply); err != nil {
		t.Fatalf("bad health reply %q: %v", body, err)
	}
	if reply["status"] != "ok" || reply["version"] != "v1" {
		t.Errorf("reply = %v", reply)
	}
}

func TestApp_Style(t *testing.T) {
	app := web.NewApp(zaptest.NewLogger(t))
	srv := httptest.NewServer(app)
	defer srv.Close()

	app.Style("site.css", newSheet(t))

	resp, body := get(t, srv, "/site.css")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/css") {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(body, ".card {") || !strings.Contains(body, ".unused {") {
		t.Errorf("unexpected stylesheet:\n%s", body)
	}

	// replacing sheet at the same path while serving
	other := css.NewStyleSheet(nil, css.WithPreamble(false))
	other.MustSelect(".other").Rule("margin", 0)
	app.Style("/site.css", other)

	_, body = get(t, srv, "/site.css")
	if strings.Contains(body, ".card") || !strings.Contains(body, ".other {") {
		t.Errorf("stylesheet was not replaced:\n%s", body)
	}

	if resp, _ := get(t, srv, "/missing.css"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing stylesheet status = %d", resp.StatusCode)
	}
}

func TestApp_View(t *testing.T) {
	app := web.NewApp(zaptest.NewLogger(t), web.WithTitle("Demo"), web.WithVersion("v1"))
	sheet := newSheet(t)

	app.View("/", func(*http.Request) (*markup.Document, error) {
		doc := markup.NewDocument("", markup.Div().Class("card").Text("hello"))
		if err := doc.Style(markup.StyleResource{Sheet: sheet, Href: "/static/site.css"}); err != nil {
			return nil, err
		}
		if err := doc.Style(markup.StyleResource{Sheet: sheet, Inline: true, Subset: true}); err != nil {
			return nil, err
		}
		return doc, nil
	})
	app.View("/broken", func(*http.Request) (*markup.Document, error) {
		return nil, errors.New("boom")
	})

	srv := httptest.NewServer(app)
	defer srv.Close()

	// stylesheet route does not exist until document links it
	if resp, _ := get(t, srv, "/static/site.css"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("stylesheet served before view, status = %d", resp.StatusCode)
	}

	resp, page := get(t, srv, "/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(page, "<title>Demo</title>") {
		t.Error("application title not applied")
	}
	if !strings.Contains(page, `href="/static/site.css"`) {
		t.Error("stylesheet link missing")
	}
	if !strings.Contains(page, ".card {") || strings.Contains(page, ".unused") {
		t.Errorf("inline subset is wrong:\n%s", page)
	}
	if strings.Contains(page, "client.js") {
		t.Error("client runtime injected into page without bindings")
	}

	resp, body := get(t, srv, "/static/site.css")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, ".unused {") {
		t.Errorf("linked stylesheet not served, status = %d:\n%s", resp.StatusCode, body)
	}

	if resp, _ := get(t, srv, "/broken"); resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("failing view status = %d", resp.StatusCode)
	}
}

func TestApp_ViewBindings(t *testing.T) {
	view := func(*http.Request) (*markup.Document, error) {
		return markup.NewDocument("Bound", markup.Button().Text("Save").On("click", "save")), nil
	}

	t.Run("fade in", func(t *testing.T) {
		app := web.NewApp(zaptest.NewLogger(t), web.WithVersion("v1"))
		app.View("/", view)
		srv := httptest.NewServer(app)
		defer srv.Close()

		_, page := get(t, srv, "/")
		if !strings.Contains(page, `src="/_stylegen/client.js?v=v1"`) {
			t.Errorf("client runtime missing:\n%s", page)
		}
		if !strings.Contains(page, "stylegen-cloak") || !strings.Contains(page, "opacity: 0; pointer-events: none") {
			t.Errorf("cloak missing:\n%s", page)
		}
		if !strings.Contains(page, `data-on-click="save"`) {
			t.Error("binding attribute missing")
		}

		resp, script := get(t, srv, "/_stylegen/client.js?v=v1")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("client.js status = %d", resp.StatusCode)
		}
		if !strings.Contains(script, "window.stylegen") || !strings.Contains(script, "100ms") {
			t.Errorf("unexpected client runtime:\n%s", script)
		}
	})

	t.Run("no fade in", func(t *testing.T) {
		app := web.NewApp(zaptest.NewLogger(t), web.WithFadeIn(0))
		app.View("/", view)
		srv := httptest.NewServer(app)
		defer srv.Close()

		_, page := get(t, srv, "/")
		if strings.Contains(page, "stylegen-cloak") {
			t.Error("cloak injected with fade in disabled")
		}
		if !strings.Contains(page, "/_stylegen/client.js") {
			t.Error("client runtime missing")
		}
	})
}

func TestApp_ListenAndServe(t *testing.T) {
	app := web.NewApp(zaptest.NewLogger(t), web.WithShutdownTimeout(time.Second))

	var (
		mu     sync.Mutex
		events []string
	)
	record := func(name string) web.EventHandler {
		return func(context.Context, string) {
			mu.Lock()
			defer mu.Unlock()
			events = append(events, name)
		}
	}
	app.On(web.EventStartup, record("startup"))
	app.On(web.EventShutdown, record("shutdown"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.ListenAndServe(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("ListenAndServe() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("ListenAndServe() did not stop")
	}

	mu.Lock()
	defer mu.Unlock()
	if strings.Join(events, ",") != "startup,shutdown" {
		t.Errorf("events = %v", events)
	}
}
