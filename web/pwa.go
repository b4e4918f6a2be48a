package web

import (
	"bytes"
	"crypto/md5"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"text/template"

	"github.com/go-chi/chi/v5"
	sprig "github.com/go-task/slim-sprig/v3"
	"github.com/maruel/natural"
	"go.uber.org/zap"

	"stylegen/markup"
)

// Icon is web app manifest icon.
type Icon struct {
	Src     string `json:"src"`
	Sizes   string `json:"sizes"`
	Type    string `json:"type"`
	Purpose string `json:"purpose"`
}

// Manifest is web app manifest controlling how installed app looks.
type Manifest struct {
	Name            string `json:"name"`
	ShortName       string `json:"short_name,omitempty"`
	StartURL        string `json:"start_url"`
	Display         string `json:"display"`
	BackgroundColor string `json:"background_color"`
	ThemeColor      string `json:"theme_color"`
	Description     string `json:"description"`
	Icons           []Icon `json:"icons"`
	Scope           string `json:"scope"`
}

// NewManifest returns manifest with standalone display and white colors.
// Start URL "." and scope "/" are replaced by route path on registration.
func NewManifest(name string) *Manifest {
	return &Manifest{
		Name:            name,
		StartURL:        ".",
		Display:         "standalone",
		BackgroundColor: "#ffffff",
		ThemeColor:      "#ffffff",
		Icons:           []Icon{},
		Scope:           "/",
	}
}

// AddIcon appends icon of type image/png usable as any or maskable.
func (m *Manifest) AddIcon(src, sizes string) *Manifest {
	m.Icons = append(m.Icons, Icon{Src: src, Sizes: sizes, Type: "image/png", Purpose: "any maskable"})
	return m
}

// Render returns manifest JSON.
func (m *Manifest) Render() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

//go:embed assets/sw.js.tmpl
var serviceWorkerTmpl string

var swTemplate = template.Must(template.New("sw.js").Funcs(sprig.FuncMap()).Parse(serviceWorkerTmpl))

// ServiceWorker caches app shell: navigation requests go to network first,
// assets are served from cache first.
type ServiceWorker struct {
	mu        sync.Mutex
	cacheName string
	assets    map[string]struct{}
}

func NewServiceWorker(version string) *ServiceWorker {
	return &ServiceWorker{cacheName: "stylegen-" + version, assets: make(map[string]struct{})}
}

// CacheName returns versioned cache name.
func (sw *ServiceWorker) CacheName() string { return sw.cacheName }

// AddAssets registers URLs to pre-cache on install. Empty URLs are ignored.
func (sw *ServiceWorker) AddAssets(urls ...string) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	for _, u := range urls {
		if u != "" {
			sw.assets[u] = struct{}{}
		}
	}
}

// Assets returns registered URLs in natural order.
func (sw *ServiceWorker) Assets() []string {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	out := make([]string, 0, len(sw.assets))
	for u := range sw.assets {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return natural.Less(out[i], out[j]) })
	return out
}

// Render returns service worker script.
func (sw *ServiceWorker) Render() (string, error) {
	var buf bytes.Buffer
	err := swTemplate.Execute(&buf, map[string]any{
		"CacheName": sw.cacheName,
		"Assets":    sw.Assets(),
	})
	if err != nil {
		return "", fmt.Errorf("unable to render service worker: %w", err)
	}
	return buf.String(), nil
}

type progressiveApp struct {
	path     string
	manifest *Manifest
	worker   *ServiceWorker
}

// ScopeHash returns short stable identifier of route path.
func ScopeHash(path string) string {
	sum := md5.Sum([]byte(path))
	return hex.EncodeToString(sum[:])[:8]
}

func (a *App) registerPWA(path string, m *Manifest) {
	if m == nil {
		m = NewManifest(a.title)
	}
	if m.Scope == "/" {
		m.Scope = path
	}
	if m.StartURL == "." {
		m.StartURL = path
	}

	sw := NewServiceWorker(a.version)
	sw.AddAssets(m.StartURL, a.versionURL(basePath+"/client.js"))
	if a.favicon != "" {
		sw.AddAssets(a.versionURL("/favicon.ico"))
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.pwa[ScopeHash(path)] = &progressiveApp{path: path, manifest: m, worker: sw}
}

func (a *App) lookupPWA(scope string) (*progressiveApp, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	p, ok := a.pwa[scope]
	return p, ok
}

func hasVersion(url string) bool {
	return strings.Contains(url, "?v=") || strings.Contains(url, "&v=")
}

// injectPWA links manifest, registers service worker and versions local
// resources so cached copies match document links.
func (a *App) injectPWA(doc *markup.Document, path string) error {
	scope := ScopeHash(path)
	p, ok := a.lookupPWA(scope)
	if !ok {
		return nil
	}

	doc.Link("manifest", fmt.Sprintf("%s/pwa/%s/manifest.json", basePath, scope))

	register := fmt.Sprintf(`if ("serviceWorker" in navigator) {
    window.addEventListener("load", () => {
        navigator.serviceWorker.register(%q, { scope: %q })
            .catch(err => console.log("[stylegen] service worker registration failed", err));
    });
}`, fmt.Sprintf("%s/pwa/%s/sw.js", basePath, scope), path)
	if err := doc.Script(markup.ScriptResource{Content: register}); err != nil {
		return err
	}

	for i := range doc.Head.Styles {
		res := &doc.Head.Styles[i]
		if res.Inline || !isLocalURL(res.Href) {
			continue
		}
		if !hasVersion(res.Href) {
			res.Href = a.versionURL(res.Href)
		}
		p.worker.AddAssets(res.Href)
	}
	for i := range doc.Head.Scripts {
		res := &doc.Head.Scripts[i]
		if !isLocalURL(res.Src) {
			continue
		}
		if !hasVersion(res.Src) {
			res.Src = a.versionURL(res.Src)
		}
		p.worker.AddAssets(res.Src)
	}
	return nil
}

func (a *App) handleManifest(w http.ResponseWriter, r *http.Request) {
	p, ok := a.lookupPWA(chi.URLParam(r, "scope"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	data, err := p.manifest.Render()
	if err != nil {
		a.log.Error("Unable to render manifest", zap.String("path", p.path), zap.Error(err))
		http.Error(w, "unable to render manifest", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/manifest+json")
	_, _ = w.Write(data)
}

func (a *App) handleServiceWorker(w http.ResponseWriter, r *http.Request) {
	p, ok := a.lookupPWA(chi.URLParam(r, "scope"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	text, err := p.worker.Render()
	if err != nil {
		a.log.Error("Unable to render service worker", zap.String("path", p.path), zap.Error(err))
		http.Error(w, "unable to render service worker", http.StatusInternalServerError)
		return
	}
	// worker served from runtime prefix controls pages at route scope
	w.Header().Set("Service-Worker-Allowed", "/")
	w.Header().Set("Content-Type", "application/javascript")
	_, _ = w.Write([]byte(text))
}
