// Package web serves stylesheets and documents over HTTP. Views return
// markup documents, stylesheets they link are served automatically, and
// documents with event bindings get small client runtime talking to the
// server with JSON RPC and WebSocket messages.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"stylegen/css"
)

// Reserved path prefix for runtime routes.
const basePath = "/_stylegen"

// Server lifecycle and client connection events.
const (
	EventStartup    = "startup"
	EventShutdown   = "shutdown"
	EventConnect    = "connect"
	EventDisconnect = "disconnect"
)

// EventHandler is called for emitted events. ClientID is empty for
// lifecycle events.
type EventHandler func(ctx context.Context, clientID string)

type Option func(*App)

// WithTitle sets default document title and PWA manifest name.
func WithTitle(title string) Option {
	return func(a *App) { a.title = title }
}

// WithFavicon serves file at path as /favicon.ico.
func WithFavicon(path string) Option {
	return func(a *App) { a.favicon = path }
}

// WithFadeIn hides documents with bindings until client runtime is ready
// and fades them in during d. Zero disables cloaking.
func WithFadeIn(d time.Duration) Option {
	return func(a *App) { a.fadeIn = d }
}

// WithVersion sets asset version used for cache busting. Empty value keeps
// generated one.
func WithVersion(v string) Option {
	return func(a *App) {
		if v != "" {
			a.version = v
		}
	}
}

// WithShutdownTimeout limits graceful shutdown in ListenAndServe.
func WithShutdownTimeout(d time.Duration) Option {
	return func(a *App) { a.shutdownTimeout = d }
}

// App is HTTP application. Routes for views must be registered before
// serving, stylesheets may be (re)registered at any time.
type App struct {
	log             *zap.Logger
	title           string
	favicon         string
	fadeIn          time.Duration
	version         string
	shutdownTimeout time.Duration

	router chi.Router
	hub    *Hub

	mu       sync.RWMutex
	styles   map[string]*css.StyleSheet
	rpc      map[string]rpcHandler
	realtime map[string]realtimeHandler
	events   map[string][]EventHandler
	pwa      map[string]*progressiveApp
}

// NewApp creates application with runtime routes registered.
func NewApp(log *zap.Logger, opts ...Option) *App {
	if log == nil {
		log = zap.NewNop()
	}
	a := &App{
		log:             log.Named("web"),
		title:           "stylegen",
		fadeIn:          100 * time.Millisecond,
		version:         strings.ReplaceAll(uuid.NewString(), "-", "")[:8],
		shutdownTimeout: 5 * time.Second,
		styles:          make(map[string]*css.StyleSheet),
		rpc:             make(map[string]rpcHandler),
		realtime:        make(map[string]realtimeHandler),
		events:          make(map[string][]EventHandler),
		pwa:             make(map[string]*progressiveApp),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.hub = newHub(a)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(a.log))

	r.Get("/health", a.handleHealth)
	r.Get("/favicon.ico", a.handleFavicon)
	r.Route(basePath, func(r chi.Router) {
		r.Get("/client.js", a.handleClient)
		r.Post("/rpc/{name}", a.handleRPC)
		r.Get("/ws", a.hub.handleSocket)
		r.Get("/pwa/{scope}/manifest.json", a.handleManifest)
		r.Get("/pwa/{scope}/sw.js", a.handleServiceWorker)
	})
	// stylesheets are looked up dynamically so they can be added while serving
	r.NotFound(a.handleStyle)

	a.router = r
	return a
}

// Version returns asset version.
func (a *App) Version() string { return a.version }

// Hub returns realtime connection hub.
func (a *App) Hub() *Hub { return a.hub }

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Style serves sheet at path, replacing any sheet registered there before.
func (a *App) Style(path string, sheet *css.StyleSheet) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.styles[path]; !ok {
		a.log.Debug("Serving stylesheet", zap.String("path", path))
	}
	a.styles[path] = sheet
}

// On registers handler for event.
func (a *App) On(event string, fn EventHandler) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events[event] = append(a.events[event], fn)
}

// Emit calls handlers registered for event in registration order.
func (a *App) Emit(ctx context.Context, event, clientID string) {
	a.mu.RLock()
	handlers := append([]EventHandler(nil), a.events[event]...)
	a.mu.RUnlock()

	for _, fn := range handlers {
		fn(ctx, clientID)
	}
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully. Startup and shutdown events are emitted around serving.
func (a *App) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           a,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       2 * time.Minute,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	a.Emit(ctx, EventStartup, "")

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("Listening", zap.String("addr", addr), zap.String("version", a.version))
		errCh <- srv.ListenAndServe()
	}()

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.shutdownTimeout)
		defer cancel()
		a.hub.Close()
		if er := srv.Shutdown(sctx); er != nil {
			err = fmt.Errorf("unable to shutdown server: %w", er)
		} else {
			err = <-errCh
		}
	}
	a.Emit(context.WithoutCancel(ctx), EventShutdown, "")

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": a.version})
}

func (a *App) handleFavicon(w http.ResponseWriter, r *http.Request) {
	if a.favicon == "" {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, a.favicon)
}

func (a *App) handleStyle(w http.ResponseWriter, r *http.Request) {
	a.mu.RLock()
	sheet, ok := a.styles[r.URL.Path]
	a.mu.RUnlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	text, err := sheet.Render()
	if err != nil {
		a.log.Error("Unable to render stylesheet", zap.String("path", r.URL.Path), zap.Error(err))
		http.Error(w, "unable to render stylesheet", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	_, _ = w.Write([]byte(text))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
