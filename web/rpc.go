package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

var (
	ErrUnknownFunction = errors.New("unknown function")
	ErrBadArguments    = errors.New("bad arguments")
)

// maximum accepted RPC request body
const maxBodySize = 1 << 20

type (
	rpcHandler      func(ctx context.Context, body []byte) (any, error)
	realtimeHandler func(ctx context.Context, clientID string, args []byte) error
)

func decodeArgs[A any](data []byte) (A, error) {
	var args A
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return args, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&args); err != nil {
		return args, fmt.Errorf("%w: %w", ErrBadArguments, err)
	}
	return args, nil
}

// RPC exposes fn to clients as POST /_stylegen/rpc/{name}. Request body is
// JSON of A, response is {"result": R} or {"error": "..."}. Registering the
// same name again replaces previous function.
func RPC[A, R any](a *App, name string, fn func(ctx context.Context, args A) (R, error)) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.rpc[name] = func(ctx context.Context, body []byte) (any, error) {
		args, err := decodeArgs[A](body)
		if err != nil {
			return nil, err
		}
		return fn(ctx, args)
	}
}

// Realtime exposes fn to clients over WebSocket. Calls are fire and forget,
// errors are only logged.
func Realtime[A any](a *App, name string, fn func(ctx context.Context, clientID string, args A) error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.realtime[name] = func(ctx context.Context, clientID string, data []byte) error {
		args, err := decodeArgs[A](data)
		if err != nil {
			return err
		}
		return fn(ctx, clientID, args)
	}
}

// Call invokes registered RPC function with raw JSON arguments.
func (a *App) Call(ctx context.Context, name string, args []byte) (any, error) {
	a.mu.RLock()
	fn, ok := a.rpc[name]
	a.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("rpc %q: %w", name, ErrUnknownFunction)
	}
	return fn(ctx, args)
}

func (a *App) callRealtime(ctx context.Context, clientID, name string, args []byte) error {
	a.mu.RLock()
	fn, ok := a.realtime[name]
	a.mu.RUnlock()

	if !ok {
		return fmt.Errorf("realtime %q: %w", name, ErrUnknownFunction)
	}
	return fn(ctx, clientID, args)
}

func (a *App) handleRPC(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": err.Error()})
		return
	}

	result, err := a.Call(r.Context(), name, body)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]any{"result": result})
	case errors.Is(err, ErrUnknownFunction):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrBadArguments):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		a.log.Warn("RPC failed", zap.String("name", name), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}
