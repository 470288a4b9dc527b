// Package http exposes the dashboard API over chi: entity tables and
// forms, session login, theme settings, the invalidation websocket and
// the operational endpoints.
package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	apperrors "github.com/ispconsole/backoffice/internal/pkg/errors"
	"github.com/ispconsole/backoffice/internal/pkg/logger"
)

// Toast is one user-facing notification raised while handling a
// request. The frontend renders them as snackbars.
type Toast struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// envelope mirrors the remote API's response convention so the
// frontend speaks one shape in both directions.
type envelope struct {
	Success bool    `json:"success"`
	Data    any     `json:"data,omitempty"`
	Message string  `json:"message,omitempty"`
	Error   any     `json:"error,omitempty"`
	Toasts  []Toast `json:"toasts,omitempty"`
}

type toastBag struct {
	mu     sync.Mutex
	toasts []Toast
}

func (b *toastBag) add(level, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.toasts = append(b.toasts, Toast{Level: level, Message: message})
}

func (b *toastBag) drain() []Toast {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.toasts
	b.toasts = nil
	return out
}

type toastKey struct{}

func withToasts(ctx context.Context) (context.Context, *toastBag) {
	bag := &toastBag{}
	return context.WithValue(ctx, toastKey{}, bag), bag
}

func toastsFrom(ctx context.Context) *toastBag {
	bag, _ := ctx.Value(toastKey{}).(*toastBag)
	return bag
}

// Notifier implements port.Notifier by collecting toasts into the
// current request. Notifications raised outside a request (peer
// invalidations, background work) fall through to the log.
type Notifier struct{}

func (Notifier) Success(ctx context.Context, message string) {
	if bag := toastsFrom(ctx); bag != nil {
		bag.add("success", message)
		return
	}
	logger.From(ctx).Info("notification", "level", "success", "message", message)
}

func (Notifier) Error(ctx context.Context, message string) {
	if bag := toastsFrom(ctx); bag != nil {
		bag.add("error", message)
		return
	}
	logger.From(ctx).Warn("notification", "level", "error", "message", message)
}

func respond(w http.ResponseWriter, r *http.Request, status int, data any) {
	writeJSON(w, status, envelope{
		Success: status < 400,
		Data:    data,
		Toasts:  drainToasts(r),
	})
}

func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.StatusOf(err)
	writeJSON(w, status, envelope{
		Success: false,
		Message: apperrors.MessageOf(err, "Something went wrong"),
		Toasts:  drainToasts(r),
	})
}

// respondInvalid renders field-level validation errors without
// treating them as a server failure.
func respondInvalid(w http.ResponseWriter, r *http.Request, errs map[string]string) {
	writeJSON(w, http.StatusUnprocessableEntity, envelope{
		Success: false,
		Message: "Validation failed",
		Error:   map[string]any{"fields": errs},
		Toasts:  drainToasts(r),
	})
}

func drainToasts(r *http.Request) []Toast {
	if bag := toastsFrom(r.Context()); bag != nil {
		return bag.drain()
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// toastMiddleware installs the per-request toast collector.
func toastMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, _ := withToasts(r.Context())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
