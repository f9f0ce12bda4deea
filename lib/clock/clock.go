// Package clock carries the head block time in the context. All state
// transitions read time exclusively from here so that replaying a sequence of
// operations with the same timestamps yields the same state.
package clock

import (
	"context"
	"net/http"
	"time"
)

// ContextKey is the type of the key used with context to carry the contextual
// head block time.
type ContextKey string

const (
	// timeKey the context.Context key to store the head block time.
	timeKey ContextKey = "clock.time"
)

// With stores the head block time in the provided context.
func With(
	ctx context.Context,
	t time.Time,
) context.Context {
	return context.WithValue(ctx, timeKey, t.UTC())
}

// Get returns the head block time currently stored in the context, defaulting
// to the current wall clock if none was set.
func Get(
	ctx context.Context,
) time.Time {
	if t, ok := ctx.Value(timeKey).(time.Time); ok {
		return t
	}
	return time.Now().UTC()
}

type middleware struct {
	http.Handler
}

// ServeHTTP handles incoming HTTP requests and pins the head block time for
// the duration of the request.
func (m middleware) ServeHTTP(
	w http.ResponseWriter,
	r *http.Request,
) {
	ctx := r.Context()
	withTime := With(ctx, time.Now())
	m.Handler.ServeHTTP(w, r.WithContext(withTime))
}

// Middleware returns a middleware that pins the head block time in requests.
func Middleware(h http.Handler) http.Handler {
	return middleware{h}
}
