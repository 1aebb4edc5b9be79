// Package requestcontext provides HTTP-independent context accessors for request-scoped values.
//
// This package defines context keys and getter/setter functions for values that are
// typically set by middleware but consumed by services. By keeping this package free
// of net/http dependencies, services can import only what they need without pulling
// in HTTP-related code.
//
// Usage in services (read values):
//
//	caller := requestcontext.CallerID(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in middleware (set values):
//
//	ctx = requestcontext.WithCallerID(ctx, callerID)
//	ctx = requestcontext.WithRequestID(ctx, requestID)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"

	id "organmatch/pkg/domain"
)

// Context key types (unexported for encapsulation).
type (
	callerIDKey    struct{}
	authorityIDKey struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// Exported context keys for direct use in tests that need context.WithValue.
var (
	ContextKeyCallerID    = callerIDKey{}
	ContextKeyAuthorityID = authorityIDKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// CallerID retrieves the authenticated caller identity from the context.
// Returns the zero value if not set.
func CallerID(ctx context.Context) id.Identity {
	if caller, ok := ctx.Value(ContextKeyCallerID).(id.Identity); ok {
		return caller
	}
	return id.Identity{}
}

// WithCallerID injects a caller identity into the context.
func WithCallerID(ctx context.Context, caller id.Identity) context.Context {
	return context.WithValue(ctx, ContextKeyCallerID, caller)
}

// AuthorityID retrieves the supervising medical authority identity from the
// context. Set by transport from the request when an operation is performed
// under an authority's oversight rather than by the authority itself.
func AuthorityID(ctx context.Context) id.Identity {
	if authority, ok := ctx.Value(ContextKeyAuthorityID).(id.Identity); ok {
		return authority
	}
	return id.Identity{}
}

// WithAuthorityID injects a medical authority identity into the context.
func WithAuthorityID(ctx context.Context, authority id.Identity) context.Context {
	return context.WithValue(ctx, ContextKeyAuthorityID, authority)
}

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() if not set (for non-HTTP contexts like workers, CLI, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context.
// Useful for:
//   - Service unit tests that don't run the full HTTP middleware chain
//   - Workers that need consistent time within a batch operation
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
