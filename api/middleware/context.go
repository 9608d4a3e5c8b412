package middleware

import (
	"context"

	"github.com/marcovaldez/tiendapos-backend/internal/identity"
)

type contextKey string

const ctxResolution contextKey = "identity_resolution"

// ResolutionFromContext returns the identity resolved for this request.
// Requests that never passed through the identity middleware resolve to
// the unauthenticated actor.
func ResolutionFromContext(ctx context.Context) identity.Resolution {
	if ctx == nil {
		return identity.Resolution{Actor: identity.NoActor()}
	}
	if v, ok := ctx.Value(ctxResolution).(identity.Resolution); ok {
		return v
	}
	return identity.Resolution{Actor: identity.NoActor()}
}

// ActorFromContext is a shortcut for the resolved actor.
func ActorFromContext(ctx context.Context) identity.Actor {
	return ResolutionFromContext(ctx).Actor
}

// WithResolution injects a resolution into the context.
func WithResolution(ctx context.Context, res identity.Resolution) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxResolution, res)
}
