// Package auditcontext carries the acting attendant through a request so
// lifecycle changes can be attributed in the action log.
package auditcontext

import (
	"context"
	"strings"
)

type actorKey struct{}

// WithActor annotates ctx with the name of the person performing the action.
func WithActor(ctx context.Context, name string) context.Context {
	name = strings.TrimSpace(name)
	if name == "" {
		return ctx
	}
	return context.WithValue(ctx, actorKey{}, name)
}

// ActorFromContext returns the actor stored on ctx, if any.
func ActorFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	name, ok := ctx.Value(actorKey{}).(string)
	return name, ok && name != ""
}

// ActorOrDefault returns the actor on ctx or fallback when none is set.
func ActorOrDefault(ctx context.Context, fallback string) string {
	if name, ok := ActorFromContext(ctx); ok {
		return name
	}
	return fallback
}
