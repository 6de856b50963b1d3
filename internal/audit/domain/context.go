package domain

import "context"

// Well-known actors for operations that do not originate from an HTTP client.
const (
	ActorCLI        = "cli"
	ActorAutoUnseal = "auto-unseal"
	ActorUnknown    = "unknown"
)

type actorKey struct{}

// WithActor returns a copy of ctx carrying the actor responsible for the operation.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the actor stored by WithActor, or ActorUnknown.
func ActorFromContext(ctx context.Context) string {
	if actor, ok := ctx.Value(actorKey{}).(string); ok && actor != "" {
		return actor
	}
	return ActorUnknown
}
