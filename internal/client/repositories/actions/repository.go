package actions

import (
	"context"

	"github.com/dmitrijs2005/anchor/internal/anchor"
)

// Repository is the outbox of mutations that still have to reach the server.
type Repository interface {
	// Enqueue appends a; enqueueing an id twice is a no-op.
	Enqueue(ctx context.Context, a *anchor.Action) error
	// List returns pending actions in the order they were enqueued.
	List(ctx context.Context) ([]*anchor.Action, error)
	Delete(ctx context.Context, ids []string) error
	Count(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
}
