package client

import (
	"context"

	"github.com/dmitrijs2005/anchor/internal/anchor"
)

// SyncResult is what the server answered to one Sync call.
type SyncResult struct {
	Applied    []string
	Rejected   []string
	Anchors    []*anchor.Anchor
	MaxVersion int64
}

type Client interface {
	Close() error
	Register(ctx context.Context, username string, salt []byte, verifier []byte) error
	GetSalt(ctx context.Context, username string) ([]byte, error)
	Login(ctx context.Context, username string, verifier []byte) error
	Logout()
	Ping(ctx context.Context) error
	Sync(ctx context.Context, actions []*anchor.Action, maxVersion int64) (*SyncResult, error)
	CreateOrder(ctx context.Context, o anchor.Order) (*anchor.Order, error)
}
