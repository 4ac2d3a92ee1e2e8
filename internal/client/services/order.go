package services

import (
	"context"

	"github.com/dmitrijs2005/anchor/internal/anchor"
	"github.com/dmitrijs2005/anchor/internal/client/client"
)

// OrderService places print orders. Orders are never queued; they need the
// server to be reachable.
type OrderService struct {
	client client.Client
	vault  *VaultService
}

func NewOrderService(c client.Client, v *VaultService) *OrderService {
	return &OrderService{client: c, vault: v}
}

func (s *OrderService) Place(ctx context.Context, o anchor.Order) (*anchor.Order, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.vault.Get(ctx, o.AnchorID); err != nil {
		return nil, err
	}
	return s.client.CreateOrder(ctx, o)
}
