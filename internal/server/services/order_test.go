package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/anchor/internal/anchor"
	"github.com/dmitrijs2005/anchor/internal/common"
	"github.com/dmitrijs2005/anchor/internal/logging"
	"github.com/dmitrijs2005/anchor/internal/server/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validOrder(anchorID string) anchor.Order {
	return anchor.Order{
		AnchorID: anchorID,
		Product:  anchor.ProductPrint,
		Size:     "A4",
		Quantity: 2,
		Shipping: anchor.Shipping{Name: "Alice", Line1: "1 Main St", City: "Riga", PostalCode: "LV-1010", Country: "LV"},
	}
}

func TestOrderService_Create(t *testing.T) {
	db, _ := newMockDB(t, 0, 0)
	m := newFakeRepoManager()
	p := &fakePublisher{}
	s := NewOrderService(db, m, p, logging.Nop())
	m.anchors.byID["a1"] = &anchor.Anchor{ID: "a1", UserID: "u1"}

	in := validOrder("a1")
	in.Status = "shipped"
	o, err := s.Create(context.Background(), "u1", in)
	require.NoError(t, err)
	assert.Equal(t, "o1", o.ID)
	assert.Equal(t, "u1", o.UserID)
	assert.Equal(t, anchor.OrderStatusPending, o.Status)
	assert.Equal(t, []string{events.OrderCreated}, p.keys())

	got, err := s.Get(context.Background(), "u1", o.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Quantity)
}

func TestOrderService_Create_Rejects(t *testing.T) {
	db, _ := newMockDB(t, 0, 0)
	m := newFakeRepoManager()
	s := NewOrderService(db, m, &fakePublisher{}, logging.Nop())
	m.anchors.byID["burned"] = &anchor.Anchor{ID: "burned", UserID: "u1", Deleted: true}
	ctx := context.Background()

	bad := validOrder("a1")
	bad.Quantity = 0
	_, err := s.Create(ctx, "u1", bad)
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, err = s.Create(ctx, "u1", validOrder("missing"))
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = s.Create(ctx, "u1", validOrder("burned"))
	assert.ErrorIs(t, err, common.ErrorNotFound)

	assert.Empty(t, m.orders.created)
}
