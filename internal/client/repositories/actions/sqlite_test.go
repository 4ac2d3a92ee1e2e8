package actions

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/anchor/internal/anchor"
	"github.com/dmitrijs2005/anchor/internal/client/repositories/sqlitetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func charge(id string) *anchor.Action {
	return &anchor.Action{
		ID:        id,
		Kind:      anchor.ActionCharge,
		AnchorID:  "a1",
		Charge:    &anchor.Charge{ChargeType: anchor.ChargeInitialQuick, DurationSeconds: 30},
		CreatedAt: t0,
	}
}

func TestEnqueueAndList_FIFO(t *testing.T) {
	r := NewSQLiteRepository(sqlitetest.Open(t))
	ctx := context.Background()

	require.NoError(t, r.Enqueue(ctx, charge("x2")))
	require.NoError(t, r.Enqueue(ctx, charge("x1")))
	require.NoError(t, r.Enqueue(ctx, &anchor.Action{ID: "x3", Kind: anchor.ActionBurn, AnchorID: "a1", CreatedAt: t0}))

	list, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"x2", "x1", "x3"}, []string{list[0].ID, list[1].ID, list[2].ID})
	require.NotNil(t, list[0].Charge)
	assert.Equal(t, anchor.ChargeInitialQuick, list[0].Charge.ChargeType)
	assert.Equal(t, 30, list[0].Charge.DurationSeconds)
}

func TestEnqueue_DuplicateIgnored(t *testing.T) {
	r := NewSQLiteRepository(sqlitetest.Open(t))
	ctx := context.Background()

	require.NoError(t, r.Enqueue(ctx, charge("x1")))
	require.NoError(t, r.Enqueue(ctx, charge("x1")))

	n, err := r.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDelete(t *testing.T) {
	r := NewSQLiteRepository(sqlitetest.Open(t))
	ctx := context.Background()

	for _, id := range []string{"x1", "x2", "x3"} {
		require.NoError(t, r.Enqueue(ctx, charge(id)))
	}
	require.NoError(t, r.Delete(ctx, []string{"x1", "x3", "unknown"}))
	require.NoError(t, r.Delete(ctx, nil))

	list, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "x2", list[0].ID)
}

func TestClear(t *testing.T) {
	r := NewSQLiteRepository(sqlitetest.Open(t))
	ctx := context.Background()

	require.NoError(t, r.Enqueue(ctx, charge("x1")))
	require.NoError(t, r.Clear(ctx))

	n, err := r.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
