package sessions

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

func TestLast_Empty(t *testing.T) {
	r := NewSQLiteRepository(sqlitetest.Open(t))

	e, err := r.Last(context.Background())
	require.NoError(t, err)
	assert.Nil(t, e)
}

func TestAppendAndLast(t *testing.T) {
	r := NewSQLiteRepository(sqlitetest.Open(t))
	ctx := context.Background()

	first := &anchor.SessionLogEntry{AnchorID: "a1", Type: anchor.SessionCharge, DurationSeconds: 30, Mode: "quick", CompletedAt: t0}
	second := &anchor.SessionLogEntry{AnchorID: "a2", Type: anchor.SessionActivation, DurationSeconds: 10, Mode: "visual", CompletedAt: t0.Add(time.Hour)}
	require.NoError(t, r.Append(ctx, second))
	require.NoError(t, r.Append(ctx, first))
	assert.NotZero(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)

	last, err := r.Last(ctx)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, *second, *last)
}

func TestListByAnchor(t *testing.T) {
	r := NewSQLiteRepository(sqlitetest.Open(t))
	ctx := context.Background()

	for i, id := range []string{"a1", "a2", "a1"} {
		require.NoError(t, r.Append(ctx, &anchor.SessionLogEntry{
			AnchorID:        id,
			Type:            anchor.SessionActivation,
			DurationSeconds: 10,
			CompletedAt:     t0.Add(time.Duration(i) * time.Minute),
		}))
	}

	list, err := r.ListByAnchor(ctx, "a1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.True(t, list[0].CompletedAt.After(list[1].CompletedAt))

	require.NoError(t, r.Clear(ctx))
	list, err = r.ListByAnchor(ctx, "a1")
	require.NoError(t, err)
	assert.Empty(t, list)
}
