package services

import (
	"context"
	"database/sql"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/anchor/internal/anchor"
	"github.com/dmitrijs2005/anchor/internal/client/client"
	"github.com/dmitrijs2005/anchor/internal/client/repositories/repomanager"
	"github.com/dmitrijs2005/anchor/internal/client/repositories/sqlitetest"
	"github.com/stretchr/testify/require"
)

// ---- helpers ----

func setupStore(t *testing.T) (*sql.DB, repomanager.RepositoryManager) {
	t.Helper()
	return sqlitetest.Open(t), repomanager.NewSQLiteRepositoryManager()
}

func seedAnchor(t *testing.T, db *sql.DB, m repomanager.RepositoryManager, a *anchor.Anchor) {
	t.Helper()
	if a.Category == "" {
		a.Category = anchor.Category("career")
	}
	if a.IntentionText == "" {
		a.IntentionText = "I am confident"
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		a.UpdatedAt = a.CreatedAt
	}
	require.NoError(t, m.Anchors(db).Upsert(context.Background(), a))
}

func setMeta(t *testing.T, db *sql.DB, m repomanager.RepositoryManager, k string, v []byte) {
	t.Helper()
	require.NoError(t, m.Metadata(db).Set(context.Background(), k, v))
}

func getMeta(t *testing.T, db *sql.DB, m repomanager.RepositoryManager, k string) []byte {
	t.Helper()
	v, err := m.Metadata(db).Get(context.Background(), k)
	require.NoError(t, err)
	return v
}

func pendingActions(t *testing.T, db *sql.DB, m repomanager.RepositoryManager) []*anchor.Action {
	t.Helper()
	list, err := m.Actions(db).List(context.Background())
	require.NoError(t, err)
	return list
}

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func sequentialIDs(prefix string) func() string {
	var (
		mu sync.Mutex
		n  int
	)
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return prefix + strconv.Itoa(n)
	}
}

// ---- fake client ----

// fakeClient implements client.Client for service tests.
type fakeClient struct {
	CloseErr    error
	RegisterErr error

	GetSaltRet []byte
	GetSaltErr error

	LoginErr error
	PingErr  error

	// SyncFn answers Sync; nil applies every action and returns no anchors.
	SyncFn func(actions []*anchor.Action, maxVersion int64) (*client.SyncResult, error)

	CreateOrderErr error

	LastRegisterUser     string
	LastRegisterSalt     []byte
	LastRegisterVerifier []byte

	LastGetSaltUser string

	LastLoginUser     string
	LastLoginVerifier []byte

	LoggedOut bool

	SyncCalls      [][]*anchor.Action
	LastMaxVersion int64

	Orders []anchor.Order
}

func (f *fakeClient) Close() error { return f.CloseErr }

func (f *fakeClient) Register(ctx context.Context, username string, salt []byte, verifier []byte) error {
	f.LastRegisterUser = username
	f.LastRegisterSalt = append([]byte(nil), salt...)
	f.LastRegisterVerifier = append([]byte(nil), verifier...)
	return f.RegisterErr
}

func (f *fakeClient) GetSalt(ctx context.Context, username string) ([]byte, error) {
	f.LastGetSaltUser = username
	return append([]byte(nil), f.GetSaltRet...), f.GetSaltErr
}

func (f *fakeClient) Login(ctx context.Context, username string, verifier []byte) error {
	f.LastLoginUser = username
	f.LastLoginVerifier = append([]byte(nil), verifier...)
	return f.LoginErr
}

func (f *fakeClient) Logout() { f.LoggedOut = true }

func (f *fakeClient) Ping(ctx context.Context) error { return f.PingErr }

func (f *fakeClient) Sync(ctx context.Context, actions []*anchor.Action, maxVersion int64) (*client.SyncResult, error) {
	f.SyncCalls = append(f.SyncCalls, actions)
	f.LastMaxVersion = maxVersion
	if f.SyncFn != nil {
		return f.SyncFn(actions, maxVersion)
	}
	res := &client.SyncResult{MaxVersion: maxVersion}
	for _, a := range actions {
		res.Applied = append(res.Applied, a.ID)
	}
	return res, nil
}

func (f *fakeClient) CreateOrder(ctx context.Context, o anchor.Order) (*anchor.Order, error) {
	if f.CreateOrderErr != nil {
		return nil, f.CreateOrderErr
	}
	f.Orders = append(f.Orders, o)
	o.ID = "order-1"
	o.Status = anchor.OrderStatusPending
	return &o, nil
}

// ---- fake reporter ----

type reported struct {
	err error
	ec  ErrorContext
}

type fakeReporter struct {
	reports []reported
}

func (r *fakeReporter) Report(ctx context.Context, err error, ec ErrorContext) {
	r.reports = append(r.reports, reported{err: err, ec: ec})
}
