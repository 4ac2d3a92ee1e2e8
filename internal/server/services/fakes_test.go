package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/anchor/internal/anchor"
	"github.com/dmitrijs2005/anchor/internal/common"
	"github.com/dmitrijs2005/anchor/internal/dbx"
	"github.com/dmitrijs2005/anchor/internal/server/models"
	"github.com/dmitrijs2005/anchor/internal/server/repositories/anchors"
	"github.com/dmitrijs2005/anchor/internal/server/repositories/orders"
	"github.com/dmitrijs2005/anchor/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/anchor/internal/server/repositories/rituals"
	"github.com/dmitrijs2005/anchor/internal/server/repositories/syncactions"
	"github.com/dmitrijs2005/anchor/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
)

// newMockDB returns a sqlmock DB that accepts any number of transactions.
// Repositories are faked, so the DB only ever sees BEGIN/COMMIT/ROLLBACK.
func newMockDB(t *testing.T, txs int, rollbacks int) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.MatchExpectationsInOrder(false)
	for i := 0; i < txs; i++ {
		mock.ExpectBegin()
	}
	for i := 0; i < txs-rollbacks; i++ {
		mock.ExpectCommit()
	}
	for i := 0; i < rollbacks; i++ {
		mock.ExpectRollback()
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

type fakeUsers struct {
	mu       sync.Mutex
	byName   map[string]*models.User
	versions map[string]int64
	getErr   error
	nextID   int
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byName: map[string]*models.User{}, versions: map[string]int64{}}
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byName[u.UserName]; ok {
		return nil, common.ErrorAlreadyExists
	}
	f.nextID++
	u.ID = fmt.Sprintf("u%d", f.nextID)
	c := *u
	f.byName[u.UserName] = &c
	return u, nil
}

func (f *fakeUsers) GetUserByLogin(_ context.Context, name string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byName[name]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *u
	return &c, nil
}

func (f *fakeUsers) IncrementCurrentVersion(_ context.Context, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.versions[userID]++
	return f.versions[userID], nil
}

func (f *fakeUsers) CurrentVersion(_ context.Context, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.versions[userID], nil
}

type fakeRefresh struct {
	tokens  map[string]*models.RefreshToken
	findErr error
}

func newFakeRefresh() *fakeRefresh { return &fakeRefresh{tokens: map[string]*models.RefreshToken{}} }

func (f *fakeRefresh) Create(_ context.Context, userID, token string, validity time.Duration) error {
	f.tokens[token] = &models.RefreshToken{UserID: userID, Token: token, Expires: time.Now().Add(validity)}
	return nil
}

func (f *fakeRefresh) Find(_ context.Context, token string) (*models.RefreshToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	t, ok := f.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return t, nil
}

func (f *fakeRefresh) Delete(_ context.Context, token string) error {
	delete(f.tokens, token)
	return nil
}

func (f *fakeRefresh) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for k, t := range f.tokens {
		if t.Expires.Before(now) {
			delete(f.tokens, k)
			n++
		}
	}
	return n, nil
}

type fakeAnchors struct {
	mu   sync.Mutex
	byID map[string]*anchor.Anchor
}

func newFakeAnchors() *fakeAnchors { return &fakeAnchors{byID: map[string]*anchor.Anchor{}} }

func (f *fakeAnchors) CreateOrUpdate(_ context.Context, a *anchor.Anchor) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cur, ok := f.byID[a.ID]; ok && cur.UserID != a.UserID {
		return common.ErrVersionConflict
	}
	c := *a
	f.byID[a.ID] = &c
	return nil
}

func (f *fakeAnchors) GetByID(_ context.Context, userID, id string) (*anchor.Anchor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[id]
	if !ok || a.UserID != userID {
		return nil, fmt.Errorf("%w: anchor %s", common.ErrorNotFound, id)
	}
	c := *a
	return &c, nil
}

func (f *fakeAnchors) List(_ context.Context, userID string) ([]*anchor.Anchor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*anchor.Anchor{}
	for _, a := range f.byID {
		if a.UserID == userID && !a.Deleted {
			c := *a
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeAnchors) SelectUpdated(_ context.Context, userID string, minVersion int64) ([]*anchor.Anchor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*anchor.Anchor{}
	for _, a := range f.byID {
		if a.UserID == userID && a.Version > minVersion {
			c := *a
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

type fakeRituals struct{ events []*models.RitualEvent }

func (f *fakeRituals) Create(_ context.Context, e *models.RitualEvent) error {
	e.ID = fmt.Sprintf("e%d", len(f.events)+1)
	f.events = append(f.events, e)
	return nil
}

func (f *fakeRituals) ListByAnchor(_ context.Context, userID, anchorID string) ([]*models.RitualEvent, error) {
	out := []*models.RitualEvent{}
	for _, e := range f.events {
		if e.UserID == userID && e.AnchorID == anchorID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeOrders struct{ created []*anchor.Order }

func (f *fakeOrders) Create(_ context.Context, o *anchor.Order) error {
	o.ID = fmt.Sprintf("o%d", len(f.created)+1)
	o.CreatedAt = time.Now()
	c := *o
	f.created = append(f.created, &c)
	return nil
}

func (f *fakeOrders) GetByID(_ context.Context, userID, id string) (*anchor.Order, error) {
	for _, o := range f.created {
		if o.ID == id && o.UserID == userID {
			return o, nil
		}
	}
	return nil, common.ErrorNotFound
}

// fakeSyncActions has no transactions; an id recorded by a rolled back
// apply stays recorded.
type fakeSyncActions struct {
	mu   sync.Mutex
	seen map[string]bool
}

func (f *fakeSyncActions) Record(_ context.Context, userID, actionID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := userID + "/" + actionID
	if f.seen[key] {
		return false, nil
	}
	f.seen[key] = true
	return true, nil
}

type fakeRepoManager struct {
	users   *fakeUsers
	refresh *fakeRefresh
	anchors *fakeAnchors
	rituals *fakeRituals
	orders  *fakeOrders
	applied *fakeSyncActions
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		users:   newFakeUsers(),
		refresh: newFakeRefresh(),
		anchors: newFakeAnchors(),
		rituals: &fakeRituals{},
		orders:  &fakeOrders{},
		applied: &fakeSyncActions{seen: map[string]bool{}},
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository                 { return m.users }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return m.refresh }
func (m *fakeRepoManager) Anchors(dbx.DBTX) anchors.Repository             { return m.anchors }
func (m *fakeRepoManager) Rituals(dbx.DBTX) rituals.Repository             { return m.rituals }
func (m *fakeRepoManager) Orders(dbx.DBTX) orders.Repository               { return m.orders }
func (m *fakeRepoManager) SyncActions(dbx.DBTX) syncactions.Repository     { return m.applied }

type publishedEvent struct {
	key     string
	payload map[string]any
}

type fakePublisher struct {
	mu   sync.Mutex
	sent []publishedEvent
	err  error
}

func (p *fakePublisher) PublishJSON(_ context.Context, key string, v any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	m, _ := v.(map[string]any)
	p.sent = append(p.sent, publishedEvent{key: key, payload: m})
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.sent))
	for i, e := range p.sent {
		out[i] = e.key
	}
	return out
}
