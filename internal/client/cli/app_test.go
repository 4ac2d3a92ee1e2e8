package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmitrijs2005/anchor/internal/anchor"
	"github.com/dmitrijs2005/anchor/internal/client/client"
	"github.com/dmitrijs2005/anchor/internal/client/config"
	"github.com/dmitrijs2005/anchor/internal/client/repositories/repomanager"
	"github.com/dmitrijs2005/anchor/internal/client/repositories/sqlitetest"
	"github.com/dmitrijs2005/anchor/internal/client/services"
	"github.com/dmitrijs2005/anchor/internal/client/tui"
	"github.com/dmitrijs2005/anchor/internal/common"
	"github.com/dmitrijs2005/anchor/internal/logging"
	"github.com/dmitrijs2005/anchor/internal/mockai"
	"github.com/dmitrijs2005/anchor/internal/sequencer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient is an in-memory server: it accepts every action.
type fakeClient struct {
	pingErr  error
	loginErr error

	salt      []byte
	syncCalls int
	orders    []anchor.Order
}

func (f *fakeClient) Close() error { return nil }
func (f *fakeClient) Logout()      {}

func (f *fakeClient) Register(ctx context.Context, username string, salt []byte, verifier []byte) error {
	f.salt = append([]byte(nil), salt...)
	return nil
}

func (f *fakeClient) GetSalt(ctx context.Context, username string) ([]byte, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return []byte("salt"), nil
}

func (f *fakeClient) Login(ctx context.Context, username string, verifier []byte) error {
	return f.loginErr
}

func (f *fakeClient) Ping(ctx context.Context) error { return f.pingErr }

func (f *fakeClient) Sync(ctx context.Context, actions []*anchor.Action, maxVersion int64) (*client.SyncResult, error) {
	f.syncCalls++
	if f.pingErr != nil {
		return nil, f.pingErr
	}
	res := &client.SyncResult{}
	for _, a := range actions {
		res.Applied = append(res.Applied, a.ID)
	}
	return res, nil
}

func (f *fakeClient) CreateOrder(ctx context.Context, o anchor.Order) (*anchor.Order, error) {
	f.orders = append(f.orders, o)
	o.ID = "ord-1"
	o.Status = anchor.OrderStatusPending
	return &o, nil
}

type testApp struct {
	*App
	client *fakeClient
	out    *bytes.Buffer
	m      repomanager.RepositoryManager
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	db := sqlitetest.Open(t)
	m := repomanager.NewSQLiteRepositoryManager()
	fc := &fakeClient{}
	a := newApp(&config.Config{}, logging.Nop(), db, m, fc, mockai.New(mockai.WithDelay(0)))
	out := &bytes.Buffer{}
	a.out = out
	a.reader = rdr("")
	return &testApp{App: a, client: fc, out: out, m: m}
}

func (ta *testApp) input(lines ...string) {
	ta.reader = rdr(strings.Join(lines, "\n") + "\n")
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	orig := getPassword
	getPassword = func(string, io.Writer) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { getPassword = orig })
}

func stubOnboarding(t *testing.T, done bool) *int {
	t.Helper()
	calls := 0
	orig := runOnboarding
	runOnboarding = func(seq *sequencer.Sequencer) (bool, error) {
		calls++
		if !done {
			return false, nil
		}
		for !seq.Completed() {
			if _, err := seq.Continue(); err != nil {
				return false, err
			}
		}
		return true, nil
	}
	t.Cleanup(func() { runOnboarding = orig })
	return &calls
}

// stubRitual skips the countdown, records and waits for the push.
func stubRitual(t *testing.T) {
	t.Helper()
	orig := playRitual
	playRitual = func(ctx context.Context, a *anchor.Anchor, sess services.Session, record tui.RecordFunc, push tui.PushFunc) (ritualResult, error) {
		out, err := record(ctx)
		if err != nil {
			return ritualResult{}, err
		}
		out.Toast = push(ctx, out)
		out.Synced = out.Toast == ""
		return ritualResult{outcome: out}, nil
	}
	t.Cleanup(func() { playRitual = orig })
}

func (ta *testApp) login(t *testing.T) {
	t.Helper()
	stubPassword(t, "password1")
	stubOnboarding(t, true)
	ta.input("ann", "")
	require.NoError(t, ta.Login(context.Background()))
}

func (ta *testApp) seed(t *testing.T, a *anchor.Anchor) {
	t.Helper()
	a.Category = anchor.CategoryCareer
	if a.IntentionText == "" {
		a.IntentionText = "I am confident"
	}
	require.NoError(t, ta.m.Anchors(ta.db).Upsert(context.Background(), a))
}

func TestSetMode_ChangesOnce(t *testing.T) {
	ta := newTestApp(t)

	assert.True(t, ta.setMode(ModeOnline))
	assert.False(t, ta.setMode(ModeOnline))
	assert.Equal(t, ModeOnline, ta.Mode())
	assert.Equal(t, "(online)", ta.getStatus())

	ta.setUser("ann", true)
	assert.Equal(t, "(ann online)", ta.getStatus())
}

func TestCheckOnline_FlushesOnReconnect(t *testing.T) {
	ta := newTestApp(t)
	ctx := context.Background()
	ta.setUser("ann", true)

	ta.client.pingErr = client.ErrUnavailable
	ta.setMode(ModeOnline)
	ta.checkOnline(ctx)
	assert.Equal(t, ModeOffline, ta.Mode())
	assert.Equal(t, 0, ta.client.syncCalls)

	ta.client.pingErr = nil
	ta.checkOnline(ctx)
	assert.Equal(t, ModeOnline, ta.Mode())
	assert.Equal(t, 1, ta.client.syncCalls)

	// staying online does not sync again
	ta.checkOnline(ctx)
	assert.Equal(t, 1, ta.client.syncCalls)
}

func TestRegister_PasswordMismatch(t *testing.T) {
	ta := newTestApp(t)
	orig := getPassword
	answers := []string{"password1", "password2"}
	getPassword = func(string, io.Writer) ([]byte, error) {
		pw := answers[0]
		answers = answers[1:]
		return []byte(pw), nil
	}
	t.Cleanup(func() { getPassword = orig })

	ta.input("ann")
	err := ta.Register(context.Background())
	require.ErrorIs(t, err, common.ErrorValidation)
	assert.Nil(t, ta.client.salt)
}

func TestRegister_Success(t *testing.T) {
	ta := newTestApp(t)
	stubPassword(t, "password1")

	ta.input("ann")
	require.NoError(t, ta.Register(context.Background()))
	assert.Len(t, ta.client.salt, 32)
	assert.Contains(t, ta.out.String(), "Account created")
}

func TestLogin_OnlineRunsOnboarding(t *testing.T) {
	ta := newTestApp(t)
	ctx := context.Background()
	stubPassword(t, "password1")
	calls := stubOnboarding(t, true)

	ta.input("ann", "2")
	require.NoError(t, ta.Login(ctx))

	assert.True(t, ta.isLoggedIn())
	assert.Equal(t, ModeOnline, ta.Mode())
	assert.Equal(t, 1, ta.client.syncCalls)
	assert.Equal(t, 1, *calls)

	flags, err := ta.onboarding.Flags(ctx)
	require.NoError(t, err)
	assert.True(t, flags.OnboardingComplete)
	assert.Equal(t, anchor.SegmentPractitioner, flags.Segment)

	// onboarding is shown only once
	ta.input("ann")
	require.NoError(t, ta.Login(ctx))
	assert.Equal(t, 1, *calls)
}

func TestLogin_OfflineFallback(t *testing.T) {
	ta := newTestApp(t)
	ctx := context.Background()
	ta.login(t)

	ta.client.loginErr = client.ErrUnavailable
	ta.input("ann")
	require.NoError(t, ta.Login(ctx))
	assert.Equal(t, ModeOffline, ta.Mode())
	assert.Contains(t, ta.out.String(), "Server unavailable")

	stubPassword(t, "wrong-password")
	ta.input("ann")
	err := ta.Login(ctx)
	require.ErrorIs(t, err, client.ErrUnauthorized)
	assert.Equal(t, ModeDisabled, ta.Mode())
}

func TestLogin_Rejected(t *testing.T) {
	ta := newTestApp(t)
	stubPassword(t, "password1")
	ta.client.loginErr = client.ErrUnauthorized

	ta.input("ann")
	err := ta.Login(context.Background())
	require.ErrorIs(t, err, client.ErrUnauthorized)
	assert.False(t, ta.isLoggedIn())
}

func TestCreate_SavesAnchor(t *testing.T) {
	ta := newTestApp(t)
	ctx := context.Background()

	ta.input(
		"ab",             // too short, asked again
		"I am confident", // intention
		"1",              // career
		"",               // no trace
		"",               // no style
		"y",              // save
	)
	require.NoError(t, ta.Create(ctx))

	list, err := ta.vault.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "I am confident", list[0].IntentionText)
	assert.Equal(t, anchor.CategoryCareer, list[0].Category)
	assert.Contains(t, ta.out.String(), "Saved "+shortID(list[0].ID))

	n, err := ta.syncer.Pending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "offline: the create waits in the queue")
}

func TestCreate_WithTraceAndStyle(t *testing.T) {
	ta := newTestApp(t)
	ctx := context.Background()
	ta.setMode(ModeOnline)

	trace := filepath.Join(t.TempDir(), "trace.svg")
	require.NoError(t, os.WriteFile(trace, []byte("<svg>trace</svg>"), 0o600))

	ta.input("I am calm", "6", "Spirit", trace, "1", "1", "y")
	require.NoError(t, ta.Create(ctx))

	list, err := ta.vault.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	a := list[0]
	assert.Equal(t, anchor.Category("Spirit"), a.Category)
	assert.Equal(t, "<svg>trace</svg>", a.DisplaySigil())
	require.NotNil(t, a.EnhancedImageURL)
	assert.True(t, strings.HasPrefix(*a.EnhancedImageURL, "data:image/svg+xml;base64,"))

	assert.Equal(t, 1, ta.client.syncCalls)
	n, err := ta.syncer.Pending(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCreate_Cancelled(t *testing.T) {
	ta := newTestApp(t)
	ta.input("I am calm", "1", "", "", "n")
	require.NoError(t, ta.Create(context.Background()))
	assert.Contains(t, ta.out.String(), "Cancelled")

	list, err := ta.vault.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestResolve(t *testing.T) {
	ta := newTestApp(t)
	ctx := context.Background()
	ta.seed(t, &anchor.Anchor{ID: "abc-1"})
	ta.seed(t, &anchor.Anchor{ID: "abc-2"})

	a, err := ta.resolve(ctx, "abc-2")
	require.NoError(t, err)
	assert.Equal(t, "abc-2", a.ID)

	_, err = ta.resolve(ctx, "abc")
	require.ErrorIs(t, err, common.ErrorValidation)

	_, err = ta.resolve(ctx, "zzz")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestCharge_RecordsLocallyWhenOffline(t *testing.T) {
	ta := newTestApp(t)
	ctx := context.Background()
	stubRitual(t)
	ta.seed(t, &anchor.Anchor{ID: "a1"})
	ta.client.pingErr = client.ErrUnavailable

	require.NoError(t, ta.Charge(ctx, "a1", "quick"))

	assert.Contains(t, ta.out.String(), services.ToastChargeFailed)
	a, err := ta.vault.Get(ctx, "a1")
	require.NoError(t, err)
	assert.True(t, a.IsCharged)

	require.ErrorIs(t, ta.Charge(ctx, "a1", "slow"), common.ErrorValidation)
}

func TestActivateAndContinue(t *testing.T) {
	ta := newTestApp(t)
	ctx := context.Background()
	stubRitual(t)
	ta.seed(t, &anchor.Anchor{ID: "a1"})

	require.NoError(t, ta.Continue(ctx))
	assert.Contains(t, ta.out.String(), "Nothing to continue.")

	require.NoError(t, ta.Activate(ctx, "a1"))
	require.NoError(t, ta.Continue(ctx))

	a, err := ta.vault.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, 2, a.ActivationCount)
	assert.Contains(t, ta.out.String(), "activated 2 times")
}

func TestCharge_ScreenLeftBeforePush(t *testing.T) {
	ta := newTestApp(t)
	ctx := context.Background()
	ta.seed(t, &anchor.Anchor{ID: "a1", IntentionText: "I am calm"})

	orig := playRitual
	playRitual = func(ctx context.Context, _ *anchor.Anchor, _ services.Session, record tui.RecordFunc, _ tui.PushFunc) (ritualResult, error) {
		out, err := record(ctx)
		return ritualResult{outcome: out, pending: true}, err
	}
	t.Cleanup(func() { playRitual = orig })

	require.NoError(t, ta.Charge(ctx, "a1", "quick"))
	assert.Contains(t, ta.out.String(), "Syncing in the background")
	assert.Contains(t, ta.out.String(), `"I am calm" is charged.`)
	assert.NotContains(t, ta.out.String(), "nothing was recorded")

	a, err := ta.vault.Get(ctx, "a1")
	require.NoError(t, err)
	assert.True(t, a.IsCharged)
}

func TestCharge_Stopped(t *testing.T) {
	ta := newTestApp(t)
	ctx := context.Background()
	ta.seed(t, &anchor.Anchor{ID: "a1"})

	orig := playRitual
	playRitual = func(context.Context, *anchor.Anchor, services.Session, tui.RecordFunc, tui.PushFunc) (ritualResult, error) {
		return ritualResult{cancelled: true}, nil
	}
	t.Cleanup(func() { playRitual = orig })

	require.NoError(t, ta.Charge(ctx, "a1", "deep"))
	assert.Contains(t, ta.out.String(), "nothing was recorded")

	a, err := ta.vault.Get(ctx, "a1")
	require.NoError(t, err)
	assert.False(t, a.IsCharged)
}

func TestBurn(t *testing.T) {
	ta := newTestApp(t)
	ctx := context.Background()
	ta.seed(t, &anchor.Anchor{ID: "a1"})

	ta.input("n")
	require.NoError(t, ta.Burn(ctx, "a1"))
	_, err := ta.vault.Get(ctx, "a1")
	require.NoError(t, err)

	ta.input("y")
	require.NoError(t, ta.Burn(ctx, "a1"))
	_, err = ta.vault.Get(ctx, "a1")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestVaultShowStatus(t *testing.T) {
	ta := newTestApp(t)
	ctx := context.Background()

	require.NoError(t, ta.Vault(ctx))
	assert.Contains(t, ta.out.String(), "Your vault is empty")

	ta.seed(t, &anchor.Anchor{ID: "a1234567890", IntentionText: "I sleep well"})
	require.NoError(t, ta.Vault(ctx))
	assert.Contains(t, ta.out.String(), "a1234567")
	assert.Contains(t, ta.out.String(), "I sleep well")

	require.NoError(t, ta.Show(ctx, "a12"))
	assert.Contains(t, ta.out.String(), "Career")

	require.NoError(t, ta.Status(ctx))
	assert.Contains(t, ta.out.String(), "Mode:        unknown")
	assert.Contains(t, ta.out.String(), "Pending:     0")
}

func TestExport(t *testing.T) {
	ta := newTestApp(t)
	ta.seed(t, &anchor.Anchor{ID: "a1", BaseSigilSVG: "<svg>base</svg>"})

	dir := t.TempDir()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })

	require.NoError(t, ta.Export(context.Background(), "a1"))
	got, err := os.ReadFile(filepath.Join(dir, exportDir, "a1.svg"))
	require.NoError(t, err)
	assert.Equal(t, "<svg>base</svg>", string(got))
}

func TestOrder(t *testing.T) {
	ta := newTestApp(t)
	ta.seed(t, &anchor.Anchor{ID: "a1"})

	ta.input("2", "A3", "Ann Lee", "1 Main St", "", "Riga", "LV-1010", "LV", "2")
	require.NoError(t, ta.Order(context.Background(), "a1"))

	require.Len(t, ta.client.orders, 1)
	o := ta.client.orders[0]
	assert.Equal(t, anchor.ProductPoster, o.Product)
	assert.Equal(t, 2, o.Quantity)
	assert.Equal(t, "Riga", o.Shipping.City)
	assert.Contains(t, ta.out.String(), "Order ord-1 is pending.")
}

func TestLogout_ConfirmsPending(t *testing.T) {
	ta := newTestApp(t)
	ctx := context.Background()
	ta.login(t)
	ta.client.pingErr = errors.New("down")

	ta.input("I am calm", "1", "", "", "y")
	require.NoError(t, ta.Create(ctx))

	ta.input("n")
	require.NoError(t, ta.Logout(ctx))
	assert.True(t, ta.isLoggedIn())

	ta.input("y")
	require.NoError(t, ta.Logout(ctx))
	assert.False(t, ta.isLoggedIn())

	list, err := ta.vault.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
