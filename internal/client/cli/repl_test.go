package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExec struct {
	loggedIn bool
	err      error

	calls []string
}

func (f *fakeExec) record(call string) error {
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeExec) isLoggedIn() bool                         { return f.loggedIn }
func (f *fakeExec) Register(ctx context.Context) error       { return f.record("register") }
func (f *fakeExec) Onboard(ctx context.Context) error        { return f.record("onboard") }
func (f *fakeExec) Create(ctx context.Context) error         { return f.record("create") }
func (f *fakeExec) Vault(ctx context.Context) error          { return f.record("vault") }
func (f *fakeExec) Show(ctx context.Context, r string) error { return f.record("show " + r) }
func (f *fakeExec) Activate(ctx context.Context, r string) error {
	return f.record("activate " + r)
}
func (f *fakeExec) Burn(ctx context.Context, r string) error    { return f.record("burn " + r) }
func (f *fakeExec) Enhance(ctx context.Context, r string) error { return f.record("enhance " + r) }
func (f *fakeExec) Export(ctx context.Context, r string) error  { return f.record("export " + r) }
func (f *fakeExec) Order(ctx context.Context, r string) error   { return f.record("order " + r) }
func (f *fakeExec) Sync(ctx context.Context) error              { return f.record("sync") }
func (f *fakeExec) Status(ctx context.Context) error            { return f.record("status") }
func (f *fakeExec) Continue(ctx context.Context) error          { return f.record("continue") }

func (f *fakeExec) Logout(ctx context.Context) error {
	f.loggedIn = false
	return f.record("logout")
}

func (f *fakeExec) Login(ctx context.Context) error {
	f.loggedIn = true
	return f.record("login")
}

func (f *fakeExec) Charge(ctx context.Context, r, mode string) error {
	return f.record(strings.TrimSpace("charge " + r + " " + mode))
}

func runLines(exec execIface, lines ...string) string {
	var out bytes.Buffer
	sc := bufio.NewScanner(strings.NewReader(strings.Join(lines, "\n")))
	runREPL(context.Background(), exec, func() string { return "(test)" }, sc, &out)
	return out.String()
}

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	exec := &fakeExec{}

	out := runLines(exec,
		"help",
		"create",
		"login",
		"help",
		"create",
		"vault",
		"show ab12",
		"charge ab12",
		"charge ab12 deep",
		"activate ab12",
		"continue",
		"enhance ab12",
		"export ab12",
		"order ab12",
		"burn ab12",
		"sync",
		"status",
		"onboard",
		"foobar",
		"logout",
		"exit",
		"vault",
	)

	assert.Equal(t, []string{
		"login", "create", "vault", "show ab12", "charge ab12", "charge ab12 deep",
		"activate ab12", "continue", "enhance ab12", "export ab12", "order ab12",
		"burn ab12", "sync", "status", "onboard", "logout",
	}, exec.calls)

	assert.Contains(t, out, helpLoggedOut)
	assert.Contains(t, out, helpLoggedIn)
	assert.Contains(t, out, "Please log in first.")
	assert.Contains(t, out, "Unknown command: foobar")
	assert.Contains(t, out, "anchor (test)> ")
	assert.True(t, strings.HasSuffix(out, "Bye!\n"), "nothing runs after exit")
}

func TestRunREPL_UsageAndErrors(t *testing.T) {
	exec := &fakeExec{loggedIn: true, err: errors.New("boom")}

	out := runLines(exec, "show", "charge", "", "sync")

	assert.Equal(t, []string{"sync"}, exec.calls)
	assert.Contains(t, out, "Usage: show <id>")
	assert.Contains(t, out, "Usage: charge <id>")
	assert.Contains(t, out, "Error: boom")
}

func TestRunREPL_EOF(t *testing.T) {
	exec := &fakeExec{}
	out := runLines(exec)
	require.Equal(t, "anchor (test)> ", out)
}
