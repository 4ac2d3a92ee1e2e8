package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/anchor/internal/anchor"
	"github.com/dmitrijs2005/anchor/internal/client/client"
	"github.com/dmitrijs2005/anchor/internal/cryptox"
	"github.com/stretchr/testify/require"
)

func seedCredentials(t *testing.T, svc *authService, username, password string) {
	t.Helper()
	salt := []byte("salty")
	mk := cryptox.DeriveMasterKey([]byte(password), salt)
	setMeta(t, svc.db, svc.repomanager, keyUsername, []byte(username))
	setMeta(t, svc.db, svc.repomanager, keySalt, salt)
	setMeta(t, svc.db, svc.repomanager, keyVerifier, cryptox.MakeVerifier(mk))
}

func newAuth(t *testing.T, fc *fakeClient) *authService {
	t.Helper()
	db, m := setupStore(t)
	return NewAuthService(fc, db, m).(*authService)
}

func TestOfflineLogin_NoLocalData(t *testing.T) {
	svc := newAuth(t, &fakeClient{})

	err := svc.OfflineLogin(context.Background(), "user@example.com", []byte("pass"))
	require.ErrorIs(t, err, client.ErrLocalDataNotAvailable)
}

func TestOfflineLogin_UsernameMismatch_Unauthorized(t *testing.T) {
	svc := newAuth(t, &fakeClient{})
	seedCredentials(t, svc, "other", "p")

	err := svc.OfflineLogin(context.Background(), "user", []byte("p"))
	require.ErrorIs(t, err, client.ErrUnauthorized)
}

func TestOfflineLogin_WrongPassword_Unauthorized(t *testing.T) {
	svc := newAuth(t, &fakeClient{})
	seedCredentials(t, svc, "user", "correct")

	err := svc.OfflineLogin(context.Background(), "user", []byte("wrong"))
	require.ErrorIs(t, err, client.ErrUnauthorized)
}

func TestOfflineLogin_Success(t *testing.T) {
	svc := newAuth(t, &fakeClient{})
	seedCredentials(t, svc, "user", "pass")

	require.NoError(t, svc.OfflineLogin(context.Background(), "user", []byte("pass")))
}

func TestOnlineLogin_GetSaltError_Wrapped(t *testing.T) {
	svc := newAuth(t, &fakeClient{GetSaltErr: errors.New("network down")})

	err := svc.OnlineLogin(context.Background(), "u", []byte("p"))
	require.Error(t, err)
	require.True(t, strings.HasPrefix(err.Error(), "get salt error:"))
}

func TestOnlineLogin_LoginError_Wrapped(t *testing.T) {
	fc := &fakeClient{GetSaltRet: []byte("s"), LoginErr: client.ErrUnauthorized}
	svc := newAuth(t, fc)

	err := svc.OnlineLogin(context.Background(), "u", []byte("p"))
	require.ErrorIs(t, err, client.ErrUnauthorized)
	require.True(t, strings.HasPrefix(err.Error(), "login error:"))
	require.Nil(t, getMeta(t, svc.db, svc.repomanager, keyUsername))
}

func TestOnlineLogin_Success_SavesOfflineData(t *testing.T) {
	fc := &fakeClient{GetSaltRet: []byte("salt")}
	svc := newAuth(t, fc)

	require.NoError(t, svc.OnlineLogin(context.Background(), "user", []byte("pass")))

	require.Equal(t, []byte("user"), getMeta(t, svc.db, svc.repomanager, keyUsername))
	require.Equal(t, []byte("salt"), getMeta(t, svc.db, svc.repomanager, keySalt))
	saved := getMeta(t, svc.db, svc.repomanager, keyVerifier)
	require.NotEmpty(t, saved)

	require.Equal(t, "user", fc.LastGetSaltUser)
	require.Equal(t, "user", fc.LastLoginUser)
	require.Equal(t, saved, fc.LastLoginVerifier)

	// the cached data is enough to log in without the server
	require.NoError(t, svc.OfflineLogin(context.Background(), "user", []byte("pass")))
}

func TestOnlineLogin_SameUserKeepsLocalData(t *testing.T) {
	fc := &fakeClient{GetSaltRet: []byte("salt")}
	svc := newAuth(t, fc)
	ctx := context.Background()

	require.NoError(t, svc.OnlineLogin(ctx, "user", []byte("pass")))
	seedAnchor(t, svc.db, svc.repomanager, &anchor.Anchor{ID: "a1"})

	require.NoError(t, svc.OnlineLogin(ctx, "user", []byte("pass")))

	list, err := svc.repomanager.Anchors(svc.db).List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestOnlineLogin_OtherUserClearsLocalData(t *testing.T) {
	fc := &fakeClient{GetSaltRet: []byte("salt")}
	svc := newAuth(t, fc)
	ctx := context.Background()

	require.NoError(t, svc.OnlineLogin(ctx, "alice", []byte("pass")))
	seedAnchor(t, svc.db, svc.repomanager, &anchor.Anchor{ID: "a1"})
	setMeta(t, svc.db, svc.repomanager, keySegment, []byte(anchor.SegmentSkeptic))

	require.NoError(t, svc.OnlineLogin(ctx, "bob", []byte("pass")))

	list, err := svc.repomanager.Anchors(svc.db).List(ctx)
	require.NoError(t, err)
	require.Empty(t, list)
	require.Nil(t, getMeta(t, svc.db, svc.repomanager, keySegment))
	require.Equal(t, []byte("bob"), getMeta(t, svc.db, svc.repomanager, keyUsername))
}

func TestRegister_DelegatesToClient(t *testing.T) {
	fc := &fakeClient{}
	svc := newAuth(t, fc)

	require.NoError(t, svc.Register(context.Background(), "u", []byte("p")))

	require.Equal(t, "u", fc.LastRegisterUser)
	require.Len(t, fc.LastRegisterSalt, 32)
	key := cryptox.DeriveMasterKey([]byte("p"), fc.LastRegisterSalt)
	require.Equal(t, cryptox.MakeVerifier(key), fc.LastRegisterVerifier)
}

func TestRegister_ErrorFromClient(t *testing.T) {
	svc := newAuth(t, &fakeClient{RegisterErr: errors.New("dup")})
	require.Error(t, svc.Register(context.Background(), "u", []byte("p")))
}

func TestLogout_ClearsEverything(t *testing.T) {
	fc := &fakeClient{}
	svc := newAuth(t, fc)
	ctx := context.Background()

	seedCredentials(t, svc, "user", "pass")
	seedAnchor(t, svc.db, svc.repomanager, &anchor.Anchor{ID: "a1"})
	require.NoError(t, svc.repomanager.Actions(svc.db).Enqueue(ctx, &anchor.Action{ID: "x", Kind: anchor.ActionBurn, AnchorID: "a1"}))

	require.NoError(t, svc.Logout(ctx))

	require.True(t, fc.LoggedOut)
	require.Nil(t, getMeta(t, svc.db, svc.repomanager, keyUsername))
	require.Empty(t, pendingActions(t, svc.db, svc.repomanager))
	err := svc.OfflineLogin(ctx, "user", []byte("pass"))
	require.ErrorIs(t, err, client.ErrLocalDataNotAvailable)
}

func TestPing_Close_Delegations(t *testing.T) {
	svc := newAuth(t, &fakeClient{})
	require.NoError(t, svc.Ping(context.Background()))
	require.NoError(t, svc.Close(context.Background()))

	svc = newAuth(t, &fakeClient{PingErr: client.ErrUnavailable, CloseErr: errors.New("io")})
	require.ErrorIs(t, svc.Ping(context.Background()), client.ErrUnavailable)
	require.Error(t, svc.Close(context.Background()))
}
