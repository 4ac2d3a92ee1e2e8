// Package services contains the application services of the Anchor terminal
// client. They own the local SQLite store and decide when to talk to the
// server; the CLI and TUI only call them.
package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/anchor/internal/client/client"
	"github.com/dmitrijs2005/anchor/internal/client/repositories/repomanager"
	"github.com/dmitrijs2005/anchor/internal/common"
	"github.com/dmitrijs2005/anchor/internal/cryptox"
	"github.com/dmitrijs2005/anchor/internal/dbx"
)

// AuthService defines authentication operations for the CLI.
//
//   - OnlineLogin authenticates against the server and caches what offline
//     login needs.
//   - OfflineLogin checks the password against that cache.
//   - Logout drops the session and every locally cached record.
type AuthService interface {
	OfflineLogin(ctx context.Context, username string, password []byte) error
	OnlineLogin(ctx context.Context, username string, password []byte) error
	Register(ctx context.Context, username string, password []byte) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
	Logout(ctx context.Context) error
}

type authService struct {
	client      client.Client
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewAuthService(c client.Client, db *sql.DB, m repomanager.RepositoryManager) AuthService {
	return &authService{client: c, db: db, repomanager: m}
}

// OfflineLogin fails with client.ErrLocalDataNotAvailable when nobody has
// logged in online on this device yet, and with client.ErrUnauthorized on a
// wrong username or password.
func (a *authService) OfflineLogin(ctx context.Context, username string, password []byte) error {
	repo := a.repomanager.Metadata(a.db)

	savedUsername, err := repo.Get(ctx, keyUsername)
	if err != nil {
		return err
	}
	if savedUsername == nil {
		return client.ErrLocalDataNotAvailable
	}
	if string(savedUsername) != username {
		return client.ErrUnauthorized
	}

	salt, err := repo.Get(ctx, keySalt)
	if err != nil {
		return err
	}
	verifier, err := repo.Get(ctx, keyVerifier)
	if err != nil {
		return err
	}
	if salt == nil || verifier == nil {
		return client.ErrLocalDataNotAvailable
	}

	key := cryptox.DeriveMasterKey(password, salt)
	defer common.WipeByteArray(key)

	if subtle.ConstantTimeCompare(verifier, cryptox.MakeVerifier(key)) == 0 {
		return client.ErrUnauthorized
	}
	return nil
}

func (a *authService) OnlineLogin(ctx context.Context, username string, password []byte) error {
	salt, err := a.client.GetSalt(ctx, username)
	if err != nil {
		return fmt.Errorf("get salt error: %w", err)
	}

	key := cryptox.DeriveMasterKey(password, salt)
	defer common.WipeByteArray(key)
	verifier := cryptox.MakeVerifier(key)

	if err := a.client.Login(ctx, username, verifier); err != nil {
		return fmt.Errorf("login error: %w", err)
	}

	if err := a.saveOfflineData(ctx, username, salt, verifier); err != nil {
		return fmt.Errorf("offline data saving error: %w", err)
	}
	return nil
}

// saveOfflineData caches the credentials for offline login. A different
// user logging in on the same device starts from an empty store.
func (a *authService) saveOfflineData(ctx context.Context, username string, salt []byte, verifier []byte) error {
	return dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := a.repomanager.Metadata(tx)

		prev, err := repo.Get(ctx, keyUsername)
		if err != nil {
			return err
		}
		if prev != nil && string(prev) != username {
			if err := a.clearLocal(ctx, tx); err != nil {
				return err
			}
		}

		if err := repo.Set(ctx, keyUsername, []byte(username)); err != nil {
			return err
		}
		if err := repo.Set(ctx, keySalt, salt); err != nil {
			return err
		}
		return repo.Set(ctx, keyVerifier, verifier)
	})
}

func (a *authService) clearLocal(ctx context.Context, tx dbx.DBTX) error {
	if err := a.repomanager.Actions(tx).Clear(ctx); err != nil {
		return err
	}
	if err := a.repomanager.Sessions(tx).Clear(ctx); err != nil {
		return err
	}
	if err := a.repomanager.Anchors(tx).Clear(ctx); err != nil {
		return err
	}
	return a.repomanager.Metadata(tx).Clear(ctx)
}

// Register creates the account on the server. The password never leaves the
// device; only a random salt and the verifier derived from it are sent.
func (a *authService) Register(ctx context.Context, username string, password []byte) error {
	salt := common.GenerateRandByteArray(32)
	key := cryptox.DeriveMasterKey(password, salt)
	defer common.WipeByteArray(key)

	return a.client.Register(ctx, username, salt, cryptox.MakeVerifier(key))
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}

// Logout forgets the session tokens and wipes the local store, including
// actions that were never synced.
func (a *authService) Logout(ctx context.Context) error {
	a.client.Logout()
	return dbx.WithTx(ctx, a.db, nil, a.clearLocal)
}
