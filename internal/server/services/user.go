// Package services holds the server's business logic. Each service owns a
// *sql.DB and a repomanager.RepositoryManager and opens transactions with
// dbx.WithTx where several writes must land together.
package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/anchor/internal/anchor"
	"github.com/dmitrijs2005/anchor/internal/common"
	"github.com/dmitrijs2005/anchor/internal/cryptox"
	"github.com/dmitrijs2005/anchor/internal/dbx"
	"github.com/dmitrijs2005/anchor/internal/server/auth"
	"github.com/dmitrijs2005/anchor/internal/server/config"
	"github.com/dmitrijs2005/anchor/internal/server/models"
	"github.com/dmitrijs2005/anchor/internal/server/repositories/repomanager"
)

const saltSize = 32

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// UserService registers users and issues tokens. The gRPC client derives the
// verifier itself from the salt; REST callers send the password and the
// service derives the same verifier.
type UserService struct {
	db              *sql.DB
	repomanager     repomanager.RepositoryManager
	jwtSecret       []byte
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
	now             func() time.Time
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:              db,
		repomanager:     m,
		jwtSecret:       []byte(cfg.SecretKey),
		accessTokenTTL:  cfg.AccessTokenTTL,
		refreshTokenTTL: cfg.RefreshTokenTTL,
		now:             time.Now,
	}
}

// Register creates a user with a client-computed salt and verifier.
func (s *UserService) Register(ctx context.Context, username string, salt, verifier []byte) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", common.ErrorValidation)
	}
	if len(salt) == 0 || len(verifier) == 0 {
		return nil, fmt.Errorf("%w: salt and verifier are required", common.ErrorValidation)
	}
	u, err := s.repomanager.Users(s.db).Create(ctx, &models.User{UserName: username, Salt: salt, Verifier: verifier})
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return u, nil
}

// RegisterWithPassword validates the password pair, derives the verifier
// and registers the user, returning a fresh token pair.
func (s *UserService) RegisterWithPassword(ctx context.Context, username, password, confirm string) (*TokenPair, error) {
	if err := anchor.ValidatePassword(password, confirm); err != nil {
		return nil, err
	}
	salt := common.GenerateRandByteArray(saltSize)
	key := cryptox.DeriveMasterKey([]byte(password), salt)
	defer common.WipeByteArray(key)

	u, err := s.Register(ctx, username, salt, cryptox.MakeVerifier(key))
	if err != nil {
		return nil, err
	}
	return s.generateTokenPair(ctx, u.ID, s.db)
}

// LoginWithPassword is Login for callers holding the plain password.
func (s *UserService) LoginWithPassword(ctx context.Context, username, password string) (*TokenPair, error) {
	user, err := s.repomanager.Users(s.db).GetUserByLogin(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	key := cryptox.DeriveMasterKey([]byte(password), user.Salt)
	defer common.WipeByteArray(key)

	if !checkVerifier(user.Verifier, cryptox.MakeVerifier(key)) {
		return nil, common.ErrorUnauthorized
	}
	return s.generateTokenPair(ctx, user.ID, s.db)
}

// GetSalt returns the user's salt, or a random one for unknown users so the
// answer does not reveal whether the account exists.
func (s *UserService) GetSalt(ctx context.Context, username string) ([]byte, error) {
	user, err := s.repomanager.Users(s.db).GetUserByLogin(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.GenerateRandByteArray(saltSize), nil
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return user.Salt, nil
}

// Login checks verifierCandidate against the stored verifier.
func (s *UserService) Login(ctx context.Context, username string, verifierCandidate []byte) (*TokenPair, error) {
	user, err := s.repomanager.Users(s.db).GetUserByLogin(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	if !checkVerifier(user.Verifier, verifierCandidate) {
		return nil, common.ErrorUnauthorized
	}
	return s.generateTokenPair(ctx, user.ID, s.db)
}

// RefreshToken rotates refreshToken inside a transaction.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	token, err := s.repomanager.RefreshTokens(s.db).Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}
	if token.Expires.Before(s.now()) {
		return nil, common.ErrRefreshTokenExpired
	}

	var pair *TokenPair
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.RefreshTokens(tx).Delete(ctx, refreshToken); err != nil {
			return fmt.Errorf("error deleting refresh token: %w", err)
		}
		var genErr error
		pair, genErr = s.generateTokenPair(ctx, token.UserID, tx)
		return genErr
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// PurgeExpiredTokens drops refresh tokens that can no longer be used.
func (s *UserService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	return s.repomanager.RefreshTokens(s.db).DeleteExpired(ctx, s.now())
}

// UserIDFromToken verifies an access token.
func (s *UserService) UserIDFromToken(token string) (string, error) {
	return auth.GetUserIDFromToken(token, s.jwtSecret)
}

func checkVerifier(verifier, candidate []byte) bool {
	return subtle.ConstantTimeCompare(verifier, candidate) == 1
}

func (s *UserService) generateTokenPair(ctx context.Context, userID string, db dbx.DBTX) (*TokenPair, error) {
	access, err := auth.GenerateToken(userID, s.jwtSecret, s.accessTokenTTL)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrorInternal
	}
	if err := s.repomanager.RefreshTokens(db).Create(ctx, userID, refresh, s.refreshTokenTTL); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
