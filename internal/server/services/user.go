// Package services contains server-side business logic. This file implements
// UserService, which handles login, token refresh and resolving bearer
// tokens to users.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/penguinmail/penguinmail/internal/common"
	"github.com/penguinmail/penguinmail/internal/server/auth"
	"github.com/penguinmail/penguinmail/internal/server/config"
	"github.com/penguinmail/penguinmail/internal/server/models"
	"github.com/penguinmail/penguinmail/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a long-lived refresh
// token. ExpiresIn is the access token ttl in seconds.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// UserService provides authentication-related operations:
// - Login: verify credentials and mint tokens
// - Refresh: mint a new access token off a refresh token
// - Authenticate: resolve an access token to its user
type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                           db,
		repomanager:                  m,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

// Login verifies the email/password pair and, on success, returns a new
// TokenPair. Unknown email and wrong password are indistinguishable to the
// caller.
func (s *UserService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, common.ErrorInternal
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, common.ErrInvalidCredentials
	}

	access, err := auth.GenerateToken(user.ID, auth.TokenTypeAccess, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := auth.GenerateToken(user.ID, auth.TokenTypeRefresh, s.jwtSecret, s.refreshTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.accessTokenValidityDuration.Seconds()),
	}, nil
}

// Refresh validates a refresh token and mints a new access token. The
// refresh token itself is not rotated.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := auth.ParseToken(refreshToken, s.jwtSecret)
	if err != nil {
		return nil, common.ErrInvalidToken
	}
	if claims.TokenType != auth.TokenTypeRefresh {
		return nil, common.ErrWrongTokenType
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByID(ctx, claims.Subject)
	if err != nil {
		return nil, common.ErrInvalidToken
	}

	access, err := auth.GenerateToken(user.ID, auth.TokenTypeAccess, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}

	return &TokenPair{
		AccessToken: access,
		ExpiresIn:   int64(s.accessTokenValidityDuration.Seconds()),
	}, nil
}

// Authenticate resolves a bearer access token to its user. Refresh tokens
// are rejected even when otherwise valid.
func (s *UserService) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	claims, err := auth.ParseToken(accessToken, s.jwtSecret)
	if err != nil {
		return nil, common.ErrorUnauthorized
	}
	if claims.TokenType != auth.TokenTypeAccess {
		return nil, common.ErrorUnauthorized
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByID(ctx, claims.Subject)
	if err != nil {
		return nil, common.ErrorUnauthorized
	}
	return user, nil
}

// EnsureBootstrapUser creates the configured bootstrap user when no account
// with that email exists yet. Used at startup so a fresh deployment has a
// way in.
func (s *UserService) EnsureBootstrapUser(ctx context.Context, username, email, password string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error looking up bootstrap user: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing bootstrap password: %w", err)
	}
	user, err = repo.Create(ctx, &models.User{Username: username, Email: email, PasswordHash: hash})
	if err != nil {
		return nil, fmt.Errorf("error creating bootstrap user: %w", err)
	}
	return user, nil
}
