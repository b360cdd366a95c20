// Package services contains server-side business logic. This file implements
// AuthService: registration, login, refresh-token rotation, logout and
// access-token verification.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/hrscreen/internal/common"
	"github.com/dmitrijs2005/hrscreen/internal/cryptox"
	"github.com/dmitrijs2005/hrscreen/internal/dbx"
	"github.com/dmitrijs2005/hrscreen/internal/logging"
	"github.com/dmitrijs2005/hrscreen/internal/server/auth"
	"github.com/dmitrijs2005/hrscreen/internal/server/models"
	"github.com/dmitrijs2005/hrscreen/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthResult is returned by the operations that sign a user in.
type AuthResult struct {
	User   models.UserView `json:"user"`
	Tokens TokenPair       `json:"tokens"`
}

// RegisterInput carries the fields needed to create a user. Role may be empty.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	CompanyID string
	Role      string
}

// AuthService holds no per-request state; it is safe for concurrent use.
type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	codec       *auth.TokenCodec
	hasher      *cryptox.PasswordHasher
	log         logging.Logger
	now         func() time.Time

	// dummyHash is compared against when the email is unknown so that
	// unknown-user and wrong-password logins cost the same.
	dummyHash string
}

// NewAuthService constructs an AuthService.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, codec *auth.TokenCodec,
	hasher *cryptox.PasswordHasher, log logging.Logger) (*AuthService, error) {
	dummy, err := hasher.Hash("hrscreen-dummy-password")
	if err != nil {
		return nil, err
	}
	return &AuthService{
		db:          db,
		repomanager: m,
		codec:       codec,
		hasher:      hasher,
		log:         log.With("module", "auth"),
		now:         time.Now,
		dummyHash:   dummy,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an active user and signs them in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	role, err := models.ParseRole(in.Role)
	if err != nil {
		return nil, err
	}
	if len(in.Password) > cryptox.MaxPasswordBytes {
		return nil, common.ErrPasswordTooLong
	}
	email := normalizeEmail(in.Email)

	_, err = s.repomanager.Users(s.db).GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, common.ErrUserAlreadyExists
	case !errors.Is(err, common.ErrorNotFound):
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	if _, err := s.repomanager.Companies(s.db).GetByID(ctx, in.CompanyID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrCompanyNotFound
		}
		return nil, fmt.Errorf("error searching company: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	var res *AuthResult
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		user, err := s.repomanager.Users(tx).Create(ctx, &models.User{
			Email:        email,
			PasswordHash: hash,
			FirstName:    in.FirstName,
			LastName:     in.LastName,
			Role:         role,
			CompanyID:    in.CompanyID,
			IsActive:     true,
		})
		if err != nil {
			if errors.Is(err, common.ErrAlreadyExists) {
				return common.ErrUserAlreadyExists
			}
			return fmt.Errorf("error creating user: %w", err)
		}

		res, err = s.generateTokens(ctx, tx, user.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "user registered", "user_id", res.User.ID, "company_id", res.User.CompanyID)
	return res, nil
}

// Login verifies credentials, records the login time and issues tokens.
// Unknown email and wrong password both yield common.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.Compare(s.dummyHash, password)
			s.log.Warn(ctx, "login failed", "reason", "unknown email")
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	if !s.hasher.Compare(user.PasswordHash, password) {
		s.log.Warn(ctx, "login failed", "reason", "wrong password", "user_id", user.ID)
		return nil, common.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, common.ErrAccountDeactivated
	}
	if user.Company == nil || !user.Company.IsActive {
		return nil, common.ErrCompanyDeactivated
	}

	var res *AuthResult
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Users(tx).UpdateLastLogin(ctx, user.ID, s.now()); err != nil {
			return fmt.Errorf("error updating last login: %w", err)
		}
		var err error
		res, err = s.generateTokens(ctx, tx, user.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}

// RefreshToken consumes a refresh token and issues a new pair. Each token
// can be exchanged once; every failure yields common.ErrInvalidRefreshToken.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.codec.ParseRefreshToken(refreshToken)
	if err != nil {
		s.log.Warn(ctx, "refresh rejected", "reason", err.Error())
		return nil, common.ErrInvalidRefreshToken
	}

	token, err := s.repomanager.RefreshTokens(s.db).Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.log.Warn(ctx, "refresh rejected", "reason", "not stored", "user_id", claims.UserID)
			return nil, common.ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}
	if token.IsExpired(s.now()) || token.UserID != claims.UserID {
		s.log.Warn(ctx, "refresh rejected", "reason", "expired or mismatched record", "user_id", claims.UserID)
		return nil, common.ErrInvalidRefreshToken
	}

	var res *AuthResult
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		user, err := s.repomanager.Users(tx).GetByID(ctx, token.UserID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrInvalidRefreshToken
			}
			return fmt.Errorf("error searching user: %w", err)
		}
		if !user.IsActive || user.Company == nil || !user.Company.IsActive {
			s.log.Warn(ctx, "refresh rejected", "reason", "user or company deactivated", "user_id", user.ID)
			return common.ErrInvalidRefreshToken
		}

		n, err := s.repomanager.RefreshTokens(tx).DeleteByID(ctx, token.ID)
		if err != nil {
			return fmt.Errorf("error deleting refresh token: %w", err)
		}
		if n == 0 {
			s.log.Warn(ctx, "refresh rejected", "reason", "already consumed", "user_id", user.ID)
			return common.ErrInvalidRefreshToken
		}

		res, err = s.generateTokens(ctx, tx, user.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}

// Logout revokes the given refresh token. Unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if _, err := s.repomanager.RefreshTokens(s.db).DeleteByToken(ctx, refreshToken); err != nil {
		return fmt.Errorf("error deleting refresh token: %w", err)
	}
	return nil
}

// LogoutAll revokes every refresh token of the user.
func (s *AuthService) LogoutAll(ctx context.Context, userID string) error {
	n, err := s.repomanager.RefreshTokens(s.db).DeleteByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("error deleting refresh tokens: %w", err)
	}
	s.log.Info(ctx, "user logged out everywhere", "user_id", userID, "revoked", n)
	return nil
}

// VerifyToken validates an access token and checks that its user and company
// are still active. Every failure yields common.ErrInvalidToken.
func (s *AuthService) VerifyToken(ctx context.Context, accessToken string) (*auth.AccessClaims, error) {
	claims, err := s.codec.ParseAccessToken(accessToken)
	if err != nil {
		s.log.Debug(ctx, "access token rejected", "reason", err.Error())
		return nil, common.ErrInvalidToken
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.log.Warn(ctx, "access token rejected", "reason", "user not found", "user_id", claims.UserID)
			return nil, common.ErrInvalidToken
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}
	if !user.IsActive || user.Company == nil || !user.Company.IsActive {
		s.log.Warn(ctx, "access token rejected", "reason", "user or company deactivated", "user_id", user.ID)
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

// generateTokens issues an access/refresh pair for userID and persists the
// refresh token through db.
func (s *AuthService) generateTokens(ctx context.Context, db dbx.DBTX, userID string) (*AuthResult, error) {
	user, err := s.repomanager.Users(db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.log.Error(ctx, "tokens requested for missing user", "user_id", userID)
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	now := s.now()

	access, _, err := s.codec.IssueAccessToken(auth.Subject{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		CompanyID: user.CompanyID,
	}, now)
	if err != nil {
		return nil, fmt.Errorf("error issuing access token: %w", err)
	}

	refresh, expires, err := s.codec.IssueRefreshToken(user.ID, now)
	if err != nil {
		return nil, fmt.Errorf("error issuing refresh token: %w", err)
	}

	if err := s.repomanager.RefreshTokens(db).Create(ctx, user.ID, refresh, expires); err != nil {
		return nil, fmt.Errorf("error storing refresh token: %w", err)
	}

	return &AuthResult{
		User:   models.NewUserView(user),
		Tokens: TokenPair{AccessToken: access, RefreshToken: refresh},
	}, nil
}
