// Package auth implements the signed-token primitive: HS256 JWTs with
// embedded expiry, and a codec that issues and verifies the two token kinds
// used by the service (short-lived access tokens and long-lived refresh
// tokens), each under its own secret.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/hrscreen/internal/common"
	"github.com/dmitrijs2005/hrscreen/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessClaims are embedded in access tokens.
type AccessClaims struct {
	UserID    string      `json:"userId"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	CompanyID string      `json:"companyId"`
	jwt.RegisteredClaims
}

// RefreshClaims are embedded in refresh tokens. Only the user id is carried;
// everything else is looked up in the store on refresh.
type RefreshClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// GenerateToken signs claims with secretKey using HS256.
func GenerateToken(claims jwt.Claims, secretKey []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken verifies tokenString against secretKey and decodes it into
// claims. An expired but otherwise valid token yields common.ErrTokenExpired;
// every other failure (malformed, wrong signature, wrong algorithm, missing
// exp) yields common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return common.ErrTokenExpired
		}
		return common.ErrInvalidToken
	}

	if !token.Valid {
		return common.ErrInvalidToken
	}

	return nil
}

// Subject describes the user an access token is issued for.
type Subject struct {
	UserID    string
	Email     string
	Role      models.Role
	CompanyID string
}

// TokenCodec issues and verifies access and refresh tokens.
type TokenCodec struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	newID         func() string
}

// NewTokenCodec builds a codec. The two secrets are expected to differ so a
// leaked refresh secret cannot be used to mint access tokens.
func NewTokenCodec(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenCodec {
	return &TokenCodec{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		newID:         uuid.NewString,
	}
}

func (c *TokenCodec) AccessTTL() time.Duration  { return c.accessTTL }
func (c *TokenCodec) RefreshTTL() time.Duration { return c.refreshTTL }

// registered builds the standard claims. JWT timestamps have one-second
// resolution, so now is truncated first and exp-iat equals ttl exactly.
func (c *TokenCodec) registered(userID string, now time.Time, ttl time.Duration) (jwt.RegisteredClaims, time.Time) {
	issuedAt := now.Truncate(time.Second)
	expiresAt := issuedAt.Add(ttl)
	return jwt.RegisteredClaims{
		ID:        c.newID(),
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}, expiresAt
}

// IssueAccessToken returns a signed access token for sub and its expiry.
func (c *TokenCodec) IssueAccessToken(sub Subject, now time.Time) (string, time.Time, error) {
	rc, expiresAt := c.registered(sub.UserID, now, c.accessTTL)
	token, err := GenerateToken(AccessClaims{
		UserID:           sub.UserID,
		Email:            sub.Email,
		Role:             sub.Role,
		CompanyID:        sub.CompanyID,
		RegisteredClaims: rc,
	}, c.accessSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// IssueRefreshToken returns a signed refresh token for userID and its expiry.
// Every token carries a random jti, so two tokens issued in the same second
// still differ.
func (c *TokenCodec) IssueRefreshToken(userID string, now time.Time) (string, time.Time, error) {
	rc, expiresAt := c.registered(userID, now, c.refreshTTL)
	token, err := GenerateToken(RefreshClaims{UserID: userID, RegisteredClaims: rc}, c.refreshSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// ParseAccessToken verifies an access token with the access secret.
func (c *TokenCodec) ParseAccessToken(token string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := ParseToken(token, c.accessSecret, claims); err != nil {
		return nil, err
	}
	if claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}

// ParseRefreshToken verifies a refresh token with the refresh secret.
func (c *TokenCodec) ParseRefreshToken(token string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := ParseToken(token, c.refreshSecret, claims); err != nil {
		return nil, err
	}
	if claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}
