// Package refreshtokens declares the server-side repository contract for
// persisting refresh tokens, with PostgreSQL and Redis implementations.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/hrscreen/internal/server/models"
)

// Repository defines operations for issuing, retrieving, and revoking refresh tokens.
// Delete methods report how many records they removed so callers can detect
// that a concurrent request consumed a token first.
type Repository interface {
	// Create stores token for userID, valid until expires.
	Create(ctx context.Context, userID string, token string, expires time.Time) error

	// Find looks up a refresh token by its token string. It returns
	// common.ErrorNotFound when the token is absent.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	DeleteByID(ctx context.Context, id string) (int64, error)
	DeleteByToken(ctx context.Context, token string) (int64, error)
	DeleteByUserID(ctx context.Context, userID string) (int64, error)
}
