// Package users declares the user repository contract and its PostgreSQL
// implementation.
package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/hrscreen/internal/server/models"
)

// Repository persists users. Lookups return the user joined with its company
// and common.ErrorNotFound when no row matches.
type Repository interface {
	// Create inserts user and fills its generated ID and timestamps.
	// A duplicate email yields common.ErrAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}
