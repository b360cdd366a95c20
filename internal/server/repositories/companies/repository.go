// Package companies persists tenant companies.
package companies

import (
	"context"

	"github.com/dmitrijs2005/hrscreen/internal/server/models"
)

type Repository interface {
	// Create inserts company and fills its generated ID and timestamps.
	// A duplicate domain yields common.ErrAlreadyExists.
	Create(ctx context.Context, company *models.Company) (*models.Company, error)
	GetByID(ctx context.Context, id string) (*models.Company, error)
	SetActive(ctx context.Context, id string, active bool) error
}
