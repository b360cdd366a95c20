package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/hrscreen/internal/common"
	"github.com/dmitrijs2005/hrscreen/internal/logging"
	"github.com/dmitrijs2005/hrscreen/internal/server/models"
	"github.com/dmitrijs2005/hrscreen/internal/server/repositories/repomanager"
)

// CompanyService manages tenant companies.
type CompanyService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewCompanyService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *CompanyService {
	return &CompanyService{db: db, repomanager: m, log: log.With("module", "companies")}
}

// CreateCompany creates an active company. Domains are unique.
func (s *CompanyService) CreateCompany(ctx context.Context, name, domain string) (*models.Company, error) {
	c, err := s.repomanager.Companies(s.db).Create(ctx, &models.Company{
		Name:     strings.TrimSpace(name),
		Domain:   strings.ToLower(strings.TrimSpace(domain)),
		IsActive: true,
	})
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, common.ErrCompanyAlreadyExists
		}
		return nil, fmt.Errorf("error creating company: %w", err)
	}
	s.log.Info(ctx, "company created", "company_id", c.ID, "domain", c.Domain)
	return c, nil
}

// SetCompanyActive activates or deactivates a company. Users of an inactive
// company can no longer log in, refresh or use access tokens.
func (s *CompanyService) SetCompanyActive(ctx context.Context, id string, active bool) error {
	if err := s.repomanager.Companies(s.db).SetActive(ctx, id, active); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrCompanyNotFound
		}
		return fmt.Errorf("error updating company: %w", err)
	}
	s.log.Info(ctx, "company status changed", "company_id", id, "active", active)
	return nil
}
