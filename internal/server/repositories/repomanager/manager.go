package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/hrscreen/internal/dbx"
	"github.com/dmitrijs2005/hrscreen/internal/server/repositories/companies"
	"github.com/dmitrijs2005/hrscreen/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/hrscreen/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so the same code runs
// against *sql.DB or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Companies(db dbx.DBTX) companies.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}
