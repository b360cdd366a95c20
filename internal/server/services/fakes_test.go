package services

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/hrscreen/internal/common"
	"github.com/dmitrijs2005/hrscreen/internal/dbx"
	"github.com/dmitrijs2005/hrscreen/internal/server/models"
	"github.com/dmitrijs2005/hrscreen/internal/server/repositories/companies"
	"github.com/dmitrijs2005/hrscreen/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/hrscreen/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// newTxDB returns a database whose only job is to hand out transactions for
// dbx.WithTx; the fake repositories below ignore the DBTX they are bound to.
func newTxDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// memStore is an in-memory stand-in for the relational store.
type memStore struct {
	mu        sync.Mutex
	seq       int
	users     map[string]*models.User
	companies map[string]*models.Company
	tokens    map[string]*models.RefreshToken

	// failures injected by tests
	usersErr         error
	createUserErr    error
	createTokenErr   error
	deleteTokenCount *int64
}

func newMemStore() *memStore {
	return &memStore{
		users:     map[string]*models.User{},
		companies: map[string]*models.Company{},
		tokens:    map[string]*models.RefreshToken{},
	}
}

func (s *memStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

func (s *memStore) addCompany(active bool) *models.Company {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := &models.Company{ID: s.nextID("c"), Name: "Acme", Domain: "acme.com", IsActive: active}
	s.companies[c.ID] = c
	return c
}

func (s *memStore) tokenCount(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tokens {
		if t.UserID == userID {
			n++
		}
	}
	return n
}

func (s *memStore) tokenByValue(token string) *models.RefreshToken {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tokens {
		if t.Token == token {
			cp := *t
			return &cp
		}
	}
	return nil
}

func (s *memStore) userByEmail(email string) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp
		}
	}
	return nil
}

func (s *memStore) setUserActive(id string, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[id].IsActive = active
}

// withCompany copies u and attaches a copy of its company. Caller holds mu.
func (s *memStore) withCompany(u *models.User) *models.User {
	cp := *u
	if c, ok := s.companies[u.CompanyID]; ok {
		cc := *c
		cp.Company = &cc
	}
	return &cp
}

type memUsers struct{ s *memStore }

func (r memUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.createUserErr != nil {
		return nil, r.s.createUserErr
	}
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return nil, common.ErrAlreadyExists
		}
	}
	u.ID = r.s.nextID("u")
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	r.s.users[u.ID] = &cp
	return u, nil
}

func (r memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.usersErr != nil {
		return nil, r.s.usersErr
	}
	for _, u := range r.s.users {
		if u.Email == email {
			return r.s.withCompany(u), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.usersErr != nil {
		return nil, r.s.usersErr
	}
	u, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return r.s.withCompany(u), nil
}

func (r memUsers) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	t := at
	u.LastLogin = &t
	u.UpdatedAt = at
	return nil
}

type memCompanies struct{ s *memStore }

func (r memCompanies) Create(_ context.Context, c *models.Company) (*models.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.companies {
		if existing.Domain == c.Domain {
			return nil, common.ErrAlreadyExists
		}
	}
	c.ID = r.s.nextID("c")
	cp := *c
	r.s.companies[c.ID] = &cp
	return c, nil
}

func (r memCompanies) GetByID(_ context.Context, id string) (*models.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.companies[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *c
	return &cp, nil
}

func (r memCompanies) SetActive(_ context.Context, id string, active bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.companies[id]
	if !ok {
		return common.ErrorNotFound
	}
	c.IsActive = active
	return nil
}

type memTokens struct{ s *memStore }

func (r memTokens) Create(_ context.Context, userID, token string, expires time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.createTokenErr != nil {
		return r.s.createTokenErr
	}
	for _, t := range r.s.tokens {
		if t.Token == token {
			return common.ErrAlreadyExists
		}
	}
	id := r.s.nextID("rt")
	r.s.tokens[id] = &models.RefreshToken{ID: id, UserID: userID, Token: token, Expires: expires, CreatedAt: time.Now()}
	return nil
}

func (r memTokens) Find(_ context.Context, token string) (*models.RefreshToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.tokens {
		if t.Token == token {
			cp := *t
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memTokens) DeleteByID(_ context.Context, id string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.deleteTokenCount != nil {
		return *r.s.deleteTokenCount, nil
	}
	if _, ok := r.s.tokens[id]; !ok {
		return 0, nil
	}
	delete(r.s.tokens, id)
	return 1, nil
}

func (r memTokens) DeleteByToken(_ context.Context, token string) (int64, error) {
	return r.deleteWhere(func(t *models.RefreshToken) bool { return t.Token == token }), nil
}

func (r memTokens) DeleteByUserID(_ context.Context, userID string) (int64, error) {
	return r.deleteWhere(func(t *models.RefreshToken) bool { return t.UserID == userID }), nil
}

func (r memTokens) deleteWhere(match func(*models.RefreshToken) bool) int64 {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, t := range r.s.tokens {
		if match(t) {
			delete(r.s.tokens, id)
			n++
		}
	}
	return n
}

type memRepoManager struct{ s *memStore }

func (m memRepoManager) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m memRepoManager) Users(dbx.DBTX) users.Repository                 { return memUsers{m.s} }
func (m memRepoManager) Companies(dbx.DBTX) companies.Repository         { return memCompanies{m.s} }
func (m memRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return memTokens{m.s} }
