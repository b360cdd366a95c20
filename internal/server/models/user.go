// Package models defines server-side data models persisted in the database
// and the projections handed back to callers.
package models

import (
	"time"

	"github.com/dmitrijs2005/hrscreen/internal/common"
)

// Role is the user's permission level inside their company.
type Role string

const (
	RoleRecruiter     Role = "RECRUITER"
	RoleHiringManager Role = "HIRING_MANAGER"
	RoleAdmin         Role = "ADMIN"
)

// DefaultRole is assigned at registration when no role is given.
const DefaultRole = RoleRecruiter

// ParseRole validates r. An empty string yields DefaultRole.
func ParseRole(r string) (Role, error) {
	switch Role(r) {
	case "":
		return DefaultRole, nil
	case RoleRecruiter, RoleHiringManager, RoleAdmin:
		return Role(r), nil
	default:
		return "", common.ErrInvalidRole
	}
}

// Company is a tenant. Users of an inactive company cannot sign in.
type Company struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Domain    string    `json:"domain"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// User is the stored identity record. It carries the password hash and must
// not be returned to callers; use NewUserView.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         Role
	CompanyID    string
	IsActive     bool
	LastLogin    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Company is set by lookups that join the companies table.
	Company *Company
}

// UserView is what the API exposes for a user. It has no password field.
type UserView struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Role      Role       `json:"role"`
	CompanyID string     `json:"companyId"`
	IsActive  bool       `json:"isActive"`
	LastLogin *time.Time `json:"lastLogin"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	Company   *Company   `json:"company,omitempty"`
}

// NewUserView projects u onto a UserView.
func NewUserView(u *User) UserView {
	return UserView{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		CompanyID: u.CompanyID,
		IsActive:  u.IsActive,
		LastLogin: u.LastLogin,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
		Company:   u.Company,
	}
}
