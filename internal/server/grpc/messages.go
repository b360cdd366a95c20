package grpc

import "time"

// Request and response messages of hrscreen.auth.AuthService.

type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	CompanyID string `json:"companyId" validate:"required"`
	Role      string `json:"role" validate:"omitempty,oneof=RECRUITER HIRING_MANAGER ADMIN"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type LogoutAllRequest struct{}

type VerifyTokenRequest struct {
	AccessToken string `json:"accessToken" validate:"required"`
}

type VerifyTokenResponse struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CompanyID string    `json:"companyId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type StatusResponse struct {
	Message string `json:"message"`
}

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}
