package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dmitrijs2005/hrscreen/internal/common"
	"github.com/dmitrijs2005/hrscreen/internal/logging"
	"github.com/dmitrijs2005/hrscreen/internal/server/auth"
	"github.com/dmitrijs2005/hrscreen/internal/server/models"
	"github.com/dmitrijs2005/hrscreen/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	registerIn  services.RegisterInput
	loginEmail  string
	refreshed   string
	loggedOut   string
	logoutAllID string
	verified    string

	result *services.AuthResult
	err    error

	claims    *auth.AccessClaims
	verifyErr error
}

func (f *fakeAuth) Register(_ context.Context, in services.RegisterInput) (*services.AuthResult, error) {
	f.registerIn = in
	return f.result, f.err
}

func (f *fakeAuth) Login(_ context.Context, email, _ string) (*services.AuthResult, error) {
	f.loginEmail = email
	return f.result, f.err
}

func (f *fakeAuth) RefreshToken(_ context.Context, token string) (*services.AuthResult, error) {
	f.refreshed = token
	return f.result, f.err
}

func (f *fakeAuth) Logout(_ context.Context, token string) error {
	f.loggedOut = token
	return f.err
}

func (f *fakeAuth) LogoutAll(_ context.Context, userID string) error {
	f.logoutAllID = userID
	return f.err
}

func (f *fakeAuth) VerifyToken(_ context.Context, token string) (*auth.AccessClaims, error) {
	f.verified = token
	return f.claims, f.verifyErr
}

func sampleResult() *services.AuthResult {
	return &services.AuthResult{
		User:   models.UserView{ID: "u1", Email: "a@x.com", Role: models.RoleRecruiter, CompanyID: "c1", IsActive: true},
		Tokens: services.TokenPair{AccessToken: "acc", RefreshToken: "ref"},
	}
}

func setupRouter(fa *fakeAuth) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(fa, logging.NopLogger{})
}

func authDoRequest(r http.Handler, method, path string, body any, header map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch v := body.(type) {
	case nil:
	case string:
		buf.WriteString(v)
	default:
		_ = json.NewEncoder(&buf).Encode(v)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func validRegister() RegisterRequest {
	return RegisterRequest{
		Email:     "a@x.com",
		Password:  "Secret123!",
		FirstName: "Ann",
		LastName:  "Lee",
		CompanyID: "c1",
	}
}

func TestHealth(t *testing.T) {
	r := setupRouter(&fakeAuth{})

	w := authDoRequest(r, http.MethodGet, "/health", nil, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, w)["status"])
}

func TestRegister(t *testing.T) {
	fa := &fakeAuth{result: sampleResult()}
	r := setupRouter(fa)

	req := validRegister()
	req.Role = "ADMIN"
	w := authDoRequest(r, http.MethodPost, "/api/auth/register", req, nil)

	require.Equal(t, http.StatusCreated, w.Code)
	res := decode[services.AuthResult](t, w)
	assert.Equal(t, "u1", res.User.ID)
	assert.Equal(t, "acc", res.Tokens.AccessToken)
	assert.Equal(t, "ref", res.Tokens.RefreshToken)
	assert.Equal(t, "ADMIN", fa.registerIn.Role)
	assert.Equal(t, "c1", fa.registerIn.CompanyID)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RegisterRequest)
		field  string
		typ    string
	}{
		{"bad email", func(r *RegisterRequest) { r.Email = "nope" }, "Email", "email"},
		{"short password", func(r *RegisterRequest) { r.Password = "short" }, "Password", "min"},
		{"missing first name", func(r *RegisterRequest) { r.FirstName = "" }, "FirstName", "required"},
		{"missing company", func(r *RegisterRequest) { r.CompanyID = "" }, "CompanyID", "required"},
		{"unknown role", func(r *RegisterRequest) { r.Role = "CEO" }, "Role", "oneof"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fa := &fakeAuth{result: sampleResult()}
			r := setupRouter(fa)

			req := validRegister()
			tt.mutate(&req)
			w := authDoRequest(r, http.MethodPost, "/api/auth/register", req, nil)

			require.Equal(t, http.StatusBadRequest, w.Code)
			res := decode[BadRequestErrorResponse](t, w)
			assert.Equal(t, "Invalid request data", res.Message)
			require.Len(t, res.Details, 1)
			assert.Equal(t, tt.field, res.Details[0].Field)
			assert.Equal(t, tt.typ, res.Details[0].Type)
			assert.Empty(t, fa.registerIn.Email)
		})
	}
}

func TestRegister_MultibytePasswordOverByteLimit(t *testing.T) {
	fa := &fakeAuth{err: common.ErrPasswordTooLong}
	r := setupRouter(fa)

	req := validRegister()
	req.Password = strings.Repeat("é", 40)
	require.Empty(t, ValidateRequest(&req), "rune-based max=72 lets 80 bytes through")

	w := authDoRequest(r, http.MethodPost, "/api/auth/register", req, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Password must be at most 72 bytes", decode[map[string]string](t, w)["message"])
	assert.Equal(t, req.Password, fa.registerIn.Password)
}

func TestRegister_MalformedBody(t *testing.T) {
	r := setupRouter(&fakeAuth{})

	w := authDoRequest(r, http.MethodPost, "/api/auth/register", "{not json", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request body", decode[map[string]string](t, w)["message"])
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{common.ErrUserAlreadyExists, http.StatusConflict},
		{common.ErrCompanyNotFound, http.StatusBadRequest},
		{common.ErrInvalidRole, http.StatusBadRequest},
		{common.ErrPasswordTooLong, http.StatusBadRequest},
		{common.ErrInvalidCredentials, http.StatusUnauthorized},
		{common.ErrInvalidRefreshToken, http.StatusUnauthorized},
		{common.ErrAccountDeactivated, http.StatusForbidden},
		{common.ErrCompanyDeactivated, http.StatusForbidden},
		{errors.New("db error: boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			r := setupRouter(&fakeAuth{err: tt.err})

			w := authDoRequest(r, http.MethodPost, "/api/auth/login",
				LoginRequest{Email: "a@x.com", Password: "x"}, nil)

			assert.Equal(t, tt.status, w.Code)
			assert.NotContains(t, w.Body.String(), "boom")
		})
	}
}

func TestLoginAndRefresh(t *testing.T) {
	fa := &fakeAuth{result: sampleResult()}
	r := setupRouter(fa)

	w := authDoRequest(r, http.MethodPost, "/api/auth/login",
		LoginRequest{Email: "a@x.com", Password: "Secret123!"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "a@x.com", fa.loginEmail)

	w = authDoRequest(r, http.MethodPost, "/api/auth/refresh",
		RefreshTokenRequest{RefreshToken: "old"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "old", fa.refreshed)
	assert.Equal(t, "ref", decode[services.AuthResult](t, w).Tokens.RefreshToken)

	w = authDoRequest(r, http.MethodPost, "/api/auth/refresh", RefreshTokenRequest{}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogout(t *testing.T) {
	fa := &fakeAuth{}
	r := setupRouter(fa)

	w := authDoRequest(r, http.MethodPost, "/api/auth/logout", RefreshTokenRequest{RefreshToken: "ref"}, nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ref", fa.loggedOut)
	assert.Equal(t, "Logged out successfully", decode[MessageResponse](t, w).Message)
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name      string
		header    map[string]string
		verifyErr error
		status    int
	}{
		{"missing header", nil, nil, http.StatusUnauthorized},
		{"wrong scheme", map[string]string{"Authorization": "Basic abc"}, nil, http.StatusUnauthorized},
		{"empty token", map[string]string{"Authorization": "Bearer "}, nil, http.StatusUnauthorized},
		{"rejected token", map[string]string{"Authorization": "Bearer bad"}, common.ErrInvalidToken, http.StatusUnauthorized},
		{"valid token", map[string]string{"Authorization": "Bearer acc"}, nil, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fa := &fakeAuth{
				claims:    &auth.AccessClaims{UserID: "u1", Email: "a@x.com", Role: models.RoleAdmin, CompanyID: "c1"},
				verifyErr: tt.verifyErr,
			}
			r := setupRouter(fa)

			w := authDoRequest(r, http.MethodGet, "/api/auth/me", nil, tt.header)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				me := decode[MeResponse](t, w)
				assert.Equal(t, "u1", me.UserID)
				assert.Equal(t, "ADMIN", me.Role)
				assert.Equal(t, "acc", fa.verified)
			}
		})
	}
}

func TestLogoutAll(t *testing.T) {
	fa := &fakeAuth{claims: &auth.AccessClaims{UserID: "u1"}}
	r := setupRouter(fa)

	w := authDoRequest(r, http.MethodPost, "/api/auth/logout-all", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, fa.logoutAllID)

	w = authDoRequest(r, http.MethodPost, "/api/auth/logout-all", nil,
		map[string]string{"Authorization": "Bearer acc"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", fa.logoutAllID)
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery(logging.NopLogger{}))
	r.GET("/panic", func(*gin.Context) { panic("boom") })

	w := authDoRequest(r, http.MethodGet, "/panic", nil, nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal error", decode[map[string]string](t, w)["message"])
}
