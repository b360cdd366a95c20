package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/hrscreen/internal/common"
	"github.com/dmitrijs2005/hrscreen/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps service errors to gRPC statuses. Unclassified errors are
// logged and reported as a bare Internal.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrUserAlreadyExists), errors.Is(err, common.ErrCompanyAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, common.ErrInvalidCredentials),
		errors.Is(err, common.ErrInvalidRefreshToken),
		errors.Is(err, common.ErrInvalidToken):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, common.ErrAccountDeactivated), errors.Is(err, common.ErrCompanyDeactivated):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, common.ErrCompanyNotFound),
		errors.Is(err, common.ErrInvalidRole),
		errors.Is(err, common.ErrPasswordTooLong):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		s.logger.Error(ctx, "request failed", "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}

func (s *GRPCServer) validateRequest(req any) error {
	if err := s.validate.Struct(req); err != nil {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	return nil
}

func (s *GRPCServer) Register(ctx context.Context, req *RegisterRequest) (*services.AuthResult, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	res, err := s.auth.Register(ctx, services.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		CompanyID: req.CompanyID,
		Role:      req.Role,
	})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return res, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *LoginRequest) (*services.AuthResult, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	res, err := s.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return res, nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *RefreshTokenRequest) (*services.AuthResult, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	res, err := s.auth.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return res, nil
}

func (s *GRPCServer) Logout(ctx context.Context, req *LogoutRequest) (*StatusResponse, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	if err := s.auth.Logout(ctx, req.RefreshToken); err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &StatusResponse{Message: "logged out"}, nil
}

func (s *GRPCServer) LogoutAll(ctx context.Context, _ *LogoutAllRequest) (*StatusResponse, error) {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	if err := s.auth.LogoutAll(ctx, claims.UserID); err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &StatusResponse{Message: "logged out from all devices"}, nil
}

func (s *GRPCServer) VerifyToken(ctx context.Context, req *VerifyTokenRequest) (*VerifyTokenResponse, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	claims, err := s.auth.VerifyToken(ctx, req.AccessToken)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	resp := &VerifyTokenResponse{
		UserID:    claims.UserID,
		Email:     claims.Email,
		Role:      string(claims.Role),
		CompanyID: claims.CompanyID,
	}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Time
	}
	return resp, nil
}

func (s *GRPCServer) Ping(context.Context, *PingRequest) (*PingResponse, error) {
	return &PingResponse{Status: "OK"}, nil
}
