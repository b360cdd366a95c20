// Package grpc exposes the auth service over gRPC for internal callers. It
// uses a JSON codec and a hand-written service descriptor, so no generated
// stubs are involved.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/hrscreen/internal/logging"
	"github.com/dmitrijs2005/hrscreen/internal/server/auth"
	"github.com/dmitrijs2005/hrscreen/internal/server/services"
	"github.com/go-playground/validator/v10"
	"google.golang.org/grpc"
)

// AuthService is the part of services.AuthService the server calls.
type AuthService interface {
	Register(ctx context.Context, in services.RegisterInput) (*services.AuthResult, error)
	Login(ctx context.Context, email, password string) (*services.AuthResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.AuthResult, error)
	Logout(ctx context.Context, refreshToken string) error
	LogoutAll(ctx context.Context, userID string) error
	VerifyToken(ctx context.Context, accessToken string) (*auth.AccessClaims, error)
}

type GRPCServer struct {
	address  string
	auth     AuthService
	logger   logging.Logger
	validate *validator.Validate
}

func NewGRPCServer(a string, l logging.Logger, as AuthService) *GRPCServer {
	return &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		auth:     as,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// newServer builds the grpc.Server with the codec and interceptors installed
// and the auth service registered.
func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(
		grpc.ForceServerCodec(Codec()),
		grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor),
	)
	RegisterAuthServiceServer(srv, s)
	return srv
}

// Run serves on the configured address until ctx is cancelled.
func (s *GRPCServer) Run(ctx context.Context) error {
	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is cancelled, then stops
// gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
