// Package grpc exposes the account admin console as a gRPC API.
package grpc

import (
	"context"
	"net"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/dmitrijs2005/signin/internal/logging"
	"github.com/dmitrijs2005/signin/internal/server/admin"
	"github.com/dmitrijs2005/signin/internal/server/forms"
	"github.com/dmitrijs2005/signin/internal/server/models"
	"github.com/dmitrijs2005/signin/internal/server/services"
)

// Console is the admin backend served over gRPC.
type Console interface {
	ChangeList(ctx context.Context, p admin.ChangeListParams) (*admin.ChangeList, error)
	Get(ctx context.Context, email string) (*models.Account, error)
	Add(ctx context.Context, f forms.CreationForm) (*models.Account, error)
	Deactivate(ctx context.Context, email string) (*models.Account, error)
	Export(ctx context.Context, p admin.ChangeListParams) (*services.ExportResult, error)
}

// Sessions issues and resolves access tokens.
type Sessions interface {
	Login(ctx context.Context, email, password string) (string, *models.Account, error)
	Resolve(ctx context.Context, token string) (*models.Account, error)
}

var (
	_ Console  = (*admin.AccountAdmin)(nil)
	_ Sessions = (*services.SessionService)(nil)
)

type GRPCServer struct {
	address  string
	console  Console
	sessions Sessions
	logger   logging.Logger
	health   *health.Server
}

func NewGRPCServer(a string, l logging.Logger, console Console, sessions Sessions) *GRPCServer {
	return &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		console:  console,
		sessions: sessions,
		health:   health.NewServer(),
	}
}

// newServer builds the grpc.Server with tracing, authentication and all
// services registered.
func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(s.accessTokenInterceptor),
	)

	RegisterAccountAdminServer(srv, s)
	healthpb.RegisterHealthServer(srv, s.health)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
