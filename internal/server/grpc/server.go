// Package grpc exposes the sync service to the terminal client over gRPC.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/anchor/internal/anchor"
	"github.com/dmitrijs2005/anchor/internal/logging"
	pb "github.com/dmitrijs2005/anchor/internal/proto"
	"github.com/dmitrijs2005/anchor/internal/server/models"
	"github.com/dmitrijs2005/anchor/internal/server/services"
	"google.golang.org/grpc"
)

type userSvc interface {
	Register(ctx context.Context, username string, salt, verifier []byte) (*models.User, error)
	GetSalt(ctx context.Context, username string) ([]byte, error)
	Login(ctx context.Context, username string, verifierCandidate []byte) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
}

type anchorSvc interface {
	Sync(ctx context.Context, userID string, actions []*anchor.Action, maxVersion int64) (*services.SyncResult, error)
}

type orderSvc interface {
	Create(ctx context.Context, userID string, o anchor.Order) (*anchor.Order, error)
}

type GRPCServer struct {
	pb.UnimplementedAnchorSyncServer
	address   string
	users     userSvc
	anchors   anchorSvc
	orders    orderSvc
	logger    logging.Logger
	jwtSecret []byte
}

func NewGRPCServer(a string, l logging.Logger, us userSvc, as anchorSvc, ords orderSvc, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		users:     us,
		anchors:   as,
		orders:    ords,
		jwtSecret: []byte(secretKey),
	}
}

// Run serves until ctx is cancelled, then stops gracefully.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	pb.RegisterAnchorSyncServer(srv, s)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	if err := srv.Serve(listen); err != nil {
		return err
	}
	return nil
}
