package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/anchor/internal/common"
	pb "github.com/dmitrijs2005/anchor/internal/proto"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps service errors onto gRPC codes. Internal details are not
// sent to the client.
func toStatus(err error) error {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorAlreadyExists):
		return status.Error(codes.AlreadyExists, "already exists")
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrRefreshTokenExpired),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrInvalidToken):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, common.ErrVersionConflict):
		return status.Error(codes.Aborted, "version conflict")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	}
	return status.Error(codes.Internal, "internal error")
}

func (s *GRPCServer) Ping(ctx context.Context, req *pb.PingRequest) (*pb.PingResponse, error) {
	return &pb.PingResponse{Status: common.ServerStatusOK}, nil
}

func (s *GRPCServer) RegisterUser(ctx context.Context, req *pb.RegisterUserRequest) (*pb.RegisterUserResponse, error) {
	u, err := s.users.Register(ctx, req.Username, req.Salt, req.Verifier)
	if err != nil {
		s.logger.Error(ctx, "registration failed", "username", req.Username, "error", err.Error())
		return nil, toStatus(err)
	}
	s.logger.Info(ctx, "Registered", "username", req.Username)
	return &pb.RegisterUserResponse{UserID: u.ID}, nil
}

func (s *GRPCServer) GetSalt(ctx context.Context, req *pb.GetSaltRequest) (*pb.GetSaltResponse, error) {
	salt, err := s.users.GetSalt(ctx, req.Username)
	if err != nil {
		return nil, toStatus(err)
	}
	return &pb.GetSaltResponse{Salt: salt}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *pb.LoginRequest) (*pb.LoginResponse, error) {
	tokens, err := s.users.Login(ctx, req.Username, req.VerifierCandidate)
	if err != nil {
		return nil, toStatus(err)
	}
	return &pb.LoginResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}, nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *pb.RefreshTokenRequest) (*pb.RefreshTokenResponse, error) {
	tokens, err := s.users.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, toStatus(err)
	}
	return &pb.RefreshTokenResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}, nil
}

func (s *GRPCServer) Sync(ctx context.Context, req *pb.SyncRequest) (*pb.SyncResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	res, err := s.anchors.Sync(ctx, userID, req.Actions, req.MaxVersion)
	if err != nil {
		s.logger.Error(ctx, "sync failed", "user", userID, "error", err.Error())
		return nil, toStatus(err)
	}

	s.logger.Info(ctx, "synced", "user", userID,
		"applied", len(res.Applied), "rejected", len(res.Rejected), "anchors", len(res.Anchors))
	return &pb.SyncResponse{
		Applied:    res.Applied,
		Rejected:   res.Rejected,
		Anchors:    res.Anchors,
		MaxVersion: res.MaxVersion,
	}, nil
}

func (s *GRPCServer) CreateOrder(ctx context.Context, req *pb.CreateOrderRequest) (*pb.CreateOrderResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	o, err := s.orders.Create(ctx, userID, req.Order)
	if err != nil {
		s.logger.Error(ctx, "create order failed", "user", userID, "error", err.Error())
		return nil, toStatus(err)
	}
	return &pb.CreateOrderResponse{Order: o}, nil
}
