package client

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/anchor/internal/anchor"
	"github.com/dmitrijs2005/anchor/internal/common"
	pb "github.com/dmitrijs2005/anchor/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const saltTimeout = 12 * time.Second

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      pb.AnchorSyncClient

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

// NewGRPCClient dials endpointURL lazily; no network traffic happens until
// the first call.
func NewGRPCClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}

	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, opts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = pb.NewAnchorSyncClient(conn)
	return c, nil
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)
	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) tokens() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken, s.refreshToken
}

func (s *GRPCClient) setTokens(access, refresh string) {
	s.mu.Lock()
	s.accessToken = access
	s.refreshToken = refresh
	s.mu.Unlock()
}

// accessTokenInterceptor retries a call once with fresh tokens when the
// server says the access token has expired.
func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	access, refresh := s.tokens()

	err := invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
	if err == nil || method == pb.MethodRefreshToken {
		return err
	}

	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.Unauthenticated || st.Message() != common.ErrTokenExpired.Error() {
		return err
	}
	if refresh == "" {
		return err
	}

	resp, rerr := s.client.RefreshToken(ctx, &pb.RefreshTokenRequest{RefreshToken: refresh})
	if rerr != nil {
		return rerr
	}
	s.setTokens(resp.AccessToken, resp.RefreshToken)

	return invoker(withAccessToken(ctx, resp.AccessToken), method, req, reply, cc, opts...)
}

func (s *GRPCClient) Register(ctx context.Context, userName string, salt []byte, verifier []byte) error {
	req := &pb.RegisterUserRequest{Username: userName, Salt: salt, Verifier: verifier}
	if _, err := s.client.RegisterUser(ctx, req); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) GetSalt(ctx context.Context, userName string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, saltTimeout)
	defer cancel()

	resp, err := s.client.GetSalt(ctx, &pb.GetSaltRequest{Username: userName})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Salt, nil
}

func (s *GRPCClient) Login(ctx context.Context, userName string, verifier []byte) error {
	resp, err := s.client.Login(ctx, &pb.LoginRequest{Username: userName, VerifierCandidate: verifier})
	if err != nil {
		return s.mapError(err)
	}
	s.setTokens(resp.AccessToken, resp.RefreshToken)
	return nil
}

// Logout forgets the session tokens.
func (s *GRPCClient) Logout() {
	s.setTokens("", "")
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.client.Ping(ctx, &pb.PingRequest{})
	if err != nil {
		return s.mapError(err)
	}
	if resp.Status != common.ServerStatusOK {
		return ErrUnavailable
	}
	return nil
}

// Sync pushes actions and pulls every anchor above maxVersion.
func (s *GRPCClient) Sync(ctx context.Context, actions []*anchor.Action, maxVersion int64) (*SyncResult, error) {
	if actions == nil {
		actions = []*anchor.Action{}
	}
	resp, err := s.client.Sync(ctx, &pb.SyncRequest{Actions: actions, MaxVersion: maxVersion})
	if err != nil {
		return nil, s.mapError(err)
	}
	return &SyncResult{
		Applied:    resp.Applied,
		Rejected:   resp.Rejected,
		Anchors:    resp.Anchors,
		MaxVersion: resp.MaxVersion,
	}, nil
}

// CreateOrder places an order for a print of an anchor. It needs a session.
func (s *GRPCClient) CreateOrder(ctx context.Context, o anchor.Order) (*anchor.Order, error) {
	resp, err := s.client.CreateOrder(ctx, &pb.CreateOrderRequest{Order: o})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Order, nil
}

func (s *GRPCClient) mapError(err error) error {
	return fromStatus(err)
}
