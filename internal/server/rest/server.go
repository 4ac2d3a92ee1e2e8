// Package rest is the JSON API used by the mobile app. Routes live in
// router.go; each handler file binds one resource to its service.
package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/anchor/internal/anchor"
	"github.com/dmitrijs2005/anchor/internal/enhance"
	"github.com/dmitrijs2005/anchor/internal/logging"
	"github.com/dmitrijs2005/anchor/internal/mockai"
	"github.com/dmitrijs2005/anchor/internal/server/models"
	"github.com/dmitrijs2005/anchor/internal/server/services"
)

const shutdownTimeout = 5 * time.Second

type UserService interface {
	RegisterWithPassword(ctx context.Context, username, password, confirm string) (*services.TokenPair, error)
	LoginWithPassword(ctx context.Context, username, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	UserIDFromToken(token string) (string, error)
}

type AnchorService interface {
	Create(ctx context.Context, userID string, in services.NewAnchor) (*anchor.Anchor, error)
	List(ctx context.Context, userID string) ([]*anchor.Anchor, error)
	Get(ctx context.Context, userID, id string) (*anchor.Anchor, error)
	History(ctx context.Context, userID, id string) ([]*models.RitualEvent, error)
	Charge(ctx context.Context, userID, id string, c anchor.Charge) (*anchor.Anchor, error)
	Activate(ctx context.Context, userID, id string, a anchor.Activation) (*anchor.Anchor, error)
	Reinforce(ctx context.Context, userID, id, svg string) (*anchor.Anchor, error)
	SetEnhancedImage(ctx context.Context, userID, id, url string) (*anchor.Anchor, error)
	Burn(ctx context.Context, userID, id string) error
}

type OrderService interface {
	Create(ctx context.Context, userID string, o anchor.Order) (*anchor.Order, error)
	Get(ctx context.Context, userID, id string) (*anchor.Order, error)
}

type EnhanceService interface {
	BackendConfigured() bool
	Styles() []enhance.StyleInfo
	Enhance(ctx context.Context, userID string, req services.EnhanceRequest) (*services.EnhanceResponse, error)
	Preprocess(sigilSVG string) (*services.PreprocessResponse, error)
	StructureMatch(originalMask, generated string) (*enhance.MatchResult, error)
	Composite(originalSigil, generated string) (*services.CompositeResponse, error)
}

type Analyzer interface {
	AnalyzeIntention(ctx context.Context, text string) (*mockai.Analysis, error)
	GenerateVariations(ctx context.Context, sigilSVG string, style string) ([]mockai.Variation, error)
}

// Services groups what the handlers depend on.
type Services struct {
	Users    UserService
	Anchors  AnchorService
	Orders   OrderService
	Enhance  EnhanceService
	Analyzer Analyzer
}

type HTTPServer struct {
	address string
	logger  logging.Logger
	engine  *gin.Engine
}

func NewHTTPServer(a string, l logging.Logger, s Services) *HTTPServer {
	l = l.With("module", "http_server")
	return &HTTPServer{address: a, logger: l, engine: NewRouter(s, l)}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", s.address)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
