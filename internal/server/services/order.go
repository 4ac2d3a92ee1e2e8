package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/anchor/internal/anchor"
	"github.com/dmitrijs2005/anchor/internal/common"
	"github.com/dmitrijs2005/anchor/internal/logging"
	"github.com/dmitrijs2005/anchor/internal/server/events"
	"github.com/dmitrijs2005/anchor/internal/server/repositories/repomanager"
)

type OrderService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	publisher   events.Publisher
	logger      logging.Logger
}

func NewOrderService(db *sql.DB, m repomanager.RepositoryManager, p events.Publisher, l logging.Logger) *OrderService {
	return &OrderService{db: db, repomanager: m, publisher: p, logger: l.With("module", "order_service")}
}

// Create places a pending order for one of the user's live anchors.
func (s *OrderService) Create(ctx context.Context, userID string, o anchor.Order) (*anchor.Order, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	a, err := s.repomanager.Anchors(s.db).GetByID(ctx, userID, o.AnchorID)
	if err != nil {
		return nil, err
	}
	if a.Deleted {
		return nil, fmt.Errorf("%w: anchor %s", common.ErrorNotFound, o.AnchorID)
	}

	o.ID = ""
	o.UserID = userID
	o.Status = anchor.OrderStatusPending
	if err := s.repomanager.Orders(s.db).Create(ctx, &o); err != nil {
		return nil, fmt.Errorf("error creating order: %w", err)
	}

	if err := s.publisher.PublishJSON(ctx, events.OrderCreated, map[string]any{
		"orderId":  o.ID,
		"userId":   userID,
		"anchorId": o.AnchorID,
		"product":  o.Product,
		"quantity": o.Quantity,
	}); err != nil {
		s.logger.Warn(ctx, "event publish failed", "key", events.OrderCreated, "error", err.Error())
	}
	return &o, nil
}

func (s *OrderService) Get(ctx context.Context, userID, id string) (*anchor.Order, error) {
	return s.repomanager.Orders(s.db).GetByID(ctx, userID, id)
}
