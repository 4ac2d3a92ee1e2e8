package services

import (
	"context"
	"database/sql"
	"sync"

	"github.com/dmitrijs2005/anchor/internal/anchor"
	"github.com/dmitrijs2005/anchor/internal/client/client"
	"github.com/dmitrijs2005/anchor/internal/client/repositories/repomanager"
	"github.com/dmitrijs2005/anchor/internal/dbx"
	"github.com/dmitrijs2005/anchor/internal/logging"
)

// SyncReport summarises one flush.
type SyncReport struct {
	Pushed   int
	Applied  []string
	Rejected []string
	Pulled   int
}

// Contains reports whether the action with id was accepted by the server.
func (r *SyncReport) Contains(id string) bool {
	for _, a := range r.Applied {
		if a == id {
			return true
		}
	}
	return false
}

// SyncService flushes the pending action queue and pulls anchors changed on
// the server. Flushes are serialised.
type SyncService struct {
	client      client.Client
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger

	mu sync.Mutex
}

func NewSyncService(c client.Client, db *sql.DB, m repomanager.RepositoryManager, l logging.Logger) *SyncService {
	return &SyncService{
		client:      c,
		db:          db,
		repomanager: m,
		logger:      l.With("module", "sync_service"),
	}
}

// Pending is the number of actions waiting for the server.
func (s *SyncService) Pending(ctx context.Context) (int, error) {
	return s.repomanager.Actions(s.db).Count(ctx)
}

// Flush sends every pending action in one Sync call. Applied and rejected
// actions leave the queue; anything else stays for the next attempt. Server
// anchors replace local copies, and actions queued while the call was in
// flight are replayed on top of them.
func (s *SyncService) Flush(ctx context.Context) (*SyncReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending, err := s.repomanager.Actions(s.db).List(ctx)
	if err != nil {
		return nil, err
	}
	maxVersion, err := s.repomanager.Anchors(s.db).MaxVersion(ctx)
	if err != nil {
		return nil, err
	}

	res, err := s.client.Sync(ctx, pending, maxVersion)
	if err != nil {
		return nil, err
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		actions := s.repomanager.Actions(tx)
		anchors := s.repomanager.Anchors(tx)

		done := make([]string, 0, len(res.Applied)+len(res.Rejected))
		done = append(done, res.Applied...)
		done = append(done, res.Rejected...)
		if err := actions.Delete(ctx, done); err != nil {
			return err
		}

		left, err := actions.List(ctx)
		if err != nil {
			return err
		}
		for _, a := range res.Anchors {
			for _, act := range left {
				if act.AnchorID == a.ID && act.Kind != anchor.ActionCreate {
					act.ApplyTo(a, act.CreatedAt)
				}
			}
			if err := anchors.Upsert(ctx, a); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(res.Rejected) > 0 {
		s.logger.Warn(ctx, "server rejected actions", "ids", res.Rejected)
	}
	s.logger.Info(ctx, "synced", "pushed", len(pending), "applied", len(res.Applied), "pulled", len(res.Anchors))

	return &SyncReport{
		Pushed:   len(pending),
		Applied:  res.Applied,
		Rejected: res.Rejected,
		Pulled:   len(res.Anchors),
	}, nil
}
