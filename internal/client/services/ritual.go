package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/anchor/internal/anchor"
	"github.com/dmitrijs2005/anchor/internal/client/repositories/repomanager"
	"github.com/dmitrijs2005/anchor/internal/common"
	"github.com/dmitrijs2005/anchor/internal/dbx"
	"github.com/dmitrijs2005/anchor/internal/logging"
	"github.com/dmitrijs2005/anchor/internal/ritual"
	"github.com/google/uuid"
)

const (
	ToastChargeFailed     = "Charge failed to sync. Will retry later"
	ToastActivationFailed = "Activation failed to sync. Will retry later"
)

const defaultPushTimeout = 10 * time.Second

// Session is one ritual run against an anchor.
type Session struct {
	AnchorID       string
	Type           anchor.SessionType
	Mode           string
	Config         ritual.Config
	ChargeType     anchor.ChargeType
	ActivationType anchor.ActivationType
}

func QuickChargeSession(anchorID string) Session {
	return Session{
		AnchorID:   anchorID,
		Type:       anchor.SessionCharge,
		Mode:       "quick",
		Config:     ritual.QuickCharge(),
		ChargeType: anchor.ChargeInitialQuick,
	}
}

func DeepChargeSession(anchorID string) Session {
	return Session{
		AnchorID:   anchorID,
		Type:       anchor.SessionCharge,
		Mode:       "deep",
		Config:     ritual.DeepCharge(),
		ChargeType: anchor.ChargeInitialDeep,
	}
}

func ActivationSession(anchorID string) Session {
	return Session{
		AnchorID:       anchorID,
		Type:           anchor.SessionActivation,
		Mode:           string(anchor.ActivationVisual),
		Config:         ritual.Activation(),
		ActivationType: anchor.ActivationVisual,
	}
}

// Outcome is what the ritual screen shows after completion. Toast is empty
// when the server accepted the ritual or before the push has finished.
type Outcome struct {
	Anchor *anchor.Anchor
	Entry  *anchor.SessionLogEntry
	Action *anchor.Action
	Synced bool
	Toast  string
}

// Flusher pushes queued actions to the server.
type Flusher interface {
	Flush(ctx context.Context) (*SyncReport, error)
}

// RitualService records finished rituals. The local anchor is updated
// whether or not the server can be reached; the server copy catches up
// through the action queue.
type RitualService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	flusher     Flusher
	reporter    ErrorReporter
	logger      logging.Logger
	now         func() time.Time
	newID       func() string
	pushTimeout time.Duration
}

func NewRitualService(db *sql.DB, m repomanager.RepositoryManager, f Flusher, r ErrorReporter, l logging.Logger) *RitualService {
	return &RitualService{
		db:          db,
		repomanager: m,
		flusher:     f,
		reporter:    r,
		logger:      l.With("module", "ritual_service"),
		now:         time.Now,
		newID:       uuid.NewString,
		pushTimeout: defaultPushTimeout,
	}
}

// Prepare loads the anchor a session is about to run against.
func (s *RitualService) Prepare(ctx context.Context, sess Session) (*anchor.Anchor, error) {
	a, err := s.repomanager.Anchors(s.db).GetByID(ctx, sess.AnchorID)
	if err != nil {
		return nil, err
	}
	if a.Deleted {
		return nil, common.ErrorNotFound
	}
	return a, nil
}

func (s *RitualService) action(sess Session, a *anchor.Anchor, at time.Time) *anchor.Action {
	act := &anchor.Action{
		ID:        s.newID(),
		AnchorID:  a.ID,
		CreatedAt: at,
	}
	duration := sess.Config.Total()
	switch sess.Type {
	case anchor.SessionCharge:
		ct := sess.ChargeType
		if a.IsCharged {
			ct = anchor.ChargeRecharge
		}
		act.Kind = anchor.ActionCharge
		act.Charge = &anchor.Charge{ChargeType: ct, DurationSeconds: duration}
	case anchor.SessionActivation:
		act.Kind = anchor.ActionActivate
		act.Activation = &anchor.Activation{ActivationType: sess.ActivationType, DurationSeconds: duration}
	}
	return act
}

// Record applies the finished ritual locally, logs the session and queues the
// action. It never touches the network.
func (s *RitualService) Record(ctx context.Context, sess Session) (*Outcome, error) {
	if sess.Type != anchor.SessionCharge && sess.Type != anchor.SessionActivation {
		return nil, fmt.Errorf("%w: unknown session type %q", common.ErrorValidation, sess.Type)
	}
	now := s.now().UTC()

	out := &Outcome{}
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		anchors := s.repomanager.Anchors(tx)
		a, err := anchors.GetByID(ctx, sess.AnchorID)
		if err != nil {
			return err
		}
		if a.Deleted {
			return common.ErrorNotFound
		}

		act := s.action(sess, a, now)
		act.ApplyTo(a, now)
		if err := anchors.Upsert(ctx, a); err != nil {
			return err
		}

		entry := &anchor.SessionLogEntry{
			AnchorID:        a.ID,
			Type:            sess.Type,
			DurationSeconds: sess.Config.Total(),
			Mode:            sess.Mode,
			CompletedAt:     now,
		}
		if err := s.repomanager.Sessions(tx).Append(ctx, entry); err != nil {
			return err
		}
		out.Anchor, out.Entry, out.Action = a, entry, act
		return s.repomanager.Actions(tx).Enqueue(ctx, act)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Push makes the single attempt to send a recorded ritual to the server. A
// failure is reported and turned into the toast it returns; the toast is
// empty when the server accepted the action.
func (s *RitualService) Push(ctx context.Context, sess Session, out *Outcome) string {
	err := s.push(ctx, out.Action)
	if err == nil {
		return ""
	}
	s.reporter.Report(ctx, err, ErrorContext{Screen: "ritual", Action: string(out.Action.Kind), AnchorID: out.Action.AnchorID})
	if sess.Type == anchor.SessionActivation {
		return ToastActivationFailed
	}
	return ToastChargeFailed
}

// Complete records the ritual and waits for the push. Screens that must not
// block on the network call Record and Push separately.
func (s *RitualService) Complete(ctx context.Context, sess Session) (*Outcome, error) {
	out, err := s.Record(ctx, sess)
	if err != nil {
		return nil, err
	}

	if out.Toast = s.Push(ctx, sess, out); out.Toast != "" {
		return out, nil
	}
	out.Synced = true
	if fresh, err := s.repomanager.Anchors(s.db).GetByID(ctx, out.Anchor.ID); err == nil {
		out.Anchor = fresh
	}
	return out, nil
}

func (s *RitualService) push(ctx context.Context, act *anchor.Action) error {
	ctx, cancel := context.WithTimeout(ctx, s.pushTimeout)
	defer cancel()

	rep, err := s.flusher.Flush(ctx)
	if err != nil {
		return err
	}
	if !rep.Contains(act.ID) {
		return fmt.Errorf("server did not accept %s action %s", act.Kind, act.ID)
	}
	return nil
}

// ContinueTarget returns the anchor of the last session while the continue
// shortcut is on offer, or nil.
func (s *RitualService) ContinueTarget(ctx context.Context) (*anchor.Anchor, *anchor.SessionLogEntry, error) {
	last, err := s.repomanager.Sessions(s.db).Last(ctx)
	if err != nil {
		return nil, nil, err
	}
	if !anchor.ShouldOfferContinue(last, s.now()) {
		return nil, nil, nil
	}
	a, err := s.repomanager.Anchors(s.db).GetByID(ctx, last.AnchorID)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	if a.Deleted {
		return nil, nil, nil
	}
	return a, last, nil
}
