package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/anchor/internal/anchor"
	"github.com/dmitrijs2005/anchor/internal/client/services"
	"github.com/dmitrijs2005/anchor/internal/client/tui"
	"github.com/dmitrijs2005/anchor/internal/common"
)

// ritualResult is what the countdown screen left behind.
type ritualResult struct {
	outcome   *services.Outcome
	pending   bool
	cancelled bool
}

// playRitual shows the countdown. It is swapped in tests; the real one needs
// a terminal.
var playRitual = func(ctx context.Context, a *anchor.Anchor, sess services.Session, record tui.RecordFunc, push tui.PushFunc) (ritualResult, error) {
	final, err := tui.RunRitual(tui.NewRitualModel(ctx, a, sess.Config, record, push))
	if err != nil {
		return ritualResult{}, err
	}
	res := ritualResult{outcome: final.Outcome(), pending: final.Pending(), cancelled: final.Cancelled()}
	return res, final.Err()
}

// Charge runs a quick or deep charge on the anchor.
func (a *App) Charge(ctx context.Context, ref, mode string) error {
	x, err := a.resolve(ctx, ref)
	if err != nil {
		return err
	}
	var sess services.Session
	switch mode {
	case "", "quick":
		sess = services.QuickChargeSession(x.ID)
	case "deep":
		sess = services.DeepChargeSession(x.ID)
	default:
		return fmt.Errorf("%w: charge mode must be quick or deep", common.ErrorValidation)
	}
	return a.perform(ctx, sess)
}

func (a *App) Activate(ctx context.Context, ref string) error {
	x, err := a.resolve(ctx, ref)
	if err != nil {
		return err
	}
	return a.perform(ctx, services.ActivationSession(x.ID))
}

// Continue repeats the last session while the shortcut is on offer.
func (a *App) Continue(ctx context.Context) error {
	target, last, err := a.rituals.ContinueTarget(ctx)
	if err != nil {
		return err
	}
	if target == nil {
		a.println("Nothing to continue.")
		return nil
	}

	sess := services.ActivationSession(target.ID)
	if last.Type == anchor.SessionCharge {
		sess = services.QuickChargeSession(target.ID)
		if last.Mode == "deep" {
			sess = services.DeepChargeSession(target.ID)
		}
	}
	return a.perform(ctx, sess)
}

func (a *App) perform(ctx context.Context, sess services.Session) error {
	x, err := a.rituals.Prepare(ctx, sess)
	if err != nil {
		return err
	}

	res, err := playRitual(ctx, x, sess,
		func(ctx context.Context) (*services.Outcome, error) {
			return a.rituals.Record(ctx, sess)
		},
		func(ctx context.Context, out *services.Outcome) string {
			return a.rituals.Push(ctx, sess, out)
		})
	if err != nil {
		return err
	}
	out := res.outcome
	if res.cancelled || out == nil {
		a.println("Stopped, nothing was recorded.")
		return nil
	}

	switch {
	case out.Toast != "":
		a.println(out.Toast)
	case res.pending:
		a.println("Saved. Syncing in the background.")
	}
	switch sess.Type {
	case anchor.SessionCharge:
		a.printf("%q is charged.\n", out.Anchor.IntentionText)
	case anchor.SessionActivation:
		a.printf("%q activated %d times.\n", out.Anchor.IntentionText, out.Anchor.ActivationCount)
	}
	return nil
}
