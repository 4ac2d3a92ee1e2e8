package cli

import (
	"context"
)

// Sync pushes pending actions and pulls newer anchors.
func (a *App) Sync(ctx context.Context) error {
	rep, err := a.syncer.Flush(ctx)
	if err != nil {
		return err
	}
	a.printf("Pushed %d, applied %d, rejected %d, pulled %d\n",
		rep.Pushed, len(rep.Applied), len(rep.Rejected), rep.Pulled)
	return nil
}

// Status prints the connection mode and what is waiting to be synced.
func (a *App) Status(ctx context.Context) error {
	pending, err := a.syncer.Pending(ctx)
	if err != nil {
		return err
	}
	flags, err := a.onboarding.Flags(ctx)
	if err != nil {
		return err
	}

	mode := a.Mode()
	if mode == "" {
		mode = "unknown"
	}
	a.printf("Mode:        %s\n", mode)
	a.printf("Pending:     %d\n", pending)
	a.printf("Onboarded:   %v\n", flags.OnboardingComplete)
	if flags.Segment != "" {
		a.printf("Segment:     %s\n", flags.Segment)
	}
	if mode != ModeOnline && pending > 0 {
		a.println("Pending actions will be sent once the server is reachable.")
	}
	return nil
}
