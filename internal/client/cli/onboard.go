package cli

import (
	"context"

	"github.com/dmitrijs2005/anchor/internal/anchor"
	"github.com/dmitrijs2005/anchor/internal/client/tui"
	"github.com/dmitrijs2005/anchor/internal/sequencer"
)

// runOnboarding is swapped in tests; the real one needs a terminal.
var runOnboarding = func(seq *sequencer.Sequencer) (bool, error) {
	return tui.RunOnboarding(seq)
}

var segmentOptions = []struct {
	segment anchor.Segment
	label   string
}{
	{anchor.SegmentBeginner, "I'm new to this"},
	{anchor.SegmentPractitioner, "I already practise sigil magic"},
	{anchor.SegmentSkeptic, "I'm curious but skeptical"},
}

// Onboard shows the narrative and asks which segment fits the user.
func (a *App) Onboard(ctx context.Context) error {
	seq, err := a.onboarding.Narrative(ctx)
	if err != nil {
		return err
	}
	done, err := runOnboarding(seq)
	if err != nil {
		return err
	}
	if !done {
		a.println("You can run 'onboard' again any time.")
		return nil
	}

	labels := make([]string, len(segmentOptions))
	for i, o := range segmentOptions {
		labels[i] = o.label
	}
	i, err := GetChoice(a.reader, "Which describes you best? (empty to skip)", labels, a.out)
	if err != nil || i < 0 {
		return err
	}
	return a.onboarding.SetSegment(ctx, segmentOptions[i].segment)
}
