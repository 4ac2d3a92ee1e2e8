package ritual

// EventKind discriminates controller events.
type EventKind int

const (
	EventTick EventKind = iota + 1
	EventHaptic
	EventPrompt
	EventPhaseChange
	EventComplete
)

func (k EventKind) String() string {
	switch k {
	case EventTick:
		return "tick"
	case EventHaptic:
		return "haptic"
	case EventPrompt:
		return "prompt"
	case EventPhaseChange:
		return "phase_change"
	case EventComplete:
		return "complete"
	}
	return "unknown"
}

// Event is a snapshot of the countdown at the moment something happened.
type Event struct {
	Kind           EventKind
	Elapsed        int
	Remaining      int
	Phase          int
	PhaseName      string
	PhaseRemaining int
	Feedback       Feedback
	Prompt         string
}

// Observer receives events synchronously on the Run goroutine.
type Observer func(Event)
