package ritual

import (
	"context"
	"errors"
	"sync"
	"time"
)

// State is the lifecycle position of a Controller.
type State int

const (
	StateIdle State = iota
	StateCounting
	StateComplete
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCounting:
		return "counting"
	case StateComplete:
		return "complete"
	case StateCancelled:
		return "cancelled"
	}
	return "unknown"
}

var (
	ErrAlreadyStarted = errors.New("ritual already started")
	ErrNoPhases       = errors.New("ritual has no phases")
)

// Config describes one ritual.
type Config struct {
	Name            string
	Phases          []Phase
	HapticInterval  int
	Prompts         []Prompt
	CompletionDelay time.Duration
}

// Total returns the ritual length in seconds.
func (c Config) Total() int {
	return Total(c.Phases)
}

// Controller drives a single run of a ritual. It is not reusable.
type Controller struct {
	cfg        Config
	onComplete func(context.Context)
	newTicker  TickerFunc
	observers  []Observer

	mu        sync.Mutex
	state     State
	remaining int
}

type Option func(*Controller)

// WithTicker replaces the wall-clock ticker.
func WithTicker(f TickerFunc) Option {
	return func(c *Controller) { c.newTicker = f }
}

// WithObserver registers o for every event.
func WithObserver(o Observer) Option {
	return func(c *Controller) { c.observers = append(c.observers, o) }
}

// NewController builds a controller for cfg. onComplete may be nil.
func NewController(cfg Config, onComplete func(context.Context), opts ...Option) *Controller {
	c := &Controller{
		cfg:        cfg,
		onComplete: onComplete,
		newTicker:  NewTimeTicker,
		remaining:  cfg.Total(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Controller) Config() Config { return c.cfg }

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Controller) emit(e Event) {
	for _, o := range c.observers {
		o(e)
	}
}

func (c *Controller) snapshot(kind EventKind, elapsed int) Event {
	total := c.cfg.Total()
	idx, phaseRemaining := ActivePhase(c.cfg.Phases, elapsed)
	e := Event{
		Kind:           kind,
		Elapsed:        elapsed,
		Remaining:      total - elapsed,
		Phase:          idx,
		PhaseRemaining: phaseRemaining,
	}
	if idx >= 0 {
		e.PhaseName = c.cfg.Phases[idx].Name
	}
	return e
}

// Run counts the ritual down to zero. It blocks until completion, in which
// case it returns nil after invoking the completion callback, or until ctx is
// cancelled, in which case it returns ctx.Err() and the callback never runs.
func (c *Controller) Run(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	c.state = StateCounting
	c.mu.Unlock()

	total := c.cfg.Total()
	if total <= 0 {
		c.setState(StateIdle)
		return ErrNoPhases
	}

	ticker := c.newTicker(time.Second)
	defer ticker.Stop()

	elapsed := 0
	phase, _ := ActivePhase(c.cfg.Phases, 0)
	prompt := PromptAt(c.cfg.Prompts, 0)

	c.emit(c.snapshot(EventTick, 0))
	if prompt != "" {
		e := c.snapshot(EventPrompt, 0)
		e.Prompt = prompt
		c.emit(e)
	}

	for {
		select {
		case <-ctx.Done():
			c.setState(StateCancelled)
			return ctx.Err()
		case <-ticker.C():
		}

		elapsed++
		remaining := total - elapsed
		c.mu.Lock()
		c.remaining = remaining
		c.mu.Unlock()

		c.emit(c.snapshot(EventTick, elapsed))

		if remaining <= 0 {
			break
		}

		idx, _ := ActivePhase(c.cfg.Phases, elapsed)
		switch {
		case idx != phase:
			phase = idx
			c.emit(c.snapshot(EventPhaseChange, elapsed))
			e := c.snapshot(EventHaptic, elapsed)
			e.Feedback = FeedbackHeavy
			c.emit(e)
		case c.cfg.HapticInterval > 0 && elapsed%c.cfg.HapticInterval == 0:
			e := c.snapshot(EventHaptic, elapsed)
			e.Feedback = IntensityFor(remaining)
			c.emit(e)
		}

		if p := PromptAt(c.cfg.Prompts, elapsed); p != prompt {
			prompt = p
			e := c.snapshot(EventPrompt, elapsed)
			e.Prompt = p
			c.emit(e)
		}
	}

	ticker.Stop()
	c.setState(StateComplete)

	e := c.snapshot(EventHaptic, total)
	e.Feedback = FeedbackSuccess
	c.emit(e)

	if c.onComplete != nil {
		c.onComplete(ctx)
	}
	c.emit(c.snapshot(EventComplete, total))
	return nil
}
