// Package sequencer advances through a fixed list of steps, as used by the
// onboarding narrative and the anchor creation wizard.
package sequencer

import (
	"errors"
	"sync"
)

var (
	ErrBackDisabled = errors.New("back navigation disabled")
	ErrNoSteps      = errors.New("sequence has no steps")
)

// Step is the content of one screen.
type Step struct {
	Key      string
	Headline string
	Body     string
	CTA      string
}

// Hooks are optional transition callbacks. OnExit sees the step being left,
// OnEnter the step being entered.
type Hooks struct {
	OnExit  func(index int, s Step)
	OnEnter func(index int, s Step)
}

// Sequencer is safe for concurrent use. Hooks and the completion action may
// read the sequencer but must not call Continue or Back.
type Sequencer struct {
	steps      []Step
	backLock   int
	hooks      Hooks
	onComplete func() error

	// step serialises transitions; mu guards the fields below and is never
	// held while a callback runs.
	step      sync.Mutex
	mu        sync.Mutex
	index     int
	completed bool
}

type Option func(*Sequencer)

// WithBackLock disables Back from step index onwards.
func WithBackLock(index int) Option {
	return func(s *Sequencer) { s.backLock = index }
}

func WithHooks(h Hooks) Option {
	return func(s *Sequencer) { s.hooks = h }
}

// New builds a sequencer over steps. onComplete runs when the final step's
// CTA is pressed.
func New(steps []Step, onComplete func() error, opts ...Option) (*Sequencer, error) {
	if len(steps) == 0 {
		return nil, ErrNoSteps
	}
	s := &Sequencer{
		steps:      steps,
		backLock:   len(steps),
		onComplete: onComplete,
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

func (s *Sequencer) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

func (s *Sequencer) Current() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.steps[s.index]
}

func (s *Sequencer) Len() int { return len(s.steps) }

func (s *Sequencer) IsLast() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index == len(s.steps)-1
}

// Completed reports whether the completion action has run.
func (s *Sequencer) Completed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed
}

// CanGoBack reports whether Back would succeed.
func (s *Sequencer) CanGoBack() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canGoBack()
}

func (s *Sequencer) canGoBack() bool {
	return s.index > 0 && s.index < s.backLock && !s.completed
}

// Continue moves to the next step. On the last step it runs the completion
// action once; later calls are no-ops. It reports whether the sequence is
// complete.
func (s *Sequencer) Continue() (bool, error) {
	s.step.Lock()
	defer s.step.Unlock()

	s.mu.Lock()
	from, completed := s.index, s.completed
	s.mu.Unlock()

	if completed {
		return true, nil
	}

	if from == len(s.steps)-1 {
		if s.onComplete != nil {
			if err := s.onComplete(); err != nil {
				return false, err
			}
		}
		s.mu.Lock()
		s.completed = true
		s.mu.Unlock()
		return true, nil
	}

	s.move(from, from+1)
	return false, nil
}

// Back returns to the previous step.
func (s *Sequencer) Back() error {
	s.step.Lock()
	defer s.step.Unlock()

	s.mu.Lock()
	from, ok := s.index, s.canGoBack()
	s.mu.Unlock()

	if !ok {
		return ErrBackDisabled
	}
	s.move(from, from-1)
	return nil
}

func (s *Sequencer) move(from, to int) {
	if s.hooks.OnExit != nil {
		s.hooks.OnExit(from, s.steps[from])
	}
	s.mu.Lock()
	s.index = to
	s.mu.Unlock()
	if s.hooks.OnEnter != nil {
		s.hooks.OnEnter(to, s.steps[to])
	}
}
