package tui

import (
	"github.com/dmitrijs2005/anchor/internal/client/services"
	"github.com/dmitrijs2005/anchor/internal/ritual"
)

// RitualEventMsg wraps one controller event.
type RitualEventMsg struct {
	Event ritual.Event
}

// RitualOutcomeMsg carries the result of recording the finished ritual
// locally.
type RitualOutcomeMsg struct {
	Outcome *services.Outcome
	Err     error
}

// RitualPushedMsg carries the result of the background push.
type RitualPushedMsg struct {
	Toast string
}

// RitualStoppedMsg is sent when the controller's Run returns.
type RitualStoppedMsg struct {
	Err error
}

// QuitMsg ends the program after the completion delay.
type QuitMsg struct{}
