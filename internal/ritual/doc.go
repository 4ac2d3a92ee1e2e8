// Package ritual runs the timed countdown behind the charge and activation
// rituals.
//
// A Controller consumes an ordered list of phases with a one-second ticker,
// emits tick, haptic, prompt and phase-change events to its observers, and
// calls the completion callback exactly once when the countdown reaches zero.
// Cancelling the context passed to Run stops the countdown without completing.
package ritual
