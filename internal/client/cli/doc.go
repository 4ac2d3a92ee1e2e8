// Package cli is the interactive Anchor terminal client.
//
// It wires configuration, the local SQLite store, the gRPC sync client and
// the application services behind a small REPL. Rituals and the onboarding
// narrative open full-screen bubbletea views from package tui.
//
// The client works offline: every change is written locally and queued, and
// a background watcher pings the server and flushes the queue once it is
// reachable again.
package cli
