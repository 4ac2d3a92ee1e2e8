package services

import (
	"context"

	"github.com/dmitrijs2005/anchor/internal/logging"
)

// ErrorContext says where a non-fatal failure happened.
type ErrorContext struct {
	Screen   string
	Action   string
	AnchorID string
}

// ErrorReporter collects failures that the user is only told about through
// a toast.
type ErrorReporter interface {
	Report(ctx context.Context, err error, ec ErrorContext)
}

// LogReporter writes reports to a logger.
type LogReporter struct {
	logger logging.Logger
}

func NewLogReporter(l logging.Logger) *LogReporter {
	return &LogReporter{logger: l.With("module", "error_reporter")}
}

func (r *LogReporter) Report(ctx context.Context, err error, ec ErrorContext) {
	r.logger.Error(ctx, err.Error(), "screen", ec.Screen, "action", ec.Action, "anchor_id", ec.AnchorID)
}
