package commands

import (
	"context"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-tagfeed/internal/logging"
	"github.com/goliatone/go-tagfeed/pkg/interfaces"
)

// TelemetryStatus captures the result category for command execution.
type TelemetryStatus string

const (
	TelemetryStatusSuccess      TelemetryStatus = "success"
	TelemetryStatusFailed       TelemetryStatus = "failed"
	TelemetryStatusContextError TelemetryStatus = "context_error"
)

// TelemetryInfo describes a command execution outcome.
type TelemetryInfo struct {
	Command   string
	Operation string
	Fields    map[string]any
	Duration  time.Duration
	Error     error
	Status    TelemetryStatus
	Logger    interfaces.Logger
}

// Telemetry is invoked once per execution, after the command returned.
type Telemetry[T command.Message] func(ctx context.Context, msg T, info TelemetryInfo)

// DefaultTelemetry logs outcomes through logger instead of the logger the
// handler was configured with.
func DefaultTelemetry[T command.Message](logger interfaces.Logger) Telemetry[T] {
	logger = logging.Ensure(logger)
	return func(_ context.Context, _ T, info TelemetryInfo) {
		logOutcome(logging.WithFields(logger, info.Fields), info)
	}
}

// logOutcome writes "<operation>.<status>" entries, for example
// "site.build.success", falling back to "command.execute.<status>".
func logOutcome(logger interfaces.Logger, info TelemetryInfo) {
	prefix := info.Operation
	if prefix == "" {
		prefix = "command.execute"
	}
	msg := prefix + "." + string(info.Status)
	args := []any{"duration", info.Duration.String()}
	if info.Status == TelemetryStatusSuccess {
		logger.Info(msg, args...)
		return
	}
	logger.Error(msg, append(args, "error", info.Error)...)
}
