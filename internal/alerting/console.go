package alerting

import (
	"context"
	"log/slog"
)

// ConsoleAlerter writes alerts to the process logger, the zero-dependency
// destination every deployment gets by default.
type ConsoleAlerter struct {
	logger *slog.Logger
}

// NewConsoleAlerter constructs a ConsoleAlerter over logger, defaulting to
// slog.Default when nil.
func NewConsoleAlerter(logger *slog.Logger) *ConsoleAlerter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConsoleAlerter{logger: logger}
}

func (c *ConsoleAlerter) Name() string { return "console" }

// Alert logs the message at the slog level matching severity.
func (c *ConsoleAlerter) Alert(_ context.Context, severity Severity, message string, fields ...any) error {
	args := append([]any{"severity", severity.String()}, fields...)
	switch {
	case severity >= SeverityHigh:
		c.logger.Error(message, args...)
	case severity == SeverityWarning:
		c.logger.Warn(message, args...)
	default:
		c.logger.Info(message, args...)
	}
	return nil
}
