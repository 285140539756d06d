package alerting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// MultiAlerter fans one alert out to every registered destination,
// collecting failures instead of stopping at the first: a Telegram outage
// must not suppress the console line.
type MultiAlerter struct {
	mu       sync.Mutex
	alerters []Alerter
	logger   *slog.Logger
}

// NewMultiAlerter constructs a MultiAlerter over the given destinations.
func NewMultiAlerter(logger *slog.Logger, alerters ...Alerter) *MultiAlerter {
	if logger == nil {
		logger = slog.Default()
	}
	return &MultiAlerter{alerters: alerters, logger: logger}
}

func (m *MultiAlerter) Name() string { return "multi" }

// AddAlerter registers another destination.
func (m *MultiAlerter) AddAlerter(a Alerter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerters = append(m.alerters, a)
}

// Alert delivers to every destination, returning the joined delivery
// errors (nil if all succeeded). Each failure is also logged so a broken
// channel is visible even when the caller discards the error.
func (m *MultiAlerter) Alert(ctx context.Context, severity Severity, message string, fields ...any) error {
	m.mu.Lock()
	targets := make([]Alerter, len(m.alerters))
	copy(targets, m.alerters)
	m.mu.Unlock()

	var errs []error
	for _, a := range targets {
		if err := a.Alert(ctx, severity, message, fields...); err != nil {
			m.logger.Warn("alert delivery failed", "alerter", a.Name(), "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", a.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// AlertEvent delivers message at the event's default severity.
func (m *MultiAlerter) AlertEvent(ctx context.Context, event Event, message string, fields ...any) error {
	return m.Alert(ctx, DefaultSeverity(event), message, fields...)
}
