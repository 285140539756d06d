package metrics

import (
	"time"

	"github.com/shopspring/decimal"
)

// Recorder provides methods for recording engine metrics. It has no state
// of its own; every method just touches the package-level collectors.
type Recorder struct{}

// NewRecorder creates a new metrics recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// RecordAudit records an audit event being written, labeled by its
// concrete kind name.
func (r *Recorder) RecordAudit(kind string) {
	AuditsProcessedTotal.WithLabelValues(kind).Inc()
}

// RecordAuditChannelDepth records the current depth of the audit channel.
func (r *Recorder) RecordAuditChannelDepth(depth int) {
	AuditChannelDepth.Set(float64(depth))
}

// RecordDispatchError records an execution dispatch failure for a venue.
func (r *Recorder) RecordDispatchError(exchange string) {
	DispatchErrorsTotal.WithLabelValues(exchange).Inc()
}

// RecordOpenOrders records the current open order count for an instrument.
func (r *Recorder) RecordOpenOrders(exchange, instrument string, count int) {
	OpenOrdersGauge.WithLabelValues(exchange, instrument).Set(float64(count))
}

// RecordReconciliationReject records a rejected reconciliation event.
func (r *Recorder) RecordReconciliationReject(exchange, reason string) {
	ReconciliationRejectsTotal.WithLabelValues(exchange, reason).Inc()
}

// RecordRiskRefusal records a cancel or open refused by the risk manager.
func (r *Recorder) RecordRiskRefusal(kind, reason string) {
	RiskRefusalsTotal.WithLabelValues(kind, reason).Inc()
}

// RecordVenueConnectivity records whether a venue is connected.
func (r *Recorder) RecordVenueConnectivity(exchange string, connected bool) {
	v := 0.0
	if connected {
		v = 1.0
	}
	VenueConnectivity.WithLabelValues(exchange).Set(v)
}

// RecordAlgoPass records the duration of a strategy evaluation pass.
func (r *Recorder) RecordAlgoPass(strategy string, duration time.Duration) {
	AlgoPassDuration.WithLabelValues(strategy).Observe(duration.Seconds())
}

// RecordEquity records equity, high-water mark and drawdown.
func (r *Recorder) RecordEquity(current, highWaterMark, drawdown decimal.Decimal) {
	EquityCurrent.Set(current.InexactFloat64())
	EquityHighWaterMark.Set(highWaterMark.InexactFloat64())
	DrawdownCurrent.Set(drawdown.InexactFloat64())
}

// RecordSafeMode records safe mode status.
func (r *Recorder) RecordSafeMode(active bool) {
	if active {
		SafeModeActive.Set(1)
	} else {
		SafeModeActive.Set(0)
	}
}

// RecordError records an error by a coarse type label.
func (r *Recorder) RecordError(errorType string) {
	ErrorsTotal.WithLabelValues(errorType).Inc()
}

// RecordHeartbeat records a heartbeat at the current time.
func (r *Recorder) RecordHeartbeat() {
	HeartbeatTimestamp.Set(float64(time.Now().Unix()))
}

// RecordUptime records the process uptime.
func (r *Recorder) RecordUptime(uptime time.Duration) {
	UptimeSeconds.Set(uptime.Seconds())
}

// SetBuildInfo records build metadata as a constant 1 gauge.
func SetBuildInfo(version, commit, date string) {
	BuildInfo.WithLabelValues(version, commit, date).Set(1)
}

// Timer is a helper for measuring latency.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Elapsed returns the elapsed duration.
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}

// ObserveAlgoPass observes the elapsed time as an algo pass duration.
func (t *Timer) ObserveAlgoPass(strategy string) {
	AlgoPassDuration.WithLabelValues(strategy).Observe(t.Elapsed().Seconds())
}
