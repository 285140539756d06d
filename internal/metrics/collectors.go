package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "engine"

var (
	// AuditsProcessedTotal counts audits drained from the engine's audit
	// channel, labeled by the concrete AuditKind.
	AuditsProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audits_processed_total",
		Help:      "Total number of audit events written by the audit sink, by kind.",
	}, []string{"kind"})

	// AuditChannelDepth tracks how many audits are queued waiting to be
	// drained, a proxy for sink backpressure.
	AuditChannelDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_channel_depth",
		Help:      "Number of audit events currently buffered in the engine's audit channel.",
	})

	// DispatchErrorsTotal counts execution dispatch failures per venue.
	DispatchErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dispatch_errors_total",
		Help:      "Total number of execution dispatch errors, by exchange.",
	}, []string{"exchange"})

	// OpenOrdersGauge tracks the number of resting orders per instrument.
	OpenOrdersGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "open_orders",
		Help:      "Number of orders currently open, by exchange and instrument.",
	}, []string{"exchange", "instrument"})

	// ReconciliationRejectsTotal counts venue snapshots or fills the order
	// manager rejected as stale or contradictory during reconciliation.
	ReconciliationRejectsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reconciliation_rejects_total",
		Help:      "Total number of reconciliation events rejected, by exchange and reason.",
	}, []string{"exchange", "reason"})

	// RiskRefusalsTotal counts cancels and opens the risk manager refused.
	RiskRefusalsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "risk_refusals_total",
		Help:      "Total number of requests refused by the risk manager, by request kind and reason.",
	}, []string{"kind", "reason"})

	// VenueConnectivity reports 1 when a venue is considered connected, 0
	// otherwise.
	VenueConnectivity = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "venue_connectivity",
		Help:      "Venue connectivity state (1 = connected, 0 = disconnected), by exchange.",
	}, []string{"exchange"})

	// AlgoPassDuration measures how long a strategy's per-event pass took.
	AlgoPassDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "algo_pass_duration_seconds",
		Help:      "Duration of a single strategy evaluation pass, by strategy name.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"strategy"})

	// EquityCurrent is the latest observed equity in the configured asset.
	EquityCurrent = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "equity_current",
		Help:      "Latest observed account equity.",
	})

	// EquityHighWaterMark is the highest equity observed since the engine
	// started or was last reset.
	EquityHighWaterMark = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "equity_high_water_mark",
		Help:      "Highest equity observed.",
	})

	// DrawdownCurrent is the current drawdown from the high-water mark, as
	// a fraction.
	DrawdownCurrent = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "drawdown_current",
		Help:      "Current drawdown from the high-water mark, as a fraction of peak equity.",
	})

	// SafeModeActive reports 1 while the risk manager has tripped its
	// drawdown kill switch.
	SafeModeActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "safe_mode_active",
		Help:      "1 if the risk manager is in safe mode (all opens refused), 0 otherwise.",
	})

	// ErrorsTotal counts host process errors by a coarse type label.
	ErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "errors_total",
		Help:      "Total number of errors encountered, by type.",
	}, []string{"type"})

	// HeartbeatTimestamp is the unix time of the last recorded heartbeat.
	HeartbeatTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "heartbeat_timestamp",
		Help:      "Unix timestamp of the last recorded heartbeat.",
	})

	// UptimeSeconds reports the process uptime.
	UptimeSeconds = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "uptime_seconds",
		Help:      "Process uptime in seconds.",
	})

	// BuildInfo carries build metadata as labels on a constant gauge.
	BuildInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "build_info",
		Help:      "Build information, constant 1 gauge labeled by version, commit and date.",
	}, []string{"version", "commit", "date"})
)
