// Package main is the host process entry point: it builds an Engine over
// the indexed state regime, wires a simulated execution client per venue,
// starts the audit and alerting sinks, and drives the reducer to
// completion or until signalled to shut down.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/barterforge/engine-core/internal/alerting"
	"github.com/barterforge/engine-core/internal/audit"
	"github.com/barterforge/engine-core/internal/config"
	"github.com/barterforge/engine-core/internal/engine"
	"github.com/barterforge/engine-core/internal/engine/state"
	"github.com/barterforge/engine-core/internal/execution"
	"github.com/barterforge/engine-core/internal/feed"
	"github.com/barterforge/engine-core/internal/metrics"
	"github.com/barterforge/engine-core/internal/risk"
	"github.com/barterforge/engine-core/internal/strategy"
	"github.com/barterforge/engine-core/internal/types"
	"github.com/barterforge/engine-core/pkg/clock"
)

// Version information (set by build flags).
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "version", "-v", "--version":
		cmdVersion()
	case "help", "-h", "--help":
		printUsage()
	case "validate":
		cmdValidate(os.Args[2:])
	case "run":
		cmdRun(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`engine-core - single-threaded event-driven trading engine core

Usage:
  enginectl <command> [options]

Commands:
  run        Start the engine against the configured (simulated) venues
  validate   Validate a configuration file
  version    Show version information
  help       Show this help message

Examples:
  enginectl run --config config.yaml
  enginectl validate --config config.yaml`)
}

func cmdVersion() {
	fmt.Printf("enginectl version %s\n", Version)
	fmt.Printf("  build time: %s\n", BuildTime)
	fmt.Printf("  git commit: %s\n", GitCommit)
}

func cmdValidate(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to configuration file")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("configuration is valid")
	fmt.Printf("  strategy: %s\n", cfg.Strategy.Name)
	fmt.Printf("  venues: %v\n", cfg.Universe.Exchanges)
	fmt.Printf("  instruments: %d\n", len(cfg.Universe.Instruments))
	fmt.Printf("  max global drawdown: %.1f%%\n", cfg.Risk.MaxGlobalDrawdownPct*100)
}

func cmdRun(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to configuration file")
	fs.Parse(args)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	recorder := metrics.NewRecorder()
	metrics.SetBuildInfo(Version, GitCommit, BuildTime)

	if cfg.Metrics.Enabled {
		server := metrics.NewServer(metrics.ServerConfig{
			Port:        cfg.Metrics.Port,
			MetricsPath: cfg.Metrics.Path,
			HealthPath:  "/health",
		}, logger)
		if err := server.Start(); err != nil {
			logger.Error("failed to start metrics server", "err", err)
			os.Exit(1)
		}
		defer server.Shutdown(context.Background())
	}

	alerter := buildAlerter(cfg, logger)

	universe := buildUniverse(cfg)
	algoStrategy := buildStrategy(cfg)
	flatten := strategy.NewFlatten[types.ExchangeIndex, types.AssetIndex, types.InstrumentIndex]()
	riskEngine := risk.NewEngine[types.ExchangeIndex, types.AssetIndex, types.InstrumentIndex](
		cfg.ToRiskConfig(), decimal.Zero, logger,
	)

	engineState, resolver := state.BuildIndexed(universe, algoStrategy, riskEngine, cfg.InitialTradingState())

	channels := make(map[types.ExchangeId]execution.VenueChannel, len(cfg.Universe.Exchanges))
	requestChans := make([]chan execution.ExecutionRequest, 0, len(cfg.Universe.Exchanges))
	accountStreams := make([]<-chan feed.EngineEvent, 0, len(cfg.Universe.Exchanges))
	for _, name := range cfg.Universe.Exchanges {
		venue := types.ExchangeId(name)

		requests := make(chan execution.ExecutionRequest, cfg.Engine.ExecutionChannelCapacityPerVenue)
		accountOut := make(chan feed.AccountStreamEvent)

		simCfg := execution.SimulatedConfig{
			SlippageTicks:      cfg.Execution.Simulated.SlippageTicks,
			TickSize:           decimal.NewFromFloat(cfg.Execution.Simulated.TickSize),
			CommissionPerSide:  decimal.NewFromFloat(cfg.Execution.Simulated.CommissionPerSide),
			FillDelay:          cfg.FillDelay(),
			RateLimitPerSecond: cfg.Execution.Simulated.RateLimitPerSecond,
		}
		client := execution.NewSimulatedClient(venue, simCfg, requests, accountOut, logger)
		go client.Run()

		channels[venue] = execution.VenueChannel{Requests: requests, Done: client.Done()}
		requestChans = append(requestChans, requests)
		accountStreams = append(accountStreams, feed.WrapAccountStream(accountOut))
	}
	dispatcher := execution.NewDispatcher(channels, logger)

	auditor := engine.NewAuditor(cfg.Engine.AuditChannelCapacity, clock.Real{}.Now, logger)

	eng := engine.New[types.ExchangeIndex, types.AssetIndex, types.InstrumentIndex](
		engineState, resolver, dispatcher,
		algoStrategy, flatten, flatten, riskEngine,
		auditor, logger,
	)

	sink, err := buildAuditSink(cfg, logger)
	if err != nil {
		logger.Error("failed to build audit sink", "err", err)
		os.Exit(1)
	}
	defer sink.Close()

	go audit.Run(ctx, recordingSink{Sink: sink, recorder: recorder}, auditor.Events(), func(event engine.AuditEvent, err error) {
		logger.Error("audit write failed", "sequence", event.ID, "err", err)
		recorder.RecordError("audit_write")
	})

	if alerter != nil && cfg.IsAlertEventEnabled(string(alerting.EventEngineStarted)) {
		_ = alerter.Alert(ctx, alerting.SeverityInfo, "engine starting", "strategy", cfg.Strategy.Name)
	}
	startedAt := clock.Real{}.Now()

	commands := make(chan feed.EngineEvent)
	go func() {
		<-ctx.Done()
		commands <- feed.ShutdownEvent{}
		close(commands)
	}()

	sources := append(accountStreams, commands)
	merged := feed.Merge(sources...)

	logger.Info("engine running", "strategy", cfg.Strategy.Name, "venues", cfg.Universe.Exchanges)
	engine.Run(eng, merged)

	// The reducer has emitted its final audit and will dispatch nothing
	// further; closing the request channels now lets each execution client
	// drain and exit. Closing them any earlier would race the reducer's
	// own sends.
	for _, requests := range requestChans {
		close(requests)
	}

	if alerter != nil && cfg.IsAlertEventEnabled(string(alerting.EventRunSummary)) {
		summary := buildRunSummary(engineState, startedAt, clock.Real{}.Now())
		_ = alerter.Alert(context.Background(), alerting.SeverityInfo, summary.Render())
	}
	logger.Info("engine stopped")
}

// buildRunSummary condenses the final EngineState into the operator
// digest sent on shutdown.
func buildRunSummary(
	s *state.EngineState[types.ExchangeIndex, types.AssetIndex, types.InstrumentIndex],
	start, end time.Time,
) alerting.RunSummary {
	summary := alerting.RunSummary{
		Start:          start,
		End:            end,
		RealisedPnL:    decimal.Zero,
		ShutdownReason: "signalled",
	}
	for _, inst := range s.Instruments.All() {
		summary.RealisedPnL = summary.RealisedPnL.Add(inst.Position.RealisedPnL)
		if inst.Position.Quantity.IsZero() {
			continue
		}
		summary.OpenPositions = append(summary.OpenPositions, alerting.PositionSummary{
			Exchange:   string(inst.Exchange),
			Instrument: string(inst.Instrument),
			Quantity:   inst.Position.Quantity,
			AvgPrice:   inst.Position.AvgPrice,
		})
	}
	return summary
}

func buildUniverse(cfg *config.Config) state.Universe {
	u := state.Universe{}
	for _, name := range cfg.Universe.Exchanges {
		u.Exchanges = append(u.Exchanges, types.ExchangeId(name))
	}
	for _, a := range cfg.Universe.Assets {
		u.Assets = append(u.Assets, types.AssetKey{
			Exchange: types.ExchangeId(a.Exchange),
			Asset:    types.AssetName(a.Asset),
		})
	}
	for _, i := range cfg.Universe.Instruments {
		u.Instruments = append(u.Instruments, types.InstrumentKey{
			Exchange:   types.ExchangeId(i.Exchange),
			Instrument: types.InstrumentName(i.Instrument),
		})
	}
	return u
}

func buildStrategy(cfg *config.Config) engine.AlgoStrategy[types.ExchangeIndex, types.AssetIndex, types.InstrumentIndex] {
	switch cfg.Strategy.Name {
	case "grid":
		return strategy.NewGrid[types.ExchangeIndex, types.AssetIndex, types.InstrumentIndex](strategy.DefaultGridConfig())
	case "meanrev":
		return strategy.NewMeanReversion[types.ExchangeIndex, types.AssetIndex, types.InstrumentIndex](strategy.DefaultMeanRevConfig())
	default:
		return strategy.NewBreakout[types.ExchangeIndex, types.AssetIndex, types.InstrumentIndex](strategy.DefaultBreakoutConfig())
	}
}

func buildAlerter(cfg *config.Config, logger *slog.Logger) alerting.Alerter {
	if !cfg.Alerting.Enabled {
		return nil
	}
	multi := alerting.NewMultiAlerter(logger)
	for _, ch := range cfg.Alerting.Channels {
		switch ch.Type {
		case "telegram":
			multi.AddAlerter(alerting.NewTelegramAlerter(alerting.TelegramConfig{
				BotToken: ch.BotToken,
				ChatID:   ch.ChatID,
			}))
		case "console":
			multi.AddAlerter(alerting.NewConsoleAlerter(logger))
		}
	}
	return multi
}

func buildAuditSink(cfg *config.Config, logger *slog.Logger) (audit.Sink, error) {
	if !cfg.Audit.Enabled {
		return noopSink{}, nil
	}
	return audit.NewSQLiteSink(cfg.Audit.Path)
}

// noopSink discards audit events, for deployments that run without a
// durable audit trail.
type noopSink struct{}

func (noopSink) Write(context.Context, engine.AuditEvent) error { return nil }
func (noopSink) Close() error                                   { return nil }

// recordingSink wraps a Sink to feed the audits-processed counter on every
// successful write.
type recordingSink struct {
	audit.Sink
	recorder *metrics.Recorder
}

func (s recordingSink) Write(ctx context.Context, event engine.AuditEvent) error {
	if err := s.Sink.Write(ctx, event); err != nil {
		return err
	}
	s.recorder.RecordAudit(fmt.Sprintf("%T", event.Kind))
	return nil
}
