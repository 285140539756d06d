// Package config handles configuration loading and validation for the
// engine host process.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/barterforge/engine-core/internal/risk"
	"github.com/barterforge/engine-core/internal/types"
)

// ErrInvalidConfig is returned by Validate when one or more fields fail
// validation; the underlying message lists every violation found.
var ErrInvalidConfig = errors.New("invalid config")

// Config represents the full host process configuration.
type Config struct {
	Engine    EngineConfig    `yaml:"engine"`
	Universe  UniverseConfig  `yaml:"universe"`
	Strategy  StrategyConfig  `yaml:"strategy"`
	Risk      RiskConfig      `yaml:"risk"`
	Execution ExecutionConfig `yaml:"execution"`
	Audit     AuditConfig     `yaml:"audit"`
	Alerting  AlertingConfig  `yaml:"alerting"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// StrategyConfig selects which reference AlgoStrategy the host wires in.
type StrategyConfig struct {
	Name string `yaml:"name"` // breakout | grid | meanrev
}

// EngineConfig holds the reducer's own knobs: channel sizing and the
// trading state it starts in.
type EngineConfig struct {
	AuditChannelCapacity             int    `yaml:"audit_channel_capacity"`
	ExecutionChannelCapacityPerVenue int    `yaml:"execution_channel_capacity_per_venue"`
	InitialTradingState              string `yaml:"initial_trading_state"` // enabled | disabled
}

// UniverseConfig declares the static set of venues, balances and
// instruments the engine is constructed over.
type UniverseConfig struct {
	Exchanges   []string           `yaml:"exchanges"`
	Assets      []AssetConfig      `yaml:"assets"`
	Instruments []InstrumentConfig `yaml:"instruments"`
}

// AssetConfig names one (venue, asset) balance tracked by the engine.
type AssetConfig struct {
	Exchange string `yaml:"exchange"`
	Asset    string `yaml:"asset"`
}

// InstrumentConfig names one (venue, instrument) traded by the engine and
// the tick constants risk sizing uses for it.
type InstrumentConfig struct {
	Exchange   string  `yaml:"exchange"`
	Instrument string  `yaml:"instrument"`
	TickSize   float64 `yaml:"tick_size"`
	TickValue  float64 `yaml:"tick_value"`
}

// RiskConfig mirrors risk.Config, expressed in YAML-friendly primitives.
type RiskConfig struct {
	EquityAssetExchange         string  `yaml:"equity_asset_exchange"`
	EquityAsset                 string  `yaml:"equity_asset"`
	MaxGlobalDrawdownPct        float64 `yaml:"max_global_drawdown_pct"`
	MaxExposurePerInstrumentPct float64 `yaml:"max_exposure_per_instrument_pct"`
	MaxTotalExposurePct         float64 `yaml:"max_total_exposure_pct"`
}

// ExecutionConfig holds execution-client settings.
type ExecutionConfig struct {
	Simulated SimulatedConfig `yaml:"simulated"`
}

// SimulatedConfig configures the in-process simulated execution client used
// by every venue that has no real adapter wired in.
type SimulatedConfig struct {
	SlippageTicks      int     `yaml:"slippage_ticks"`
	TickSize           float64 `yaml:"tick_size"`
	CommissionPerSide  float64 `yaml:"commission_per_side"`
	FillDelayMs        int     `yaml:"fill_delay_ms"`
	RateLimitPerSecond int     `yaml:"rate_limit_per_second"`
}

// AuditConfig configures the durable audit sink.
type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// AlertingConfig holds alerting settings.
type AlertingConfig struct {
	Enabled  bool            `yaml:"enabled"`
	Channels []ChannelConfig `yaml:"channels"`
	Events   []string        `yaml:"events"`
}

// ChannelConfig holds a single alert channel configuration.
type ChannelConfig struct {
	Type       string `yaml:"type"` // telegram | console
	BotToken   string `yaml:"bot_token"`
	ChatID     string `yaml:"chat_id"`
	WebhookURL string `yaml:"webhook_url"`
}

// MetricsConfig holds metrics server settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    int    `yaml:"port"`
	Path    string `yaml:"path"`
}

// Load loads configuration from a YAML file, expanding environment
// variable references of the form ${VAR}.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes loads configuration from YAML bytes.
func LoadFromBytes(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	var errs []string

	switch c.Engine.InitialTradingState {
	case "enabled", "disabled":
	default:
		errs = append(errs, "engine.initial_trading_state must be 'enabled' or 'disabled'")
	}
	if c.Engine.AuditChannelCapacity <= 0 {
		errs = append(errs, "engine.audit_channel_capacity must be positive")
	}
	if c.Engine.ExecutionChannelCapacityPerVenue <= 0 {
		errs = append(errs, "engine.execution_channel_capacity_per_venue must be positive")
	}

	if len(c.Universe.Exchanges) == 0 {
		errs = append(errs, "universe.exchanges must name at least one venue")
	}
	if len(c.Universe.Instruments) == 0 {
		errs = append(errs, "universe.instruments must name at least one instrument")
	}
	for _, inst := range c.Universe.Instruments {
		if inst.Exchange == "" || inst.Instrument == "" {
			errs = append(errs, "universe.instruments entries require exchange and instrument")
		}
		if inst.TickSize <= 0 {
			errs = append(errs, fmt.Sprintf("universe.instruments[%s:%s].tick_size must be positive", inst.Exchange, inst.Instrument))
		}
	}

	if c.Risk.EquityAssetExchange == "" || c.Risk.EquityAsset == "" {
		errs = append(errs, "risk.equity_asset_exchange and risk.equity_asset are required")
	}
	if c.Risk.MaxGlobalDrawdownPct <= 0 || c.Risk.MaxGlobalDrawdownPct > 1 {
		errs = append(errs, "risk.max_global_drawdown_pct must be between 0 and 1")
	}
	if c.Risk.MaxExposurePerInstrumentPct <= 0 || c.Risk.MaxExposurePerInstrumentPct > 1 {
		errs = append(errs, "risk.max_exposure_per_instrument_pct must be between 0 and 1")
	}
	if c.Risk.MaxTotalExposurePct <= 0 || c.Risk.MaxTotalExposurePct > 2 {
		errs = append(errs, "risk.max_total_exposure_pct must be between 0 and 2")
	}

	switch c.Strategy.Name {
	case "breakout", "grid", "meanrev":
	default:
		errs = append(errs, "strategy.name must be one of 'breakout', 'grid', 'meanrev'")
	}

	if c.Audit.Enabled && c.Audit.Path == "" {
		errs = append(errs, "audit.path is required when audit.enabled is true")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(errs, "; "))
	}
	return nil
}

// InitialTradingState parses Engine.InitialTradingState into a
// types.TradingState.
func (c *Config) InitialTradingState() types.TradingState {
	if c.Engine.InitialTradingState == "enabled" {
		return types.TradingEnabled
	}
	return types.TradingDisabled
}

// EquityAssetKey builds the types.AssetKey the risk engine tracks equity
// off of.
func (c *Config) EquityAssetKey() types.AssetKey {
	return types.AssetKey{
		Exchange: types.ExchangeId(c.Risk.EquityAssetExchange),
		Asset:    types.AssetName(c.Risk.EquityAsset),
	}
}

// ToRiskConfig converts to risk.Config.
func (c *Config) ToRiskConfig() risk.Config {
	return risk.Config{
		EquityAsset:                 c.EquityAssetKey(),
		MaxGlobalDrawdownPct:        decimal.NewFromFloat(c.Risk.MaxGlobalDrawdownPct),
		MaxExposurePerInstrumentPct: decimal.NewFromFloat(c.Risk.MaxExposurePerInstrumentPct),
		MaxTotalExposurePct:         decimal.NewFromFloat(c.Risk.MaxTotalExposurePct),
	}
}

// InstrumentRiskProfiles builds the per-instrument tick constants risk
// sizing needs, keyed by types.InstrumentKey.
func (c *Config) InstrumentRiskProfiles() map[types.InstrumentKey]risk.InstrumentRiskProfile {
	out := make(map[types.InstrumentKey]risk.InstrumentRiskProfile, len(c.Universe.Instruments))
	for _, inst := range c.Universe.Instruments {
		key := types.InstrumentKey{Exchange: types.ExchangeId(inst.Exchange), Instrument: types.InstrumentName(inst.Instrument)}
		out[key] = risk.InstrumentRiskProfile{
			TickSize:  decimal.NewFromFloat(inst.TickSize),
			TickValue: decimal.NewFromFloat(inst.TickValue),
		}
	}
	return out
}

// FillDelay returns the simulated execution client's fill delay duration.
func (c *Config) FillDelay() time.Duration {
	return time.Duration(c.Execution.Simulated.FillDelayMs) * time.Millisecond
}

// IsAlertEventEnabled checks if an alert event type is enabled.
func (c *Config) IsAlertEventEnabled(event string) bool {
	if !c.Alerting.Enabled {
		return false
	}
	if len(c.Alerting.Events) == 0 {
		return true
	}
	for _, e := range c.Alerting.Events {
		if e == event || e == "all" {
			return true
		}
	}
	return false
}
