package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/barterforge/engine-core/internal/types"
)

func validYAML() string {
	return `
engine:
  audit_channel_capacity: 1024
  execution_channel_capacity_per_venue: 64
  initial_trading_state: enabled

universe:
  exchanges: ["binance"]
  assets:
    - exchange: binance
      asset: USDT
  instruments:
    - exchange: binance
      instrument: BTC-USD
      tick_size: 0.5
      tick_value: 5

strategy:
  name: breakout

risk:
  equity_asset_exchange: binance
  equity_asset: USDT
  max_global_drawdown_pct: 0.20
  max_exposure_per_instrument_pct: 0.50
  max_total_exposure_pct: 1.00

execution:
  simulated:
    slippage_ticks: 1
    tick_size: 0.5
    commission_per_side: 0.01
    rate_limit_per_second: 10

audit:
  enabled: false
`
}

func TestLoadFromBytes_Valid(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(validYAML()))
	if err != nil {
		t.Fatalf("LoadFromBytes: %v", err)
	}

	if cfg.Engine.AuditChannelCapacity != 1024 {
		t.Errorf("AuditChannelCapacity = %d, want 1024", cfg.Engine.AuditChannelCapacity)
	}
	if cfg.InitialTradingState() != types.TradingEnabled {
		t.Errorf("InitialTradingState() = %v, want Enabled", cfg.InitialTradingState())
	}
	if len(cfg.Universe.Instruments) != 1 || cfg.Universe.Instruments[0].Instrument != "BTC-USD" {
		t.Errorf("unexpected instruments: %+v", cfg.Universe.Instruments)
	}

	want := types.AssetKey{Exchange: "binance", Asset: "USDT"}
	if cfg.EquityAssetKey() != want {
		t.Errorf("EquityAssetKey() = %+v, want %+v", cfg.EquityAssetKey(), want)
	}
}

func TestLoadFromBytes_ExpandsEnvVars(t *testing.T) {
	t.Setenv("TEST_INSTRUMENT", "ETH-USD")
	yaml := `
engine:
  audit_channel_capacity: 10
  execution_channel_capacity_per_venue: 10
  initial_trading_state: disabled
universe:
  exchanges: ["binance"]
  instruments:
    - exchange: binance
      instrument: ${TEST_INSTRUMENT}
      tick_size: 0.1
strategy:
  name: breakout
risk:
  equity_asset_exchange: binance
  equity_asset: USDT
  max_global_drawdown_pct: 0.2
  max_exposure_per_instrument_pct: 0.5
  max_total_exposure_pct: 1.0
`
	cfg, err := LoadFromBytes([]byte(yaml))
	if err != nil {
		t.Fatalf("LoadFromBytes: %v", err)
	}
	if cfg.Universe.Instruments[0].Instrument != "ETH-USD" {
		t.Errorf("expected env var expansion, got %q", cfg.Universe.Instruments[0].Instrument)
	}
}

func TestLoad_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(validYAML()), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Engine.ExecutionChannelCapacityPerVenue != 64 {
		t.Errorf("ExecutionChannelCapacityPerVenue = %d, want 64", cfg.Engine.ExecutionChannelCapacityPerVenue)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	if _, err := Load("/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error for non-existent file")
	}
}

func TestValidate_RejectsInvalidConfigs(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "missing initial trading state",
			yaml: `
engine:
  audit_channel_capacity: 10
  execution_channel_capacity_per_venue: 10
universe:
  exchanges: ["binance"]
  instruments:
    - exchange: binance
      instrument: BTC-USD
      tick_size: 0.1
strategy:
  name: breakout
risk:
  equity_asset_exchange: binance
  equity_asset: USDT
  max_global_drawdown_pct: 0.2
  max_exposure_per_instrument_pct: 0.5
  max_total_exposure_pct: 1.0
`,
			wantErr: "initial_trading_state",
		},
		{
			name: "no instruments",
			yaml: `
engine:
  audit_channel_capacity: 10
  execution_channel_capacity_per_venue: 10
  initial_trading_state: enabled
universe:
  exchanges: ["binance"]
risk:
  equity_asset_exchange: binance
  equity_asset: USDT
  max_global_drawdown_pct: 0.2
  max_exposure_per_instrument_pct: 0.5
  max_total_exposure_pct: 1.0
`,
			wantErr: "instruments",
		},
		{
			name: "drawdown out of range",
			yaml: `
engine:
  audit_channel_capacity: 10
  execution_channel_capacity_per_venue: 10
  initial_trading_state: enabled
universe:
  exchanges: ["binance"]
  instruments:
    - exchange: binance
      instrument: BTC-USD
      tick_size: 0.1
risk:
  equity_asset_exchange: binance
  equity_asset: USDT
  max_global_drawdown_pct: 1.5
  max_exposure_per_instrument_pct: 0.5
  max_total_exposure_pct: 1.0
`,
			wantErr: "max_global_drawdown_pct",
		},
		{
			name: "audit enabled without path",
			yaml: `
engine:
  audit_channel_capacity: 10
  execution_channel_capacity_per_venue: 10
  initial_trading_state: enabled
universe:
  exchanges: ["binance"]
  instruments:
    - exchange: binance
      instrument: BTC-USD
      tick_size: 0.1
risk:
  equity_asset_exchange: binance
  equity_asset: USDT
  max_global_drawdown_pct: 0.2
  max_exposure_per_instrument_pct: 0.5
  max_total_exposure_pct: 1.0
audit:
  enabled: true
`,
			wantErr: "audit.path",
		},
		{
			name: "unknown strategy name",
			yaml: `
engine:
  audit_channel_capacity: 10
  execution_channel_capacity_per_venue: 10
  initial_trading_state: enabled
universe:
  exchanges: ["binance"]
  instruments:
    - exchange: binance
      instrument: BTC-USD
      tick_size: 0.1
strategy:
  name: martingale
risk:
  equity_asset_exchange: binance
  equity_asset: USDT
  max_global_drawdown_pct: 0.2
  max_exposure_per_instrument_pct: 0.5
  max_total_exposure_pct: 1.0
`,
			wantErr: "strategy.name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromBytes([]byte(tt.yaml))
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %q, want substring %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestConfig_ToRiskConfig(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(validYAML()))
	if err != nil {
		t.Fatalf("LoadFromBytes: %v", err)
	}

	riskCfg := cfg.ToRiskConfig()
	if riskCfg.EquityAsset != (types.AssetKey{Exchange: "binance", Asset: "USDT"}) {
		t.Errorf("EquityAsset = %+v", riskCfg.EquityAsset)
	}
	if !riskCfg.MaxGlobalDrawdownPct.Equal(decimal.NewFromFloat(0.20)) {
		t.Errorf("MaxGlobalDrawdownPct = %s, want 0.2", riskCfg.MaxGlobalDrawdownPct)
	}
}

func TestConfig_InstrumentRiskProfiles(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(validYAML()))
	if err != nil {
		t.Fatalf("LoadFromBytes: %v", err)
	}

	profiles := cfg.InstrumentRiskProfiles()
	key := types.InstrumentKey{Exchange: "binance", Instrument: "BTC-USD"}
	profile, ok := profiles[key]
	if !ok {
		t.Fatalf("expected a risk profile for %v", key)
	}
	if !profile.TickSize.Equal(decimal.NewFromFloat(0.5)) {
		t.Errorf("TickSize = %s, want 0.5", profile.TickSize)
	}
}

func TestLoadFromBytes_AlertingEnvironmentVariables(t *testing.T) {
	t.Setenv("TEST_BOT_TOKEN", "my-secret-token")
	yaml := validYAML() + `
alerting:
  enabled: true
  channels:
    - type: telegram
      bot_token: "${TEST_BOT_TOKEN}"
      chat_id: "12345"
`
	cfg, err := LoadFromBytes([]byte(yaml))
	if err != nil {
		t.Fatalf("LoadFromBytes: %v", err)
	}
	if len(cfg.Alerting.Channels) == 0 {
		t.Fatal("expected alerting channels")
	}
	if cfg.Alerting.Channels[0].BotToken != "my-secret-token" {
		t.Errorf("BotToken = %s, want my-secret-token", cfg.Alerting.Channels[0].BotToken)
	}
}
