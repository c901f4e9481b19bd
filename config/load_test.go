package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func validSource() MapSource {
	return MapSource{
		"API_KEY":    "key",
		"API_SECRET": "secret",
	}
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse(MapSource{})
	require.NoError(t, err)

	assert.Equal(t, AppName, cfg.App.Name)
	assert.Equal(t, "1.0.0", cfg.App.Version)
	assert.Equal(t, "binance", cfg.API.Exchange)
	assert.False(t, cfg.API.Testnet)

	assert.Equal(t, 10, cfg.Grid.Levels)
	assert.Equal(t, 35000.0, cfg.Grid.LowerBound)
	assert.Equal(t, 45000.0, cfg.Grid.UpperBound)
	assert.Equal(t, SizingPercentage, cfg.Grid.Sizing)
	assert.Equal(t, 100.0, cfg.Grid.AllocationPercentage)
	assert.Equal(t, StrategyAdaptive, cfg.Grid.Strategy)
	assert.True(t, cfg.Grid.Adaptive.Enabled)
	assert.Equal(t, 1.0, cfg.Grid.Adaptive.VolatilityAdjustmentFactor)
	assert.Equal(t, 300, cfg.Grid.Adaptive.IntervalSeconds)

	assert.Equal(t, ModePaper, cfg.Trading.Mode)
	assert.Equal(t, "BTCUSDT", cfg.Trading.Symbol)
	assert.Equal(t, 50, cfg.Trading.MaxOpenOrders)

	assert.Equal(t, filepath.Join("logs", "bot.log"), cfg.Logging.Path())
	assert.Equal(t, 0, cfg.Database.Port)
	assert.Equal(t, DBSQLite, cfg.Database.Type)
	assert.Len(t, cfg.Monitoring.WebhookEvents, 4)
	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), cfg.Backtest.StartDate)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), cfg.Backtest.EndDate)
}

func TestParseOverrides(t *testing.T) {
	src := validSource()
	src["GRID_LEVELS"] = "2"
	src["GRID_LOWER_BOUND"] = "100"
	src["GRID_UPPER_BOUND"] = "200"
	src["USE_PERCENTAGE_ALLOCATION"] = "FALSE"
	src["GRID_STRATEGY"] = "Dynamic"
	src["TRADING_MODE"] = "live"
	src["USE_TESTNET"] = "true"
	src["WEBHOOK_EVENTS"] = "order_filled, error_occurred,"
	src["DB_PORT"] = "6543"

	cfg, err := Parse(src)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Grid.Levels)
	assert.Equal(t, SizingFixed, cfg.Grid.Sizing)
	assert.Equal(t, StrategyDynamic, cfg.Grid.Strategy)
	assert.True(t, cfg.Trading.Mode.IsLive())
	assert.True(t, cfg.API.Testnet)
	assert.Equal(t, []string{"order_filled", "error_occurred"}, cfg.Monitoring.WebhookEvents)
	assert.Equal(t, 6543, cfg.Database.Port)
}

func TestParseEmptyValueUsesDefault(t *testing.T) {
	cfg, err := Parse(MapSource{"GRID_LEVELS": "", "ORDER_SIZE": "  "})
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Grid.Levels)
	assert.Equal(t, 0.01, cfg.Grid.OrderSize)
}

func TestParseTypeError(t *testing.T) {
	cases := []struct {
		key, value, kind string
	}{
		{"GRID_LEVELS", "ten", "integer"},
		{"GRID_LOWER_BOUND", "abc", "float"},
		{"USE_TESTNET", "yes", "boolean"},
		{"GRID_STRATEGY", "martingale", "one of fixed|adaptive|dynamic"},
		{"TRADING_MODE", "demo", "one of live|paper|backtest"},
		{"BACKTEST_START_DATE", "01/02/2023", "date (YYYY-MM-DD)"},
	}
	for _, tc := range cases {
		t.Run(tc.key, func(t *testing.T) {
			_, err := Parse(MapSource{tc.key: tc.value})
			var te *TypeError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, tc.key, te.Key)
			assert.Equal(t, tc.value, te.Value)
			assert.Equal(t, tc.kind, te.Kind)
		})
	}
}

func TestParseFirstTypeErrorWins(t *testing.T) {
	_, err := Parse(MapSource{"GRID_LEVELS": "x", "GRID_UPPER_BOUND": "y"})
	var te *TypeError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "GRID_LEVELS", te.Key)
}

func TestLoadRequiresCredentials(t *testing.T) {
	_, err := Load(MapSource{})
	var mc *MissingCredentialError
	require.ErrorAs(t, err, &mc)
	assert.Equal(t, "api.api_key", mc.Field)
	assert.True(t, errors.Is(err, ErrInvalid))

	cfg, err := Load(validSource())
	require.NoError(t, err)
	assert.Equal(t, "key", cfg.API.APIKey)
}

func TestChainPrecedence(t *testing.T) {
	src := Chain{MapSource{"GRID_LEVELS": "20"}, nil, MapSource{"GRID_LEVELS": "5", "TRADING_SYMBOL": "ETHUSDT"}}
	v, ok := src.Lookup("GRID_LEVELS")
	assert.True(t, ok)
	assert.Equal(t, "20", v)
	v, ok = src.Lookup("TRADING_SYMBOL")
	assert.True(t, ok)
	assert.Equal(t, "ETHUSDT", v)
	_, ok = src.Lookup("MISSING")
	assert.False(t, ok)
}

func TestLoadYAML(t *testing.T) {
	path := writeTempConfig(t, "cfg.yaml", `
API_KEY: foo
api_secret: bar
grid:
  levels: 12
  lower_bound: 30000
  upper_bound: 50000
webhook_events:
  - order_filled
  - grid_rebalanced
`)
	src, err := LoadYAML(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"API_KEY", "API_SECRET", "GRID_LEVELS", "GRID_LOWER_BOUND", "GRID_UPPER_BOUND", "WEBHOOK_EVENTS"}, src.Keys())

	cfg, err := Load(src)
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Grid.Levels)
	assert.Equal(t, 30000.0, cfg.Grid.LowerBound)
	assert.Equal(t, "bar", cfg.API.APISecret)
	assert.Equal(t, []string{"order_filled", "grid_rebalanced"}, cfg.Monitoring.WebhookEvents)
}

func TestLoadDotEnv(t *testing.T) {
	path := writeTempConfig(t, ".env", "API_KEY=foo\nAPI_SECRET=bar\nGRID_LEVELS=4\n# comment\n")
	src, err := LoadFile(path)
	require.NoError(t, err)
	cfg, err := Load(src)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Grid.Levels)
}

func TestLoadWithEnvOverrides(t *testing.T) {
	path := writeTempConfig(t, "cfg.yml", `
API_KEY: foo
API_SECRET: bar
GRID_LEVELS: 8
`)
	t.Setenv("API_KEY", "env-key")
	t.Setenv("GRID_LEVELS", "6")
	cfg, err := LoadWithEnvOverrides(path)
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.API.APIKey)
	assert.Equal(t, "bar", cfg.API.APISecret)
	assert.Equal(t, 6, cfg.Grid.Levels)
}

func TestLoadWithEnvOverridesMissingFile(t *testing.T) {
	_, err := LoadWithEnvOverrides(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
