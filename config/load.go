package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// AppName is reported in summaries and logs.
const AppName = "BTC Adaptive Grid Bot"

const dateLayout = "2006-01-02"

// reader coerces raw values; the first failure sticks and later reads
// return their defaults.
type reader struct {
	src Source
	err error
}

func (r *reader) raw(key string) (string, bool) {
	if r.err != nil || r.src == nil {
		return "", false
	}
	v, ok := r.src.Lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func (r *reader) fail(key, value, kind string, err error) {
	if r.err == nil {
		r.err = &TypeError{Key: key, Value: value, Kind: kind, Err: err}
	}
}

func (r *reader) str(key, def string) string {
	if r.err != nil || r.src == nil {
		return def
	}
	if v, ok := r.src.Lookup(key); ok {
		return v
	}
	return def
}

func (r *reader) int(key string, def int) int {
	v, ok := r.raw(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.fail(key, v, "integer", err)
		return def
	}
	return n
}

func (r *reader) float(key string, def float64) float64 {
	v, ok := r.raw(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.fail(key, v, "float", err)
		return def
	}
	return f
}

func (r *reader) bool(key string, def bool) bool {
	v, ok := r.raw(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.fail(key, v, "boolean", err)
		return def
	}
	return b
}

func (r *reader) date(key string, def time.Time) time.Time {
	v, ok := r.raw(key)
	if !ok {
		return def
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		r.fail(key, v, "date (YYYY-MM-DD)", err)
		return def
	}
	return t
}

func (r *reader) list(key string, def []string) []string {
	v, ok := r.raw(key)
	if !ok {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// oneOf matches v case-insensitively against the allowed names.
func (r *reader) oneOf(key, def string, allowed ...string) string {
	v, ok := r.raw(key)
	if !ok {
		return def
	}
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return a
		}
	}
	r.fail(key, v, "one of "+strings.Join(allowed, "|"), nil)
	return def
}

func mustDate(s string) time.Time {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

// Parse reads every section from src, applying defaults for missing keys.
// It fails only when a present value cannot be coerced; consistency checks
// are left to Validate.
func Parse(src Source) (AppConfig, error) {
	r := &reader{src: src}
	var cfg AppConfig

	cfg.App = AppInfo{
		Name:      AppName,
		Version:   r.str("APP_VERSION", "1.0.0"),
		DebugMode: r.bool("DEBUG_MODE", false),
	}

	cfg.API = APIConfig{
		Exchange:      r.str("EXCHANGE", "binance"),
		APIKey:        r.str("API_KEY", ""),
		APISecret:     r.str("API_SECRET", ""),
		APIPassphrase: r.str("API_PASSPHRASE", ""),
		Testnet:       r.bool("USE_TESTNET", false),
	}

	sizing := SizingFixed
	if r.bool("USE_PERCENTAGE_ALLOCATION", true) {
		sizing = SizingPercentage
	}
	cfg.Grid = GridParameters{
		Levels:               r.int("GRID_LEVELS", 10),
		LowerBound:           r.float("GRID_LOWER_BOUND", 35000),
		UpperBound:           r.float("GRID_UPPER_BOUND", 45000),
		Sizing:               sizing,
		OrderSize:            r.float("ORDER_SIZE", 0.01),
		AllocationPercentage: r.float("ALLOCATION_PERCENTAGE", 100),
		Strategy: GridStrategy(r.oneOf("GRID_STRATEGY", string(StrategyAdaptive),
			string(StrategyFixed), string(StrategyAdaptive), string(StrategyDynamic))),
		EnableProfitTaking:  r.bool("ENABLE_PROFIT_TAKING", true),
		ProfitMarginPercent: r.float("PROFIT_MARGIN_PERCENT", 0.5),
		Adaptive: AdaptiveParameters{
			Enabled:                    r.bool("ENABLE_ADAPTIVE_PRICING", true),
			VolatilityAdjustmentFactor: r.float("VOLATILITY_ADJUSTMENT", 1.0),
			IntervalSeconds:            r.int("ADAPTATION_INTERVAL", 300),
		},
	}

	cfg.Trading = TradingConfig{
		Mode: TradingMode(r.oneOf("TRADING_MODE", string(ModePaper),
			string(ModeLive), string(ModePaper), string(ModeBacktest))),
		Symbol:              r.str("TRADING_SYMBOL", "BTCUSDT"),
		BaseAsset:           r.str("BASE_ASSET", "BTC"),
		QuoteAsset:          r.str("QUOTE_ASSET", "USDT"),
		MaxPositionSize:     r.float("MAX_POSITION_SIZE", 1.0),
		MaxOpenOrders:       r.int("MAX_OPEN_ORDERS", 50),
		StopLossPercent:     r.float("STOP_LOSS_PERCENT", 5.0),
		MakerFeePercent:     r.float("MAKER_FEE", 0.1),
		TakerFeePercent:     r.float("TAKER_FEE", 0.1),
		OrderTimeoutSeconds: r.int("ORDER_TIMEOUT", 300),
		MinOrderValueUSDT:   r.float("MIN_ORDER_VALUE", 10),
	}

	cfg.Logging = LoggingConfig{
		Level:                r.str("LOG_LEVEL", "INFO"),
		File:                 r.str("LOG_FILE", "bot.log"),
		Dir:                  r.str("LOG_DIR", "logs"),
		MaxSizeMB:            r.int("MAX_LOG_SIZE_MB", 10),
		BackupCount:          r.int("LOG_BACKUP_COUNT", 5),
		Format:               r.oneOf("LOG_FORMAT", "json", "json", "console"),
		EnableConsoleLogging: r.bool("ENABLE_CONSOLE_LOGGING", true),
		EnableFileLogging:    r.bool("ENABLE_FILE_LOGGING", true),
	}

	cfg.Monitoring = MonitoringConfig{
		Enabled:                  r.bool("ENABLE_MONITORING", true),
		HeartbeatIntervalSeconds: r.int("HEARTBEAT_INTERVAL", 60),
		EnableWebhooks:           r.bool("ENABLE_WEBHOOKS", false),
		WebhookURL:               r.str("WEBHOOK_URL", ""),
		WebhookEvents:            r.list("WEBHOOK_EVENTS", defaultWebhookEvents()),
		CollectMetrics:           r.bool("COLLECT_METRICS", true),
		MetricsIntervalSeconds:   r.int("METRICS_INTERVAL", 300),
		MetricsAddr:              r.str("METRICS_ADDR", ":9100"),
	}

	cfg.Database = DatabaseConfig{
		EnablePersistence: r.bool("ENABLE_PERSISTENCE", true),
		Type: DBType(r.oneOf("DB_TYPE", string(DBSQLite),
			string(DBSQLite), string(DBPostgreSQL), string(DBMongoDB))),
		Path:                r.str("DB_PATH", "data/bot.db"),
		Host:                r.str("DB_HOST", ""),
		Port:                r.int("DB_PORT", 0),
		Name:                r.str("DB_NAME", "adaptive_grid_bot"),
		User:                r.str("DB_USER", ""),
		Password:            r.str("DB_PASSWORD", ""),
		EnableBackups:       r.bool("ENABLE_BACKUPS", true),
		BackupIntervalHours: r.int("BACKUP_INTERVAL_HOURS", 24),
	}

	cfg.Backtest = BacktestConfig{
		Enabled:        r.bool("ENABLE_BACKTESTING", false),
		StartDate:      r.date("BACKTEST_START_DATE", mustDate("2023-01-01")),
		EndDate:        r.date("BACKTEST_END_DATE", mustDate("2024-01-01")),
		InitialCapital: r.float("BACKTEST_INITIAL_CAPITAL", 10000),
		DataSource:     r.str("BACKTEST_DATA_SOURCE", "binance"),
		Timeframe:      r.str("BACKTEST_TIMEFRAME", "1h"),
	}

	if r.err != nil {
		return AppConfig{}, r.err
	}
	return cfg, nil
}

// Load parses src and applies the consistency gate.
func Load(src Source) (AppConfig, error) {
	cfg, err := Parse(src)
	if err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// LoadWithEnvOverrides loads path (YAML or dotenv) underneath the process
// environment; environment variables win. An empty path reads the
// environment only.
func LoadWithEnvOverrides(path string) (AppConfig, error) {
	src, err := FileWithEnvOverrides(path)
	if err != nil {
		return AppConfig{}, err
	}
	return Load(src)
}

// FileWithEnvOverrides builds the source LoadWithEnvOverrides reads from.
func FileWithEnvOverrides(path string) (Source, error) {
	if path == "" {
		return EnvSource{}, nil
	}
	file, err := LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return Chain{EnvSource{}, file}, nil
}
