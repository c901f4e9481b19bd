package config

import (
	"math"
	"path/filepath"
	"strings"
	"time"
)

// MinGridLevels is the smallest grid that still has a spacing.
const MinGridLevels = 2

// MaxGridLevels caps the ladder, which is materialised on every read.
const MaxGridLevels = 10000

// MaxAdaptiveIntervalSeconds is the largest interval a time.Duration holds.
const MaxAdaptiveIntervalSeconds = math.MaxInt64 / int64(time.Second)

// TradingMode selects where orders go.
type TradingMode string

const (
	ModeLive     TradingMode = "live"
	ModePaper    TradingMode = "paper"
	ModeBacktest TradingMode = "backtest"
)

func (m TradingMode) String() string { return string(m) }

func (m TradingMode) IsLive() bool     { return m == ModeLive }
func (m TradingMode) IsPaper() bool    { return m == ModePaper }
func (m TradingMode) IsBacktest() bool { return m == ModeBacktest }

// GridStrategy is the recomputation policy an external strategy engine
// applies. It is carried here, never interpreted.
type GridStrategy string

const (
	StrategyFixed    GridStrategy = "fixed"
	StrategyAdaptive GridStrategy = "adaptive"
	StrategyDynamic  GridStrategy = "dynamic"
)

func (s GridStrategy) String() string { return string(s) }

// SizingMode decides whether OrderSize or AllocationPercentage applies.
type SizingMode string

const (
	SizingFixed      SizingMode = "fixed_size"
	SizingPercentage SizingMode = "percentage_allocation"
)

func (s SizingMode) String() string { return string(s) }

// DBType 持久化后端类型。
type DBType string

const (
	DBSQLite     DBType = "sqlite"
	DBPostgreSQL DBType = "postgresql"
	DBMongoDB    DBType = "mongodb"
)

// AppConfig holds the main runtime configuration.
type AppConfig struct {
	App        AppInfo
	API        APIConfig
	Grid       GridParameters
	Trading    TradingConfig
	Logging    LoggingConfig
	Monitoring MonitoringConfig
	Database   DatabaseConfig
	Backtest   BacktestConfig
}

type AppInfo struct {
	Name      string
	Version   string
	DebugMode bool
}

// APIConfig holds exchange credentials.
type APIConfig struct {
	Exchange      string
	APIKey        string
	APISecret     string
	APIPassphrase string
	Testnet       bool
}

// GridParameters is the structural definition of the trading grid.
type GridParameters struct {
	Levels     int
	LowerBound float64
	UpperBound float64

	Sizing               SizingMode
	OrderSize            float64 // base asset per order, fixed sizing
	AllocationPercentage float64 // share of capital, percentage sizing

	Strategy            GridStrategy
	EnableProfitTaking  bool
	ProfitMarginPercent float64

	Adaptive AdaptiveParameters
}

type AdaptiveParameters struct {
	Enabled                    bool
	VolatilityAdjustmentFactor float64
	IntervalSeconds            int
}

// TradingConfig 交易与风控参数，仅透传给执行层。
type TradingConfig struct {
	Mode       TradingMode
	Symbol     string
	BaseAsset  string
	QuoteAsset string

	MaxPositionSize float64
	MaxOpenOrders   int
	StopLossPercent float64

	MakerFeePercent float64
	TakerFeePercent float64

	OrderTimeoutSeconds int
	MinOrderValueUSDT   float64
}

type LoggingConfig struct {
	Level                string
	File                 string
	Dir                  string
	MaxSizeMB            int
	BackupCount          int
	Format               string // json or console
	EnableConsoleLogging bool
	EnableFileLogging    bool
}

// Path joins the log directory and file name.
func (l LoggingConfig) Path() string {
	if l.Dir == "" || filepath.IsAbs(l.File) {
		return l.File
	}
	return filepath.Join(l.Dir, l.File)
}

type MonitoringConfig struct {
	Enabled                  bool
	HeartbeatIntervalSeconds int

	EnableWebhooks bool
	WebhookURL     string
	WebhookEvents  []string

	CollectMetrics         bool
	MetricsIntervalSeconds int
	MetricsAddr            string
}

// HeartbeatInterval returns zero when heartbeats are off.
func (m MonitoringConfig) HeartbeatInterval() time.Duration {
	if !m.Enabled || m.HeartbeatIntervalSeconds <= 0 {
		return 0
	}
	return time.Duration(m.HeartbeatIntervalSeconds) * time.Second
}

// WantsEvent reports whether a webhook should fire for event.
func (m MonitoringConfig) WantsEvent(event string) bool {
	if !m.EnableWebhooks || m.WebhookURL == "" {
		return false
	}
	for _, e := range m.WebhookEvents {
		if strings.EqualFold(e, event) {
			return true
		}
	}
	return false
}

type DatabaseConfig struct {
	EnablePersistence bool
	Type              DBType
	Path              string
	Host              string
	Port              int // 0 when DB_PORT is unset
	Name              string
	User              string
	Password          string

	EnableBackups       bool
	BackupIntervalHours int
}

type BacktestConfig struct {
	Enabled        bool
	StartDate      time.Time
	EndDate        time.Time
	InitialCapital float64
	DataSource     string
	Timeframe      string
}

func defaultWebhookEvents() []string {
	return []string{"order_filled", "grid_rebalanced", "position_updated", "error_occurred"}
}
