package container

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"adaptive-grid-bot/config"
	"adaptive-grid-bot/grid"
	"adaptive-grid-bot/infrastructure/logger"
	"adaptive-grid-bot/infrastructure/monitor"
)

// Container 配置门面：持有一份已校验的配置快照，对外只读。
// 重新配置时整体替换快照指针（copy-on-write），读者无需加锁。
type Container struct {
	current atomic.Pointer[snapshot]

	logger  *logger.Logger
	monitor *monitor.Monitor

	lifecycle *LifecycleManager
	startedAt time.Time
}

type snapshot struct {
	cfg  config.AppConfig
	hook grid.AdaptiveHook
}

// Option 定制Container
type Option func(*Container)

func WithLogger(l *logger.Logger) Option {
	return func(c *Container) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithMonitor(m *monitor.Monitor) Option {
	return func(c *Container) { c.monitor = m }
}

// New loads and validates src. On failure no Container is returned.
func New(src config.Source, opts ...Option) (*Container, error) {
	cfg, err := config.Load(src)
	if err != nil {
		return nil, err
	}
	return NewFromConfig(cfg, opts...)
}

// NewFromConfig gates an already parsed aggregate through the validator.
func NewFromConfig(cfg config.AppConfig, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Container{
		logger:    logger.Nop(),
		lifecycle: NewLifecycleManager(),
		startedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.install(cfg)
	c.logger.LogConfig("config_loaded", map[string]interface{}{
		"exchange": cfg.API.Exchange,
		"symbol":   cfg.Trading.Symbol,
		"mode":     cfg.Trading.Mode.String(),
		"strategy": cfg.Grid.Strategy.String(),
		"levels":   cfg.Grid.Levels,
	})
	return c, nil
}

func (c *Container) install(cfg config.AppConfig) grid.Grid {
	g, _ := grid.Derive(cfg.Grid)
	c.current.Store(&snapshot{cfg: cfg, hook: grid.NewAdaptiveHook(cfg.Grid.Adaptive)})

	c.logger.LogGrid("grid_derived", map[string]interface{}{
		"levels":      cfg.Grid.Levels,
		"lower_bound": cfg.Grid.LowerBound,
		"upper_bound": cfg.Grid.UpperBound,
		"spacing":     g.Spacing,
	})
	if c.monitor != nil {
		c.monitor.RecordGrid(monitor.GridSnapshot{
			Levels:          cfg.Grid.Levels,
			LowerBound:      cfg.Grid.LowerBound,
			UpperBound:      cfg.Grid.UpperBound,
			Spacing:         g.Spacing,
			AdaptiveEnabled: cfg.Grid.Adaptive.Enabled,
			IntervalSeconds: cfg.Grid.Adaptive.IntervalSeconds,
		})
		c.monitor.SetInfo(cfg.API.Exchange, cfg.Trading.Symbol, cfg.Trading.Mode.String(), cfg.Grid.Strategy.String())
		c.monitor.RecordLoad(true)
	}
	return g
}

// Reconfigure loads src and swaps it in. On any error the previous
// configuration stays in force.
func (c *Container) Reconfigure(origin string, src config.Source) error {
	cfg, err := config.Load(src)
	if err != nil {
		c.logger.LogConfig("config_reload_failed", map[string]interface{}{
			"source": origin,
			"error":  err.Error(),
		})
		if c.monitor != nil {
			c.monitor.RecordLoad(false)
		}
		return fmt.Errorf("reload config from %s: %w", origin, err)
	}
	g := c.install(cfg)
	c.logger.LogConfig("config_reloaded", map[string]interface{}{
		"source":  origin,
		"levels":  cfg.Grid.Levels,
		"spacing": g.Spacing,
	})
	return nil
}

// Config returns a copy of the current validated configuration.
func (c *Container) Config() config.AppConfig {
	cfg := c.current.Load().cfg
	cfg.Monitoring.WebhookEvents = append([]string(nil), cfg.Monitoring.WebhookEvents...)
	return cfg
}

// Levels recomputes the ladder from the current parameters on every call.
func (c *Container) Levels() []float64 {
	levels, err := grid.Levels(c.current.Load().cfg.Grid)
	if err != nil {
		// unreachable: snapshots are validated before install
		return nil
	}
	return levels
}

func (c *Container) Spacing() float64 {
	step, _ := grid.Spacing(c.current.Load().cfg.Grid)
	return step
}

// Grid returns spacing and levels derived from one snapshot.
func (c *Container) Grid() grid.Grid {
	g, _ := grid.Derive(c.current.Load().cfg.Grid)
	return g
}

func (c *Container) Adaptive() grid.AdaptiveHook {
	return c.current.Load().hook
}

func (c *Container) ShouldConsiderRecompute(elapsed time.Duration) bool {
	return c.current.Load().hook.ShouldConsiderRecompute(elapsed)
}

func (c *Container) IsLiveTrading() bool  { return c.current.Load().cfg.Trading.Mode.IsLive() }
func (c *Container) IsPaperTrading() bool { return c.current.Load().cfg.Trading.Mode.IsPaper() }
func (c *Container) IsBacktesting() bool  { return c.current.Load().cfg.Trading.Mode.IsBacktest() }

func (c *Container) Logger() *logger.Logger { return c.logger }

func (c *Container) Monitor() *monitor.Monitor { return c.monitor }

// Uptime since construction.
func (c *Container) Uptime() time.Duration { return time.Since(c.startedAt) }

// Register adds a component to the start/stop sequence.
func (c *Container) Register(name string, component Lifecycle) {
	c.lifecycle.Register(name, component)
}

// RegisterHTTP 注册一个HTTP服务组件
func (c *Container) RegisterHTTP(name, addr string, handler http.Handler) {
	c.lifecycle.Register(name, &httpServerComponent{
		name:    name,
		addr:    addr,
		handler: handler,
		logger:  c.logger,
	})
}

// Start 按注册顺序启动所有组件
func (c *Container) Start(ctx context.Context) error {
	if err := c.lifecycle.StartAll(ctx); err != nil {
		return err
	}
	c.logger.Info("container started")
	return nil
}

// Stop 逆序停止所有组件
func (c *Container) Stop() error {
	err := c.lifecycle.StopAll()
	c.logger.Info("container stopped")
	return err
}

func (c *Container) Health() error {
	return c.lifecycle.CheckHealth()
}
