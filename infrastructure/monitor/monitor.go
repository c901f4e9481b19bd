package monitor

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Monitor Prometheus监控指标收集器
type Monitor struct {
	registry *prometheus.Registry

	// 网格指标
	gridLevels     prometheus.Gauge
	gridSpacing    prometheus.Gauge
	gridLowerBound prometheus.Gauge
	gridUpperBound prometheus.Gauge

	// 自适应指标
	adaptiveEnabled  prometheus.Gauge
	adaptiveInterval prometheus.Gauge

	// 配置指标
	configInfo   *prometheus.GaugeVec
	loads        prometheus.Counter
	loadFailures prometheus.Counter
	lastLoad     prometheus.Gauge

	// 系统指标
	heartbeats prometheus.Counter
}

// Config 监控配置
type Config struct {
	Namespace string
	Subsystem string
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Namespace: "gridbot",
		Subsystem: "config",
	}
}

// GridSnapshot 一次网格推导的结果
type GridSnapshot struct {
	Levels     int
	LowerBound float64
	UpperBound float64
	Spacing    float64

	AdaptiveEnabled bool
	IntervalSeconds int
}

// New 创建新的Monitor实例
func New(cfg Config) *Monitor {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	gauge := func(name, help string) prometheus.Gauge {
		return factory.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      name,
			Help:      help,
		})
	}
	counter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      name,
			Help:      help,
		})
	}

	return &Monitor{
		registry: reg,

		gridLevels:     gauge("grid_levels", "网格层数"),
		gridSpacing:    gauge("grid_spacing", "相邻网格价差"),
		gridLowerBound: gauge("grid_lower_bound", "网格下界价格"),
		gridUpperBound: gauge("grid_upper_bound", "网格上界价格"),

		adaptiveEnabled:  gauge("adaptive_enabled", "自适应定价是否开启（1/0）"),
		adaptiveInterval: gauge("adaptive_interval_seconds", "自适应重算间隔（秒）"),

		configInfo: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "info",
			Help:      "当前生效配置的标签，值恒为1",
		}, []string{"exchange", "symbol", "mode", "strategy"}),
		loads:        counter("loads_total", "配置加载成功次数（含首次）"),
		loadFailures: counter("load_failures_total", "配置加载失败次数"),
		lastLoad:     gauge("last_load_timestamp_seconds", "最近一次成功加载的时间戳"),

		heartbeats: counter("heartbeats_total", "心跳次数"),
	}
}

// RecordGrid 更新网格与自适应指标
func (m *Monitor) RecordGrid(s GridSnapshot) {
	m.gridLevels.Set(float64(s.Levels))
	m.gridSpacing.Set(s.Spacing)
	m.gridLowerBound.Set(s.LowerBound)
	m.gridUpperBound.Set(s.UpperBound)
	if s.AdaptiveEnabled {
		m.adaptiveEnabled.Set(1)
	} else {
		m.adaptiveEnabled.Set(0)
	}
	m.adaptiveInterval.Set(float64(s.IntervalSeconds))
}

// SetInfo 替换配置标签（旧标签组合会被清除）
func (m *Monitor) SetInfo(exchange, symbol, mode, strategy string) {
	m.configInfo.Reset()
	m.configInfo.WithLabelValues(exchange, symbol, mode, strategy).Set(1)
}

// RecordLoad 记录一次加载结果
func (m *Monitor) RecordLoad(ok bool) {
	if !ok {
		m.loadFailures.Inc()
		return
	}
	m.loads.Inc()
	m.lastLoad.SetToCurrentTime()
}

func (m *Monitor) RecordHeartbeat() {
	m.heartbeats.Inc()
}

// Handler 返回HTTP handler用于暴露指标
func (m *Monitor) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry 返回prometheus registry
func (m *Monitor) Registry() *prometheus.Registry {
	return m.registry
}
