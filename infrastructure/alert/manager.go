// Package alert delivers configuration lifecycle events to operator
// channels (webhook, log) with per-event throttling.
package alert

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"adaptive-grid-bot/config"
	"adaptive-grid-bot/infrastructure/logger"
)

// Webhook event names understood by WEBHOOK_EVENTS.
const (
	EventGridRebalanced = "grid_rebalanced"
	EventErrorOccurred  = "error_occurred"
)

// Alert 告警信息
type Alert struct {
	Event     string                 `json:"event"`
	Level     string                 `json:"level"` // "INFO", "WARNING", "ERROR", "CRITICAL"
	Message   string                 `json:"message"`
	Timestamp time.Time              `json:"timestamp"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Channel 告警通道接口
type Channel interface {
	Send(ctx context.Context, alert Alert) error
	Name() string
}

// Manager 告警管理器
type Manager struct {
	channels []Channel
	throttle *Throttler
	wants    func(event string) bool
	log      *logger.Logger
	mu       sync.RWMutex
}

// Throttler 告警限流器
type Throttler struct {
	lastSent map[string]time.Time
	interval time.Duration
	mu       sync.Mutex
}

// NewThrottler 创建限流器
func NewThrottler(interval time.Duration) *Throttler {
	return &Throttler{
		lastSent: make(map[string]time.Time),
		interval: interval,
	}
}

// Allow 检查是否允许发送（限流）
func (t *Throttler) Allow(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	last, exists := t.lastSent[key]
	if !exists || now.Sub(last) >= t.interval {
		t.lastSent[key] = now
		return true
	}
	return false
}

// Clear 清空所有限流记录
func (t *Throttler) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastSent = make(map[string]time.Time)
}

// NewManager 创建告警管理器; every event is delivered.
func NewManager(channels []Channel, throttleInterval time.Duration) *Manager {
	return &Manager{
		channels: channels,
		throttle: NewThrottler(throttleInterval),
		wants:    func(string) bool { return true },
	}
}

// FromSettings builds a manager that honours ENABLE_WEBHOOKS, WEBHOOK_URL
// and WEBHOOK_EVENTS. Alerts are always mirrored to the log.
func FromSettings(cfg config.MonitoringConfig, log *logger.Logger) *Manager {
	m := NewManager(nil, time.Minute)
	m.log = log
	m.Configure(cfg)
	return m
}

// Configure 按新的监控配置替换通道和事件订阅，限流记录保留
func (m *Manager) Configure(cfg config.MonitoringConfig) {
	channels := []Channel{NewLogChannel("log", m.log)}
	if cfg.EnableWebhooks && cfg.WebhookURL != "" {
		channels = append(channels, NewWebhookChannel("webhook", cfg.WebhookURL, nil))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.channels = channels
	m.wants = cfg.WantsEvent
}

// Notify sends an alert for event when the event is subscribed.
func (m *Manager) Notify(ctx context.Context, event, level, message string, fields map[string]interface{}) error {
	m.mu.RLock()
	wants := m.wants
	m.mu.RUnlock()
	if !wants(event) {
		return nil
	}
	return m.SendAlert(ctx, Alert{
		Event:   event,
		Level:   level,
		Message: message,
		Fields:  fields,
	})
}

// SendAlert 发送告警到所有通道，返回每个失败通道的错误
func (m *Manager) SendAlert(ctx context.Context, alert Alert) error {
	if alert.Timestamp.IsZero() {
		alert.Timestamp = time.Now()
	}

	key := fmt.Sprintf("%s:%s:%s", alert.Event, alert.Level, alert.Message)
	if !m.throttle.Allow(key) {
		return nil // 被限流，静默忽略
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var errs []error
	for _, ch := range m.channels {
		if err := ch.Send(ctx, alert); err != nil {
			errs = append(errs, fmt.Errorf("channel %s failed: %w", ch.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// AddChannel 添加告警通道
func (m *Manager) AddChannel(ch Channel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.channels = append(m.channels, ch)
}

// GetChannels 获取所有通道
func (m *Manager) GetChannels() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.channels))
	for _, ch := range m.channels {
		names = append(names, ch.Name())
	}
	return names
}

// ResetThrottle 重置限流器
func (m *Manager) ResetThrottle() {
	m.throttle.Clear()
}
