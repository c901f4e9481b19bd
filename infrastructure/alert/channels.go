package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"adaptive-grid-bot/infrastructure/logger"
)

// LogChannel 日志告警通道
type LogChannel struct {
	logger *logger.Logger
	name   string
}

// NewLogChannel 创建日志告警通道
func NewLogChannel(name string, log *logger.Logger) *LogChannel {
	if log == nil {
		log = logger.Nop()
	}
	return &LogChannel{logger: log, name: name}
}

// Send 发送告警到日志
func (c *LogChannel) Send(_ context.Context, alert Alert) error {
	fields := []zap.Field{
		zap.String("event", alert.Event),
		zap.String("level", alert.Level),
		zap.Time("ts", alert.Timestamp),
	}
	for k, v := range alert.Fields {
		fields = append(fields, zap.Any(k, v))
	}
	switch alert.Level {
	case "ERROR", "CRITICAL":
		c.logger.Error("alert: "+alert.Message, fields...)
	case "WARNING":
		c.logger.Warn("alert: "+alert.Message, fields...)
	default:
		c.logger.Info("alert: "+alert.Message, fields...)
	}
	return nil
}

// Name 返回通道名称
func (c *LogChannel) Name() string {
	return c.name
}

// WebhookChannel posts alerts as JSON to WEBHOOK_URL.
type WebhookChannel struct {
	name    string
	url     string
	client  *http.Client
	backoff func() backoff.BackOff
}

// NewWebhookChannel 创建 webhook 通道; nil client uses a 5s timeout.
func NewWebhookChannel(name, url string, client *http.Client) *WebhookChannel {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &WebhookChannel{
		name:   name,
		url:    url,
		client: client,
		backoff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.MaxElapsedTime = 30 * time.Second
			return backoff.WithMaxRetries(b, 3)
		},
	}
}

// Send 投递告警，5xx 和网络错误会重试，4xx 不重试
func (c *WebhookChannel) Send(ctx context.Context, alert Alert) error {
	body, err := json.Marshal(alert)
	if err != nil {
		return backoff.Permanent(err)
	}
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := c.client.Do(req)
		if err != nil {
			return err
		}
		resp.Body.Close()
		switch {
		case resp.StatusCode >= 500:
			return fmt.Errorf("webhook status %d", resp.StatusCode)
		case resp.StatusCode >= 300:
			return backoff.Permanent(fmt.Errorf("webhook status %d", resp.StatusCode))
		}
		return nil
	}
	return backoff.Retry(op, backoff.WithContext(c.backoff(), ctx))
}

// Name 返回通道名称
func (c *WebhookChannel) Name() string {
	return c.name
}
