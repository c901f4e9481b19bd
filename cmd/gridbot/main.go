// Command gridbot loads and validates the grid bot configuration, derives
// the price ladder and keeps it available over a read-only HTTP API while
// watching the configuration file for changes.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"adaptive-grid-bot/config"
	"adaptive-grid-bot/infrastructure/alert"
	"adaptive-grid-bot/infrastructure/logger"
	"adaptive-grid-bot/infrastructure/monitor"
	"adaptive-grid-bot/internal/container"
	"adaptive-grid-bot/internal/httpapi"
	"adaptive-grid-bot/internal/reload"
)

type options struct {
	configPath string
	printOnly  bool
	httpAddr   string
	watch      bool
	redisAddr  string
	redisKey   string
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "配置文件路径（.yaml 或 .env），留空则只读环境变量")
	flag.BoolVar(&opts.printOnly, "print", false, "打印配置摘要和网格后退出")
	flag.StringVar(&opts.httpAddr, "http", "", "调试 API 监听地址，留空则使用 METRICS_ADDR")
	flag.BoolVar(&opts.watch, "watch", true, "监听配置文件变化并热更新")
	flag.StringVar(&opts.redisAddr, "redis", "", "共享配置所在 Redis 地址（host:port），留空则不使用")
	flag.StringVar(&opts.redisKey, "redis-key", "gridbot:config", "共享配置的 Redis hash key")
	flag.Parse()

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "gridbot: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	srcs := sources{path: opts.configPath, redisKey: opts.redisKey}
	if opts.redisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: opts.redisAddr})
		defer rdb.Close()
		srcs.redis = rdb
	}

	src, err := srcs.load(context.Background())
	if err != nil {
		return err
	}
	cfg, err := config.Load(src)
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}

	log, err := logger.New(logger.FromSettings(cfg.Logging))
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Close()

	if err := logPersistence(log, cfg.Database, time.Now()); err != nil {
		return fmt.Errorf("persistence settings: %w", err)
	}

	copts := []container.Option{container.WithLogger(log)}
	var mon *monitor.Monitor
	if cfg.Monitoring.CollectMetrics {
		mon = monitor.New(monitor.DefaultConfig())
		copts = append(copts, container.WithMonitor(mon))
	}
	c, err := container.NewFromConfig(cfg, copts...)
	if err != nil {
		return err
	}

	if opts.printOnly {
		return printSummary(c)
	}

	httpAddr := opts.httpAddr
	if httpAddr == "" {
		httpAddr = cfg.Monitoring.MetricsAddr
	}
	if httpAddr != "" {
		var metrics http.Handler
		if mon != nil {
			metrics = mon.Handler()
		}
		c.RegisterHTTP("http_api", httpAddr, httpapi.NewRouter(c, metrics))
	}
	if opts.watch && opts.configPath != "" {
		alerts := alert.FromSettings(cfg.Monitoring, log)
		rl, err := reload.New(opts.configPath, reload.DefaultConfig(), func() error {
			return reloadAndNotify(c, alerts, srcs)
		}, log)
		if err != nil {
			return err
		}
		c.Register("config_reloader", rl)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := c.Start(ctx); err != nil {
		return err
	}
	if _, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		log.Warn("sd_notify ready failed", zap.Error(err))
	}

	if every := cfg.Monitoring.HeartbeatInterval(); every > 0 {
		go heartbeat(ctx, c, every)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", zap.String("signal", sig.String()))
	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
	cancel()
	return c.Stop()
}

// reloadAndNotify 重新读取全部配置源，成功后按新的 WEBHOOK_* 设置通知订阅者
func reloadAndNotify(c *container.Container, alerts *alert.Manager, srcs sources) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	origin := srcs.origin()
	next, err := srcs.load(ctx)
	if err == nil {
		err = c.Reconfigure(origin, next)
	}
	if err != nil {
		if nerr := alerts.Notify(ctx, alert.EventErrorOccurred, "ERROR", "config reload failed", map[string]interface{}{
			"source": origin,
			"error":  err.Error(),
		}); nerr != nil {
			c.Logger().Warn("alert delivery failed", zap.Error(nerr))
		}
		return err
	}

	alerts.Configure(c.Config().Monitoring)
	g := c.Grid()
	if nerr := alerts.Notify(ctx, alert.EventGridRebalanced, "INFO", "grid reconfigured", map[string]interface{}{
		"source":  origin,
		"levels":  len(g.Levels),
		"spacing": g.Spacing,
	}); nerr != nil {
		c.Logger().Warn("alert delivery failed", zap.Error(nerr))
	}
	return nil
}

func printSummary(c *container.Container) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c.Summary()); err != nil {
		return err
	}
	return enc.Encode(httpapi.GridResponse{Spacing: c.Spacing(), Levels: c.Levels()})
}

// heartbeat 定期记录存活事件，并在 systemd 下喂看门狗
func heartbeat(ctx context.Context, c *container.Container, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Logger().LogSystem("heartbeat", map[string]interface{}{
				"symbol":   c.Config().Trading.Symbol,
				"uptime_s": int64(c.Uptime().Seconds()),
			})
			if m := c.Monitor(); m != nil {
				m.RecordHeartbeat()
			}
			_, _ = daemon.SdNotify(false, daemon.SdNotifyWatchdog)
		}
	}
}
