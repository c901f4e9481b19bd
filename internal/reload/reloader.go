// Package reload watches the configuration file and triggers a
// copy-on-write reconfiguration when it changes.
package reload

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"adaptive-grid-bot/infrastructure/logger"
)

// Config 热更新配置
type Config struct {
	Enabled      bool          // 是否启用热更新
	CooldownTime time.Duration // 冷却时间，避免编辑器多次写入触发重复加载
}

// DefaultConfig 默认热更新配置
func DefaultConfig() Config {
	return Config{
		Enabled:      true,
		CooldownTime: 2 * time.Second,
	}
}

// Handler reloads the configuration; a non-nil error leaves the previous
// configuration in force.
type Handler func() error

// Reloader 配置热更新器
type Reloader struct {
	config  Config
	path    string
	watcher *fsnotify.Watcher
	handler Handler
	logger  *logger.Logger

	mu          sync.Mutex
	lastAttempt time.Time
	lastReload  time.Time
	lastErr     error
	started     bool
	stopped     bool
	pending     *time.Timer // 冷却期内的变化，冷却结束后补一次

	stopOnce sync.Once
	stopChan chan struct{}
	doneChan chan struct{}
}

// New 创建热更新器
func New(path string, cfg Config, handler Handler, log *logger.Logger) (*Reloader, error) {
	if handler == nil {
		return nil, errors.New("reload handler is required")
	}
	if log == nil {
		log = logger.Nop()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	return &Reloader{
		config:   cfg,
		path:     filepath.Clean(path),
		watcher:  watcher,
		handler:  handler,
		logger:   log,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}, nil
}

// Start 启动热更新监听。监听所在目录而不是文件本身，
// 这样编辑器"写临时文件再 rename"的保存方式也能被捕获。
func (r *Reloader) Start(ctx context.Context) error {
	if !r.config.Enabled {
		return nil
	}
	if err := r.watcher.Add(filepath.Dir(r.path)); err != nil {
		return fmt.Errorf("failed to watch config dir: %w", err)
	}

	r.mu.Lock()
	r.started = true
	r.mu.Unlock()

	go r.watch(ctx)
	r.logger.Info("config watcher started", zap.String("path", r.path))
	return nil
}

// Stop 停止热更新
func (r *Reloader) Stop() error {
	r.stopOnce.Do(func() { close(r.stopChan) })

	r.mu.Lock()
	started := r.started
	r.stopped = true
	if r.pending != nil {
		r.pending.Stop()
		r.pending = nil
	}
	r.mu.Unlock()
	if started {
		<-r.doneChan
	}
	return r.watcher.Close()
}

// Health reports the last reload failure, if any.
func (r *Reloader) Health() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}

// LastReload 获取最后一次成功重载的时间
func (r *Reloader) LastReload() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastReload
}

func (r *Reloader) watch(ctx context.Context) {
	defer close(r.doneChan)

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopChan:
			return
		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != r.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				r.handleConfigChange()
			}
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			// 记录错误但继续监听
			r.logger.Warn("config watcher error", zap.Error(err))
		}
	}
}

// handleConfigChange 处理配置变化。冷却期内的变化不会丢弃：
// 冷却结束时再执行一次，保证文件最后一次写入生效。
func (r *Reloader) handleConfigChange() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped {
		return
	}
	if !r.lastAttempt.IsZero() {
		if wait := r.config.CooldownTime - time.Since(r.lastAttempt); wait > 0 {
			if r.pending == nil {
				r.pending = time.AfterFunc(wait, r.runPending)
			}
			return
		}
	}
	r.reloadLocked()
}

func (r *Reloader) runPending() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pending = nil
	if r.stopped {
		return
	}
	r.reloadLocked()
}

func (r *Reloader) reloadLocked() {
	r.lastAttempt = time.Now()
	if err := r.handler(); err != nil {
		r.lastErr = err
		r.logger.LogError(err, map[string]interface{}{
			"component": "reload",
			"path":      r.path,
		})
		return
	}
	r.lastErr = nil
	r.lastReload = time.Now()
}
