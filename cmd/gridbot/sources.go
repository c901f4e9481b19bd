package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"adaptive-grid-bot/config"
	"adaptive-grid-bot/infrastructure/logger"
)

// sources 每次加载（启动和热更新）都重新读取：环境变量 > Redis 共享配置 > 本地文件
type sources struct {
	path     string
	redis    config.HashGetter // nil when -redis is empty
	redisKey string
}

func (s sources) load(ctx context.Context) (config.Source, error) {
	chain := config.Chain{config.EnvSource{}}
	if s.redis != nil {
		shared, err := config.LoadRedis(ctx, s.redis, s.redisKey, nil)
		if err != nil {
			return nil, err
		}
		chain = append(chain, shared)
	}
	if s.path != "" {
		file, err := config.LoadFile(s.path)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", s.path, err)
		}
		chain = append(chain, file)
	}
	return chain, nil
}

// origin names the sources in reload logs and alerts.
func (s sources) origin() string {
	switch {
	case s.redis != nil && s.path != "":
		return s.path + "+redis:" + s.redisKey
	case s.redis != nil:
		return "redis:" + s.redisKey
	case s.path != "":
		return s.path
	}
	return "env"
}

// logPersistence 启动时检查持久化设置：postgres 连接串经 pgx 解析（不建连），备份周期给出下一次时间
func logPersistence(log *logger.Logger, db config.DatabaseConfig, now time.Time) error {
	if !db.EnablePersistence {
		return nil
	}
	fields := []zap.Field{zap.String("db_type", string(db.Type))}
	if db.Type == config.DBPostgreSQL {
		cc, err := db.PostgresConfig()
		if err != nil {
			return err
		}
		fields = append(fields,
			zap.String("host", cc.Host),
			zap.Uint16("port", cc.Port),
			zap.String("database", cc.Database),
			zap.String("user", cc.User),
		)
	} else {
		fields = append(fields, zap.String("path", db.Path))
	}
	if sched, ok := db.BackupSchedule(); ok {
		fields = append(fields, zap.Time("next_backup", sched.Next(now)))
	}
	log.Info("persistence configured", fields...)
	return nil
}
