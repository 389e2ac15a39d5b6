package main

import (
	"database/sql"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/cidade-aberta/internal/config"
	"github.com/iliyamo/cidade-aberta/internal/database"
	"github.com/iliyamo/cidade-aberta/internal/logger"
	"github.com/iliyamo/cidade-aberta/internal/queue"
	"github.com/iliyamo/cidade-aberta/internal/service"
	"github.com/iliyamo/cidade-aberta/internal/session"
)

// app holds the process-wide dependencies shared by the commands.
type app struct {
	cfg config.Config
	log *logger.Logger
	db  *sql.DB
	rdb *redis.Client
}

// bootstrap loads configuration, the logger and the database. Redis is
// only dialled when withRedis is set; a nil client means it is disabled or
// unreachable.
func bootstrap(withRedis bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format, cfg.Log.File)
	database.SetLogger(log)

	db, err := database.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	a := &app{cfg: cfg, log: log, db: db}
	if withRedis {
		a.rdb = config.NewRedisClient(cfg.Redis)
		if a.rdb == nil && cfg.Redis.Enabled {
			log.WithField("addr", cfg.Redis.Addr).Warn("redis unreachable; using in-memory sessions, rate limit and cache off")
		}
	}
	return a, nil
}

func (a *app) close() {
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	_ = a.db.Close()
}

func (a *app) sessions() session.Store {
	if a.rdb != nil {
		return session.NewRedisStore(a.rdb, a.cfg.SessionTTL, "ca:sess")
	}
	return session.NewMemoryStore(a.cfg.SessionTTL, nil)
}

func (a *app) notifier() service.Notifier {
	if a.cfg.RabbitMQURL == "" {
		a.log.Info("RABBITMQ_URL not set; notifications disabled")
		return queue.Discard{}
	}
	return queue.NewPublisher(a.cfg.RabbitMQURL, a.cfg.NotificationQueue, a.log)
}
