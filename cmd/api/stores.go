package main

import (
	"context"
	"fmt"
	"log"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/yourusername/expense-tracker/internal/config"
	"github.com/yourusername/expense-tracker/internal/expense"
	"github.com/yourusername/expense-tracker/internal/session"
	"github.com/yourusername/expense-tracker/internal/storage/mongodb"
	"github.com/yourusername/expense-tracker/internal/storage/sqlite"
	"github.com/yourusername/expense-tracker/internal/users"
)

const bootTimeout = 10 * time.Second

type database struct {
	users    users.Store
	expenses expense.Store
	close    func()
}

// openDatabase は DATABASE_DRIVER に応じたストアを開きます。
// MongoDB に到達できない場合はログを出して起動を続け、各リクエストが個別に失敗します。
func openDatabase(ctx context.Context, cfg *config.Config, logger *log.Logger) (*database, error) {
	switch cfg.DatabaseDriver {
	case config.DatabaseDriverMongo:
		store, err := mongodb.Connect(cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		initCtx, cancel := context.WithTimeout(ctx, bootTimeout)
		defer cancel()
		if err := store.Init(initCtx); err != nil {
			logger.Printf("MongoDB接続失敗: %v", err)
		} else {
			logger.Printf("MongoDB接続成功")
		}
		return &database{
			users:    store,
			expenses: store,
			close: func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), bootTimeout)
				defer cancel()
				_ = store.Close(closeCtx)
			},
		}, nil

	case config.DatabaseDriverSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &database{
			users:    store,
			expenses: store,
			close:    func() { _ = store.Close() },
		}, nil

	case config.DatabaseDriverMemory:
		return &database{
			users:    users.NewMemoryStore(),
			expenses: expense.NewMemoryStore(),
			close:    func() {},
		}, nil

	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.DatabaseDriver)
	}
}

// openSessionStore は SESSION_BACKEND に応じたセッションストアを作成します。
func openSessionStore(ctx context.Context, cfg *config.Config, logger *log.Logger) (session.Store, func(), error) {
	opts := []session.Option{session.WithTTL(cfg.SessionTTL())}

	switch cfg.SessionBackend {
	case config.SessionBackendRedis:
		opt, err := redis.ParseURL(cfg.SessionRedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("parse redis url: %w", err)
		}
		rdb := redis.NewClient(opt)
		pingCtx, cancel := context.WithTimeout(ctx, bootTimeout)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			logger.Printf("Redis接続失敗: %v", err)
		}
		return session.NewRedisStore(rdb, opts...), func() { _ = rdb.Close() }, nil

	default:
		return session.NewMemoryStore(opts...), func() {}, nil
	}
}
