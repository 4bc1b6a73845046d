// Package main はAPIサーバーのエントリーポイントです。
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/expense-tracker/internal/config"
	"github.com/yourusername/expense-tracker/internal/password"
	"github.com/yourusername/expense-tracker/internal/users"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := log.Default()

	// データベース（接続失敗はログのみで起動は続ける）
	db, err := openDatabase(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.close()

	// セッションストア
	sessions, closeSessions, err := openSessionStore(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open session store: %v", err)
	}
	defer closeSessions()

	hasher := password.NewHasher(cfg.BcryptCost)

	// 初期ユーザー
	if _, err := users.Seed(ctx, db.users, hasher, users.SeedOptions{
		Username: cfg.DefaultUser,
		Password: cfg.DefaultPass,
		Quiet:    cfg.IsProduction(),
	}, logger); err != nil {
		logger.Printf("初期ユーザーの作成に失敗しました: %v", err)
	}

	router := newRouter(cfg, &app{
		users:    db.users,
		expenses: db.expenses,
		sessions: sessions,
		hasher:   hasher,
		logger:   logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Printf("Failed to shutdown server: %v", err)
		}
	}()

	// サーバーの起動
	log.Printf("Starting API server on %s (mode: %s, db: %s, sessions: %s)",
		srv.Addr, cfg.GinMode, cfg.DatabaseDriver, cfg.SessionBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Failed to start server: %v", err)
	}
}
