package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/expense-tracker/internal/auth"
	"github.com/yourusername/expense-tracker/internal/config"
	"github.com/yourusername/expense-tracker/internal/expense"
	"github.com/yourusername/expense-tracker/internal/password"
	"github.com/yourusername/expense-tracker/internal/session"
	"github.com/yourusername/expense-tracker/internal/users"
	"github.com/yourusername/expense-tracker/internal/web"
)

// app はハンドラーが共有する依存をまとめたものです。
type app struct {
	users    users.Store
	expenses expense.Store
	sessions session.Store
	hasher   *password.Hasher
	logger   *log.Logger
}

// handleHealth はヘルスチェックエンドポイントのハンドラーです。
func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "expense-tracker",
	})
}

// newRouter はリクエストパイプラインを組み立てます。
// 順序は Logger/Recovery → CORS → ゲート（分類・認可）→ 各ハンドラー／静的配信 です。
// ゲートより前にハンドラーを置かないこと。
func newRouter(cfg *config.Config, a *app) *gin.Engine {
	// デフォルトミドルウェア: Logger, Recovery
	router := gin.Default()
	router.Use(cors.New(corsConfig(cfg)))

	cookies := auth.NewCookieCodec([]byte(cfg.SessionSecret), cfg.SessionTTL(), cfg.GinMode == gin.ReleaseMode)
	authManager := auth.NewManager(a.users, a.sessions, a.hasher, cookies, a.logger)
	router.Use(authManager.Gate(auth.DefaultAccessPolicy()))

	setupRoutes(router, cfg, a, authManager)
	return router
}

// setupRoutes はエンドポイントを登録します。
func setupRoutes(router *gin.Engine, cfg *config.Config, a *app, authManager *auth.Manager) {
	router.GET("/health", handleHealth)

	router.POST("/login", authManager.Login)
	router.POST("/logout", authManager.Logout)

	router.POST("/", expense.CreateHandler(a.expenses, a.logger))
	router.GET("/relay", expense.RecentHandler(a.expenses, a.logger))

	// ルートに一致しないものは静的ファイルとして配信する
	router.NoRoute(web.StaticHandler(cfg.LoginDir, cfg.PublicDir, auth.LoginPage))
}

func corsConfig(cfg *config.Config) cors.Config {
	corsConfig := cors.DefaultConfig()
	origins := cfg.AllowedOrigins()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		corsConfig.AllowAllOrigins = true
		return corsConfig
	}
	corsConfig.AllowOrigins = origins
	corsConfig.AllowCredentials = true
	return corsConfig
}
