// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// セッション保存先の種類
const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

// データベースドライバーの種類
const (
	DatabaseDriverMongo  = "mongo"
	DatabaseDriverSQLite = "sqlite"
	DatabaseDriverMemory = "memory"
)

// devSessionSecret は release 以外のモードでのみ使う署名鍵です。
const devSessionSecret = "dev-secret"

// Config はアプリケーションの設定を保持する構造体です。
type Config struct {
	// サーバー設定
	Port    string // APIサーバーのポート番号
	GinMode string // Ginの実行モード (debug, release, test)
	ModeEnv string // 実行環境 (development, production)

	// セッション設定
	SessionSecret     string // セッションCookie署名用の秘密鍵
	SessionTTLMinutes int    // セッションの有効期限（分）
	SessionBackend    string // memory または redis
	SessionRedisURL   string // redis バックエンド用の接続URL

	// データベース設定
	DatabaseDriver string // mongo, sqlite, memory
	MongoURI       string // MongoDB 接続URI
	MongoDatabase  string // MongoDB データベース名
	SQLitePath     string // SQLite ファイルパス

	// 初期ユーザー
	DefaultUser string // 起動時に作成するユーザー名
	DefaultPass string // 起動時に作成するユーザーのパスワード（平文）
	BcryptCost  int    // bcrypt のコスト

	// CORS設定
	CORSAllowedOrigins string // CORS許可オリジン（カンマ区切り）

	// 静的ファイル
	LoginDir  string // ログイン画面の配信元ディレクトリ
	PublicDir string // 認証後に配信するディレクトリ
}

// Load は環境変数から設定を読み込みます。
// .env.local ファイルが存在する場合はそこから読み込みます。
func Load() (*Config, error) {
	loadEnvFile()

	config := &Config{
		// サーバー設定
		Port:    getEnv("PORT", "8001"),
		GinMode: getEnv("GIN_MODE", "debug"),
		ModeEnv: getEnv("MODE_ENV", "development"),

		// セッション設定
		SessionSecret:     getEnv("SESSION_SECRET", ""),
		SessionTTLMinutes: getEnvAsInt("SESSION_TTL_MINUTES", 60),
		SessionBackend:    strings.ToLower(getEnv("SESSION_BACKEND", SessionBackendMemory)),
		SessionRedisURL:   getEnv("SESSION_REDIS_URL", "redis://127.0.0.1:6379/0"),

		// データベース設定
		DatabaseDriver: strings.ToLower(getEnv("DATABASE_DRIVER", DatabaseDriverMongo)),
		MongoURI:       getEnv("MONGO_URI", "mongodb://127.0.0.1:27017"),
		MongoDatabase:  getEnv("MONGO_DATABASE", "expense"),
		SQLitePath:     getEnv("SQLITE_PATH", filepath.Join("data", "expense.db")),

		// 初期ユーザー
		DefaultUser: getEnv("DEFAULT_USER", ""),
		DefaultPass: getEnv("DEFAULT_PASS", ""),
		BcryptCost:  getEnvAsInt("BCRYPT_COST", 10),

		// CORS設定
		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),

		// 静的ファイル
		LoginDir:  getEnv("LOGIN_DIR", "login"),
		PublicDir: getEnv("PUBLIC_DIR", "public"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	// 開発時は固定の鍵で動かせるようにする（release では Validate で弾かれる）
	if config.SessionSecret == "" {
		config.SessionSecret = devSessionSecret
	}

	return config, nil
}

func loadEnvFile() {
	if err := godotenv.Load(".env.local"); err == nil {
		return
	}

	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	parent := filepath.Dir(cwd)
	if parent == "" || parent == cwd {
		return
	}

	_ = godotenv.Load(filepath.Join(parent, ".env.local"))
}

// Validate は設定の妥当性を検証します。
func (c *Config) Validate() error {
	if c.SessionTTLMinutes <= 0 {
		return fmt.Errorf("SESSION_TTL_MINUTES must be positive")
	}

	switch c.SessionBackend {
	case SessionBackendMemory, SessionBackendRedis:
	default:
		return fmt.Errorf("unsupported SESSION_BACKEND: %s", c.SessionBackend)
	}

	switch c.DatabaseDriver {
	case DatabaseDriverMongo, DatabaseDriverSQLite, DatabaseDriverMemory:
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER: %s", c.DatabaseDriver)
	}

	// 本番環境では厳格にチェックする
	if c.GinMode == "release" {
		if c.SessionSecret == "" {
			return fmt.Errorf("SESSION_SECRET is required in release mode")
		}
		if c.SessionBackend == SessionBackendRedis && c.SessionRedisURL == "" {
			return fmt.Errorf("SESSION_REDIS_URL is required in release mode")
		}
	}

	return nil
}

// SessionTTL はセッションの有効期限を返します。
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

// AllowedOrigins は CORS 許可オリジンを配列で返します。
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.CORSAllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// IsProduction は本番環境として動作しているかを返します。
func (c *Config) IsProduction() bool {
	return c.ModeEnv == "production"
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します。
func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt は環境変数を整数として取得します。
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
