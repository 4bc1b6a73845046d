// Package sqlite は SQLite に資格情報と支出記録を保存します。
// 単一バイナリで動かしたいローカル環境向けのバックエンドです。
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/yourusername/expense-tracker/internal/expense"
	"github.com/yourusername/expense-tracker/internal/users"
)

const memoryPath = ":memory:"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
	   username TEXT PRIMARY KEY,
	   password_hash TEXT NOT NULL
	 )`,
	`CREATE TABLE IF NOT EXISTS expenses (
	   id TEXT PRIMARY KEY,
	   user_name TEXT NOT NULL,
	   mode TEXT NOT NULL,
	   expend REAL NOT NULL,
	   type TEXT NOT NULL,
	   remark TEXT NOT NULL DEFAULT '',
	   time_stamp INTEGER NOT NULL
	 )`,
	`CREATE INDEX IF NOT EXISTS expenses_user_time ON expenses (user_name, time_stamp DESC)`,
}

// Store は users.Store と expense.Store を SQLite で実装します。
type Store struct {
	db *sql.DB
}

var (
	_ users.Store   = (*Store)(nil)
	_ expense.Store = (*Store)(nil)
)

// Open は SQLite ファイルを開き、スキーマを作成します。
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	dsn := memoryPath
	if path != memoryPath {
		cleanPath := filepath.Clean(path)
		if dir := filepath.Dir(cleanPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
		dsn = cleanPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if path == memoryPath {
		// 接続ごとに別のメモリDBになるため1本に固定する
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store, err := New(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// New は既存の *sql.DB から Store を作成します。
func New(ctx context.Context, db *sql.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
	}
	return &Store{db: db}, nil
}

// Close はデータベースを閉じます。
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// FindByUsername はユーザーを検索します。
func (s *Store) FindByUsername(ctx context.Context, username string) (*users.User, error) {
	var u users.User
	err := s.db.QueryRowContext(ctx,
		`SELECT username, password_hash FROM users WHERE username = ?`,
		username,
	).Scan(&u.Username, &u.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, users.ErrUserNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &u, nil
}

// Create はユーザーを作成します。
func (s *Store) Create(ctx context.Context, username, passwordHash string) (*users.User, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash) VALUES (?, ?)`,
		username, passwordHash,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, users.ErrDuplicateUser
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &users.User{Username: username, PasswordHash: passwordHash}, nil
}

// Insert は支出記録を保存します。
func (s *Store) Insert(ctx context.Context, record *expense.Record) error {
	if err := record.Validate(); err != nil {
		return err
	}
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO expenses (id, user_name, mode, expend, type, remark, time_stamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, record.User, record.Mode, record.Expend, record.Type, record.Remark, toMillis(record.TimeStamp),
	)
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	record.ID = id
	return nil
}

// Recent は新しい順に支出記録を返します。
func (s *Store) Recent(ctx context.Context, user string, limit int) ([]expense.Record, error) {
	query := `SELECT id, user_name, mode, expend, type, remark, time_stamp FROM expenses`
	var args []any
	if user != "" {
		query += ` WHERE user_name = ?`
		args = append(args, user)
	}
	query += ` ORDER BY time_stamp DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var out []expense.Record
	for rows.Next() {
		var r expense.Record
		var millis int64
		if err := rows.Scan(&r.ID, &r.User, &r.Mode, &r.Expend, &r.Type, &r.Remark, &millis); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		r.TimeStamp = fromMillis(millis)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return out, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}
