// Package auth はログイン・ログアウトとアクセス制御を提供します。
package auth

import (
	"errors"
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/expense-tracker/internal/session"
	"github.com/yourusername/expense-tracker/internal/users"
)

// レスポンスメッセージ
const (
	messageLoginSucceeded = "ログイン成功"
	messageLoginFailed    = "ログイン失敗"
	messageServerError    = "サーバーエラー"
)

// ユーザーが存在しない場合にも照合コストを払うためのダミー平文
const timingDummyPassword = "timing-equalizer"

// PasswordVerifier はパスワードのハッシュ化と照合を行います。
type PasswordVerifier interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hashed string) bool
}

// Manager は認証処理と依存するストアをまとめた構造体です。
type Manager struct {
	users    users.Store
	sessions session.Store
	hasher   PasswordVerifier
	cookies  *CookieCodec
	logger   *log.Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewManager は認証マネージャーを作成します。
func NewManager(userStore users.Store, sessionStore session.Store, hasher PasswordVerifier, cookies *CookieCodec, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{
		users:    userStore,
		sessions: sessionStore,
		hasher:   hasher,
		cookies:  cookies,
		logger:   logger,
	}
}

type loginRequest struct {
	ID   string `json:"id"`
	Pass string `json:"pass"`
}

type loginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Login は POST /login のハンドラーです。
// 入力不足・ユーザー不在・パスワード不一致はすべて同じ応答を返します。
func (m *Manager) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == "" || req.Pass == "" {
		c.JSON(http.StatusOK, loginResponse{Success: false, Message: messageLoginFailed})
		return
	}

	ctx := c.Request.Context()
	user, err := m.users.FindByUsername(ctx, req.ID)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			m.hasher.Verify(req.Pass, m.timingHash())
			c.JSON(http.StatusOK, loginResponse{Success: false, Message: messageLoginFailed})
			return
		}
		m.logger.Printf("ログインエラー：ユーザー検索に失敗しました: %v", err)
		c.JSON(http.StatusInternalServerError, loginResponse{Success: false, Message: messageServerError})
		return
	}

	if !m.hasher.Verify(req.Pass, user.PasswordHash) {
		c.JSON(http.StatusOK, loginResponse{Success: false, Message: messageLoginFailed})
		return
	}

	// 既存のセッションは破棄して新しいIDを発行する
	if previous, ok := m.cookies.Read(c.Request); ok {
		if err := m.sessions.Destroy(ctx, previous); err != nil {
			m.logger.Printf("ログインエラー：旧セッションの削除に失敗しました: %v", err)
		}
	}

	sess, err := m.sessions.Create(ctx, session.Principal{Username: user.Username})
	if err != nil {
		m.logger.Printf("ログインエラー：セッションの作成に失敗しました: %v", err)
		c.JSON(http.StatusInternalServerError, loginResponse{Success: false, Message: messageServerError})
		return
	}
	if err := m.cookies.Write(c.Writer, sess.ID); err != nil {
		_ = m.sessions.Destroy(ctx, sess.ID)
		m.logger.Printf("ログインエラー：Cookieの署名に失敗しました: %v", err)
		c.JSON(http.StatusInternalServerError, loginResponse{Success: false, Message: messageServerError})
		return
	}

	c.JSON(http.StatusOK, loginResponse{Success: true, Message: messageLoginSucceeded})
}

// Logout は POST /logout のハンドラーです。
// セッションの有無にかかわらず常に {ok: true} を返します。
func (m *Manager) Logout(c *gin.Context) {
	if id, ok := m.cookies.Read(c.Request); ok {
		if err := m.sessions.Destroy(c.Request.Context(), id); err != nil {
			m.logger.Printf("ログアウトエラー：セッションの削除に失敗しました: %v", err)
		}
	}
	m.cookies.Clear(c.Writer)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// timingHash はユーザー不在時の照合に使うハッシュを返します。
func (m *Manager) timingHash() string {
	m.dummyOnce.Do(func() {
		hash, err := m.hasher.Hash(timingDummyPassword)
		if err != nil {
			m.logger.Printf("ダミーハッシュの生成に失敗しました: %v", err)
			return
		}
		m.dummyHash = hash
	})
	return m.dummyHash
}
