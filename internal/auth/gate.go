package auth

import (
	"context"
	"errors"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/expense-tracker/internal/session"
)

// LoginPage は未認証時のリダイレクト先です。
const LoginPage = "/login/login.html"

// ContextUserKey は、ハンドラー間でログイン済みユーザーを共有するためのキーです。
const ContextUserKey = "auth.user"

type principalContextKey struct{}

// Access はパスの分類結果です。
type Access int

const (
	// AccessOpen は認証不要のパスです。
	AccessOpen Access = iota
	// AccessProtected はセッションが必要なパスです。
	AccessProtected
)

// Decision はゲートの判定結果です。
type Decision int

const (
	DecisionOpen Decision = iota
	DecisionAuthorized
	DecisionUnauthorized
	DecisionFault
)

func (d Decision) String() string {
	switch d {
	case DecisionOpen:
		return "open"
	case DecisionAuthorized:
		return "protected-authorized"
	case DecisionUnauthorized:
		return "protected-unauthorized"
	case DecisionFault:
		return "fault"
	default:
		return "unknown"
	}
}

// AccessPolicy はリクエストパスを公開/保護に分類します。
// 完全一致と前方一致（配下ディレクトリ全体）の両方で公開パスを指定できます。
// どちらにも当たらないパスはすべて保護対象です。
type AccessPolicy struct {
	exact    map[string]struct{}
	prefixes []string
}

// NewAccessPolicy は AccessPolicy を作成します。
func NewAccessPolicy(exact []string, prefixes []string) *AccessPolicy {
	p := &AccessPolicy{exact: make(map[string]struct{}, len(exact))}
	for _, e := range exact {
		p.exact[e] = struct{}{}
	}
	p.prefixes = append(p.prefixes, prefixes...)
	return p
}

// DefaultAccessPolicy はログイン画面まわりを公開する標準ポリシーです。
func DefaultAccessPolicy() *AccessPolicy {
	return NewAccessPolicy(
		[]string{
			"/login",
			"/login/",
			"/login/login.html",
			"/login/login.js",
			"/favicon.ico",
			"/logout",
			"/health",
		},
		[]string{"/login/"},
	)
}

// Classify はパスを分類します。"/login/../x" のような迂回を防ぐため正規化してから判定します。
func (p *AccessPolicy) Classify(requestPath string) Access {
	cleaned := cleanPath(requestPath)
	if _, ok := p.exact[cleaned]; ok {
		return AccessOpen
	}
	for _, prefix := range p.prefixes {
		if strings.HasPrefix(cleaned, prefix) {
			return AccessOpen
		}
	}
	return AccessProtected
}

func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if p[0] != '/' {
		p = "/" + p
	}
	cleaned := path.Clean(p)
	if strings.HasSuffix(p, "/") && cleaned != "/" {
		cleaned += "/"
	}
	return cleaned
}

// Authorize は classify → authorize の順にリクエストを判定します。
// 認可された場合はユーザーを返します。
func (m *Manager) Authorize(ctx context.Context, policy *AccessPolicy, r *http.Request) (Decision, *session.Principal, error) {
	if policy.Classify(r.URL.Path) == AccessOpen {
		return DecisionOpen, nil, nil
	}

	id, ok := m.cookies.Read(r)
	if !ok {
		return DecisionUnauthorized, nil, nil
	}
	principal, err := m.sessions.Get(ctx, id)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return DecisionUnauthorized, nil, nil
		}
		return DecisionFault, nil, err
	}
	return DecisionAuthorized, principal, nil
}

// Gate は全リクエストの最初に置くミドルウェアです。
// 保護パスでセッションがなければログイン画面へリダイレクトします。
func (m *Manager) Gate(policy *AccessPolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision, principal, err := m.Authorize(c.Request.Context(), policy, c.Request)
		switch decision {
		case DecisionOpen:
			c.Next()
		case DecisionAuthorized:
			c.Set(ContextUserKey, *principal)
			c.Request = c.Request.WithContext(WithPrincipal(c.Request.Context(), *principal))
			c.Next()
		case DecisionUnauthorized:
			c.Redirect(http.StatusFound, LoginPage)
			c.Abort()
		default:
			m.logger.Printf("認可エラー：セッションの取得に失敗しました path=%s: %v", c.Request.URL.Path, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, loginResponse{Success: false, Message: messageServerError})
		}
	}
}

// WithPrincipal はユーザーを context に格納します。
func WithPrincipal(ctx context.Context, principal session.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, principal)
}

// PrincipalFromContext は context からユーザーを取り出します。
func PrincipalFromContext(ctx context.Context) (session.Principal, bool) {
	principal, ok := ctx.Value(principalContextKey{}).(session.Principal)
	return principal, ok
}
