package auth

import (
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
)

// SessionCookieName はセッションIDを運ぶCookie名です。
const SessionCookieName = "sid"

// CookieCodec はセッションIDを署名付きCookieとして読み書きします。
// 署名の検証に失敗したCookieはセッションなしとして扱います。
type CookieCodec struct {
	sc     *securecookie.SecureCookie
	maxAge int
	secure bool
}

// NewCookieCodec は CookieCodec を作成します。
// secret はセッション署名鍵、ttl はセッションの有効期限です。
func NewCookieCodec(secret []byte, ttl time.Duration, secure bool) *CookieCodec {
	maxAge := int(ttl / time.Second)
	sc := securecookie.New(secret, nil)
	sc.MaxAge(maxAge)
	return &CookieCodec{
		sc:     sc,
		maxAge: maxAge,
		secure: secure,
	}
}

// Read はリクエストからセッションIDを取り出します。
func (cc *CookieCodec) Read(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	var id string
	if err := cc.sc.Decode(SessionCookieName, cookie.Value, &id); err != nil || id == "" {
		return "", false
	}
	return id, true
}

// Write はセッションIDを署名してCookieに設定します。
func (cc *CookieCodec) Write(w http.ResponseWriter, id string) error {
	encoded, err := cc.sc.Encode(SessionCookieName, id)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    encoded,
		Path:     "/",
		MaxAge:   cc.maxAge,
		HttpOnly: true,
		Secure:   cc.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear はセッションCookieを失効させます。
func (cc *CookieCodec) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cc.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
