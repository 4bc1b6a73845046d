// Package web はログイン画面と認証後画面の静的ファイルを配信します。
package web

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const loginPrefix = "/login"

// StaticHandler はルーティングに一致しなかった GET/HEAD を静的ファイルとして配信します。
// /login 配下は loginDir から、それ以外は publicDir から返します。
// アクセス制御はこのハンドラーより前のゲートで済んでいる前提です。
func StaticHandler(loginDir, publicDir, loginPage string) gin.HandlerFunc {
	loginFiles := http.StripPrefix(loginPrefix, http.FileServer(http.Dir(loginDir)))
	publicFiles := http.FileServer(http.Dir(publicDir))

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.String(http.StatusNotFound, "Not Found")
			return
		}

		p := c.Request.URL.Path
		switch {
		case p == loginPrefix || p == loginPrefix+"/":
			c.Redirect(http.StatusFound, loginPage)
		case strings.HasPrefix(p, loginPrefix+"/"):
			loginFiles.ServeHTTP(c.Writer, c.Request)
		default:
			publicFiles.ServeHTTP(c.Writer, c.Request)
		}
	}
}
