package web

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
}

func newStaticRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	root := t.TempDir()
	loginDir := filepath.Join(root, "login")
	publicDir := filepath.Join(root, "public")
	writeFile(t, filepath.Join(loginDir, "login.html"), "login-page")
	writeFile(t, filepath.Join(loginDir, "login.js"), "login-script")
	writeFile(t, filepath.Join(publicDir, "index.html"), "home-page")
	writeFile(t, filepath.Join(publicDir, "app.js"), "app-script")

	router := gin.New()
	router.POST("/login", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	router.NoRoute(StaticHandler(loginDir, publicDir, "/login/login.html"))
	return router
}

func get(router *gin.Engine, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestStaticHandlerServesLoginAssets(t *testing.T) {
	router := newStaticRouter(t)

	for target, want := range map[string]string{
		"/login/login.html": "login-page",
		"/login/login.js":   "login-script",
	} {
		rec := get(router, target)
		if rec.Code != http.StatusOK || rec.Body.String() != want {
			t.Fatalf("%s: unexpected response %d %q", target, rec.Code, rec.Body.String())
		}
	}
}

func TestStaticHandlerServesPublicAssets(t *testing.T) {
	router := newStaticRouter(t)

	rec := get(router, "/")
	if rec.Code != http.StatusOK || rec.Body.String() != "home-page" {
		t.Fatalf("unexpected index response: %d %q", rec.Code, rec.Body.String())
	}
	rec = get(router, "/app.js")
	if rec.Code != http.StatusOK || rec.Body.String() != "app-script" {
		t.Fatalf("unexpected asset response: %d %q", rec.Code, rec.Body.String())
	}
	if rec := get(router, "/missing.css"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing asset, got %d", rec.Code)
	}
}

func TestStaticHandlerLoginRootRedirects(t *testing.T) {
	router := newStaticRouter(t)
	for _, target := range []string{"/login", "/login/"} {
		rec := get(router, target)
		if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/login/login.html" {
			t.Fatalf("%s: unexpected response %d %s", target, rec.Code, rec.Header().Get("Location"))
		}
	}
}

func TestStaticHandlerLoginDirIsolated(t *testing.T) {
	router := newStaticRouter(t)
	if rec := get(router, "/login/app.js"); rec.Code != http.StatusNotFound {
		t.Fatalf("public files must not be reachable under /login, got %d", rec.Code)
	}
}
