package routes

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"task-tracker-api/internal/auth"
	"task-tracker-api/internal/config"
	"task-tracker-api/internal/handlers"
	"task-tracker-api/internal/realtime"
	"task-tracker-api/internal/session"
	"task-tracker-api/internal/store"
	"task-tracker-api/internal/tasks"
	"task-tracker-api/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newRouter(t *testing.T, origins ...string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	st := store.NewGormStore(db)

	cfg := config.DefaultConfig()
	if len(origins) > 0 {
		cfg.Server.AllowedOrigins = origins
	}
	sessions := session.NewManager(st, cfg.Auth.TokenTTL)
	provider := auth.NewLocalProvider(st).WithCost(bcrypt.MinCost)
	provider.OnAuthStateChange(sessions.OnAuthStateChange)
	hub := realtime.NewHub()

	return SetupRoutes(cfg.Server, &handlers.Handler{
		Tokens:   auth.NewTokens(cfg.Auth),
		Provider: provider,
		Sessions: sessions,
		Tasks:    tasks.NewService(st, hub, tasks.Options{}),
		Hub:      hub,
	})
}

func TestHealth(t *testing.T) {
	r := newRouter(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := newRouter(t)
	for _, path := range []string{"/api/tasks", "/api/board", "/api/stats", "/api/me", "/ws"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestLoginRouteIsPublic(t *testing.T) {
	r := newRouter(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewBufferString(`{"email":"alice@example.com","password":"secret-pw"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestCORS_Preflight(t *testing.T) {
	r := newRouter(t, "https://app.example.com")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/tasks", nil)
	req.Header.Set("Origin", "https://app.example.com")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodOptions, "/api/tasks", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	r.ServeHTTP(w, req)
	require.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
