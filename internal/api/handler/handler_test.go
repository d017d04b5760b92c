package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"wlbot/backend/internal/api/handler"
	"wlbot/backend/internal/audit"
	"wlbot/backend/internal/auth"
	"wlbot/backend/internal/storage"
	"wlbot/backend/internal/workflow"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T) (*gin.Engine, storage.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s, err := storage.NewFileStore(t.TempDir(), "admin")
	require.NoError(t, err)
	g := auth.NewGuard(s, audit.Nop{}, "admin")
	apps := workflow.NewApplications(s, nil, g, audit.Nop{}, true)
	reps := workflow.NewReports(s, g)

	r := gin.New()
	handler.NewHandler(s, apps, reps, "s3cret").Register(r)
	return r, s
}

func TestHealthz(t *testing.T) {
	r, _ := newRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPIRequiresToken(t *testing.T) {
	r, _ := newRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/players", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthFlow(t *testing.T) {
	r, s := newRouter(t)
	require.NoError(t, s.SetPlayer("Steve", 111))

	// Wrong secret is rejected.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth?secret=wrong", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Right secret yields a token.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth?secret=s3cret", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.Token)

	// The token opens /api/players.
	req := httptest.NewRequest(http.MethodGet, "/api/players", nil)
	req.Header.Set("Authorization", "Bearer "+body.Token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var players struct {
		Count   int              `json:"count"`
		Players map[string]int64 `json:"players"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &players))
	assert.Equal(t, 1, players.Count)
	assert.Equal(t, int64(111), players.Players["Steve"])
}
