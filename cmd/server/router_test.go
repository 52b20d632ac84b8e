package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tankarena/config"
	"tankarena/protocol"
	"tankarena/room"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testRouter(t *testing.T, origins []string) (*gin.Engine, *room.Room) {
	t.Helper()
	cfg := config.Default()
	cfg.AllowedOrigins = origins
	cfg.PingInterval = time.Hour
	cfg.HeartbeatTimeout = time.Hour
	rm := room.New(cfg, nil, protocol.JSONEncoder{})
	return newRouter(cfg, rm, protocol.JSONEncoder{}), rm
}

func TestHealthz(t *testing.T) {
	router, rm := testRouter(t, []string{"*"})
	go rm.Run()
	defer rm.Stop()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status string     `json:"status"`
		Stats  room.Stats `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, 0, body.Stats.Sessions)
}

func TestHealthzWhenStopped(t *testing.T) {
	router, rm := testRouter(t, []string{"*"})
	rm.Stop()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestScoreboardEmpty(t *testing.T) {
	router, rm := testRouter(t, []string{"*"})
	go rm.Run()
	defer rm.Stop()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/scoreboard", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestCORSAllowedOrigin(t *testing.T) {
	router, rm := testRouter(t, []string{"https://tanks.example"})
	go rm.Run()
	defer rm.Stop()

	req := httptest.NewRequest(http.MethodGet, "/scoreboard", nil)
	req.Header.Set("Origin", "https://tanks.example")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "https://tanks.example", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/scoreboard", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
