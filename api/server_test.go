package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/warehub/relay/api"
	"github.com/warehub/relay/internal/config"
	"github.com/warehub/relay/internal/hub"
	"github.com/warehub/relay/internal/ledger"
	"github.com/warehub/relay/internal/store"
	"github.com/warehub/relay/internal/telemetry"
)

type fixture struct {
	router *gin.Engine
	ledger *ledger.Ledger
}

func setup(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	st := store.NewFileStore(filepath.Join(t.TempDir(), "orders.json"), logger)
	led, err := ledger.NewLedger(st, 20, logger)
	require.NoError(t, err)

	wsCfg := config.WSConfig{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		PingInterval:    30 * time.Second,
		PongTimeout:     60 * time.Second,
		WriteTimeout:    5 * time.Second,
		MaxMessageSize:  64 * 1024,
		SendBufferSize:  64,
	}
	h := hub.NewHub(led, wsCfg, logger)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "telemetry.db")), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	require.NoError(t, err)
	tel, err := telemetry.NewService(logger, db, 1000, 500)
	require.NoError(t, err)

	srv := api.NewServer(logger, h, led, tel)
	return &fixture{router: srv.Router(), ledger: led}
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req, _ := http.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func TestHealthCheck(t *testing.T) {
	f := setup(t)
	w, resp := doJSON(t, f.router, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", resp["status"])
}

func TestRootStatus(t *testing.T) {
	f := setup(t)
	w, resp := doJSON(t, f.router, http.MethodGet, "/", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "running", resp["status"])
	conns := resp["connections"].(map[string]interface{})
	assert.Equal(t, float64(0), conns["total"])
}

func TestUEPing(t *testing.T) {
	f := setup(t)
	_, err := f.ledger.Create(context.Background(), "1-2", nil, time.Time{}, "")
	require.NoError(t, err)

	w, resp := doJSON(t, f.router, http.MethodGet, "/ue/ping", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, float64(1), resp["total_orders"])
}

func TestUEListOrders(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := f.ledger.Create(ctx, "10-20", nil, time.Time{}, "")
		require.NoError(t, err)
	}

	w, resp := doJSON(t, f.router, http.MethodGet, "/ue/orders?limit=2", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(3), resp["total"])
	orders := resp["orders"].([]interface{})
	require.Len(t, orders, 2)
	first := orders[0].(map[string]interface{})
	assert.Equal(t, float64(2), first["id"], "suffix in arrival order")
}

func TestUELatestOrder(t *testing.T) {
	f := setup(t)

	w, _ := doJSON(t, f.router, http.MethodGet, "/ue/order/latest", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	_, err := f.ledger.Create(context.Background(), "7-8", nil, time.Time{}, "")
	require.NoError(t, err)

	w, resp := doJSON(t, f.router, http.MethodGet, "/ue/order/latest", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "7-8", resp["content"])
}

func TestUEAck(t *testing.T) {
	f := setup(t)

	w, resp := doJSON(t, f.router, http.MethodPost, "/ue/ack",
		`{"order_id": 3, "status": "received", "message": "picked up"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["ok"])

	w, _ = doJSON(t, f.router, http.MethodPost, "/ue/ack",
		`{"order_id": 3, "status": "nonsense"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, resp = doJSON(t, f.router, http.MethodGet, "/ue/acks", "")
	assert.Equal(t, http.StatusOK, w.Code)
	acks := resp["acks"].([]interface{})
	require.Len(t, acks, 1)
	ack := acks[0].(map[string]interface{})
	assert.Equal(t, float64(3), ack["order_id"])
}

func TestUETelemetry(t *testing.T) {
	f := setup(t)

	w, resp := doJSON(t, f.router, http.MethodPost, "/ue/telemetry",
		`{"player_id": "player1", "data": {"x": 100, "y": 200}}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["ok"])

	w, _ = doJSON(t, f.router, http.MethodPost, "/ue/telemetry", `{"player_id": "p2"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, "data is required")

	w, resp = doJSON(t, f.router, http.MethodGet, "/ue/telemetry", "")
	assert.Equal(t, http.StatusOK, w.Code)
	recs := resp["telemetry"].([]interface{})
	require.Len(t, recs, 1)
}

func TestWebSocketUpgradeThroughRouter(t *testing.T) {
	f := setup(t)
	srv := httptest.NewServer(f.router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/ue/sim-1"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping"}))
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var frame map[string]interface{}
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "pong", frame["type"])
}
