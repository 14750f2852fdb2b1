package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/warehub/relay/internal/ledger"
)

type ackRequest struct {
	OrderID int64  `json:"order_id" validate:"required"`
	Status  string `json:"status" validate:"required,oneof=received in_progress completed failed"`
	Message string `json:"message" validate:"omitempty,max=500"`
}

type telemetryRequest struct {
	PlayerID string          `json:"player_id" validate:"omitempty,max=64"`
	Data     json.RawMessage `json:"data" validate:"required"`
}

func (s *Server) rootStatus(c *gin.Context) {
	counts := s.hub.Counts()
	c.JSON(http.StatusOK, gin.H{
		"status": "running",
		"connections": gin.H{
			"total":          counts.Total,
			"ue_clients":     counts.UEClients,
			"svelte_clients": counts.SvelteClients,
		},
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) uePing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"server_time":  time.Now().UTC().Format(time.RFC3339),
		"total_orders": s.ledger.Len(),
	})
}

func (s *Server) ueListOrders(c *gin.Context) {
	limit := queryInt(c, "limit", 20)
	c.JSON(http.StatusOK, gin.H{
		"orders": s.ledger.List(limit),
		"total":  s.ledger.Len(),
	})
}

func (s *Server) ueLatestOrder(c *gin.Context) {
	latest, err := s.ledger.Latest()
	if errors.Is(err, ledger.ErrLedgerEmpty) {
		c.JSON(http.StatusNotFound, gin.H{"error": "No orders"})
		return
	}
	c.JSON(http.StatusOK, latest)
}

func (s *Server) ueAcknowledge(c *gin.Context) {
	var req ackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := validate.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := s.telemetry.RecordAck(c.Request.Context(), req.OrderID, req.Status, req.Message); err != nil {
		s.logger.Error("Failed to record ack", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store ack"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) ueListAcks(c *gin.Context) {
	limit := queryInt(c, "limit", 100)
	acks, err := s.telemetry.RecentAcks(c.Request.Context(), limit)
	if err != nil {
		s.logger.Error("Failed to list acks", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list acks"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"acks": acks})
}

func (s *Server) ueSubmitTelemetry(c *gin.Context) {
	var req telemetryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := validate.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := s.telemetry.RecordTelemetry(c.Request.Context(), req.PlayerID, req.Data); err != nil {
		s.logger.Error("Failed to record telemetry", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store telemetry"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) ueListTelemetry(c *gin.Context) {
	limit := queryInt(c, "limit", 100)
	recs, err := s.telemetry.RecentTelemetry(c.Request.Context(), limit)
	if err != nil {
		s.logger.Error("Failed to list telemetry", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list telemetry"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"telemetry": recs})
}

func queryInt(c *gin.Context, key string, fallback int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
