// Package api exposes the read-only query surface and the WebSocket upgrade
// endpoints over a single gin router.
package api

import (
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/warehub/relay/internal/hub"
	"github.com/warehub/relay/internal/ledger"
	"github.com/warehub/relay/internal/telemetry"
)

var validate = validator.New()

// Server represents the API server
type Server struct {
	router    *gin.Engine
	logger    *zap.Logger
	hub       *hub.Hub
	ledger    *ledger.Ledger
	telemetry *telemetry.Service
}

// NewServer creates the API server over the hub, ledger and telemetry sink.
func NewServer(logger *zap.Logger, h *hub.Hub, led *ledger.Ledger, tel *telemetry.Service) *Server {
	server := &Server{
		logger:    logger,
		hub:       h,
		ledger:    led,
		telemetry: tel,
	}

	router := gin.New()
	router.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	router.Use(ginzap.RecoveryWithZap(logger, true))
	router.Use(otelgin.Middleware("order-relay"))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	server.router = router
	server.registerRoutes()
	return server
}

// Start starts the API server
func (s *Server) Start(addr string) error {
	s.logger.Info("Starting API server", zap.String("addr", addr))
	return s.router.Run(addr)
}

// Router returns the internal Gin engine for testing purposes
func (s *Server) Router() *gin.Engine {
	return s.router
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	s.router.GET("/", s.rootStatus)
	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// WebSocket endpoints: dashboards use the bare /ws, the simulation
	// client identifies itself through the path parameters.
	s.router.GET("/ws", func(c *gin.Context) {
		s.hub.ServeWS(c.Writer, c.Request, "", "")
	})
	s.router.GET("/ws/:client_type/:client_id", func(c *gin.Context) {
		s.hub.ServeWS(c.Writer, c.Request, c.Param("client_type"), c.Param("client_id"))
	})

	ue := s.router.Group("/ue")
	{
		ue.GET("/ping", s.uePing)
		ue.GET("/orders", s.ueListOrders)
		ue.GET("/order/latest", s.ueLatestOrder)
		ue.POST("/ack", s.ueAcknowledge)
		ue.GET("/acks", s.ueListAcks)
		ue.POST("/telemetry", s.ueSubmitTelemetry)
		ue.GET("/telemetry", s.ueListTelemetry)
	}
}
