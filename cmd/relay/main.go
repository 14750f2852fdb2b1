package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
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
	"github.com/warehub/relay/pkg/logger"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	zapLogger, err := logger.NewLogger(logLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		zapLogger.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Snapshot store for the order ledger
	var snapStore store.SnapshotStore
	var badgerStore *store.BadgerStore
	switch cfg.Storage.Backend {
	case "badger":
		badgerStore, err = store.NewBadgerStore(cfg.Storage.BadgerDir, zapLogger)
		if err != nil {
			zapLogger.Fatal("Failed to open badger snapshot store", zap.Error(err))
		}
		snapStore = badgerStore
	default:
		snapStore = store.NewFileStore(cfg.Storage.SnapshotPath, zapLogger)
	}

	led, err := ledger.NewLedger(snapStore, cfg.Ledger.DefaultListLimit, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to create ledger", zap.Error(err))
	}

	h := hub.NewHub(led, cfg.WS, zapLogger)

	// Telemetry/ack sink
	if dir := filepath.Dir(cfg.Telemetry.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			zapLogger.Fatal("Failed to create telemetry directory", zap.Error(err))
		}
	}
	db, err := gorm.Open(sqlite.Open(cfg.Telemetry.DBPath), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	if err != nil {
		zapLogger.Fatal("Failed to open telemetry database", zap.Error(err))
	}
	telemetrySvc, err := telemetry.NewService(zapLogger, db, cfg.Telemetry.HistoryLimit, cfg.Telemetry.TrimTo)
	if err != nil {
		zapLogger.Fatal("Failed to create telemetry service", zap.Error(err))
	}

	// Heartbeat task
	heartbeatCtx, stopHeartbeat := context.WithCancel(context.Background())
	heartbeat := hub.NewHeartbeat(h, led, cfg.Heartbeat.Interval, zapLogger)
	go heartbeat.Run(heartbeatCtx)

	apiServer := api.NewServer(zapLogger, h, led, telemetrySvc)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		if err := apiServer.Start(addr); err != nil {
			zapLogger.Fatal("Failed to start API server", zap.Error(err))
		}
	}()

	// Wait for interrupt to shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down server...")

	stopHeartbeat()
	if badgerStore != nil {
		if err := badgerStore.Close(); err != nil {
			zapLogger.Error("Failed to close snapshot store", zap.Error(err))
		}
	}

	zapLogger.Info("Server exited properly")
}
