// Package telemetry is the append-only sink for acknowledgment and player
// telemetry records submitted by the simulation client. It keeps a bounded
// history and has no ordering contract beyond "most recent N".
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/warehub/relay/pkg/models"
)

// Service stores ack and telemetry history.
type Service struct {
	logger       *zap.Logger
	db           *gorm.DB
	historyLimit int
	trimTo       int
}

// NewService creates the sink and migrates its tables.
func NewService(logger *zap.Logger, db *gorm.DB, historyLimit, trimTo int) (*Service, error) {
	if err := db.AutoMigrate(&models.AckRecord{}, &models.TelemetryRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate telemetry tables: %w", err)
	}
	if historyLimit <= 0 {
		historyLimit = 1000
	}
	if trimTo <= 0 || trimTo > historyLimit {
		trimTo = historyLimit / 2
	}
	return &Service{
		logger:       logger,
		db:           db,
		historyLimit: historyLimit,
		trimTo:       trimTo,
	}, nil
}

// RecordAck appends an order acknowledgment.
func (s *Service) RecordAck(ctx context.Context, orderID int64, status, message string) (*models.AckRecord, error) {
	rec := &models.AckRecord{
		OrderID:   orderID,
		Status:    status,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return nil, fmt.Errorf("failed to store ack: %w", err)
	}
	s.trim(ctx, &models.AckRecord{})
	return rec, nil
}

// RecordTelemetry appends a player telemetry sample.
func (s *Service) RecordTelemetry(ctx context.Context, playerID string, data json.RawMessage) (*models.TelemetryRecord, error) {
	rec := &models.TelemetryRecord{
		PlayerID:  playerID,
		Data:      string(data),
		Timestamp: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return nil, fmt.Errorf("failed to store telemetry: %w", err)
	}
	s.trim(ctx, &models.TelemetryRecord{})
	return rec, nil
}

// RecentAcks returns the last limit acks in arrival order.
func (s *Service) RecentAcks(ctx context.Context, limit int) ([]*models.AckRecord, error) {
	var recs []*models.AckRecord
	err := s.db.WithContext(ctx).Order("id desc").Limit(limit).Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list acks: %w", err)
	}
	reverse(recs)
	return recs, nil
}

// RecentTelemetry returns the last limit samples in arrival order.
func (s *Service) RecentTelemetry(ctx context.Context, limit int) ([]*models.TelemetryRecord, error) {
	var recs []*models.TelemetryRecord
	err := s.db.WithContext(ctx).Order("id desc").Limit(limit).Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list telemetry: %w", err)
	}
	reverse(recs)
	return recs, nil
}

// trim keeps history bounded: once a table exceeds the limit, the oldest
// rows are dropped down to trimTo. Best-effort; a failed trim only logs.
func (s *Service) trim(ctx context.Context, model interface{}) {
	var count int64
	if err := s.db.WithContext(ctx).Model(model).Count(&count).Error; err != nil {
		s.logger.Warn("Failed to count history rows", zap.Error(err))
		return
	}
	if count <= int64(s.historyLimit) {
		return
	}

	var cutoff struct{ ID uint }
	err := s.db.WithContext(ctx).Model(model).
		Select("id").
		Order("id desc").
		Offset(s.trimTo - 1).
		Limit(1).
		Scan(&cutoff).Error
	if err != nil || cutoff.ID == 0 {
		s.logger.Warn("Failed to find history cutoff", zap.Error(err))
		return
	}
	if err := s.db.WithContext(ctx).Where("id < ?", cutoff.ID).Delete(model).Error; err != nil {
		s.logger.Warn("Failed to trim history", zap.Error(err))
	}
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
