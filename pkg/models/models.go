package models

import (
	"time"
)

// Order represents a single warehouse order held by the ledger
type Order struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	Items     []int     `json:"items"`
	Timestamp time.Time `json:"timestamp"`
	// Origin is the connection id that created the order. Informational only;
	// it is never resolved back to a live connection.
	Origin string `json:"origin,omitempty"`
}

// AckRecord represents an order acknowledgment submitted by the simulation client
type AckRecord struct {
	ID        uint      `json:"-" gorm:"primaryKey;autoIncrement"`
	OrderID   int64     `json:"order_id" gorm:"index" validate:"required"`
	Status    string    `json:"status" validate:"required,oneof=received in_progress completed failed"`
	Message   string    `json:"message" validate:"omitempty,max=500"`
	Timestamp time.Time `json:"timestamp"`
}

// TelemetryRecord represents a player position/action sample from the simulation client
type TelemetryRecord struct {
	ID        uint      `json:"-" gorm:"primaryKey;autoIncrement"`
	PlayerID  string    `json:"player_id" validate:"omitempty,max=64"`
	Data      string    `json:"data" gorm:"type:text" validate:"required,json"`
	Timestamp time.Time `json:"timestamp"`
}
