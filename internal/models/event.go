package models

import (
	"time"

	"gorm.io/gorm"
)

// Event levels.
const (
	EventLevelInfo  = "info"
	EventLevelWarn  = "warn"
	EventLevelError = "error"
)

// EventLog records operational events: generation failures, dispatch results,
// pipeline status callbacks. Queried from the admin surface.
type EventLog struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Level     string         `gorm:"size:20;not null;index" json:"level"`
	Source    string         `gorm:"size:100;not null;index" json:"source"`
	Title     string         `gorm:"size:500;not null" json:"title"`
	Message   string         `gorm:"type:text" json:"message"`
	Platform  string         `gorm:"size:50" json:"platform"`
	DraftID   *string        `gorm:"size:36;index" json:"draft_id"`
	Context   string         `gorm:"type:jsonb" json:"context"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at"`
}
