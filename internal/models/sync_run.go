package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type SyncRun struct {
	ID           string         `json:"id" gorm:"primaryKey;size:36"`
	Category     Category       `json:"category" gorm:"not null;index"`
	Status       SyncStatus     `json:"status" gorm:"not null;default:RUNNING"`
	ProductCount int            `json:"product_count"`
	Brands       pq.StringArray `json:"brands" gorm:"type:text"`
	Error        *string        `json:"error"`
	StartedAt    time.Time      `json:"started_at"`
	FinishedAt   *time.Time     `json:"finished_at"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

type SyncStatus string

const (
	SyncStatusRunning   SyncStatus = "RUNNING"
	SyncStatusSucceeded SyncStatus = "SUCCEEDED"
	SyncStatusFailed    SyncStatus = "FAILED"
)

func (s *SyncRun) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}
