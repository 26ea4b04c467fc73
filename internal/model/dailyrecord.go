package model

import (
	"time"

	"github.com/google/uuid"
)

// DailyRecord captures one day of production data for a flock.
type DailyRecord struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FlockID       uuid.UUID `gorm:"type:uuid;not null;index" json:"flockId"`
	RecordDate    time.Time `gorm:"type:date;not null" json:"recordDate"`
	EggsCollected int       `gorm:"not null;default:0" json:"eggsCollected"`
	FeedKg        float64   `gorm:"not null;default:0" json:"feedKg"`
	Mortality     int       `gorm:"not null;default:0" json:"mortality"`

	TenantOwnedModel
	AutoTimeModel
}

func (DailyRecord) TableName() string   { return "daily_records" }
func (DailyRecord) IsSharedModel() bool { return false }
