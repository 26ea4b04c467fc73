package model

import (
	"time"

	"github.com/google/uuid"
)

// Flock is a group of birds housed in one coop.
type Flock struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CoopID    uuid.UUID `gorm:"type:uuid;not null;index" json:"coopId"`
	Breed     string    `gorm:"type:varchar(255);not null" json:"breed"`
	HatchDate time.Time `gorm:"type:date;not null" json:"hatchDate"`
	BirdCount int       `gorm:"not null;default:0" json:"birdCount"`

	TenantOwnedModel
	AutoTimeModel
}

func (Flock) TableName() string   { return "flocks" }
func (Flock) IsSharedModel() bool { return false }
