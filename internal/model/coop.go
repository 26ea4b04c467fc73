package model

import "github.com/google/uuid"

// Coop is a physical housing unit for flocks.
type Coop struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name     string    `gorm:"type:varchar(255);not null" json:"name"`
	Capacity int       `gorm:"not null;default:0" json:"capacity"`
	Notes    string    `gorm:"type:text;not null;default:''" json:"notes,omitempty"`

	TenantOwnedModel
	AutoTimeModel
}

func (Coop) TableName() string   { return "coops" }
func (Coop) IsSharedModel() bool { return false }
