package model

import (
	"time"

	"github.com/google/uuid"
)

// Purchase is a money-out entry (feed, equipment, birds, medication).
type Purchase struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PurchaseDate time.Time `gorm:"type:date;not null" json:"purchaseDate"`
	Category     string    `gorm:"type:varchar(100);not null" json:"category"`
	Description  string    `gorm:"type:text;not null;default:''" json:"description,omitempty"`
	AmountCents  int64     `gorm:"not null;default:0" json:"amountCents"`

	TenantOwnedModel
	AutoTimeModel
}

func (Purchase) TableName() string   { return "purchases" }
func (Purchase) IsSharedModel() bool { return false }
