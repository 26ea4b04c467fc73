package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AutoTimeModel struct {
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// BeforeCreate ensures timestamps are set before creating a record
func (b *AutoTimeModel) BeforeCreate(_ *gorm.DB) error {
	now := time.Now().UTC()

	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}

	b.UpdatedAt = now

	return nil
}

// BeforeUpdate ensures UpdatedAt is set before updating a record
func (b *AutoTimeModel) BeforeUpdate(_ *gorm.DB) error {
	b.UpdatedAt = time.Now().UTC()
	return nil
}

// TenantOwnedModel carries the owner column every row-level security policy
// compares against the session's tenant variable.
type TenantOwnedModel struct {
	TenantID uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
}

func (t *TenantOwnedModel) SetOwner(tenantID uuid.UUID) {
	t.TenantID = tenantID
}

func (t *TenantOwnedModel) Owner() uuid.UUID {
	return t.TenantID
}
