package model

import (
	"errors"

	"github.com/google/uuid"
)

var ErrEmptyExternalSubjectID = errors.New("external subject id must not be empty")

// Tenant is one isolated customer account, keyed to exactly one identity
// provider subject. ID is the internal ownership key referenced by every
// tenant-owned table; ExternalSubjectID is immutable once set.
type Tenant struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ExternalSubjectID string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"externalSubjectId"`
	Email             string    `gorm:"type:varchar(320);not null;default:''" json:"email"`

	AutoTimeModel
}

func (Tenant) TableName() string   { return "tenants" }
func (Tenant) IsSharedModel() bool { return true }

func (t *Tenant) Validate() error {
	if t.ExternalSubjectID == "" {
		return ErrEmptyExternalSubjectID
	}

	return nil
}
