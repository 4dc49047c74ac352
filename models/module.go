package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

// PointsScheme maps a difficulty label ("easy", "medium", "hard") to the
// base point value awarded for a completion of that difficulty. Stored as
// a JSON column.
type PointsScheme map[string]int

func (s PointsScheme) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

func (s *PointsScheme) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		if str, ok := value.(string); ok {
			b = []byte(str)
		} else {
			return errors.New("PointsScheme: unsupported column type")
		}
	}
	return json.Unmarshal(b, s)
}

// ModuleSettings is the free-form per-community customization blob carried
// on an attachment.
type ModuleSettings map[string]interface{}

func (m ModuleSettings) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *ModuleSettings) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		if str, ok := value.(string); ok {
			b = []byte(str)
		} else {
			return errors.New("ModuleSettings: unsupported column type")
		}
	}
	return json.Unmarshal(b, m)
}

// Module is a global catalog entry for a pluggable activity type, e.g. a
// coding-practice tracker. The catalog is managed by platform admins.
type Module struct {
	ID           string       `gorm:"primaryKey;type:char(24)" json:"id"`
	Name         string       `gorm:"size:100;not null" json:"name"`
	Slug         string       `gorm:"size:50;uniqueIndex;not null" json:"slug"`
	Type         string       `gorm:"size:32;not null;default:'practice'" json:"type"`
	PointsScheme PointsScheme `gorm:"type:json" json:"points_scheme"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"-"`
}

func (Module) TableName() string {
	return "modules"
}

func (m *Module) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = NewObjectID()
	}
	return nil
}

// CommunityModule attaches a catalog module to a community. A non-empty
// PointsScheme overrides the catalog default for that community only.
type CommunityModule struct {
	ID           uint           `gorm:"primaryKey" json:"-"`
	CommunityID  string         `gorm:"type:char(24);uniqueIndex:idx_attach;not null" json:"community_id"`
	ModuleID     string         `gorm:"type:char(24);uniqueIndex:idx_attach;not null" json:"module_id"`
	PointsScheme PointsScheme   `gorm:"type:json" json:"points_scheme,omitempty"`
	Settings     ModuleSettings `gorm:"type:json" json:"settings,omitempty"`
	CreatedAt    time.Time      `json:"attached_at"`
	UpdatedAt    time.Time      `json:"-"`
}

func (CommunityModule) TableName() string {
	return "community_modules"
}
