package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

// TagList is the free-form metadata attached to a task. The difficulty
// label, when present, is one tag among possibly others.
type TagList []string

func (t TagList) Value() (driver.Value, error) {
	if t == nil {
		return nil, nil
	}
	return json.Marshal(t)
}

func (t *TagList) Scan(value interface{}) error {
	if value == nil {
		*t = nil
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		if str, ok := value.(string); ok {
			b = []byte(str)
		} else {
			return errors.New("TagList: unsupported column type")
		}
	}
	return json.Unmarshal(b, t)
}

// Task is the append-only ledger of completed work. Rows are created once
// per completion and never updated; streak continuity is derived from
// completed_at, so the (user, community, completed_at) index is what the
// recording path queries.
type Task struct {
	ID          string    `gorm:"primaryKey;type:char(24)" json:"id"`
	UserID      string    `gorm:"type:char(24);index:idx_task_member,priority:1;not null" json:"user_id"`
	CommunityID string    `gorm:"type:char(24);index:idx_task_member,priority:2;not null" json:"community_id"`
	ModuleID    string    `gorm:"type:char(24);index;not null" json:"module_id"`
	Description string    `gorm:"size:500" json:"description"`
	Metadata    TagList   `gorm:"type:json" json:"metadata,omitempty"`
	Points      int       `gorm:"not null" json:"points"`
	CompletedAt time.Time `gorm:"index:idx_task_member,priority:3;not null" json:"completed_at"`
	CreatedAt   time.Time `json:"-"`
}

func (Task) TableName() string {
	return "tasks"
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = NewObjectID()
	}
	return nil
}
