package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Community is the top-level group entity. Streak policy lives directly on
// the row: StreakThreshold = 0 means the streak bonus is disabled for the
// community, which is also the default for communities that never touched
// their settings.
type Community struct {
	ID               string            `gorm:"primaryKey;type:char(24)" json:"id"`
	Name             string            `gorm:"size:100;not null" json:"name"`
	OwnerID          string            `gorm:"type:char(24);index;not null" json:"owner_id"`
	InviteCode       string            `gorm:"size:36;uniqueIndex;not null" json:"invite_code"`
	StreakThreshold  int               `gorm:"default:0" json:"streak_threshold"`
	StreakMultiplier float64           `gorm:"type:decimal(4,2);default:1" json:"streak_multiplier"`
	Members          []CommunityMember `gorm:"foreignKey:CommunityID" json:"members,omitempty"`
	Modules          []CommunityModule `gorm:"foreignKey:CommunityID" json:"modules,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"-"`
}

func (Community) TableName() string {
	return "communities"
}

func (c *Community) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = NewObjectID()
	}
	if c.InviteCode == "" {
		c.InviteCode = uuid.NewString()
	}
	return nil
}

// CommunityMember is one user's membership in one community. The
// autoincrement id doubles as arrival order and is the leaderboard
// tie-break for equal points.
type CommunityMember struct {
	ID            uint             `gorm:"primaryKey" json:"-"`
	CommunityID   string           `gorm:"type:char(24);uniqueIndex:idx_member;not null" json:"community_id"`
	UserID        string           `gorm:"type:char(24);uniqueIndex:idx_member;not null" json:"user_id"`
	Role          string           `gorm:"type:enum('admin','member');default:'member'" json:"role"`
	Points        int64            `gorm:"not null;default:0" json:"points"`
	CurrentStreak int              `gorm:"not null;default:0" json:"current_streak"`
	LongestStreak int              `gorm:"not null;default:0" json:"longest_streak"`
	Progress      []ModuleProgress `gorm:"foreignKey:MemberID" json:"progress,omitempty"`
	CreatedAt     time.Time        `json:"joined_at"`
	UpdatedAt     time.Time        `json:"-"`
}

func (CommunityMember) TableName() string {
	return "community_members"
}

// ModuleProgress aggregates one member's earnings inside a single module.
type ModuleProgress struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	MemberID    uint      `gorm:"uniqueIndex:idx_progress;not null" json:"-"`
	ModuleID    string    `gorm:"type:char(24);uniqueIndex:idx_progress;not null" json:"module_id"`
	TotalPoints int64     `gorm:"not null;default:0" json:"total_points"`
	TotalTime   int64     `gorm:"not null;default:0" json:"total_time"` // seconds
	UpdatedAt   time.Time `json:"-"`
}

func (ModuleProgress) TableName() string {
	return "module_progress"
}
