package models

import "time"

// RevokedToken is the DB fallback revocation store for access token jtis,
// used when Redis is not configured.
type RevokedToken struct {
	ID        string    `gorm:"primaryKey;type:char(32)" json:"id"`
	RevokedAt time.Time `json:"revoked_at"`
}

func (RevokedToken) TableName() string {
	return "revoked_tokens"
}
