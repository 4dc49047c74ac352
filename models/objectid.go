package models

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"
)

var objectIDPattern = regexp.MustCompile(`^[0-9a-f]{24}$`)

// NewObjectID returns a 24-character lowercase hex identifier used as the
// primary key for all externally addressable entities.
func NewObjectID() string {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		panic("models: crypto/rand unavailable: " + err.Error())
	}
	return hex.EncodeToString(b)
}

// IsObjectID reports whether s looks like a valid entity identifier.
// Handlers must reject malformed ids before touching the database.
func IsObjectID(s string) bool {
	return objectIDPattern.MatchString(s)
}
