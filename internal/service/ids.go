package service

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
)

func newID() string {
	bytes := make([]byte, 16)
	_, _ = rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// NewSessionID mints the id of a rotated or freshly started session.
func NewSessionID() string {
	return uuid.NewString()
}
