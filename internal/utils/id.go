package utils

import "github.com/google/uuid"

// NewID returns a unique connection identity.
func NewID() string {
	return uuid.NewString()
}
