package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Tag labels folders. Names are stored lower-case and are unique.
type Tag struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

// NormalizeTagName returns the stored form of a tag name
func NormalizeTagName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
