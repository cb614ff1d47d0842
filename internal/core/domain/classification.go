package domain

import "github.com/google/uuid"

// ClassificationLevel is a selectable classification for folders
type ClassificationLevel struct {
	ID   uuid.UUID
	Name string
	Rank int
}
