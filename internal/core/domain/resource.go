package domain

import (
	"time"

	"github.com/google/uuid"
)

// Visibility represents who can read a resource or an upload
type Visibility string

const (
	VisibilityPublic     Visibility = "public"
	VisibilityPrivate    Visibility = "private"
	VisibilityRestricted Visibility = "restricted"
)

// Valid reports whether v is a supported visibility
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityPrivate, VisibilityRestricted:
		return true
	default:
		return false
	}
}

// ResourceStatus represents the status of a resource
type ResourceStatus string

const (
	// ResourceStatusProcessing is set at commit time, before storage is confirmed
	ResourceStatusProcessing ResourceStatus = "processing"
	// ResourceStatusActive is set once every upload of the resource is completed
	ResourceStatusActive ResourceStatus = "active"
)

// Resource represents the logical content entity owning one or more uploads
type Resource struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	FolderID    *uuid.UUID
	Title       string
	Description string
	Visibility  Visibility
	Category    string
	Status      ResourceStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
