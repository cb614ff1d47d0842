package domain

import (
	"time"

	"github.com/google/uuid"
)

// UploadStatus represents the status of a persisted upload
type UploadStatus string

const (
	UploadStatusPending   UploadStatus = "pending"
	UploadStatusCompleted UploadStatus = "completed"
	UploadStatusMissing   UploadStatus = "missing"
)

// Upload represents one stored file attached to a resource
type Upload struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	ResourceID  uuid.UUID
	FileName    string
	Title       string
	Description string
	Category    string
	Visibility  Visibility
	MimeType    string
	SizeBytes   int64
	StorageKey  string
	Status      UploadStatus
	Attempts    int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
