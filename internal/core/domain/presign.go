package domain

import (
	"time"

	"github.com/google/uuid"
)

// FileDescriptor describes a file the client wants to upload
type FileDescriptor struct {
	Filename string
	MimeType string
	Size     int64
	FolderID *uuid.UUID
}

// PresignedFile is the write target issued for one file
type PresignedFile struct {
	StorageKey   string
	PresignedURL string
	Headers      map[string]string
	Filename     string
	Size         int64
	MimeType     string
	ExpiresAt    time.Time
}

// PresignedBatch is the broker response for a batch of files
type PresignedBatch struct {
	SessionID uuid.UUID
	Files     []PresignedFile
	ExpiresIn time.Duration
}

// RetryRequest identifies the file to re-issue: either a persisted upload or an issued key
type RetryRequest struct {
	UploadID   *uuid.UUID
	SessionID  *uuid.UUID
	StorageKey string
}

// ObjectInfo is what the storage backend reports about an object
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
}
