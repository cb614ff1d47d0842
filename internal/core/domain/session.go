package domain

import (
	"time"

	"github.com/google/uuid"
)

// IssuedKeyState represents the state of a storage key issued by the broker
type IssuedKeyState string

const (
	IssuedKeyStateIssued    IssuedKeyState = "issued"
	IssuedKeyStateAbandoned IssuedKeyState = "abandoned"
	IssuedKeyStateConsumed  IssuedKeyState = "consumed"
)

// IssuedKey is a storage key reserved for one file of a batch
type IssuedKey struct {
	StorageKey string         `json:"storage_key"`
	Filename   string         `json:"filename"`
	MimeType   string         `json:"mime_type"`
	SizeBytes  int64          `json:"size_bytes"`
	FolderID   *uuid.UUID     `json:"folder_id,omitempty"`
	Attempt    int            `json:"attempt"`
	State      IssuedKeyState `json:"state"`
	ReplacedBy string         `json:"replaced_by,omitempty"`
	IssuedAt   time.Time      `json:"issued_at"`
}

// UploadSession loosely binds the keys of one batch to one submission window
type UploadSession struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	CreatedAt time.Time
	ExpiresAt time.Time
	Keys      map[string]IssuedKey
}

// Key returns the issued key for storageKey when it belongs to the session
func (s *UploadSession) Key(storageKey string) (IssuedKey, bool) {
	if s == nil || s.Keys == nil {
		return IssuedKey{}, false
	}
	key, ok := s.Keys[storageKey]
	return key, ok
}
