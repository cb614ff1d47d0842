package domain

import "github.com/google/uuid"

// FileMetadataInput is the per-file metadata submitted for a completed upload
type FileMetadataInput struct {
	StorageKey       string
	OriginalFilename string
	MimeType         string
	Size             int64
	Title            string
	Description      string
	Category         string
	Visibility       Visibility
}

// CreateResourceInput is a complete submission of the upload wizard
type CreateResourceInput struct {
	SessionID        uuid.UUID
	Title            string
	Description      string
	Visibility       Visibility
	Category         string
	FolderManagement FolderManagement
	Files            []FileMetadataInput
}

// Validate checks the submission shape before any storage or database access
func (in CreateResourceInput) Validate() error {
	if in.SessionID == uuid.Nil || in.Title == "" {
		return ErrMissingField
	}
	if !in.Visibility.Valid() {
		return ErrInvalidVisibility
	}
	if err := in.FolderManagement.Validate(); err != nil {
		return err
	}
	if len(in.Files) == 0 {
		return ErrEmptyBatch
	}
	seen := make(map[string]struct{}, len(in.Files))
	for _, f := range in.Files {
		if f.StorageKey == "" || f.OriginalFilename == "" || f.Title == "" || f.Category == "" {
			return ErrMissingField
		}
		if !f.Visibility.Valid() {
			return ErrInvalidVisibility
		}
		if _, dup := seen[f.StorageKey]; dup {
			return ErrStorageKeyConsumed
		}
		seen[f.StorageKey] = struct{}{}
	}
	return nil
}

// CreateResourceResult is what a successful submission committed
type CreateResourceResult struct {
	Resource Resource
	Folder   *Folder
	Uploads  []Upload
}

// CompletionReport summarises a reconciliation pass over one resource
type CompletionReport struct {
	ResourceID uuid.UUID
	Status     ResourceStatus
	Completed  int
	Pending    int
	Missing    int
}
