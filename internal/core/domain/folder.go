package domain

import (
	"time"

	"github.com/google/uuid"
)

// Folder groups resources under a classification level and a set of tags
type Folder struct {
	ID               uuid.UUID
	OwnerID          uuid.UUID
	Name             string
	Description      string
	ClassificationID uuid.UUID
	TagIDs           []uuid.UUID
	CreatedAt        time.Time
}

// NewFolderData describes a folder created in the same transaction as a resource
type NewFolderData struct {
	Name             string
	Description      string
	ClassificationID uuid.UUID
	TagIDs           []uuid.UUID
}

// FolderManagement is the folder directive of a submission: exactly one field is set
type FolderManagement struct {
	SelectedFolderID *uuid.UUID
	NewFolder        *NewFolderData
}

// Validate checks that exactly one of the two directives is present
func (f FolderManagement) Validate() error {
	if (f.SelectedFolderID == nil) == (f.NewFolder == nil) {
		return ErrInvalidFolderDirective
	}
	if f.NewFolder != nil {
		if f.NewFolder.Name == "" {
			return ErrMissingField
		}
		if f.NewFolder.ClassificationID == uuid.Nil {
			return ErrMissingField
		}
	}
	return nil
}
