package upload

import (
	"time"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/domain"

	"github.com/google/uuid"
)

// V1PresignedFile is one write target in the response of request-urls and retry
type V1PresignedFile struct {
	StorageKey   string            `json:"storageKey"`
	PreSignedURL string            `json:"preSignedUrl"`
	Filename     string            `json:"filename"`
	Size         int64             `json:"size"`
	MimeType     string            `json:"mimetype"`
	Headers      map[string]string `json:"headers,omitempty"`
	ExpiresAt    time.Time         `json:"expiresAt"`
}

func toPresignedFile(f domain.PresignedFile) V1PresignedFile {
	return V1PresignedFile{
		StorageKey:   f.StorageKey,
		PreSignedURL: f.PresignedURL,
		Filename:     f.Filename,
		Size:         f.Size,
		MimeType:     f.MimeType,
		Headers:      f.Headers,
		ExpiresAt:    f.ExpiresAt,
	}
}

// V1Resource is the resource part of the create-resource response
type V1Resource struct {
	ID          uuid.UUID  `json:"id"`
	FolderID    *uuid.UUID `json:"folderId,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Visibility  string     `json:"visibility"`
	Category    string     `json:"category"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// V1Upload is one upload of the create-resource response
type V1Upload struct {
	ID          uuid.UUID `json:"id"`
	ResourceID  uuid.UUID `json:"resourceId"`
	FileName    string    `json:"fileName"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Visibility  string    `json:"visibility"`
	MimeType    string    `json:"mimetype"`
	Size        int64     `json:"size"`
	StorageKey  string    `json:"storageKey"`
	Status      string    `json:"status"`
}

// V1Folder is the folder created alongside a resource
type V1Folder struct {
	ID               uuid.UUID   `json:"id"`
	Name             string      `json:"name"`
	Description      string      `json:"description"`
	ClassificationID uuid.UUID   `json:"classificationId"`
	TagIDs           []uuid.UUID `json:"tagIds"`
}

func toResource(r domain.Resource) V1Resource {
	return V1Resource{
		ID:          r.ID,
		FolderID:    r.FolderID,
		Title:       r.Title,
		Description: r.Description,
		Visibility:  string(r.Visibility),
		Category:    r.Category,
		Status:      string(r.Status),
		CreatedAt:   r.CreatedAt,
	}
}

func toUpload(u domain.Upload) V1Upload {
	return V1Upload{
		ID:          u.ID,
		ResourceID:  u.ResourceID,
		FileName:    u.FileName,
		Title:       u.Title,
		Description: u.Description,
		Category:    u.Category,
		Visibility:  string(u.Visibility),
		MimeType:    u.MimeType,
		Size:        u.SizeBytes,
		StorageKey:  u.StorageKey,
		Status:      string(u.Status),
	}
}
