package api

import (
	"context"
	"net/http"
	"time"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/domain"

	"github.com/google/uuid"
)

type fileDescriptor struct {
	Filename string     `json:"filename"`
	MimeType string     `json:"mimetype"`
	Size     int64      `json:"size"`
	FolderID *uuid.UUID `json:"folderId,omitempty"`
}

type requestURLsBody struct {
	SessionID *uuid.UUID       `json:"sessionId,omitempty"`
	Files     []fileDescriptor `json:"files"`
}

type presignedFile struct {
	StorageKey   string            `json:"storageKey"`
	PreSignedURL string            `json:"preSignedUrl"`
	Filename     string            `json:"filename"`
	Size         int64             `json:"size"`
	MimeType     string            `json:"mimetype"`
	Headers      map[string]string `json:"headers"`
	ExpiresAt    time.Time         `json:"expiresAt"`
}

func (p presignedFile) toDomain() domain.PresignedFile {
	return domain.PresignedFile{
		StorageKey:   p.StorageKey,
		PresignedURL: p.PreSignedURL,
		Headers:      p.Headers,
		Filename:     p.Filename,
		Size:         p.Size,
		MimeType:     p.MimeType,
		ExpiresAt:    p.ExpiresAt,
	}
}

type requestURLsResponse struct {
	SessionID     uuid.UUID       `json:"sessionId"`
	PreSignedData []presignedFile `json:"preSignedData"`
	ExpiresIn     int64           `json:"expiresIn"`
}

// RequestUploadURLs asks for one write url per file. A non-nil sessionID adds the files to that session.
func (c *Client) RequestUploadURLs(ctx context.Context, sessionID *uuid.UUID, files []domain.FileDescriptor) (*domain.PresignedBatch, error) {
	body := requestURLsBody{SessionID: sessionID, Files: make([]fileDescriptor, len(files))}
	for i, f := range files {
		body.Files[i] = fileDescriptor{Filename: f.Filename, MimeType: f.MimeType, Size: f.Size, FolderID: f.FolderID}
	}

	var resp requestURLsResponse
	if err := c.do(ctx, http.MethodPost, "/uploads/request-urls", body, &resp); err != nil {
		return nil, err
	}

	batch := &domain.PresignedBatch{
		SessionID: resp.SessionID,
		Files:     make([]domain.PresignedFile, len(resp.PreSignedData)),
		ExpiresIn: time.Duration(resp.ExpiresIn) * time.Second,
	}
	for i, p := range resp.PreSignedData {
		batch.Files[i] = p.toDomain()
	}
	return batch, nil
}

type retryBody struct {
	UploadID   *uuid.UUID `json:"uploadId,omitempty"`
	SessionID  *uuid.UUID `json:"sessionId,omitempty"`
	StorageKey string     `json:"storageKey,omitempty"`
}

// RetryUpload asks for a fresh key and url for one file
func (c *Client) RetryUpload(ctx context.Context, req domain.RetryRequest) (*domain.PresignedFile, error) {
	var resp presignedFile
	body := retryBody{UploadID: req.UploadID, SessionID: req.SessionID, StorageKey: req.StorageKey}
	if err := c.do(ctx, http.MethodPost, "/uploads/retry", body, &resp); err != nil {
		return nil, err
	}
	file := resp.toDomain()
	return &file, nil
}

type newFolderData struct {
	Name             string      `json:"name"`
	Description      string      `json:"description"`
	ClassificationID uuid.UUID   `json:"classificationId"`
	TagIDs           []uuid.UUID `json:"tagIds,omitempty"`
}

type folderManagement struct {
	SelectedFolderID *uuid.UUID     `json:"selectedFolderId,omitempty"`
	NewFolderData    *newFolderData `json:"newFolderData,omitempty"`
}

type fileSubmission struct {
	StorageKey       string `json:"storageKey"`
	OriginalFilename string `json:"originalFilename"`
	MimeType         string `json:"mimetype"`
	Size             int64  `json:"size"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	Category         string `json:"category"`
	Visibility       string `json:"visibility"`
}

type createResourceBody struct {
	SessionID        uuid.UUID        `json:"sessionId"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	Visibility       string           `json:"visibility"`
	Category         string           `json:"category,omitempty"`
	FolderManagement folderManagement `json:"folderManagement"`
	Files            []fileSubmission `json:"files"`
}

type resourceBody struct {
	ID          uuid.UUID  `json:"id"`
	FolderID    *uuid.UUID `json:"folderId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Visibility  string     `json:"visibility"`
	Category    string     `json:"category"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type uploadBody struct {
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

type folderBody struct {
	ID               uuid.UUID   `json:"id"`
	Name             string      `json:"name"`
	Description      string      `json:"description"`
	ClassificationID uuid.UUID   `json:"classificationId"`
	TagIDs           []uuid.UUID `json:"tagIds"`
}

type createResourceResponse struct {
	Resource resourceBody `json:"resource"`
	Folder   *folderBody  `json:"folder"`
	Uploads  []uploadBody `json:"uploads"`
}

// CreateResource submits the wizard. The server commits everything or nothing.
func (c *Client) CreateResource(ctx context.Context, in domain.CreateResourceInput) (*domain.CreateResourceResult, error) {
	body := createResourceBody{
		SessionID:   in.SessionID,
		Title:       in.Title,
		Description: in.Description,
		Visibility:  string(in.Visibility),
		Category:    in.Category,
		FolderManagement: folderManagement{
			SelectedFolderID: in.FolderManagement.SelectedFolderID,
		},
		Files: make([]fileSubmission, len(in.Files)),
	}
	if nf := in.FolderManagement.NewFolder; nf != nil {
		body.FolderManagement.NewFolderData = &newFolderData{
			Name:             nf.Name,
			Description:      nf.Description,
			ClassificationID: nf.ClassificationID,
			TagIDs:           nf.TagIDs,
		}
	}
	for i, f := range in.Files {
		body.Files[i] = fileSubmission{
			StorageKey:       f.StorageKey,
			OriginalFilename: f.OriginalFilename,
			MimeType:         f.MimeType,
			Size:             f.Size,
			Title:            f.Title,
			Description:      f.Description,
			Category:         f.Category,
			Visibility:       string(f.Visibility),
		}
	}

	var resp createResourceResponse
	if err := c.doOnce(ctx, http.MethodPost, "/uploads/create-resource", body, &resp); err != nil {
		return nil, err
	}

	result := &domain.CreateResourceResult{
		Resource: domain.Resource{
			ID:          resp.Resource.ID,
			FolderID:    resp.Resource.FolderID,
			Title:       resp.Resource.Title,
			Description: resp.Resource.Description,
			Visibility:  domain.Visibility(resp.Resource.Visibility),
			Category:    resp.Resource.Category,
			Status:      domain.ResourceStatus(resp.Resource.Status),
			CreatedAt:   resp.Resource.CreatedAt,
		},
		Uploads: make([]domain.Upload, len(resp.Uploads)),
	}
	for i, u := range resp.Uploads {
		result.Uploads[i] = domain.Upload{
			ID:          u.ID,
			ResourceID:  u.ResourceID,
			FileName:    u.FileName,
			Title:       u.Title,
			Description: u.Description,
			Category:    u.Category,
			Visibility:  domain.Visibility(u.Visibility),
			MimeType:    u.MimeType,
			SizeBytes:   u.Size,
			StorageKey:  u.StorageKey,
			Status:      domain.UploadStatus(u.Status),
		}
	}
	if f := resp.Folder; f != nil {
		result.Folder = &domain.Folder{
			ID:               f.ID,
			Name:             f.Name,
			Description:      f.Description,
			ClassificationID: f.ClassificationID,
			TagIDs:           f.TagIDs,
		}
	}
	return result, nil
}

type completeResponse struct {
	ResourceID uuid.UUID `json:"resourceId"`
	Status     string    `json:"status"`
	Completed  int       `json:"completed"`
	Pending    int       `json:"pending"`
	Missing    int       `json:"missing"`
}

// CompleteResource asks the server to reconcile a resource with storage
func (c *Client) CompleteResource(ctx context.Context, resourceID uuid.UUID) (*domain.CompletionReport, error) {
	var resp completeResponse
	if err := c.do(ctx, http.MethodPost, "/uploads/complete/"+resourceID.String(), nil, &resp); err != nil {
		return nil, err
	}
	return &domain.CompletionReport{
		ResourceID: resp.ResourceID,
		Status:     domain.ResourceStatus(resp.Status),
		Completed:  resp.Completed,
		Pending:    resp.Pending,
		Missing:    resp.Missing,
	}, nil
}

type downloadResponse struct {
	DownloadURL string `json:"downloadUrl"`
}

// DownloadURL returns a short-lived read url for an upload
func (c *Client) DownloadURL(ctx context.Context, uploadID uuid.UUID) (string, error) {
	var resp downloadResponse
	if err := c.do(ctx, http.MethodGet, "/uploads/download/"+uploadID.String(), nil, &resp); err != nil {
		return "", err
	}
	return resp.DownloadURL, nil
}
