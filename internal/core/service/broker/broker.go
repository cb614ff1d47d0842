package broker

import (
	"fmt"
	"log/slog"
	"mime"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/config"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/domain"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/port"

	"github.com/google/uuid"
)

type brokerService struct {
	storage  port.ObjectStorage
	sessions port.SessionStore
	uow      port.UnitOfWork
	cfg      config.FileUploadConfig
	logger   *slog.Logger
	now      func() time.Time
}

// NewBrokerService creates a new pre-signed url broker
func NewBrokerService(storage port.ObjectStorage, sessions port.SessionStore, uow port.UnitOfWork, cfg config.FileUploadConfig, logger *slog.Logger) port.BrokerService {
	return &brokerService{
		storage:  storage,
		sessions: sessions,
		uow:      uow,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// AllowedMimeTypes is the whitelist of uploadable MIME types and their extensions.
// It does not rely on the OS mime database.
var AllowedMimeTypes = map[string][]string{
	// Documents
	"application/pdf":    {".pdf"},
	"application/msword": {".doc"},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   {".docx"},
	"application/vnd.ms-powerpoint":                                             {".ppt"},
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": {".pptx"},
	"application/vnd.ms-excel":                                                  {".xls"},
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         {".xlsx"},
	"text/plain":       {".txt"},
	"text/markdown":    {".md"},
	"text/csv":         {".csv"},
	"application/zip":  {".zip"},
	"application/json": {".json"},

	// Images
	"image/jpeg": {".jpg", ".jpeg"},
	"image/png":  {".png"},
	"image/webp": {".webp"},
	"image/gif":  {".gif"},

	// Video and audio
	"video/mp4":       {".mp4"},
	"video/webm":      {".webm"},
	"video/quicktime": {".mov"},
	"audio/mpeg":      {".mp3"},
}

// validateDescriptor checks one file of a batch and returns its normalized mime type
func (b *brokerService) validateDescriptor(file domain.FileDescriptor) (string, error) {
	if strings.TrimSpace(file.Filename) == "" {
		return "", fmt.Errorf("filename: %w", domain.ErrMissingField)
	}
	if file.Size < b.cfg.MinFileSize {
		return "", domain.ErrFileSizeTooSmall
	}
	if file.Size > b.cfg.MaxFileSize {
		return "", domain.ErrFileSizeTooBig
	}

	mimeType, _, err := mime.ParseMediaType(file.MimeType)
	if err != nil {
		return "", fmt.Errorf("%w: invalid content type %q", domain.ErrInvalidFileType, file.MimeType)
	}
	mimeType = strings.ToLower(mimeType)

	allowedExts, ok := AllowedMimeTypes[mimeType]
	if !ok {
		return "", fmt.Errorf("%w: unsupported MIME type %s", domain.ErrInvalidFileType, mimeType)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	for _, allowed := range allowedExts {
		if ext == allowed {
			return mimeType, nil
		}
	}
	return "", fmt.Errorf("%w: extension %q is not allowed for %s (expected one of: %v)",
		domain.ErrInvalidFileType, ext, mimeType, allowedExts)
}

// storageKey builds {prefix}/{owner}/{session}/{uuid}{ext}
func (b *brokerService) storageKey(ownerID, sessionID uuid.UUID, filename string) string {
	return path.Join(b.cfg.KeyPrefix, ownerID.String(), sessionID.String(), uuid.NewString()+strings.ToLower(filepath.Ext(filename)))
}

// siblingKey builds a fresh key in the same owner and session directory as oldKey
func siblingKey(oldKey, filename string) string {
	return path.Join(path.Dir(oldKey), uuid.NewString()+strings.ToLower(filepath.Ext(filename)))
}
