package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/domain"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/port"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const uploadColumns = `id, owner_id, resource_id, file_name, title, description, category, visibility,
                       mime_type, size_bytes, storage_key, status, attempts, created_at, updated_at`

const uploadColumnCount = 13

type sqlUploadRepository struct {
	db SQLQuerier
}

// NewSqlUploadRepository creates sqlUploadRepository
func NewSqlUploadRepository(db SQLQuerier) port.UploadRepository {
	return &sqlUploadRepository{db: db}
}

// CreateMany inserts every upload in one statement
func (s *sqlUploadRepository) CreateMany(ctx context.Context, uploads []domain.Upload) error {
	if len(uploads) == 0 {
		return nil
	}

	placeholders := make([]string, 0, len(uploads))
	args := make([]any, 0, len(uploads)*uploadColumnCount)
	for i, u := range uploads {
		base := i * uploadColumnCount
		marks := make([]string, uploadColumnCount)
		for j := range marks {
			marks[j] = fmt.Sprintf("$%d", base+j+1)
		}
		placeholders = append(placeholders, "("+strings.Join(marks, ", ")+")")
		args = append(args,
			u.ID, u.OwnerID, u.ResourceID, u.FileName, u.Title, u.Description, u.Category,
			u.Visibility, u.MimeType, u.SizeBytes, u.StorageKey, u.Status, u.Attempts,
		)
	}

	query := fmt.Sprintf(`INSERT INTO uploads (id, owner_id, resource_id, file_name, title, description, category,
              visibility, mime_type, size_bytes, storage_key, status, attempts) VALUES %s`,
		strings.Join(placeholders, ", "))

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		if code, constraint := pqViolation(err); code == codeUniqueViolation && constraint == "uploads_storage_key_uq" {
			return fmt.Errorf("error inserting uploads: %w", domain.ErrStorageKeyConsumed)
		}
		return fmt.Errorf("error inserting uploads: %w", err)
	}
	return nil
}

// FindByID finds an upload by id
func (s *sqlUploadRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Upload, error) {
	query := `SELECT ` + uploadColumns + ` FROM uploads WHERE id = $1`
	return s.findOne(ctx, query, id)
}

// FindByStorageKey finds the upload referencing a storage key
func (s *sqlUploadRepository) FindByStorageKey(ctx context.Context, storageKey string) (*domain.Upload, error) {
	query := `SELECT ` + uploadColumns + ` FROM uploads WHERE storage_key = $1`
	return s.findOne(ctx, query, storageKey)
}

func (s *sqlUploadRepository) findOne(ctx context.Context, query string, arg any) (*domain.Upload, error) {
	var row dbUpload
	err := s.db.QueryRowContext(ctx, query, arg).Scan(row.dest()...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUploadNotFound
		}
		return nil, err
	}
	return row.ToDomain(), nil
}

// FindByResourceID lists the uploads of a resource
func (s *sqlUploadRepository) FindByResourceID(ctx context.Context, resourceID uuid.UUID) ([]domain.Upload, error) {
	query := `SELECT ` + uploadColumns + ` FROM uploads WHERE resource_id = $1 ORDER BY created_at, file_name`
	return s.findMany(ctx, query, resourceID)
}

// FindPendingBefore finds pending uploads not touched since before
func (s *sqlUploadRepository) FindPendingBefore(ctx context.Context, before time.Time, limit int) ([]domain.Upload, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT ` + uploadColumns + `
              FROM uploads
              WHERE status = 'pending' AND updated_at < $1
              ORDER BY updated_at ASC
              LIMIT $2`
	return s.findMany(ctx, query, before, limit)
}

func (s *sqlUploadRepository) findMany(ctx context.Context, query string, args ...any) ([]domain.Upload, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying uploads: %w", err)
	}
	defer rows.Close()

	var uploads []domain.Upload
	for rows.Next() {
		var row dbUpload
		if err := rows.Scan(row.dest()...); err != nil {
			return nil, fmt.Errorf("error scanning upload: %w", err)
		}
		uploads = append(uploads, *row.ToDomain())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating uploads: %w", err)
	}
	return uploads, nil
}

// UpdateStatus updates status
func (s *sqlUploadRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.UploadStatus) error {
	query := `UPDATE uploads SET status = $1, updated_at = now() WHERE id = $2`

	result, err := s.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("error updating upload: %w", err)
	}
	return expectOneRow(result, domain.ErrUploadNotFound)
}

// ReplaceStorageKey points the upload at a fresh key, resets it to pending and counts the attempt
func (s *sqlUploadRepository) ReplaceStorageKey(ctx context.Context, id uuid.UUID, storageKey string) error {
	query := `UPDATE uploads
              SET storage_key = $1, status = 'pending', attempts = attempts + 1, updated_at = now()
              WHERE id = $2`

	result, err := s.db.ExecContext(ctx, query, storageKey, id)
	if err != nil {
		if code, _ := pqViolation(err); code == codeUniqueViolation {
			return fmt.Errorf("error replacing storage key: %w", domain.ErrStorageKeyConsumed)
		}
		return fmt.Errorf("error replacing storage key: %w", err)
	}
	return expectOneRow(result, domain.ErrUploadNotFound)
}

// ExistingStorageKeys reports which of keys are referenced by an upload
func (s *sqlUploadRepository) ExistingStorageKeys(ctx context.Context, keys []string) (map[string]bool, error) {
	found := make(map[string]bool, len(keys))
	if len(keys) == 0 {
		return found, nil
	}

	query := `SELECT storage_key FROM uploads WHERE storage_key = ANY($1::text[])`

	rows, err := s.db.QueryContext(ctx, query, pq.Array(keys))
	if err != nil {
		return nil, fmt.Errorf("error querying storage keys: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("error scanning storage key: %w", err)
		}
		found[key] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating storage keys: %w", err)
	}
	return found, nil
}

func expectOneRow(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}

type dbUpload struct {
	ID          uuid.UUID `db:"id"`
	OwnerID     uuid.UUID `db:"owner_id"`
	ResourceID  uuid.UUID `db:"resource_id"`
	FileName    string    `db:"file_name"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Category    string    `db:"category"`
	Visibility  string    `db:"visibility"`
	MimeType    string    `db:"mime_type"`
	SizeBytes   int64     `db:"size_bytes"`
	StorageKey  string    `db:"storage_key"`
	Status      string    `db:"status"`
	Attempts    int       `db:"attempts"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (u *dbUpload) dest() []any {
	return []any{
		&u.ID, &u.OwnerID, &u.ResourceID, &u.FileName, &u.Title, &u.Description, &u.Category,
		&u.Visibility, &u.MimeType, &u.SizeBytes, &u.StorageKey, &u.Status, &u.Attempts,
		&u.CreatedAt, &u.UpdatedAt,
	}
}

// ToDomain converts to domain.Upload
func (u *dbUpload) ToDomain() *domain.Upload {
	return &domain.Upload{
		ID:          u.ID,
		OwnerID:     u.OwnerID,
		ResourceID:  u.ResourceID,
		FileName:    u.FileName,
		Title:       u.Title,
		Description: u.Description,
		Category:    u.Category,
		Visibility:  domain.Visibility(u.Visibility),
		MimeType:    u.MimeType,
		SizeBytes:   u.SizeBytes,
		StorageKey:  u.StorageKey,
		Status:      domain.UploadStatus(u.Status),
		Attempts:    u.Attempts,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
