package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/domain"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/port"

	"github.com/google/uuid"
)

type sqlResourceRepository struct {
	db SQLQuerier
}

// NewSqlResourceRepository creates sqlResourceRepository
func NewSqlResourceRepository(db SQLQuerier) port.ResourceRepository {
	return &sqlResourceRepository{db: db}
}

// Create inserts a resource
func (s *sqlResourceRepository) Create(ctx context.Context, resource domain.Resource) error {
	query := `INSERT INTO resources (id, owner_id, folder_id, title, description, visibility, category, status)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.db.ExecContext(ctx, query,
		resource.ID,
		resource.OwnerID,
		resource.FolderID,
		resource.Title,
		resource.Description,
		resource.Visibility,
		resource.Category,
		resource.Status,
	)
	if err != nil {
		if code, _ := pqViolation(err); code == codeForeignKeyViolation {
			return fmt.Errorf("resource %s: %w", resource.ID, domain.ErrFolderNotFound)
		}
		return fmt.Errorf("error inserting resource: %w", err)
	}
	return nil
}

// FindByID finds a resource by id
func (s *sqlResourceRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Resource, error) {
	query := `SELECT id, owner_id, folder_id, title, description, visibility, category, status, created_at, updated_at
              FROM resources WHERE id = $1`

	var row dbResource
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&row.ID,
		&row.OwnerID,
		&row.FolderID,
		&row.Title,
		&row.Description,
		&row.Visibility,
		&row.Category,
		&row.Status,
		&row.CreatedAt,
		&row.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrResourceNotFound
		}
		return nil, err
	}
	return row.ToDomain(), nil
}

// UpdateStatus updates status
func (s *sqlResourceRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ResourceStatus) error {
	query := `UPDATE resources SET status = $1, updated_at = now() WHERE id = $2`

	result, err := s.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("error updating resource: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrResourceNotFound
	}
	return nil
}

type dbResource struct {
	ID          uuid.UUID     `db:"id"`
	OwnerID     uuid.UUID     `db:"owner_id"`
	FolderID    uuid.NullUUID `db:"folder_id"`
	Title       string        `db:"title"`
	Description string        `db:"description"`
	Visibility  string        `db:"visibility"`
	Category    string        `db:"category"`
	Status      string        `db:"status"`
	CreatedAt   time.Time     `db:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at"`
}

// ToDomain converts to domain.Resource
func (r *dbResource) ToDomain() *domain.Resource {
	res := &domain.Resource{
		ID:          r.ID,
		OwnerID:     r.OwnerID,
		Title:       r.Title,
		Description: r.Description,
		Visibility:  domain.Visibility(r.Visibility),
		Category:    r.Category,
		Status:      domain.ResourceStatus(r.Status),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.FolderID.Valid {
		folderID := r.FolderID.UUID
		res.FolderID = &folderID
	}
	return res
}
