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

type sqlFolderRepository struct {
	db SQLQuerier
}

// NewSqlFolderRepository creates sqlFolderRepository
func NewSqlFolderRepository(db SQLQuerier) port.FolderRepository {
	return &sqlFolderRepository{db: db}
}

// Create inserts a folder; a name already used by the owner is reported as domain.ErrFolderNameTaken
func (s *sqlFolderRepository) Create(ctx context.Context, folder domain.Folder) error {
	query := `INSERT INTO folders (id, owner_id, name, description, classification_id)
              VALUES ($1, $2, $3, $4, $5)`

	_, err := s.db.ExecContext(ctx, query, folder.ID, folder.OwnerID, folder.Name, folder.Description, folder.ClassificationID)
	if err != nil {
		switch code, _ := pqViolation(err); code {
		case codeUniqueViolation:
			return fmt.Errorf("folder %q: %w", folder.Name, domain.ErrFolderNameTaken)
		case codeForeignKeyViolation:
			return fmt.Errorf("classification %s: %w", folder.ClassificationID, domain.ErrClassificationNotFound)
		}
		return fmt.Errorf("error inserting folder: %w", err)
	}
	return nil
}

// FindByID finds a folder by id
func (s *sqlFolderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Folder, error) {
	query := `SELECT id, owner_id, name, description, classification_id, created_at
              FROM folders WHERE id = $1`

	var row dbFolder
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&row.ID,
		&row.OwnerID,
		&row.Name,
		&row.Description,
		&row.ClassificationID,
		&row.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrFolderNotFound
		}
		return nil, err
	}
	return row.ToDomain(), nil
}

// ListByOwner lists the folders of an owner sorted by name
func (s *sqlFolderRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Folder, error) {
	query := `SELECT id, owner_id, name, description, classification_id, created_at
              FROM folders WHERE owner_id = $1 ORDER BY LOWER(name)`

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("error querying folders: %w", err)
	}
	defer rows.Close()

	var folders []domain.Folder
	for rows.Next() {
		var row dbFolder
		if err := rows.Scan(&row.ID, &row.OwnerID, &row.Name, &row.Description, &row.ClassificationID, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning folder: %w", err)
		}
		folders = append(folders, *row.ToDomain())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating folders: %w", err)
	}
	return folders, nil
}

type dbFolder struct {
	ID               uuid.UUID `db:"id"`
	OwnerID          uuid.UUID `db:"owner_id"`
	Name             string    `db:"name"`
	Description      string    `db:"description"`
	ClassificationID uuid.UUID `db:"classification_id"`
	CreatedAt        time.Time `db:"created_at"`
}

// ToDomain converts to domain.Folder
func (f *dbFolder) ToDomain() *domain.Folder {
	return &domain.Folder{
		ID:               f.ID,
		OwnerID:          f.OwnerID,
		Name:             f.Name,
		Description:      f.Description,
		ClassificationID: f.ClassificationID,
		CreatedAt:        f.CreatedAt,
	}
}
