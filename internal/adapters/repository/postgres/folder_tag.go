package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/domain"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/port"

	"github.com/google/uuid"
)

type sqlFolderTagRepository struct {
	db SQLQuerier
}

// NewFolderTagRepository creates sqlFolderTagRepository
func NewFolderTagRepository(db SQLQuerier) port.FolderTagRepository {
	return &sqlFolderTagRepository{db: db}
}

// CreateMany creates folder-tag associations in batch
func (s *sqlFolderTagRepository) CreateMany(ctx context.Context, folderID uuid.UUID, tagIDs []uuid.UUID) (int, error) {
	if len(tagIDs) == 0 {
		return 0, nil
	}

	unique := make(map[uuid.UUID]struct{}, len(tagIDs))
	placeholders := make([]string, 0, len(tagIDs))
	args := make([]any, 0, len(tagIDs)*2)
	for _, tagID := range tagIDs {
		if _, ok := unique[tagID]; ok {
			continue
		}
		unique[tagID] = struct{}{}
		base := len(args)
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d)", base+1, base+2))
		args = append(args, folderID, tagID)
	}

	query := fmt.Sprintf(
		"INSERT INTO folder_tags (folder_id, tag_id) VALUES %s ON CONFLICT (folder_id, tag_id) DO NOTHING",
		strings.Join(placeholders, ", "),
	)

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		if code, _ := pqViolation(err); code == codeForeignKeyViolation {
			return 0, fmt.Errorf("folder %s: %w", folderID, domain.ErrTagNotFound)
		}
		return 0, fmt.Errorf("error inserting folder tags: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(rowsAffected), nil
}

// FindByFolderID returns the tag ids of a folder
func (s *sqlFolderTagRepository) FindByFolderID(ctx context.Context, folderID uuid.UUID) ([]uuid.UUID, error) {
	query := `SELECT tag_id FROM folder_tags WHERE folder_id = $1`

	rows, err := s.db.QueryContext(ctx, query, folderID)
	if err != nil {
		return nil, fmt.Errorf("error querying folder tags: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning folder tag: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating folder tags: %w", err)
	}
	return ids, nil
}
