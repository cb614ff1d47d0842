package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/domain"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/port"

	"github.com/google/uuid"
)

type sqlClassificationRepository struct {
	db SQLQuerier
}

// NewSqlClassificationRepository creates sqlClassificationRepository
func NewSqlClassificationRepository(db SQLQuerier) port.ClassificationRepository {
	return &sqlClassificationRepository{db: db}
}

// FindByID finds a classification level by id
func (s *sqlClassificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.ClassificationLevel, error) {
	query := `SELECT id, name, rank FROM classification_levels WHERE id = $1`

	var level domain.ClassificationLevel
	err := s.db.QueryRowContext(ctx, query, id).Scan(&level.ID, &level.Name, &level.Rank)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrClassificationNotFound
		}
		return nil, err
	}
	return &level, nil
}

// List returns every classification level ordered by rank
func (s *sqlClassificationRepository) List(ctx context.Context) ([]domain.ClassificationLevel, error) {
	query := `SELECT id, name, rank FROM classification_levels ORDER BY rank, name`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying classification levels: %w", err)
	}
	defer rows.Close()

	var levels []domain.ClassificationLevel
	for rows.Next() {
		var level domain.ClassificationLevel
		if err := rows.Scan(&level.ID, &level.Name, &level.Rank); err != nil {
			return nil, fmt.Errorf("error scanning classification level: %w", err)
		}
		levels = append(levels, level)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating classification levels: %w", err)
	}
	return levels, nil
}
