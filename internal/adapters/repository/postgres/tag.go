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
	"github.com/lib/pq"
)

type sqlTagRepository struct {
	db SQLQuerier
}

// NewSqlTagRepository creates sqlTagRepository that implements port.TagRepository
func NewSqlTagRepository(db SQLQuerier) port.TagRepository {
	return &sqlTagRepository{
		db: db,
	}
}

// CreateMany creates multiple tags, skipping names that already exist
func (s *sqlTagRepository) CreateMany(ctx context.Context, tags []string) (int, error) {
	if len(tags) == 0 {
		return 0, nil
	}

	unique := make(map[string]struct{}, len(tags))
	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		lower := domain.NormalizeTagName(tag)
		if lower == "" {
			continue
		}
		if _, ok := unique[lower]; ok {
			continue
		}
		unique[lower] = struct{}{}
		names = append(names, lower)
	}
	if len(names) == 0 {
		return 0, nil
	}

	query := `INSERT INTO tags (name) SELECT UNNEST($1::text[]) ON CONFLICT DO NOTHING`

	result, err := s.db.ExecContext(ctx, query, pq.Array(names))
	if err != nil {
		return 0, fmt.Errorf("error inserting tags: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	if rowsAffected == 0 {
		return 0, domain.ErrAlreadyExists
	}

	return int(rowsAffected), nil
}

// FindByName finds a tag by name
func (s *sqlTagRepository) FindByName(ctx context.Context, name string) (*domain.Tag, error) {
	query := `SELECT id, name, created_at FROM tags WHERE name = LOWER($1)`

	var tagDB dbTag
	err := s.db.QueryRowContext(ctx, query, name).Scan(&tagDB.ID, &tagDB.Name, &tagDB.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTagNotFound
		}
		return nil, err
	}

	return tagDB.ToDomain(), nil
}

// FindByIDs retrieves multiple tags by their ids in a single query
func (s *sqlTagRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = id.String()
	}

	query := `SELECT id, name, created_at FROM tags WHERE id = ANY($1::uuid[]) ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query, pq.Array(raw))
	if err != nil {
		return nil, fmt.Errorf("error querying tags: %w", err)
	}
	defer rows.Close()

	var result []domain.Tag
	for rows.Next() {
		var tagDB dbTag
		if err := rows.Scan(&tagDB.ID, &tagDB.Name, &tagDB.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning tag: %w", err)
		}
		result = append(result, *tagDB.ToDomain())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tags: %w", err)
	}

	return result, nil
}

// List retrieves tags with cursor-based pagination sorted by name
func (s *sqlTagRepository) List(ctx context.Context, limit int, marker *string) ([]domain.Tag, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	after := ""
	if marker != nil {
		after = domain.NormalizeTagName(*marker)
	}

	query := `
		SELECT id, name, created_at
		FROM tags
		WHERE name > $1
		ORDER BY name ASC
		LIMIT $2`

	rows, err := s.db.QueryContext(ctx, query, after, limit+1)
	if err != nil {
		return nil, nil, fmt.Errorf("error querying tags: %w", err)
	}
	defer rows.Close()

	tags := make([]domain.Tag, 0, limit)
	for rows.Next() {
		var tagDB dbTag
		if err := rows.Scan(&tagDB.ID, &tagDB.Name, &tagDB.CreatedAt); err != nil {
			return nil, nil, fmt.Errorf("error scanning tag: %w", err)
		}
		tags = append(tags, *tagDB.ToDomain())
	}

	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating tags: %w", err)
	}

	// one extra row means there is a next page
	var nextMarker *string
	if len(tags) > limit {
		tags = tags[:limit]
		lastName := tags[len(tags)-1].Name
		nextMarker = &lastName
	}

	return tags, nextMarker, nil
}

type dbTag struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

// ToDomain converts to domain.Tag
func (t *dbTag) ToDomain() *domain.Tag {
	return &domain.Tag{
		ID:        t.ID,
		Name:      t.Name,
		CreatedAt: t.CreatedAt,
	}
}
