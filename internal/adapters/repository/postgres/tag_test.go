package postgres_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/adapters/repository/postgres"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestSqlTagRepository_CreateMany(t *testing.T) {
	dbConnection, cleanup, truncate := postgres.NewTestDB(t)
	defer cleanup()
	ctx := context.Background()

	tagRepo := postgres.NewSqlTagRepository(dbConnection)

	t.Run("nominal", func(t *testing.T) {
		truncate()
		nb, err := tagRepo.CreateMany(ctx, []string{"math", "physics", "exam"})
		require.NoError(t, err)
		require.Equal(t, 3, nb)
	})

	t.Run("duplicates are collapsed case insensitively", func(t *testing.T) {
		truncate()
		nb, err := tagRepo.CreateMany(ctx, []string{"Math", "mATH", "MATH", "exam", " "})
		require.NoError(t, err)
		require.Equal(t, 2, nb)
	})

	t.Run("existing tags are skipped", func(t *testing.T) {
		truncate()
		_, err := tagRepo.CreateMany(ctx, []string{"math"})
		require.NoError(t, err)

		nb, err := tagRepo.CreateMany(ctx, []string{"Math", "exam"})
		require.NoError(t, err)
		require.Equal(t, 1, nb)
	})

	t.Run("all already exist", func(t *testing.T) {
		truncate()
		_, err := tagRepo.CreateMany(ctx, []string{"math", "exam"})
		require.NoError(t, err)

		nb, err := tagRepo.CreateMany(ctx, []string{"MATH", "Exam"})
		require.ErrorIs(t, err, domain.ErrAlreadyExists)
		require.Zero(t, nb)
	})
}

func TestSqlTagRepository_FindByName(t *testing.T) {
	dbConnection, cleanup, truncate := postgres.NewTestDB(t)
	defer cleanup()
	ctx := context.Background()

	tagRepo := postgres.NewSqlTagRepository(dbConnection)

	t.Run("found", func(t *testing.T) {
		truncate()
		_, err := tagRepo.CreateMany(ctx, []string{"lecture"})
		require.NoError(t, err)

		tag, err := tagRepo.FindByName(ctx, "LECTURE")
		require.NoError(t, err)
		require.Equal(t, "lecture", tag.Name)
		require.NotEqual(t, uuid.Nil, tag.ID)
	})

	t.Run("not found", func(t *testing.T) {
		truncate()
		_, err := tagRepo.FindByName(ctx, "missing")
		require.ErrorIs(t, err, domain.ErrTagNotFound)
	})
}

func TestSqlTagRepository_FindByIDs(t *testing.T) {
	dbConnection, cleanup, truncate := postgres.NewTestDB(t)
	defer cleanup()
	ctx := context.Background()

	tagRepo := postgres.NewSqlTagRepository(dbConnection)
	truncate()

	_, err := tagRepo.CreateMany(ctx, []string{"a", "b", "c"})
	require.NoError(t, err)
	a, err := tagRepo.FindByName(ctx, "a")
	require.NoError(t, err)
	c, err := tagRepo.FindByName(ctx, "c")
	require.NoError(t, err)

	tags, err := tagRepo.FindByIDs(ctx, []uuid.UUID{c.ID, a.ID, uuid.New()})
	require.NoError(t, err)
	require.Len(t, tags, 2)
	require.Equal(t, "a", tags[0].Name)
	require.Equal(t, "c", tags[1].Name)

	none, err := tagRepo.FindByIDs(ctx, nil)
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestSqlTagRepository_List(t *testing.T) {
	dbConnection, cleanup, truncate := postgres.NewTestDB(t)
	defer cleanup()
	ctx := context.Background()

	tagRepo := postgres.NewSqlTagRepository(dbConnection)
	truncate()

	names := make([]string, 0, 25)
	for i := 0; i < 25; i++ {
		names = append(names, fmt.Sprintf("tag%02d", i))
	}
	_, err := tagRepo.CreateMany(ctx, names)
	require.NoError(t, err)

	t.Run("first page has a marker", func(t *testing.T) {
		tags, next, err := tagRepo.List(ctx, 10, nil)
		require.NoError(t, err)
		require.Len(t, tags, 10)
		require.NotNil(t, next)
		require.Equal(t, "tag09", *next)
	})

	t.Run("last page has no marker", func(t *testing.T) {
		marker := "tag19"
		tags, next, err := tagRepo.List(ctx, 10, &marker)
		require.NoError(t, err)
		require.Len(t, tags, 5)
		require.Nil(t, next)
		require.Equal(t, "tag20", tags[0].Name)
	})
}
