package postgres_test

import (
	"context"
	"testing"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/adapters/repository/postgres"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestSqlResourceRepository(t *testing.T) {
	dbConnection, cleanup, truncate := postgres.NewTestDB(t)
	defer cleanup()
	ctx := context.Background()

	resourceRepo := postgres.NewSqlResourceRepository(dbConnection)
	folderRepo := postgres.NewSqlFolderRepository(dbConnection)
	truncate()

	t.Run("create without folder", func(t *testing.T) {
		defer truncate()
		resource := newResource(uuid.New(), nil)

		require.NoError(t, resourceRepo.Create(ctx, resource))

		got, err := resourceRepo.FindByID(ctx, resource.ID)
		require.NoError(t, err)
		require.Nil(t, got.FolderID)
		require.Equal(t, domain.ResourceStatusProcessing, got.Status)
		require.Equal(t, domain.VisibilityPublic, got.Visibility)
	})

	t.Run("create inside a folder", func(t *testing.T) {
		defer truncate()
		ownerID := uuid.New()
		folder := domain.Folder{
			ID:               uuid.New(),
			OwnerID:          ownerID,
			Name:             "Semester 1",
			ClassificationID: postgres.SeedClassification(t, dbConnection, "public", 0),
		}
		require.NoError(t, folderRepo.Create(ctx, folder))
		resource := newResource(ownerID, &folder.ID)

		require.NoError(t, resourceRepo.Create(ctx, resource))

		got, err := resourceRepo.FindByID(ctx, resource.ID)
		require.NoError(t, err)
		require.NotNil(t, got.FolderID)
		require.Equal(t, folder.ID, *got.FolderID)
	})

	t.Run("unknown folder", func(t *testing.T) {
		defer truncate()
		folderID := uuid.New()
		err := resourceRepo.Create(ctx, newResource(uuid.New(), &folderID))
		require.ErrorIs(t, err, domain.ErrFolderNotFound)
	})

	t.Run("update status", func(t *testing.T) {
		defer truncate()
		resource := newResource(uuid.New(), nil)
		require.NoError(t, resourceRepo.Create(ctx, resource))

		require.NoError(t, resourceRepo.UpdateStatus(ctx, resource.ID, domain.ResourceStatusActive))
		got, err := resourceRepo.FindByID(ctx, resource.ID)
		require.NoError(t, err)
		require.Equal(t, domain.ResourceStatusActive, got.Status)

		err = resourceRepo.UpdateStatus(ctx, uuid.New(), domain.ResourceStatusActive)
		require.ErrorIs(t, err, domain.ErrResourceNotFound)
	})
}
