package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/adapters/repository/postgres"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newResource(ownerID uuid.UUID, folderID *uuid.UUID) domain.Resource {
	return domain.Resource{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		FolderID:    folderID,
		Title:       "Linear algebra notes",
		Description: "week 1 to 4",
		Visibility:  domain.VisibilityPublic,
		Category:    "lecture",
		Status:      domain.ResourceStatusProcessing,
	}
}

func newUpload(resource domain.Resource, key string) domain.Upload {
	return domain.Upload{
		ID:         uuid.New(),
		OwnerID:    resource.OwnerID,
		ResourceID: resource.ID,
		FileName:   "notes.pdf",
		Title:      "Notes",
		Category:   "lecture",
		Visibility: domain.VisibilityPublic,
		MimeType:   "application/pdf",
		SizeBytes:  2048,
		StorageKey: key,
		Status:     domain.UploadStatusPending,
	}
}

func TestSqlUploadRepository(t *testing.T) {
	dbConnection, cleanup, truncate := postgres.NewTestDB(t)
	defer cleanup()
	ctx := context.Background()

	resourceRepo := postgres.NewSqlResourceRepository(dbConnection)
	uploadRepo := postgres.NewSqlUploadRepository(dbConnection)

	seed := func(t *testing.T, keys ...string) (domain.Resource, []domain.Upload) {
		t.Helper()
		resource := newResource(uuid.New(), nil)
		require.NoError(t, resourceRepo.Create(ctx, resource))
		uploads := make([]domain.Upload, 0, len(keys))
		for _, key := range keys {
			uploads = append(uploads, newUpload(resource, key))
		}
		require.NoError(t, uploadRepo.CreateMany(ctx, uploads))
		return resource, uploads
	}

	t.Run("FindByID and FindByStorageKey", func(t *testing.T) {
		defer truncate()
		_, uploads := seed(t, "uploads/o/s/1.pdf")

		byID, err := uploadRepo.FindByID(ctx, uploads[0].ID)
		require.NoError(t, err)
		require.Equal(t, uploads[0].StorageKey, byID.StorageKey)
		require.Equal(t, domain.UploadStatusPending, byID.Status)
		require.Equal(t, int64(2048), byID.SizeBytes)

		byKey, err := uploadRepo.FindByStorageKey(ctx, "uploads/o/s/1.pdf")
		require.NoError(t, err)
		require.Equal(t, uploads[0].ID, byKey.ID)

		_, err = uploadRepo.FindByStorageKey(ctx, "uploads/unknown")
		require.ErrorIs(t, err, domain.ErrUploadNotFound)
	})

	t.Run("CreateMany rejects a consumed key", func(t *testing.T) {
		defer truncate()
		resource, _ := seed(t, "uploads/o/s/dup.pdf")

		err := uploadRepo.CreateMany(ctx, []domain.Upload{newUpload(resource, "uploads/o/s/dup.pdf")})
		require.ErrorIs(t, err, domain.ErrStorageKeyConsumed)
	})

	t.Run("UpdateStatus", func(t *testing.T) {
		defer truncate()
		_, uploads := seed(t, "uploads/o/s/2.pdf")

		require.NoError(t, uploadRepo.UpdateStatus(ctx, uploads[0].ID, domain.UploadStatusCompleted))
		got, err := uploadRepo.FindByID(ctx, uploads[0].ID)
		require.NoError(t, err)
		require.Equal(t, domain.UploadStatusCompleted, got.Status)

		err = uploadRepo.UpdateStatus(ctx, uuid.New(), domain.UploadStatusCompleted)
		require.ErrorIs(t, err, domain.ErrUploadNotFound)
	})

	t.Run("ReplaceStorageKey resets status and counts the attempt", func(t *testing.T) {
		defer truncate()
		_, uploads := seed(t, "uploads/o/s/3.pdf")
		require.NoError(t, uploadRepo.UpdateStatus(ctx, uploads[0].ID, domain.UploadStatusMissing))

		require.NoError(t, uploadRepo.ReplaceStorageKey(ctx, uploads[0].ID, "uploads/o/s/4.pdf"))

		got, err := uploadRepo.FindByID(ctx, uploads[0].ID)
		require.NoError(t, err)
		require.Equal(t, "uploads/o/s/4.pdf", got.StorageKey)
		require.Equal(t, domain.UploadStatusPending, got.Status)
		require.Equal(t, 1, got.Attempts)
	})

	t.Run("FindPendingBefore", func(t *testing.T) {
		defer truncate()
		_, uploads := seed(t, "uploads/o/s/5.pdf", "uploads/o/s/6.pdf")
		require.NoError(t, uploadRepo.UpdateStatus(ctx, uploads[1].ID, domain.UploadStatusCompleted))

		pending, err := uploadRepo.FindPendingBefore(ctx, time.Now().Add(time.Minute), 10)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		require.Equal(t, uploads[0].ID, pending[0].ID)

		none, err := uploadRepo.FindPendingBefore(ctx, time.Now().Add(-time.Hour), 10)
		require.NoError(t, err)
		require.Empty(t, none)
	})

	t.Run("ExistingStorageKeys", func(t *testing.T) {
		defer truncate()
		seed(t, "uploads/o/s/7.pdf")

		found, err := uploadRepo.ExistingStorageKeys(ctx, []string{"uploads/o/s/7.pdf", "uploads/o/s/orphan.pdf"})
		require.NoError(t, err)
		require.True(t, found["uploads/o/s/7.pdf"])
		require.False(t, found["uploads/o/s/orphan.pdf"])
	})
}
