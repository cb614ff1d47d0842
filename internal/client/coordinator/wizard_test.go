package coordinator_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/client/coordinator"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func describe(t *testing.T, c *coordinator.Coordinator, ids map[string]uuid.UUID) {
	t.Helper()
	for name, id := range ids {
		view, err := c.File(id)
		require.NoError(t, err)
		if view.Status.State() != coordinator.StateCompleted {
			continue
		}
		require.NoError(t, c.SetFileMetadata(id, coordinator.FileMetadata{
			Title:      "Title of " + name,
			Category:   "lecture",
			Visibility: domain.VisibilityPublic,
		}))
	}
	c.SetResource(coordinator.ResourceDraft{Title: "Week 1", Visibility: domain.VisibilityPublic})
}

// review walks the wizard from file selection to the review step
func review(t *testing.T, c *coordinator.Coordinator) {
	t.Helper()
	for c.Step() != coordinator.StepReviewSubmit {
		_, err := c.Next()
		require.NoError(t, err)
	}
}

func TestCoordinator_Next(t *testing.T) {
	t.Run("select files needs a completed file", func(t *testing.T) {
		// Arrange
		c := coordinator.New(newFakeAPI(), newFakeUploader(), discard)
		addFiles(t, c, "a.pdf")

		// Act
		step, err := c.Next()

		// Assert
		assert.ErrorIs(t, err, coordinator.ErrNoCompletedFiles)
		assert.Equal(t, coordinator.StepSelectFiles, step)
	})

	t.Run("metadata needs every field", func(t *testing.T) {
		// Arrange
		c := coordinator.New(newFakeAPI(), newFakeUploader(), discard)
		ids := addFiles(t, c, "a.pdf")
		require.NoError(t, c.Start(context.Background()))
		step, err := c.Next()
		require.NoError(t, err)
		require.Equal(t, coordinator.StepMetadata, step)
		c.SetResource(coordinator.ResourceDraft{Title: "Week 1", Visibility: domain.VisibilityPublic})

		// Act
		_, errNoFolder := c.Next()
		c.SelectFolder(uuid.New())
		_, errNoFileMeta := c.Next()
		describe(t, c, ids)
		c.SelectFolder(uuid.New())
		step, err = c.Next()

		// Assert
		assert.ErrorIs(t, errNoFolder, domain.ErrInvalidFolderDirective)
		assert.ErrorIs(t, errNoFileMeta, domain.ErrMissingField)
		require.NoError(t, err)
		assert.Equal(t, coordinator.StepReviewSubmit, step)
		_, err = c.Next()
		assert.ErrorIs(t, err, coordinator.ErrLastStep)
	})

	t.Run("back is always allowed", func(t *testing.T) {
		// Arrange
		c := coordinator.New(newFakeAPI(), newFakeUploader(), discard)

		// Act
		step := c.Back()

		// Assert
		assert.Equal(t, coordinator.StepSelectFiles, step)
		assert.Equal(t, "select_files", step.String())
	})
}

func TestCoordinator_Submit_NoCompletedFile(t *testing.T) {
	// Arrange
	api := newFakeAPI()
	uploader := newFakeUploader()
	uploader.fail = func(string, int) error { return domain.ErrTransient }
	c := coordinator.New(api, uploader, discard)
	addFiles(t, c, "a.pdf")
	c.SetResource(coordinator.ResourceDraft{Title: "Week 1", Visibility: domain.VisibilityPublic})
	c.SelectFolder(uuid.New())

	// Act
	result, err := c.Submit(context.Background())

	// Assert
	assert.Nil(t, result)
	assert.ErrorIs(t, err, coordinator.ErrNoCompletedFiles)
	batches, retries, submits := api.counts()
	assert.Zero(t, batches)
	assert.Zero(t, retries)
	assert.Zero(t, submits)
}

// Two of three files complete; the submission holds only those two and the failed one stays retryable
func TestCoordinator_Submit_PartialBatch(t *testing.T) {
	// Arrange
	api := newFakeAPI()
	uploader := newFakeUploader()
	uploader.fail = func(name string, attempt int) error {
		if name == "c.pdf" && attempt == 1 {
			return domain.ErrTransient
		}
		return nil
	}
	c := coordinator.New(api, uploader, discard)
	ids := addFiles(t, c, "a.pdf", "b.pdf", "c.pdf")
	require.NoError(t, c.Start(context.Background()))
	describe(t, c, ids)
	c.NewFolder(domain.NewFolderData{Name: "Algebra", ClassificationID: uuid.New()})
	review(t, c)
	failedKey := c.Snapshot()[2].StorageKey

	// Act
	result, err := c.Submit(context.Background())

	// Assert
	require.NoError(t, err)
	assert.Len(t, result.Uploads, 2)
	require.Len(t, api.submitCalls, 1)
	in := api.submitCalls[0]
	assert.Equal(t, api.sessionID, in.SessionID)
	require.NotNil(t, in.FolderManagement.NewFolder)
	assert.Nil(t, in.FolderManagement.SelectedFolderID)
	for _, f := range in.Files {
		assert.NotEqual(t, "c.pdf", f.OriginalFilename)
	}

	remaining := c.Snapshot()
	require.Len(t, remaining, 1)
	assert.Equal(t, "c.pdf", remaining[0].Name)
	assert.Equal(t, coordinator.StateFailed, remaining[0].Status.State())
	assert.Equal(t, coordinator.StepSelectFiles, c.Step())

	require.NoError(t, c.Retry(context.Background(), ids["c.pdf"]))
	retried, err := c.File(ids["c.pdf"])
	require.NoError(t, err)
	assert.Equal(t, coordinator.StateCompleted, retried.Status.State())
	assert.NotEqual(t, failedKey, retried.StorageKey)
}

// The number of completed files right before submission equals the number of created uploads
func TestCoordinator_Submit_CountEquality(t *testing.T) {
	for n := 1; n <= 8; n++ {
		t.Run(fmt.Sprintf("%d files", n), func(t *testing.T) {
			// Arrange
			api := newFakeAPI()
			uploader := newFakeUploader()
			uploader.fail = func(name string, _ int) error {
				if name[0]%3 == 0 {
					return domain.ErrURLExpired
				}
				return nil
			}
			c := coordinator.New(api, uploader, discard)
			names := make([]string, n)
			for i := range names {
				names[i] = fmt.Sprintf("%c.pdf", 'a'+i)
			}
			ids := addFiles(t, c, names...)
			require.NoError(t, c.Start(context.Background()))
			describe(t, c, ids)
			c.SelectFolder(uuid.New())
			completed := 0
			for _, v := range c.Snapshot() {
				if v.Status.State() == coordinator.StateCompleted {
					completed++
				}
			}
			if completed > 0 {
				review(t, c)
			}

			// Act
			result, err := c.Submit(context.Background())

			// Assert
			if completed == 0 {
				assert.ErrorIs(t, err, coordinator.ErrNoCompletedFiles)
				return
			}
			require.NoError(t, err)
			assert.Len(t, result.Uploads, completed)
		})
	}
}

// A folder name conflict leaves the wizard intact; a corrected submission reuses the uploaded objects
func TestCoordinator_Submit_ConflictThenResubmit(t *testing.T) {
	// Arrange
	api := newFakeAPI()
	api.submitErr = func(in domain.CreateResourceInput) error {
		if in.FolderManagement.NewFolder != nil && in.FolderManagement.NewFolder.Name == "Taken" {
			return fmt.Errorf("create folder: %w", domain.ErrFolderNameTaken)
		}
		return nil
	}
	uploader := newFakeUploader()
	c := coordinator.New(api, uploader, discard)
	ids := addFiles(t, c, "a.pdf", "b.pdf")
	require.NoError(t, c.Start(context.Background()))
	describe(t, c, ids)
	classificationID := uuid.New()
	c.NewFolder(domain.NewFolderData{Name: "Taken", ClassificationID: classificationID})
	review(t, c)

	// Act
	_, errConflict := c.Submit(context.Background())
	afterConflict := c.Snapshot()
	c.NewFolder(domain.NewFolderData{Name: "Fresh", ClassificationID: classificationID})
	result, err := c.Submit(context.Background())

	// Assert
	assert.Equal(t, domain.KindConflict, domain.KindOf(errConflict))
	require.Len(t, afterConflict, 2)
	for _, v := range afterConflict {
		assert.Equal(t, coordinator.StateCompleted, v.Status.State())
	}
	require.NoError(t, err)
	assert.Len(t, result.Uploads, 2)
	require.Len(t, api.submitCalls, 2)
	for i := range api.submitCalls[0].Files {
		assert.Equal(t, api.submitCalls[0].Files[i].StorageKey, api.submitCalls[1].Files[i].StorageKey)
	}
	assert.Equal(t, 1, uploader.count("a.pdf"))
	assert.Equal(t, 1, uploader.count("b.pdf"))
	assert.Empty(t, c.Snapshot())
}

func TestCoordinator_Submit_SelectedFolder(t *testing.T) {
	// Arrange
	api := newFakeAPI()
	c := coordinator.New(api, newFakeUploader(), discard)
	ids := addFiles(t, c, "a.pdf", "b.pdf", "c.pdf")
	require.NoError(t, c.Start(context.Background()))
	describe(t, c, ids)
	folderID := uuid.New()
	c.SelectFolder(folderID)
	review(t, c)

	// Act
	result, err := c.Submit(context.Background())

	// Assert
	require.NoError(t, err)
	assert.Len(t, result.Uploads, 3)
	in := api.submitCalls[0]
	require.NotNil(t, in.FolderManagement.SelectedFolderID)
	assert.Equal(t, folderID, *in.FolderManagement.SelectedFolderID)
	assert.Nil(t, in.FolderManagement.NewFolder)
}

func TestCoordinator_Submit_OnlyOnReviewStep(t *testing.T) {
	// Arrange
	api := newFakeAPI()
	c := coordinator.New(api, newFakeUploader(), discard)
	ids := addFiles(t, c, "a.pdf")
	require.NoError(t, c.Start(context.Background()))
	describe(t, c, ids)
	c.SelectFolder(uuid.New())

	// Act
	_, errSelect := c.Submit(context.Background())
	_, err := c.Next()
	require.NoError(t, err)
	_, errMetadata := c.Submit(context.Background())
	review(t, c)
	result, err := c.Submit(context.Background())

	// Assert
	assert.ErrorIs(t, errSelect, coordinator.ErrNotOnReviewStep)
	assert.ErrorIs(t, errMetadata, coordinator.ErrNotOnReviewStep)
	require.NoError(t, err)
	assert.Len(t, result.Uploads, 1)
	require.Len(t, api.submitCalls, 1)
	assert.Len(t, c.Snapshot(), 0)
}
