package coordinator

import (
	"context"
	"errors"
	"fmt"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/domain"

	"github.com/google/uuid"
)

// ErrSubmitInProgress is returned when Submit is called while another submission runs
var ErrSubmitInProgress = errors.New("submission already in progress")

// ErrLastStep is returned by Next on the review step
var ErrLastStep = errors.New("already on the last step")

// ErrNotOnReviewStep is returned by Submit before the wizard reached the review step
var ErrNotOnReviewStep = errors.New("submission is only allowed on the review step")

// Step is a wizard step
type Step int

const (
	StepSelectFiles Step = iota
	StepMetadata
	StepReviewSubmit
)

func (s Step) String() string {
	switch s {
	case StepSelectFiles:
		return "select_files"
	case StepMetadata:
		return "metadata"
	case StepReviewSubmit:
		return "review_submit"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// ResourceDraft is the resource level part of the submission
type ResourceDraft struct {
	Title       string
	Description string
	Visibility  domain.Visibility
	Category    string
}

// Step returns the current wizard step
func (c *Coordinator) Step() Step {
	c.wizardMu.Lock()
	defer c.wizardMu.Unlock()
	return c.step
}

// Next moves the wizard forward when the current step is complete
func (c *Coordinator) Next() (Step, error) {
	c.wizardMu.Lock()
	defer c.wizardMu.Unlock()

	switch c.step {
	case StepSelectFiles:
		if len(c.completed()) == 0 {
			return c.step, ErrNoCompletedFiles
		}
	case StepMetadata:
		if _, err := c.buildInput(); err != nil {
			return c.step, err
		}
	default:
		return c.step, ErrLastStep
	}
	c.step++
	return c.step, nil
}

// Back moves the wizard one step backward. It is always allowed.
func (c *Coordinator) Back() Step {
	c.wizardMu.Lock()
	defer c.wizardMu.Unlock()
	if c.step > StepSelectFiles {
		c.step--
	}
	return c.step
}

// SetResource sets the resource title, description, visibility and category
func (c *Coordinator) SetResource(draft ResourceDraft) {
	c.wizardMu.Lock()
	defer c.wizardMu.Unlock()
	c.draft = draft
}

// SelectFolder attaches the resource to an existing folder of the caller
func (c *Coordinator) SelectFolder(folderID uuid.UUID) {
	c.wizardMu.Lock()
	defer c.wizardMu.Unlock()
	c.folder = domain.FolderManagement{SelectedFolderID: &folderID}
}

// NewFolder makes the submission create a folder
func (c *Coordinator) NewFolder(folder domain.NewFolderData) {
	c.wizardMu.Lock()
	defer c.wizardMu.Unlock()
	c.folder = domain.FolderManagement{NewFolder: &folder}
}

// SetFileMetadata sets the metadata of one file
func (c *Coordinator) SetFileMetadata(id uuid.UUID, meta FileMetadata) error {
	e, err := c.entry(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.meta = meta
	return nil
}

// completed returns the Completed entries with their view, in the order files were added
func (c *Coordinator) completed() []FileView {
	var views []FileView
	for _, e := range c.entries() {
		e.mu.Lock()
		if _, ok := e.status.(Completed); ok {
			views = append(views, e.view())
		}
		e.mu.Unlock()
	}
	return views
}

// buildInput must be called with wizardMu held
func (c *Coordinator) buildInput() (domain.CreateResourceInput, error) {
	files := c.completed()
	if len(files) == 0 {
		return domain.CreateResourceInput{}, ErrNoCompletedFiles
	}
	sessionID := c.SessionID()
	if sessionID == nil {
		return domain.CreateResourceInput{}, fmt.Errorf("no upload session: %w", domain.ErrMissingField)
	}

	in := domain.CreateResourceInput{
		SessionID:        *sessionID,
		Title:            c.draft.Title,
		Description:      c.draft.Description,
		Visibility:       c.draft.Visibility,
		Category:         c.draft.Category,
		FolderManagement: c.folder,
		Files:            make([]domain.FileMetadataInput, len(files)),
	}
	for i, f := range files {
		in.Files[i] = domain.FileMetadataInput{
			StorageKey:       f.StorageKey,
			OriginalFilename: f.Name,
			MimeType:         f.MimeType,
			Size:             f.Size,
			Title:            f.Metadata.Title,
			Description:      f.Metadata.Description,
			Category:         f.Metadata.Category,
			Visibility:       f.Metadata.Visibility,
		}
	}
	if err := in.Validate(); err != nil {
		return domain.CreateResourceInput{}, err
	}
	return in, nil
}

// Submit sends every Completed file as one resource. It is only allowed on the review step. On success the submitted files leave the
// wizard, Failed files stay and remain retryable, and the wizard returns to file selection.
// On failure nothing changes and the same files can be submitted again.
func (c *Coordinator) Submit(ctx context.Context) (*domain.CreateResourceResult, error) {
	c.wizardMu.Lock()
	if c.submitting {
		c.wizardMu.Unlock()
		return nil, ErrSubmitInProgress
	}
	if len(c.completed()) == 0 {
		c.wizardMu.Unlock()
		return nil, ErrNoCompletedFiles
	}
	if c.step != StepReviewSubmit {
		c.wizardMu.Unlock()
		return nil, fmt.Errorf("cannot submit on step %s: %w", c.step, ErrNotOnReviewStep)
	}
	in, err := c.buildInput()
	if err != nil {
		c.wizardMu.Unlock()
		return nil, err
	}
	c.submitting = true
	c.wizardMu.Unlock()

	undo := func() {
		c.wizardMu.Lock()
		c.submitting = false
		c.wizardMu.Unlock()
	}

	result, err := c.api.CreateResource(ctx, in)
	if err != nil {
		undo()
		c.logger.Warn("submission failed", "files", len(in.Files), "kind", domain.KindOf(err), "error", err)
		return nil, fmt.Errorf("could not create resource: %w", err)
	}

	submitted := make(map[string]struct{}, len(in.Files))
	for _, f := range in.Files {
		submitted[f.StorageKey] = struct{}{}
	}
	for _, e := range c.entries() {
		e.mu.Lock()
		_, ok := submitted[e.storageKey]
		e.mu.Unlock()
		if ok {
			_ = c.RemoveFile(e.id)
		}
	}

	c.wizardMu.Lock()
	c.submitting = false
	c.step = StepSelectFiles
	c.draft = ResourceDraft{}
	c.folder = domain.FolderManagement{}
	c.wizardMu.Unlock()

	c.logger.Info("resource created", "resource_id", result.Resource.ID, "uploads", len(result.Uploads))
	return result, nil
}
