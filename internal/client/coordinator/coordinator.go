package coordinator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/client/transfer"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/domain"

	"github.com/google/uuid"
)

// ErrFileNotFound is returned when no file has the given id
var ErrFileNotFound = errors.New("file not found")

// ErrInvalidTransition is returned when an action does not apply to the file's current status
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrNoCompletedFiles is returned when the wizard has no completed file to go on with
var ErrNoCompletedFiles = errors.New("no completed file")

// API is the part of the upload API the coordinator drives
type API interface {
	RequestUploadURLs(ctx context.Context, sessionID *uuid.UUID, files []domain.FileDescriptor) (*domain.PresignedBatch, error)
	RetryUpload(ctx context.Context, req domain.RetryRequest) (*domain.PresignedFile, error)
	CreateResource(ctx context.Context, in domain.CreateResourceInput) (*domain.CreateResourceResult, error)
}

// Transferer writes the bytes of one file to a pre-signed url
type Transferer interface {
	Upload(ctx context.Context, target transfer.Target, body io.Reader, progress transfer.ProgressFunc) error
}

// Opener opens the bytes of a file, once per attempt
type Opener func() (io.ReadCloser, error)

// File is a file selected for upload
type File struct {
	Name     string
	MimeType string
	Size     int64
	FolderID *uuid.UUID
	Open     Opener
}

// FileMetadata is what the user attaches to a completed file
type FileMetadata struct {
	Title       string
	Description string
	Category    string
	Visibility  domain.Visibility
}

// Event is published every time a file changes
type Event struct {
	FileID  uuid.UUID
	Status  Status
	Removed bool
}

// FileView is a read-only copy of one file
type FileView struct {
	ID         uuid.UUID
	Name       string
	MimeType   string
	Size       int64
	Status     Status
	StorageKey string
	ExpiresAt  time.Time
	Attempts   int
	Metadata   FileMetadata
}

type entry struct {
	mu sync.Mutex

	id       uuid.UUID
	order    uint64
	file     File
	status   Status
	meta     FileMetadata
	attempts int

	storageKey string
	url        string
	headers    map[string]string
	expiresAt  time.Time

	cancel context.CancelFunc
}

func (e *entry) view() FileView {
	return FileView{
		ID:         e.id,
		Name:       e.file.Name,
		MimeType:   e.file.MimeType,
		Size:       e.file.Size,
		Status:     e.status,
		StorageKey: e.storageKey,
		ExpiresAt:  e.expiresAt,
		Attempts:   e.attempts,
		Metadata:   e.meta,
	}
}

// Coordinator owns the upload wizard: per-file statuses, the current step and the resource draft.
// Files live in a map of independently locked entries, updates to one file never wait on another.
type Coordinator struct {
	api         API
	uploader    Transferer
	logger      *slog.Logger
	parallelism int
	now         func() time.Time

	files   sync.Map
	counter atomic.Uint64

	subsMu  sync.RWMutex
	subs    map[uint64]chan Event
	nextSub uint64

	// serializes url batches so that every batch lands in one session
	requestMu sync.Mutex
	sessionMu sync.RWMutex
	sessionID *uuid.UUID

	wizardMu   sync.Mutex
	step       Step
	draft      ResourceDraft
	folder     domain.FolderManagement
	submitting bool
}

// Option configures a Coordinator
type Option func(*Coordinator)

// WithParallelism bounds the number of concurrent transfers
func WithParallelism(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.parallelism = n
		}
	}
}

// WithClock replaces the clock used to check url expiry
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		c.now = now
	}
}

// New creates a Coordinator on step SelectFiles
func New(api API, uploader Transferer, logger *slog.Logger, opts ...Option) *Coordinator {
	c := &Coordinator{
		api:         api,
		uploader:    uploader,
		logger:      logger,
		parallelism: 4,
		now:         time.Now,
		subs:        make(map[uint64]chan Event),
		step:        StepSelectFiles,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Subscribe returns a channel receiving every file event. Events are dropped when the buffer is full.
// The returned func unsubscribes and closes the channel.
func (c *Coordinator) Subscribe(buffer int) (<-chan Event, func()) {
	ch := make(chan Event, buffer)

	c.subsMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	c.subsMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.subsMu.Lock()
			delete(c.subs, id)
			c.subsMu.Unlock()
			close(ch)
		})
	}
}

// publish is called with the entry locked so that events of one file keep their order
func (c *Coordinator) publish(ev Event) {
	c.subsMu.RLock()
	defer c.subsMu.RUnlock()
	for _, ch := range c.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// setStatus must be called with e.mu held
func (c *Coordinator) setStatus(e *entry, to Status) bool {
	if !canTransition(e.status, to) {
		c.logger.Debug("ignored status transition", "file", e.id, "from", e.status.State(), "to", to.State())
		return false
	}
	e.status = to
	c.publish(Event{FileID: e.id, Status: to})
	return true
}

func (c *Coordinator) entry(id uuid.UUID) (*entry, error) {
	v, ok := c.files.Load(id)
	if !ok {
		return nil, ErrFileNotFound
	}
	return v.(*entry), nil
}

// entries returns all entries in the order files were added
func (c *Coordinator) entries() []*entry {
	var all []*entry
	c.files.Range(func(_, v any) bool {
		all = append(all, v.(*entry))
		return true
	})
	sort.Slice(all, func(i, j int) bool { return all[i].order < all[j].order })
	return all
}

// SessionID returns the upload session shared by every batch of this wizard, if any
func (c *Coordinator) SessionID() *uuid.UUID {
	c.sessionMu.RLock()
	defer c.sessionMu.RUnlock()
	if c.sessionID == nil {
		return nil
	}
	id := *c.sessionID
	return &id
}

// Snapshot returns every file in the order it was added
func (c *Coordinator) Snapshot() []FileView {
	all := c.entries()
	views := make([]FileView, 0, len(all))
	for _, e := range all {
		e.mu.Lock()
		views = append(views, e.view())
		e.mu.Unlock()
	}
	return views
}

// File returns one file
func (c *Coordinator) File(id uuid.UUID) (FileView, error) {
	e, err := c.entry(id)
	if err != nil {
		return FileView{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.view(), nil
}
