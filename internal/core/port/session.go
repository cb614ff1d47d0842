package port

import (
	"context"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/domain"

	"github.com/google/uuid"
)

// SessionStore keeps broker batch sessions outside of the database, with a bounded lifetime
type SessionStore interface {
	Save(ctx context.Context, session domain.UploadSession) error
	Find(ctx context.Context, id uuid.UUID) (*domain.UploadSession, error)
	// Replace marks oldKey abandoned and records next in the same session atomically.
	Replace(ctx context.Context, sessionID uuid.UUID, oldKey string, next domain.IssuedKey) error
	MarkConsumed(ctx context.Context, sessionID uuid.UUID, keys []string) error
	// AddKeys records freshly issued keys in an existing session.
	AddKeys(ctx context.Context, sessionID uuid.UUID, keys []domain.IssuedKey) error
}
