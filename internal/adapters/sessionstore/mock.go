package sessionstore

import (
	"context"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockSessionStore struct {
	mock.Mock
}

func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{}
}

func (m *MockSessionStore) Save(ctx context.Context, session domain.UploadSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionStore) Find(ctx context.Context, id uuid.UUID) (*domain.UploadSession, error) {
	args := m.Called(ctx, id)
	session, _ := args.Get(0).(*domain.UploadSession)
	return session, args.Error(1)
}

func (m *MockSessionStore) Replace(ctx context.Context, sessionID uuid.UUID, oldKey string, next domain.IssuedKey) error {
	args := m.Called(ctx, sessionID, oldKey, next)
	return args.Error(0)
}

func (m *MockSessionStore) MarkConsumed(ctx context.Context, sessionID uuid.UUID, keys []string) error {
	args := m.Called(ctx, sessionID, keys)
	return args.Error(0)
}

func (m *MockSessionStore) AddKeys(ctx context.Context, sessionID uuid.UUID, keys []domain.IssuedKey) error {
	args := m.Called(ctx, sessionID, keys)
	return args.Error(0)
}
