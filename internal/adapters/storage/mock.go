package storage

import (
	"context"
	"time"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/domain"

	"github.com/stretchr/testify/mock"
)

type MockStorage struct {
	mock.Mock
}

func NewMockStorage() *MockStorage {
	return &MockStorage{}
}

func (m *MockStorage) PresignPut(ctx context.Context, storageKey, contentType string, size int64) (string, map[string]string, time.Time, error) {
	args := m.Called(ctx, storageKey, contentType, size)
	headers, _ := args.Get(1).(map[string]string)
	expiresAt, _ := args.Get(2).(time.Time)
	return args.String(0), headers, expiresAt, args.Error(3)
}

func (m *MockStorage) PresignGet(ctx context.Context, storageKey, filename string) (string, time.Time, error) {
	args := m.Called(ctx, storageKey, filename)
	expiresAt, _ := args.Get(1).(time.Time)
	return args.String(0), expiresAt, args.Error(2)
}

func (m *MockStorage) StatObject(ctx context.Context, storageKey string) (*domain.ObjectInfo, error) {
	args := m.Called(ctx, storageKey)
	info, _ := args.Get(0).(*domain.ObjectInfo)
	return info, args.Error(1)
}

func (m *MockStorage) DeleteObject(ctx context.Context, storageKey string) error {
	args := m.Called(ctx, storageKey)
	return args.Error(0)
}

// WalkObjects feeds fn with the []domain.ObjectInfo registered as the first return value
func (m *MockStorage) WalkObjects(ctx context.Context, prefix string, fn func(domain.ObjectInfo) error) error {
	args := m.Called(ctx, prefix, fn)
	objects, _ := args.Get(0).([]domain.ObjectInfo)
	for _, object := range objects {
		if err := fn(object); err != nil {
			return err
		}
	}
	return args.Error(1)
}

func (m *MockStorage) PresignDuration() time.Duration {
	args := m.Called()
	d, _ := args.Get(0).(time.Duration)
	return d
}
