package tag

import (
	"context"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/domain"

	"github.com/stretchr/testify/mock"
)

// MockTagService is a mock implementation of TagService
type MockTagService struct {
	mock.Mock
}

func (m *MockTagService) ListTags(ctx context.Context, limit int, marker *string) ([]domain.Tag, *string, error) {
	args := m.Called(ctx, limit, marker)
	tags, _ := args.Get(0).([]domain.Tag)
	next, _ := args.Get(1).(*string)
	return tags, next, args.Error(2)
}

func (m *MockTagService) CreateTags(ctx context.Context, tags []string) error {
	args := m.Called(ctx, tags)
	return args.Error(0)
}

func (m *MockTagService) GetTagByName(ctx context.Context, name string) (*domain.Tag, error) {
	args := m.Called(ctx, name)
	tag, _ := args.Get(0).(*domain.Tag)
	return tag, args.Error(1)
}
