package lookup

import (
	"context"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockLookupService struct {
	mock.Mock
}

func (m *MockLookupService) ListClassifications(ctx context.Context) ([]domain.ClassificationLevel, error) {
	args := m.Called(ctx)
	levels, _ := args.Get(0).([]domain.ClassificationLevel)
	return levels, args.Error(1)
}

func (m *MockLookupService) ListFolders(ctx context.Context, ownerID uuid.UUID) ([]domain.Folder, error) {
	args := m.Called(ctx, ownerID)
	folders, _ := args.Get(0).([]domain.Folder)
	return folders, args.Error(1)
}
