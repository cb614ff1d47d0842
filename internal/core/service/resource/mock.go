package resource

import (
	"context"
	"time"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockResourceService is a mock implementation of port.ResourceService
type MockResourceService struct {
	mock.Mock
}

// NewMockResourceService creates a new MockResourceService
func NewMockResourceService() *MockResourceService {
	return &MockResourceService{}
}

func (m *MockResourceService) CreateResource(ctx context.Context, ownerID uuid.UUID, in domain.CreateResourceInput) (*domain.CreateResourceResult, error) {
	args := m.Called(ctx, ownerID, in)
	result, _ := args.Get(0).(*domain.CreateResourceResult)
	return result, args.Error(1)
}

func (m *MockResourceService) GetDownloadURL(ctx context.Context, ownerID uuid.UUID, uploadID uuid.UUID) (string, *time.Time, error) {
	args := m.Called(ctx, ownerID, uploadID)
	expiresAt, _ := args.Get(1).(*time.Time)
	return args.String(0), expiresAt, args.Error(2)
}
