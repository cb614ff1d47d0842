package broker

import (
	"context"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockBrokerService is a mock implementation of port.BrokerService
type MockBrokerService struct {
	mock.Mock
}

// NewMockBrokerService creates a new MockBrokerService
func NewMockBrokerService() *MockBrokerService {
	return &MockBrokerService{}
}

func (m *MockBrokerService) RequestUploadURLs(ctx context.Context, ownerID uuid.UUID, files []domain.FileDescriptor) (*domain.PresignedBatch, error) {
	args := m.Called(ctx, ownerID, files)
	batch, _ := args.Get(0).(*domain.PresignedBatch)
	return batch, args.Error(1)
}

func (m *MockBrokerService) ExtendBatch(ctx context.Context, ownerID uuid.UUID, sessionID uuid.UUID, files []domain.FileDescriptor) (*domain.PresignedBatch, error) {
	args := m.Called(ctx, ownerID, sessionID, files)
	batch, _ := args.Get(0).(*domain.PresignedBatch)
	return batch, args.Error(1)
}

func (m *MockBrokerService) RetryUpload(ctx context.Context, ownerID uuid.UUID, req domain.RetryRequest) (*domain.PresignedFile, error) {
	args := m.Called(ctx, ownerID, req)
	file, _ := args.Get(0).(*domain.PresignedFile)
	return file, args.Error(1)
}
