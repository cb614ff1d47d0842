package verifier

import (
	"context"
	"time"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockVerifierService is a mock implementation of port.VerifierService
type MockVerifierService struct {
	mock.Mock
}

// NewMockVerifierService creates a new MockVerifierService
func NewMockVerifierService() *MockVerifierService {
	return &MockVerifierService{}
}

func (m *MockVerifierService) HandleMessage(ctx context.Context, data []byte) error {
	args := m.Called(ctx, data)
	return args.Error(0)
}

func (m *MockVerifierService) CompleteResource(ctx context.Context, ownerID uuid.UUID, resourceID uuid.UUID) (*domain.CompletionReport, error) {
	args := m.Called(ctx, ownerID, resourceID)
	report, _ := args.Get(0).(*domain.CompletionReport)
	return report, args.Error(1)
}

func (m *MockVerifierService) ReconcileStale(ctx context.Context, now time.Time) error {
	args := m.Called(ctx, now)
	return args.Error(0)
}

func (m *MockVerifierService) CollectOrphans(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}
