package repository

import (
	"context"
	"time"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/domain"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/port"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockTagRepository struct {
	mock.Mock
}

func NewMockTagRepository() *MockTagRepository {
	return &MockTagRepository{}
}

func (m *MockTagRepository) CreateMany(ctx context.Context, tags []string) (int, error) {
	args := m.Called(ctx, tags)
	return args.Int(0), args.Error(1)
}

func (m *MockTagRepository) FindByName(ctx context.Context, name string) (*domain.Tag, error) {
	args := m.Called(ctx, name)
	tag, _ := args.Get(0).(*domain.Tag)
	return tag, args.Error(1)
}

func (m *MockTagRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Tag, error) {
	args := m.Called(ctx, ids)
	tags, _ := args.Get(0).([]domain.Tag)
	return tags, args.Error(1)
}

func (m *MockTagRepository) List(ctx context.Context, limit int, marker *string) ([]domain.Tag, *string, error) {
	args := m.Called(ctx, limit, marker)
	tags, _ := args.Get(0).([]domain.Tag)
	next, _ := args.Get(1).(*string)
	return tags, next, args.Error(2)
}

type MockResourceRepository struct {
	mock.Mock
}

func (m *MockResourceRepository) Create(ctx context.Context, resource domain.Resource) error {
	args := m.Called(ctx, resource)
	return args.Error(0)
}

func (m *MockResourceRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Resource, error) {
	args := m.Called(ctx, id)
	resource, _ := args.Get(0).(*domain.Resource)
	return resource, args.Error(1)
}

func (m *MockResourceRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ResourceStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

type MockUploadRepository struct {
	mock.Mock
}

func (m *MockUploadRepository) CreateMany(ctx context.Context, uploads []domain.Upload) error {
	args := m.Called(ctx, uploads)
	return args.Error(0)
}

func (m *MockUploadRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Upload, error) {
	args := m.Called(ctx, id)
	upload, _ := args.Get(0).(*domain.Upload)
	return upload, args.Error(1)
}

func (m *MockUploadRepository) FindByResourceID(ctx context.Context, resourceID uuid.UUID) ([]domain.Upload, error) {
	args := m.Called(ctx, resourceID)
	uploads, _ := args.Get(0).([]domain.Upload)
	return uploads, args.Error(1)
}

func (m *MockUploadRepository) FindByStorageKey(ctx context.Context, storageKey string) (*domain.Upload, error) {
	args := m.Called(ctx, storageKey)
	upload, _ := args.Get(0).(*domain.Upload)
	return upload, args.Error(1)
}

func (m *MockUploadRepository) FindPendingBefore(ctx context.Context, before time.Time, limit int) ([]domain.Upload, error) {
	args := m.Called(ctx, before, limit)
	uploads, _ := args.Get(0).([]domain.Upload)
	return uploads, args.Error(1)
}

func (m *MockUploadRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.UploadStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockUploadRepository) ReplaceStorageKey(ctx context.Context, id uuid.UUID, storageKey string) error {
	args := m.Called(ctx, id, storageKey)
	return args.Error(0)
}

func (m *MockUploadRepository) ExistingStorageKeys(ctx context.Context, keys []string) (map[string]bool, error) {
	args := m.Called(ctx, keys)
	found, _ := args.Get(0).(map[string]bool)
	return found, args.Error(1)
}

type MockFolderRepository struct {
	mock.Mock
}

func (m *MockFolderRepository) Create(ctx context.Context, folder domain.Folder) error {
	args := m.Called(ctx, folder)
	return args.Error(0)
}

func (m *MockFolderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Folder, error) {
	args := m.Called(ctx, id)
	folder, _ := args.Get(0).(*domain.Folder)
	return folder, args.Error(1)
}

func (m *MockFolderRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Folder, error) {
	args := m.Called(ctx, ownerID)
	folders, _ := args.Get(0).([]domain.Folder)
	return folders, args.Error(1)
}

type MockFolderTagRepository struct {
	mock.Mock
}

func (m *MockFolderTagRepository) CreateMany(ctx context.Context, folderID uuid.UUID, tagIDs []uuid.UUID) (int, error) {
	args := m.Called(ctx, folderID, tagIDs)
	return args.Int(0), args.Error(1)
}

func (m *MockFolderTagRepository) FindByFolderID(ctx context.Context, folderID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, folderID)
	ids, _ := args.Get(0).([]uuid.UUID)
	return ids, args.Error(1)
}

type MockClassificationRepository struct {
	mock.Mock
}

func (m *MockClassificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.ClassificationLevel, error) {
	args := m.Called(ctx, id)
	level, _ := args.Get(0).(*domain.ClassificationLevel)
	return level, args.Error(1)
}

func (m *MockClassificationRepository) List(ctx context.Context) ([]domain.ClassificationLevel, error) {
	args := m.Called(ctx)
	levels, _ := args.Get(0).([]domain.ClassificationLevel)
	return levels, args.Error(1)
}

// MockUnitOfWork runs the callback against its own repository mocks.
// A callback error is returned as is; otherwise the error registered for Execute is returned.
type MockUnitOfWork struct {
	mock.Mock
	resourceRepo       *MockResourceRepository
	uploadRepo         *MockUploadRepository
	folderRepo         *MockFolderRepository
	folderTagRepo      *MockFolderTagRepository
	tagRepo            *MockTagRepository
	classificationRepo *MockClassificationRepository
}

func NewMockUnitOfWork() *MockUnitOfWork {
	return &MockUnitOfWork{
		resourceRepo:       &MockResourceRepository{},
		uploadRepo:         &MockUploadRepository{},
		folderRepo:         &MockFolderRepository{},
		folderTagRepo:      &MockFolderTagRepository{},
		tagRepo:            &MockTagRepository{},
		classificationRepo: &MockClassificationRepository{},
	}
}

func (m *MockUnitOfWork) ResourceRepo() port.ResourceRepository {
	return m.resourceRepo
}

func (m *MockUnitOfWork) UploadRepo() port.UploadRepository {
	return m.uploadRepo
}

func (m *MockUnitOfWork) FolderRepo() port.FolderRepository {
	return m.folderRepo
}

func (m *MockUnitOfWork) FolderTagRepo() port.FolderTagRepository {
	return m.folderTagRepo
}

func (m *MockUnitOfWork) TagRepo() port.TagRepository {
	return m.tagRepo
}

func (m *MockUnitOfWork) ClassificationRepo() port.ClassificationRepository {
	return m.classificationRepo
}

func (m *MockUnitOfWork) Execute(ctx context.Context, fn func(uow port.UnitOfWork) error) error {
	args := m.Called(ctx, fn)

	if err := fn(m); err != nil {
		return err
	}

	return args.Error(0)
}

func (m *MockUnitOfWork) GetResourceRepoMock() *MockResourceRepository {
	return m.resourceRepo
}

func (m *MockUnitOfWork) GetUploadRepoMock() *MockUploadRepository {
	return m.uploadRepo
}

func (m *MockUnitOfWork) GetFolderRepoMock() *MockFolderRepository {
	return m.folderRepo
}

func (m *MockUnitOfWork) GetFolderTagRepoMock() *MockFolderTagRepository {
	return m.folderTagRepo
}

func (m *MockUnitOfWork) GetTagRepoMock() *MockTagRepository {
	return m.tagRepo
}

func (m *MockUnitOfWork) GetClassificationRepoMock() *MockClassificationRepository {
	return m.classificationRepo
}
