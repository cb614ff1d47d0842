package verifier

import (
	"log/slog"
	"time"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/config"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/port"
)

// OrphanPolicy decides what happens to stored objects no upload references
type OrphanPolicy string

const (
	OrphanPolicyReport OrphanPolicy = "report"
	OrphanPolicyDelete OrphanPolicy = "delete"
)

type verifierService struct {
	uow     port.UnitOfWork
	storage port.ObjectStorage
	cfg     config.FileUploadConfig
	logger  *slog.Logger
	now     func() time.Time
}

// NewVerifierService creates a new completion verifier
func NewVerifierService(uow port.UnitOfWork, storage port.ObjectStorage, cfg config.FileUploadConfig, logger *slog.Logger) port.VerifierService {
	return &verifierService{
		uow:     uow,
		storage: storage,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}
