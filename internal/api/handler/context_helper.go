package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"guardops/backend/internal/dto"
	"guardops/backend/pkg/apperrors"
	"guardops/backend/pkg/response"
)

// MustGetIdentity 从 Gin 上下文中提取认证中间件注入的调用者身份。
// 未注入时写入 401 响应并返回 false，调用方应直接 return。
func MustGetIdentity(c *gin.Context) (*dto.Identity, bool) {
	userID := c.GetString("user_id")
	if userID == "" {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	return &dto.Identity{
		UserID: userID,
		Name:   c.GetString("name"),
		Email:  c.GetString("email"),
		Role:   c.GetString("role"),
	}, true
}

// RequestMeta 提取审计所需的请求元数据
func RequestMeta(c *gin.Context) *dto.RequestMeta {
	return &dto.RequestMeta{
		IP:         c.ClientIP(),
		DeviceType: deviceType(c.GetHeader("User-Agent")),
	}
}

func deviceType(ua string) string {
	ua = strings.ToLower(ua)
	switch {
	case ua == "":
		return "unknown"
	case strings.Contains(ua, "mobile") || strings.Contains(ua, "android") || strings.Contains(ua, "iphone"):
		return "mobile"
	default:
		return "desktop"
	}
}

// respondError 业务错误 → HTTP 响应的统一映射
//
// validation → 400, conflict → 409, not_found → 404, forbidden → 403,
// dependency → 502；其余按 500 处理。Reason 原样透传，
// 前端靠它区分同一状态码下的子场景（如 not_owner / already_reviewed）。
func respondError(c *gin.Context, err error) {
	e := apperrors.From(err)
	if e == nil {
		response.InternalError(c)
		return
	}

	switch e.Kind {
	case apperrors.KindValidation:
		response.ErrorWithReason(c, http.StatusBadRequest, 10001, e.Message, e.Reason)
	case apperrors.KindConflict:
		response.ErrorWithReason(c, http.StatusConflict, 40901, e.Message, e.Reason)
	case apperrors.KindNotFound:
		response.ErrorWithReason(c, http.StatusNotFound, 40401, e.Message, e.Reason)
	case apperrors.KindForbidden:
		response.ErrorWithReason(c, http.StatusForbidden, 10003, e.Message, e.Reason)
	case apperrors.KindDependency:
		response.ErrorWithReason(c, http.StatusBadGateway, 50002, e.Message, e.Reason)
	default:
		response.InternalError(c)
	}
}
