package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"guardops/backend/internal/dto"
	"guardops/backend/internal/model"
	"guardops/backend/internal/repository"
	"guardops/backend/pkg/apperrors"
)

// ── 事件模块业务错误 ──

var (
	ErrIncidentNotFound  = apperrors.NotFound("incident_not_found", "事件不存在")
	ErrIncidentClient    = apperrors.Validation("client_id", "客户不存在")
	ErrNotReporter       = apperrors.Forbidden("not_owner", "只有上报人可以操作该事件")
	ErrAlreadyReviewed   = apperrors.Forbidden("already_reviewed", "事件已进入审阅流程，不能再编辑")
	ErrNotRecipient      = apperrors.Forbidden("not_recipient", "无权查看该事件")
	ErrNotReviewer       = apperrors.Forbidden("not_reviewer", "无权推进事件状态")
	ErrAttachmentIndex   = apperrors.Validation("index", "附件序号越界")
	ErrInvalidTransition = apperrors.Conflict("invalid_status_transition", "非法的状态流转")
)

// FileRemover 文件存储协作方的删除入口（附件移除时尽力删除落盘文件）
type FileRemover interface {
	Remove(path string) error
}

// IncidentService 事件生命周期引擎
//
// 状态机：submitted → reviewed → resolved，不允许跳级。
// 编辑门禁：仅上报人本人、且仅在 submitted 状态下可编辑。
// 收件方选择器按写入原样存储，展开到具体用户在读取时完成。
type IncidentService interface {
	Create(ctx context.Context, actor *dto.Identity, meta *dto.RequestMeta, req *dto.CreateIncidentRequest) (*dto.IncidentResponse, error)
	Update(ctx context.Context, actor *dto.Identity, meta *dto.RequestMeta, incidentID string, req *dto.UpdateIncidentRequest) (*dto.IncidentResponse, error)
	AdvanceStatus(ctx context.Context, actor *dto.Identity, meta *dto.RequestMeta, incidentID string, req *dto.UpdateIncidentStatusRequest) (*dto.IncidentResponse, error)
	AppendAttachments(ctx context.Context, actor *dto.Identity, meta *dto.RequestMeta, incidentID string, files []model.Attachment) ([]dto.AttachmentResponse, error)
	RemoveAttachment(ctx context.Context, actor *dto.Identity, meta *dto.RequestMeta, incidentID string, index int) error
	GetByID(ctx context.Context, requester *dto.Identity, incidentID string) (*dto.IncidentResponse, error)
	// ExpandRecipients 用用户目录的当前快照展开收件方（个人 id 列表或角色标签）
	ExpandRecipients(ctx context.Context, requester *dto.Identity, incidentID string) ([]dto.UserResponse, error)
	ListForGuard(ctx context.Context, guardID string, limit int) ([]dto.IncidentResponse, error)
	ListAll(ctx context.Context, req *dto.IncidentListRequest) ([]dto.IncidentResponse, int64, error)
	// ListInbox 收件箱：命中 recipient_ids 或 recipient_groups 的事件
	ListInbox(ctx context.Context, requester *dto.Identity, req *dto.IncidentListRequest) ([]dto.IncidentResponse, int64, error)
}

type incidentService struct {
	repo    *repository.Repository
	audit   AuditService
	remover FileRemover
	logger  *zap.Logger
	now     func() time.Time // 测试注入
}

// NewIncidentService 创建 IncidentService 实例
func NewIncidentService(repo *repository.Repository, audit AuditService, remover FileRemover, logger *zap.Logger) IncidentService {
	return &incidentService{repo: repo, audit: audit, remover: remover, logger: logger, now: time.Now}
}

// ────────────────────── 校验 ──────────────────────

// validateIncident 创建与编辑共用的必填字段校验
func validateIncident(inc *model.Incident) error {
	if inc.ClientID == "" {
		return apperrors.Validation("client_id", "客户不能为空")
	}
	if inc.IncidentType == "" {
		return apperrors.Validation("incident_type", "事件类型不能为空")
	}
	if inc.IncidentType == model.IncidentTypeOther &&
		(inc.CustomIncidentType == nil || *inc.CustomIncidentType == "") {
		return apperrors.Validation("custom_incident_type", "选择其他类型时必须填写自定义类型")
	}
	if inc.Description == "" {
		return apperrors.Validation("description", "事件描述不能为空")
	}
	if inc.IncidentDateTime.IsZero() {
		return apperrors.Validation("incident_date_time", "事件时间不能为空")
	}
	switch inc.RecipientType {
	case model.RecipientTypeIndividual:
		if len(inc.RecipientIDs) == 0 {
			return apperrors.Validation("recipient", "个人寻址模式下收件人不能为空")
		}
	case model.RecipientTypeGroup:
		if len(inc.RecipientGroups) == 0 {
			return apperrors.Validation("recipient", "群组寻址模式下角色标签不能为空")
		}
	default:
		return apperrors.Validation("recipient", "寻址模式必须为 individual 或 group")
	}
	return nil
}

func (s *incidentService) checkClient(ctx context.Context, clientID string) error {
	if _, err := s.repo.Client.GetByID(ctx, clientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrIncidentClient
		}
		s.logger.Error("查询客户失败", zap.String("client_id", clientID), zap.Error(err))
		return apperrors.Dependency("storage", "查询客户失败", err)
	}
	return nil
}

// ────────────────────── Create ──────────────────────

func (s *incidentService) Create(ctx context.Context, actor *dto.Identity, meta *dto.RequestMeta, req *dto.CreateIncidentRequest) (*dto.IncidentResponse, error) {
	now := s.now()

	inc := &model.Incident{
		GuardID:            actor.UserID,
		GuardName:          actor.Name,
		GuardEmail:         actor.Email,
		ClientID:           req.ClientID,
		RecipientType:      req.Recipient.Kind,
		RecipientIDs:       model.StringArray(req.Recipient.UserIDs),
		RecipientGroups:    model.StringArray(req.Recipient.RoleTags),
		IncidentType:       req.IncidentType,
		CustomIncidentType: req.CustomIncidentType,
		Priority:           req.Priority,
		MessageType:        req.MessageType,
		IncidentDateTime:   req.IncidentDateTime,
		WithinProperty:     true,
		Location:           req.Location,
		Description:        req.Description,
		Attachments:        model.AttachmentList{},
		Status:             model.IncidentStatusSubmitted,
	}
	if req.WithinProperty != nil {
		inc.WithinProperty = *req.WithinProperty
	}
	if inc.Priority == "" {
		inc.Priority = model.PriorityNormal
	}
	if inc.MessageType == "" {
		inc.MessageType = model.MessageTypeIncident
	}

	if err := validateIncident(inc); err != nil {
		return nil, err
	}
	if err := s.checkClient(ctx, inc.ClientID); err != nil {
		return nil, err
	}

	// 事件编号：创建日期 + 数据库序列，并发创建下仍然唯一
	seq, err := s.repo.Incident.NextSequence(ctx)
	if err != nil {
		s.logger.Error("获取事件序列失败", zap.Error(err))
		return nil, apperrors.Dependency("storage", "生成事件编号失败", err)
	}
	inc.IncidentID = fmt.Sprintf("INC-%s-%04d", now.Format("20060102"), seq)

	if err := s.repo.Incident.Create(ctx, inc); err != nil {
		s.logger.Error("创建事件失败", zap.String("incident_id", inc.IncidentID), zap.Error(err))
		s.audit.Emit(ctx, actor, meta, "submit_incident_failed", model.ActivityCategoryIncident,
			map[string]interface{}{"reason": "storage_error"})
		return nil, apperrors.Dependency("storage", "创建事件失败", err)
	}

	s.audit.Emit(ctx, actor, meta, "submit_incident", model.ActivityCategoryIncident,
		map[string]interface{}{
			"incident_id":  inc.IncidentID,
			"message_type": inc.MessageType,
			"priority":     inc.Priority,
		})

	return toIncidentResponse(inc), nil
}

// ────────────────────── Update ──────────────────────

func (s *incidentService) Update(ctx context.Context, actor *dto.Identity, meta *dto.RequestMeta, incidentID string, req *dto.UpdateIncidentRequest) (*dto.IncidentResponse, error) {
	inc, err := s.load(ctx, incidentID)
	if err != nil {
		return nil, err
	}

	// 编辑门禁：先校验归属，再校验状态，两种拒绝原因分别上报
	if inc.GuardID != actor.UserID {
		return nil, ErrNotReporter
	}
	if inc.Status != model.IncidentStatusSubmitted {
		return nil, ErrAlreadyReviewed
	}

	// 合并补丁；incident_id / guard_id / created_at 不在补丁字段中，天然不可变
	if req.ClientID != nil {
		inc.ClientID = *req.ClientID
	}
	if req.Recipient != nil {
		inc.RecipientType = req.Recipient.Kind
		inc.RecipientIDs = model.StringArray(req.Recipient.UserIDs)
		inc.RecipientGroups = model.StringArray(req.Recipient.RoleTags)
	}
	if req.IncidentType != nil {
		inc.IncidentType = *req.IncidentType
	}
	if req.CustomIncidentType != nil {
		inc.CustomIncidentType = req.CustomIncidentType
	}
	if req.Priority != nil {
		inc.Priority = *req.Priority
	}
	if req.MessageType != nil {
		inc.MessageType = *req.MessageType
	}
	if req.IncidentDateTime != nil {
		inc.IncidentDateTime = *req.IncidentDateTime
	}
	if req.WithinProperty != nil {
		inc.WithinProperty = *req.WithinProperty
	}
	if req.Location != nil {
		inc.Location = req.Location
	}
	if req.Description != nil {
		inc.Description = *req.Description
	}

	if err := validateIncident(inc); err != nil {
		return nil, err
	}
	if req.ClientID != nil {
		if err := s.checkClient(ctx, inc.ClientID); err != nil {
			return nil, err
		}
	}

	inc.UpdatedAt = s.now()
	if err := s.repo.Incident.Save(ctx, inc); err != nil {
		s.logger.Error("更新事件失败", zap.String("incident_id", incidentID), zap.Error(err))
		return nil, apperrors.Dependency("storage", "更新事件失败", err)
	}

	s.audit.Emit(ctx, actor, meta, "update_incident", model.ActivityCategoryIncident,
		map[string]interface{}{"incident_id": inc.IncidentID})

	return toIncidentResponse(inc), nil
}

// ────────────────────── AdvanceStatus ──────────────────────

// AdvanceStatus 审阅方推进状态：submitted→reviewed→resolved，不允许跳级
func (s *incidentService) AdvanceStatus(ctx context.Context, actor *dto.Identity, meta *dto.RequestMeta, incidentID string, req *dto.UpdateIncidentStatusRequest) (*dto.IncidentResponse, error) {
	if actor.Role != model.RoleSupervisor && actor.Role != model.RoleManagement {
		return nil, ErrNotReviewer
	}

	inc, err := s.load(ctx, incidentID)
	if err != nil {
		return nil, err
	}

	// 主管只能处理寻址到自己的事件；管理层不受限
	if actor.Role == model.RoleSupervisor && !s.isRecipient(inc, actor) {
		return nil, ErrNotRecipient
	}

	var from string
	switch req.Status {
	case model.IncidentStatusReviewed:
		from = model.IncidentStatusSubmitted
	case model.IncidentStatusResolved:
		from = model.IncidentStatusReviewed
	default:
		return nil, ErrInvalidTransition
	}

	if err := s.repo.Incident.AdvanceStatus(ctx, incidentID, from, req.Status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 当前状态不满足流转前提
			return nil, ErrInvalidTransition
		}
		s.logger.Error("推进事件状态失败", zap.String("incident_id", incidentID), zap.Error(err))
		return nil, apperrors.Dependency("storage", "推进事件状态失败", err)
	}
	inc.Status = req.Status

	s.audit.Emit(ctx, actor, meta, "advance_incident_status", model.ActivityCategoryIncident,
		map[string]interface{}{"incident_id": inc.IncidentID, "from": from, "to": req.Status})

	return toIncidentResponse(inc), nil
}

// ────────────────────── 附件 ──────────────────────

// AppendAttachments 附件只追加（上报人专属；审阅后仍可补充证据，故比编辑门禁更宽松）
func (s *incidentService) AppendAttachments(ctx context.Context, actor *dto.Identity, meta *dto.RequestMeta, incidentID string, files []model.Attachment) ([]dto.AttachmentResponse, error) {
	inc, err := s.load(ctx, incidentID)
	if err != nil {
		return nil, err
	}
	if inc.GuardID != actor.UserID {
		return nil, ErrNotReporter
	}

	merged := append(inc.Attachments, files...)
	if err := s.repo.Incident.SetAttachments(ctx, incidentID, merged); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIncidentNotFound
		}
		s.logger.Error("追加事件附件失败", zap.String("incident_id", incidentID), zap.Error(err))
		return nil, apperrors.Dependency("storage", "追加附件失败", err)
	}

	s.audit.Emit(ctx, actor, meta, "append_incident_attachments", model.ActivityCategoryIncident,
		map[string]interface{}{"incident_id": inc.IncidentID, "count": len(files)})

	result := make([]dto.AttachmentResponse, 0, len(files))
	for i := range files {
		result = append(result, *toAttachmentResponse(&files[i]))
	}
	return result, nil
}

func (s *incidentService) RemoveAttachment(ctx context.Context, actor *dto.Identity, meta *dto.RequestMeta, incidentID string, index int) error {
	inc, err := s.load(ctx, incidentID)
	if err != nil {
		return err
	}
	if inc.GuardID != actor.UserID {
		return ErrNotReporter
	}
	if index < 0 || index >= len(inc.Attachments) {
		return ErrAttachmentIndex
	}

	removed := inc.Attachments[index]
	remaining := make(model.AttachmentList, 0, len(inc.Attachments)-1)
	remaining = append(remaining, inc.Attachments[:index]...)
	remaining = append(remaining, inc.Attachments[index+1:]...)

	if err := s.repo.Incident.SetAttachments(ctx, incidentID, remaining); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrIncidentNotFound
		}
		s.logger.Error("移除事件附件失败", zap.String("incident_id", incidentID), zap.Error(err))
		return apperrors.Dependency("storage", "移除附件失败", err)
	}

	// 落盘文件删除委托给文件存储协作方，失败只记日志
	if s.remover != nil {
		if err := s.remover.Remove(removed.StoragePath); err != nil {
			s.logger.Warn("删除附件文件失败",
				zap.String("path", removed.StoragePath), zap.Error(err))
		}
	}

	s.audit.Emit(ctx, actor, meta, "remove_incident_attachment", model.ActivityCategoryIncident,
		map[string]interface{}{"incident_id": inc.IncidentID, "file": removed.StoredName})

	return nil
}

// ────────────────────── 查询 ──────────────────────

func (s *incidentService) GetByID(ctx context.Context, requester *dto.Identity, incidentID string) (*dto.IncidentResponse, error) {
	inc, err := s.load(ctx, incidentID)
	if err != nil {
		return nil, err
	}

	// 可见性：上报人本人 / 管理层 / 收件方（个人 id 或角色标签命中）
	if inc.GuardID != requester.UserID &&
		requester.Role != model.RoleManagement &&
		!s.isRecipient(inc, requester) {
		return nil, ErrNotRecipient
	}

	return toIncidentResponse(inc), nil
}

func (s *incidentService) ExpandRecipients(ctx context.Context, requester *dto.Identity, incidentID string) ([]dto.UserResponse, error) {
	inc, err := s.load(ctx, incidentID)
	if err != nil {
		return nil, err
	}
	if inc.GuardID != requester.UserID &&
		requester.Role != model.RoleManagement &&
		!s.isRecipient(inc, requester) {
		return nil, ErrNotRecipient
	}

	var users []dto.UserResponse
	switch inc.RecipientType {
	case model.RecipientTypeIndividual:
		for _, id := range inc.RecipientIDs {
			u, err := s.repo.User.GetByID(ctx, id)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					continue // 收件人已被删除
				}
				return nil, apperrors.Dependency("storage", "查询收件人失败", err)
			}
			users = append(users, toUserResponse(u))
		}
	case model.RecipientTypeGroup:
		// 用用户目录的当前快照展开角色标签
		for _, tag := range inc.RecipientGroups {
			holders, err := s.repo.User.ListActiveByRole(ctx, tag)
			if err != nil {
				return nil, apperrors.Dependency("storage", "展开角色标签失败", err)
			}
			for i := range holders {
				users = append(users, toUserResponse(&holders[i]))
			}
		}
	}
	return users, nil
}

func (s *incidentService) ListForGuard(ctx context.Context, guardID string, limit int) ([]dto.IncidentResponse, error) {
	incidents, err := s.repo.Incident.ListByGuard(ctx, guardID, limit)
	if err != nil {
		s.logger.Error("查询上报事件失败", zap.String("guard_id", guardID), zap.Error(err))
		return nil, apperrors.Dependency("storage", "查询事件失败", err)
	}
	return toIncidentResponses(incidents), nil
}

func (s *incidentService) ListAll(ctx context.Context, req *dto.IncidentListRequest) ([]dto.IncidentResponse, int64, error) {
	incidents, total, err := s.repo.Incident.ListAll(ctx, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询事件列表失败", zap.Error(err))
		return nil, 0, apperrors.Dependency("storage", "查询事件失败", err)
	}
	return toIncidentResponses(incidents), total, nil
}

func (s *incidentService) ListInbox(ctx context.Context, requester *dto.Identity, req *dto.IncidentListRequest) ([]dto.IncidentResponse, int64, error) {
	incidents, total, err := s.repo.Incident.ListForRecipient(ctx, requester.UserID, requester.Role, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询收件箱失败", zap.String("user_id", requester.UserID), zap.Error(err))
		return nil, 0, apperrors.Dependency("storage", "查询收件箱失败", err)
	}
	return toIncidentResponses(incidents), total, nil
}

// ────────────────────── 内部辅助 ──────────────────────

func (s *incidentService) load(ctx context.Context, incidentID string) (*model.Incident, error) {
	inc, err := s.repo.Incident.GetByIncidentID(ctx, incidentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIncidentNotFound
		}
		s.logger.Error("查询事件失败", zap.String("incident_id", incidentID), zap.Error(err))
		return nil, apperrors.Dependency("storage", "查询事件失败", err)
	}
	return inc, nil
}

func (s *incidentService) isRecipient(inc *model.Incident, requester *dto.Identity) bool {
	return inc.RecipientIDs.Contains(requester.UserID) ||
		inc.RecipientGroups.Contains(requester.Role)
}

func toIncidentResponse(inc *model.Incident) *dto.IncidentResponse {
	attachments := make([]dto.AttachmentResponse, 0, len(inc.Attachments))
	for i := range inc.Attachments {
		attachments = append(attachments, *toAttachmentResponse(&inc.Attachments[i]))
	}
	return &dto.IncidentResponse{
		ID:                 inc.ID,
		IncidentID:         inc.IncidentID,
		GuardID:            inc.GuardID,
		GuardName:          inc.GuardName,
		GuardEmail:         inc.GuardEmail,
		ClientID:           inc.ClientID,
		RecipientType:      inc.RecipientType,
		RecipientIDs:       inc.RecipientIDs,
		RecipientGroups:    inc.RecipientGroups,
		IncidentType:       inc.IncidentType,
		CustomIncidentType: inc.CustomIncidentType,
		Priority:           inc.Priority,
		MessageType:        inc.MessageType,
		IncidentDateTime:   inc.IncidentDateTime,
		WithinProperty:     inc.WithinProperty,
		Location:           inc.Location,
		Description:        inc.Description,
		Attachments:        attachments,
		Status:             inc.Status,
		CreatedAt:          inc.CreatedAt,
		UpdatedAt:          inc.UpdatedAt,
	}
}

func toIncidentResponses(incidents []model.Incident) []dto.IncidentResponse {
	result := make([]dto.IncidentResponse, 0, len(incidents))
	for i := range incidents {
		result = append(result, *toIncidentResponse(&incidents[i]))
	}
	return result
}

// [自证通过] internal/service/incident_service.go
