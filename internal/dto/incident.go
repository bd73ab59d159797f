package dto

import "time"

// RecipientSelector 收件方选择器（标签联合）
// individual 模式填 user_ids；group 模式填 role_tags，读取时展开为具体用户
type RecipientSelector struct {
	Kind     string   `json:"kind"      binding:"required,oneof=individual group"`
	UserIDs  []string `json:"user_ids"  binding:"omitempty,dive,uuid"`
	RoleTags []string `json:"role_tags" binding:"omitempty,dive,oneof=guard security_supervisor management"`
}

// CreateIncidentRequest 创建事件请求
type CreateIncidentRequest struct {
	ClientID           string            `json:"client_id"            binding:"required,uuid"`
	Recipient          RecipientSelector `json:"recipient"            binding:"required"`
	IncidentType       string            `json:"incident_type"        binding:"required,max=100"`
	CustomIncidentType *string           `json:"custom_incident_type" binding:"omitempty,max=100"`
	Priority           string            `json:"priority"             binding:"omitempty,oneof=normal urgent critical"`
	MessageType        string            `json:"message_type"         binding:"omitempty,oneof=incident communication"`
	IncidentDateTime   time.Time         `json:"incident_date_time"   binding:"required"`
	WithinProperty     *bool             `json:"within_property"`
	Location           *string           `json:"location"             binding:"omitempty,max=500"`
	Description        string            `json:"description"          binding:"required"`
}

// UpdateIncidentRequest 编辑事件请求（补丁语义）
// incident_id / guard_id / created_at 不可变，不在补丁字段之列
type UpdateIncidentRequest struct {
	ClientID           *string            `json:"client_id"            binding:"omitempty,uuid"`
	Recipient          *RecipientSelector `json:"recipient"`
	IncidentType       *string            `json:"incident_type"        binding:"omitempty,max=100"`
	CustomIncidentType *string            `json:"custom_incident_type" binding:"omitempty,max=100"`
	Priority           *string            `json:"priority"             binding:"omitempty,oneof=normal urgent critical"`
	MessageType        *string            `json:"message_type"         binding:"omitempty,oneof=incident communication"`
	IncidentDateTime   *time.Time         `json:"incident_date_time"`
	WithinProperty     *bool              `json:"within_property"`
	Location           *string            `json:"location"             binding:"omitempty,max=500"`
	Description        *string            `json:"description"`
}

// UpdateIncidentStatusRequest 推进事件状态请求（审阅方）
type UpdateIncidentStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=reviewed resolved"`
}

// IncidentListRequest 事件列表查询参数
type IncidentListRequest struct {
	PaginationRequest
}

// IncidentResponse 事件响应
type IncidentResponse struct {
	ID                 string               `json:"id"`
	IncidentID         string               `json:"incident_id"`
	GuardID            string               `json:"guard_id"`
	GuardName          string               `json:"guard_name"`
	GuardEmail         string               `json:"guard_email"`
	ClientID           string               `json:"client_id"`
	RecipientType      string               `json:"recipient_type"`
	RecipientIDs       []string             `json:"recipient_ids"`
	RecipientGroups    []string             `json:"recipient_groups"`
	IncidentType       string               `json:"incident_type"`
	CustomIncidentType *string              `json:"custom_incident_type,omitempty"`
	Priority           string               `json:"priority"`
	MessageType        string               `json:"message_type"`
	IncidentDateTime   time.Time            `json:"incident_date_time"`
	WithinProperty     bool                 `json:"within_property"`
	Location           *string              `json:"location,omitempty"`
	Description        string               `json:"description"`
	Attachments        []AttachmentResponse `json:"attachments"`
	Status             string               `json:"status"`
	CreatedAt          time.Time            `json:"created_at"`
	UpdatedAt          time.Time            `json:"updated_at"`
}
