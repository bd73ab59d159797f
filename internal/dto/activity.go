package dto

import "time"

// ActivityListRequest 审计事件列表查询参数
type ActivityListRequest struct {
	PaginationRequest
	Category string `form:"category" binding:"omitempty,oneof=attendance incident auth"`
}

// ActivityResponse 审计事件响应
type ActivityResponse struct {
	EventID    string                 `json:"event_id"`
	ActorID    *string                `json:"actor_id,omitempty"`
	ActorName  *string                `json:"actor_name,omitempty"`
	ActorEmail *string                `json:"actor_email,omitempty"`
	ActorRole  *string                `json:"actor_role,omitempty"`
	Action     string                 `json:"action"`
	Category   string                 `json:"category"`
	Details    map[string]interface{} `json:"details"`
	IP         *string                `json:"ip,omitempty"`
	DeviceType *string                `json:"device_type,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
}
