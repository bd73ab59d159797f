package dto

import "time"

// ── 班次请求 ──

// StartShiftRequest 开始班次请求
type StartShiftRequest struct {
	Location *string `json:"location" binding:"omitempty,max=500"`
	Notes    *string `json:"notes"    binding:"omitempty,max=2000"`
}

// EndShiftRequest 结束班次请求
type EndShiftRequest struct {
	Notes *string `json:"notes" binding:"omitempty,max=2000"`
}

// StartBreakRequest 开始休息请求
type StartBreakRequest struct {
	Type string `json:"type" binding:"required,oneof=break lunch"`
}

// ShiftHistoryRequest 班次历史查询参数
type ShiftHistoryRequest struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// GetLimit 获取条数（含默认值）
func (r *ShiftHistoryRequest) GetLimit() int {
	if r.Limit <= 0 {
		return 20
	}
	return r.Limit
}

// ── 班次响应 ──

// AttachmentResponse 附件元数据响应
type AttachmentResponse struct {
	OriginalName  string    `json:"original_name"`
	StoredName    string    `json:"stored_name"`
	FileSizeBytes int64     `json:"file_size_bytes"`
	MimeType      string    `json:"mime_type"`
	StoragePath   string    `json:"storage_path"`
	UploadedAt    time.Time `json:"uploaded_at"`
	Kind          string    `json:"kind"`
}

// ShiftResponse 班次响应
type ShiftResponse struct {
	ShiftID              string              `json:"shift_id"`
	GuardID              string              `json:"guard_id"`
	GuardName            string              `json:"guard_name"`
	GuardEmail           string              `json:"guard_email"`
	CheckInTime          time.Time           `json:"check_in_time"`
	CheckOutTime         *time.Time          `json:"check_out_time,omitempty"`
	Status               string              `json:"status"`
	ShiftDurationMinutes *int                `json:"shift_duration_minutes,omitempty"`
	Location             *string             `json:"location,omitempty"`
	Notes                *string             `json:"notes,omitempty"`
	CheckInPhoto         *AttachmentResponse `json:"check_in_photo,omitempty"`
	CheckOutPhoto        *AttachmentResponse `json:"check_out_photo,omitempty"`
}

// EndShiftResponse 结束班次响应
type EndShiftResponse struct {
	ShiftID         string `json:"shift_id"`
	DurationMinutes int    `json:"duration_minutes"`
}

// BreakResponse 休息响应
type BreakResponse struct {
	BreakID         string     `json:"break_id"`
	ShiftID         string     `json:"shift_id"`
	Type            string     `json:"type"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	DurationMinutes *int       `json:"duration_minutes,omitempty"`
}

// EndBreakResponse 结束休息响应
type EndBreakResponse struct {
	BreakID         string `json:"break_id"`
	DurationMinutes int    `json:"duration_minutes"`
}

// BreakStatusResponse 休息状态响应
type BreakStatusResponse struct {
	OnBreak      bool            `json:"on_break"`
	CurrentBreak *BreakResponse  `json:"current_break,omitempty"`
	TodayBreaks  []BreakResponse `json:"today_breaks"`
}
