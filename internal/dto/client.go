package dto

// CreateClientRequest 创建客户请求（管理员）
type CreateClientRequest struct {
	Name         string `json:"name"          binding:"required,max=200"`
	Address      string `json:"address"       binding:"omitempty,max=1000"`
	ContactName  string `json:"contact_name"  binding:"omitempty,max=100"`
	ContactPhone string `json:"contact_phone" binding:"omitempty,max=50"`
}

// ClientResponse 客户响应
type ClientResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Address      string `json:"address"`
	ContactName  string `json:"contact_name"`
	ContactPhone string `json:"contact_phone"`
	IsActive     bool   `json:"is_active"`
}
