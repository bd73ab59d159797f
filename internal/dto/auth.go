package dto

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest 刷新 Token 请求
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// CreateUserRequest 创建用户请求（管理员）
type CreateUserRequest struct {
	Name     string `json:"name"     binding:"required,max=100"`
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role"     binding:"required,oneof=guard security_supervisor management"`
}

// UserListRequest 用户列表查询参数
type UserListRequest struct {
	PaginationRequest
	Role string `form:"role" binding:"omitempty,oneof=guard security_supervisor management"`
}
