package dto

// Identity 认证协作方解析出的调用者身份
// 核心逻辑完全信任该身份，不做独立校验
type Identity struct {
	UserID string
	Name   string
	Email  string
	Role   string
}

// RequestMeta 请求元数据（写入审计事件）
type RequestMeta struct {
	IP         string
	DeviceType string // mobile | desktop | unknown
}
