package errors

import "errors"

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// Kind 业务错误分类，供 Handler 层映射 HTTP 状态码
type Kind string

const (
	KindValidation    Kind = "validation"
	KindNotFound      Kind = "not_found"
	KindAlreadyLocked Kind = "already_locked"
	KindForbidden     Kind = "forbidden"
)

// Error 带分类的业务错误
//
// 各 Service 以包级变量声明具体错误（如 ErrPeriodAlreadyActive），
// 调用方既可以 errors.Is 匹配具体错误，也可以匹配分类哨兵（如 ErrValidation）。
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// Is 使分类哨兵（Message 为空）匹配同一 Kind 的所有错误
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

// 分类哨兵
var (
	ErrValidation    = &Error{Kind: KindValidation}
	ErrNotFound      = &Error{Kind: KindNotFound}
	ErrAlreadyLocked = &Error{Kind: KindAlreadyLocked}
	ErrForbidden     = &Error{Kind: KindForbidden}
)

// Validation 创建校验类错误
func Validation(msg string) *Error { return &Error{Kind: KindValidation, Message: msg} }

// NotFound 创建资源不存在错误
func NotFound(msg string) *Error { return &Error{Kind: KindNotFound, Message: msg} }

// AlreadyLocked 创建已锁定错误
func AlreadyLocked(msg string) *Error { return &Error{Kind: KindAlreadyLocked, Message: msg} }

// Forbidden 创建无权限错误
func Forbidden(msg string) *Error { return &Error{Kind: KindForbidden, Message: msg} }

// KindOf 返回错误链中第一个业务错误的分类；非业务错误返回空字符串
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
