// Package apperr 定义了带 HTTP 状态语义的业务错误类型。
// handler 层通过 errors.As 将其映射为固定的状态码和提示信息，
// 未分类的错误一律返回 500 和通用提示，不向客户端泄露内部细节。
package apperr

import "net/http"

// Error 是携带状态码的业务错误。
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Validation 表示请求输入不合法（400）。
func Validation(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: message}
}

// NotFound 表示目标资源不存在（404）。
func NotFound(message string) *Error {
	return &Error{Status: http.StatusNotFound, Message: message}
}

// Unauthorized 表示认证失败（401）。
func Unauthorized(message string) *Error {
	return &Error{Status: http.StatusUnauthorized, Message: message}
}

// Unavailable 表示依赖的外部服务不可用（503）。
func Unavailable(message string) *Error {
	return &Error{Status: http.StatusServiceUnavailable, Message: message}
}
