package apperr

import "fmt"

// 业务错误码（按 HTTP 语义）
const (
	CodeBadRequest   = 400
	CodeUnauthorized = 401
	CodeForbidden    = 403
	CodeNotFound     = 404
	CodeConflict     = 409
	CodeInternal     = 500
)

// Error 统一业务错误，handler 边界按 Code 映射 HTTP 状态
type Error struct {
	Code int
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "internal error"
}

func (e *Error) Unwrap() error { return e.Err }

func BadRequest(format string, a ...any) error {
	return &Error{Code: CodeBadRequest, Msg: fmt.Sprintf(format, a...)}
}

func Unauthorized(msg string) error { return &Error{Code: CodeUnauthorized, Msg: msg} }

func Forbidden(msg string) error { return &Error{Code: CodeForbidden, Msg: msg} }

func NotFound(format string, a ...any) error {
	return &Error{Code: CodeNotFound, Msg: fmt.Sprintf(format, a...)}
}

func Conflict(format string, a ...any) error {
	return &Error{Code: CodeConflict, Msg: fmt.Sprintf(format, a...)}
}

func Internal(msg string, err error) error {
	return &Error{Code: CodeInternal, Msg: msg, Err: err}
}
