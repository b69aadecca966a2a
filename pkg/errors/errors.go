// Package errors 定义业务错误分类：校验、冲突、不存在、外部依赖。
// Service 层返回 *AppError，Handler 层通过 errors.Is 按类别映射 HTTP 响应。
package errors

import (
	"errors"
	"fmt"
)

// 错误类别，用于 errors.Is 判断
var (
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")
	ErrDependency = errors.New("dependency unavailable")
)

// AppError 携带上下文的业务错误
//
// Message 面向调用方，需写明违反的具体规则（如 "expected Monday, got Tuesday"）。
// Collaborator / Key 仅用于日志与重试定位，不对外暴露。
type AppError struct {
	Kind         error
	Op           string
	Message      string
	Collaborator string
	Key          string
	Err          error
}

func (e *AppError) Error() string {
	msg := e.Op + ": " + e.Message
	if e.Collaborator != "" {
		msg += fmt.Sprintf(" [%s %s]", e.Collaborator, e.Key)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *AppError) Unwrap() error { return e.Err }

// Is 让 errors.Is(err, ErrValidation) 等类别判断生效
func (e *AppError) Is(target error) bool {
	return e.Kind == target
}

// Validation 输入不合法或违反不变量，写入前即被拦截
func Validation(op, format string, args ...any) error {
	return &AppError{Kind: ErrValidation, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Conflict 唯一性冲突
func Conflict(op, format string, args ...any) error {
	return &AppError{Kind: ErrConflict, Op: op, Message: fmt.Sprintf(format, args...)}
}

// NotFound 引用的资源不存在
func NotFound(op, format string, args ...any) error {
	return &AppError{Kind: ErrNotFound, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Dependency 外部协作方（课程目录、考勤日志、存储）不可用或返回异常数据
func Dependency(op, collaborator, key string, err error) error {
	return &AppError{
		Kind:         ErrDependency,
		Op:           op,
		Message:      "依赖服务暂不可用，请稍后重试",
		Collaborator: collaborator,
		Key:          key,
		Err:          err,
	}
}

// PublicMessage 返回可展示给调用方的消息
func PublicMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return ""
}
