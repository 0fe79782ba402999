// Package apierror 定义 HTTP 层的类型化错误与统一错误响应
package apierror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Error 服务错误
type Error struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"`
}

// New 创建服务错误
func New(code, message string, status int) *Error {
	return &Error{Code: code, Message: message, HTTPStatus: status}
}

// Error 实现 error 接口
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap 返回包装的底层错误
func (e *Error) Unwrap() error {
	return e.Err
}

// Is 按错误码比较，WithError/WithMessage 派生的错误与原错误相等
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// WithError 附加底层错误
func (e *Error) WithError(err error) *Error {
	return &Error{
		Code:       e.Code,
		Message:    e.Message,
		HTTPStatus: e.HTTPStatus,
		Err:        err,
	}
}

// WithMessage 附加自定义消息
func (e *Error) WithMessage(msg string) *Error {
	return &Error{
		Code:       e.Code,
		Message:    msg,
		HTTPStatus: e.HTTPStatus,
		Err:        e.Err,
	}
}

// 通用错误
var (
	ErrInvalidRequest = New("INVALID_REQUEST", "Invalid request parameters", http.StatusBadRequest)
	ErrUnauthorized   = New("UNAUTHORIZED", "Unauthorized access", http.StatusUnauthorized)
	ErrForbidden      = New("FORBIDDEN", "Access forbidden", http.StatusForbidden)
	ErrNotFound       = New("NOT_FOUND", "Resource not found", http.StatusNotFound)
	ErrRateLimited    = New("RATE_LIMITED", "Too many requests", http.StatusTooManyRequests)
	ErrNotImplemented = New("NOT_IMPLEMENTED", "Not implemented", http.StatusNotImplemented)
	ErrInternal       = New("INTERNAL_ERROR", "Internal server error", http.StatusInternalServerError)
)

// As 获取服务错误（如果是的话）
func As(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return nil
}

// Respond 输出 {"error":{"code","message"}}，未知错误按 500 处理
func Respond(c *gin.Context, logger *zap.Logger, err error) {
	apiErr := As(err)
	if apiErr == nil {
		if logger != nil {
			logger.Error("internal error", zap.Error(err), zap.String("path", c.FullPath()))
		}
		apiErr = ErrInternal
	} else if apiErr.HTTPStatus >= http.StatusInternalServerError && logger != nil {
		logger.Error("request failed", zap.Error(err), zap.String("path", c.FullPath()))
	}

	c.AbortWithStatusJSON(apiErr.HTTPStatus, gin.H{
		"error": gin.H{
			"code":    apiErr.Code,
			"message": apiErr.Message,
		},
	})
}

// RespondFunction 输出函数端点的错误信封 {"error":{"message"}}，状态码固定 500
func RespondFunction(c *gin.Context, logger *zap.Logger, err error) {
	message := err.Error()
	if apiErr := As(err); apiErr != nil {
		message = apiErr.Message
	}
	if logger != nil {
		logger.Warn("function request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"error": gin.H{"message": message},
	})
}
