package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/ChrishanAloka/UnicornInstitituteLMS-sub002/pkg/errors"
	"github.com/ChrishanAloka/UnicornInstitituteLMS-sub002/pkg/response"
)

// 业务错误码
const (
	codeBadRequest = 10001
	codeValidation = 17001
	codeConflict   = 17002
	codeNotFound   = 17003
	codeDependency = 17004
)

// handleAppError 按错误类别映射 HTTP 状态与业务码
// 原始错误记入 c.Errors，由日志中间件统一输出
func handleAppError(c *gin.Context, err error) {
	_ = c.Error(err)

	msg := apperrors.PublicMessage(err)
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		response.BadRequest(c, codeValidation, msg)
	case errors.Is(err, apperrors.ErrConflict):
		response.Conflict(c, codeConflict, msg)
	case errors.Is(err, apperrors.ErrNotFound):
		response.NotFound(c, codeNotFound, msg)
	case errors.Is(err, apperrors.ErrDependency):
		response.ServiceUnavailable(c, codeDependency)
	default:
		response.InternalError(c)
	}
}

// bindFailed 请求参数绑定或校验失败
func bindFailed(c *gin.Context, err error) {
	response.ErrorWithDetails(c, http.StatusBadRequest, codeBadRequest, "参数校验失败", err.Error())
}
