package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ChrishanAloka/UnicornInstitituteLMS-sub002/internal/api/middleware"
	"github.com/ChrishanAloka/UnicornInstitituteLMS-sub002/pkg/response"
)

// callerID 读取 JWTAuth 注入的用户 ID，作为例外登记的 created_by
// created_by 列为 UUID，非 UUID 的主体在这里拒绝，避免落到存储层变成 503
// ok=false 时已写入 401，调用方直接 return
func callerID(c *gin.Context) (string, bool) {
	id := c.GetString(middleware.ContextUserID)
	if id == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	if _, err := uuid.Parse(id); err != nil {
		response.Unauthorized(c, 10002, "用户标识无效")
		return "", false
	}
	return id, true
}
