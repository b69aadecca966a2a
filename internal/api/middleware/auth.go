package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ChrishanAloka/UnicornInstitituteLMS-sub002/pkg/jwt"
	"github.com/ChrishanAloka/UnicornInstitituteLMS-sub002/pkg/response"
)

// JWTAuth 注入 gin.Context 的键
const (
	ContextUserID = "user_id"
	ContextRole   = "role"
)

// 可登记例外、触发汇总的角色；其余角色（如 student、teacher）只读
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

const codeUnauthorized = 10002

// JWTAuth 校验 Authorization: Bearer <access token>（由统一认证服务签发）
func JWTAuth(jwtMgr *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		scheme, token, ok := strings.Cut(c.GetHeader("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			response.Unauthorized(c, codeUnauthorized, "缺少或无效的 Bearer 认证头")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(token)
		if err != nil {
			msg := "Token 无效"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "Token 已过期"
			}
			response.Unauthorized(c, codeUnauthorized, msg)
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

// RoleAuth 要求当前用户具有 allowedRoles 之一
func RoleAuth(allowedRoles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = true
	}

	return func(c *gin.Context) {
		role := c.GetString(ContextRole)
		if role == "" {
			response.Unauthorized(c, codeUnauthorized, "未认证")
			c.Abort()
			return
		}
		if !allowed[role] {
			response.Forbidden(c, 10003, "当前角色无权修改课表例外或触发汇总")
			c.Abort()
			return
		}
		c.Next()
	}
}
