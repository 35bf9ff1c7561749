package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireRoles 角色校验中间件，必须在JWT中间件之后使用
// 按路由配置允许的角色列表，不在列表中的角色返回403
func RequireRoles(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(c *gin.Context) {
		role, exists := c.Get("userRole")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code": 401,
				"msg":  "未登录",
			})
			c.Abort()
			return
		}

		if !allowed[role.(string)] {
			c.JSON(http.StatusForbidden, gin.H{
				"code": 403,
				"msg":  "没有操作权限",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
