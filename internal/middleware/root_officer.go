// Package middleware 提供了处理 HTTP 请求的中间件。
package middleware

import (
	"net/http"

	"grouphub-go/internal/repository"

	"github.com/gin-gonic/gin"
)

// RootOfficerMiddleware 检查调用者是否在根组上持有官员职位。
// 变更审计等全局视图只对根组官员开放。此中间件必须在 AuthMiddleware 之后使用。
func RootOfficerMiddleware(groupRepo repository.GroupRepository, officerRepo repository.OfficerRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			// user 不存在说明 AuthMiddleware 未能成功解析，这是一个服务器内部错误
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "无法获取用户信息"})
			return
		}

		root, err := groupRepo.FindRoot()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "无法解析根组"})
			return
		}

		bindings, err := officerRepo.FindBySAPIN(user.SAPIN)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "无法查询官员绑定"})
			return
		}
		for _, o := range bindings {
			if o.GroupID == root.ID {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "权限不足，需要根组官员权限"})
	}
}
