// Package middleware 提供了处理 HTTP 请求的中间件。
package middleware

import (
	"net/http"
	"strings"

	"grouphub-go/internal/repository"
	"grouphub-go/internal/service"
	"grouphub-go/pkg/token"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware 创建一个 Gin 中间件，用于解析已签发的 JWT。
// 它会从请求头中提取 token，验证其有效性，按其中的 SA-PIN 解析出完整的
// 成员信息，并将 UserContext 存入 Gin 的上下文中供后续处理函数使用。
// 凭证签发属于外部身份系统，这里只做验证与身份解析。
func AuthMiddleware(jwtManager *token.JWTManager, memberRepo repository.MemberRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 从 Authorization 请求头中获取 token
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "请求未包含授权头"})
			return
		}

		// Token 以 "Bearer <token>" 的形式提供，提取出 token 本身
		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "无效的授权头格式"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, bearerPrefix)

		claims, err := jwtManager.VerifyToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "无效或已过期的 token"})
			return
		}

		// 使用 claims 中的 SA-PIN 解析完整的成员信息（带 Redis 缓存）
		member, err := memberRepo.FindBySAPIN(c.Request.Context(), claims.SAPIN)
		if err != nil {
			// 如果按 token 中的标识找不到成员，说明该成员可能已被移除
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "成员不存在"})
			return
		}

		// 将 UserContext 存储在 context 中，供后续处理函数使用
		c.Set("user", &service.UserContext{SAPIN: member.SAPIN, Member: member})
		c.Set("claims", claims)

		c.Next()
	}
}

// CurrentUser 从 Gin 上下文中取出 AuthMiddleware 设置的 UserContext。
func CurrentUser(c *gin.Context) (*service.UserContext, bool) {
	value, exists := c.Get("user")
	if !exists {
		return nil, false
	}
	user, ok := value.(*service.UserContext)
	return user, ok
}
