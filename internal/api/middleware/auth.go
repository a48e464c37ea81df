package middleware

import (
	"net/http"
	"strings"

	"github.com/HadiHz88/medical-records-api/internal/model"
	"github.com/HadiHz88/medical-records-api/internal/service"
	"github.com/gin-gonic/gin"
)

// AuthMiddleware JWT认证中间件
func AuthMiddleware(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, model.Error(401, "missing Authorization header"))
			c.Abort()
			return
		}

		// 移除 "Bearer " 前缀
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.JSON(http.StatusUnauthorized, model.Error(401, "Authorization header must start with 'Bearer '"))
			c.Abort()
			return
		}

		// 验证Token
		claims, err := authService.ValidateToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, model.Error(401, "invalid or expired token: "+err.Error()))
			c.Abort()
			return
		}

		// 将用户信息保存到上下文
		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("is_admin", claims.IsAdmin)

		c.Next()
	}
}

// AdminMiddleware 管理员权限中间件
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		isAdmin, exists := c.Get("is_admin")
		if !exists || isAdmin != true {
			c.JSON(http.StatusForbidden, model.Error(403, "admin privileges required"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetPrincipal 从上下文取出请求主体
func GetPrincipal(c *gin.Context) (service.Principal, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		return service.Principal{}, false
	}
	uid, ok := userID.(uint)
	if !ok {
		return service.Principal{}, false
	}

	isAdmin := false
	if v, exists := c.Get("is_admin"); exists {
		isAdmin, _ = v.(bool)
	}

	return service.Principal{UserID: uid, IsAdmin: isAdmin}, true
}
