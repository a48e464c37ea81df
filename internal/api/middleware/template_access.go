package middleware

import (
	"net/http"
	"strconv"

	"github.com/HadiHz88/medical-records-api/internal/model"
	"github.com/HadiHz88/medical-records-api/internal/service"
	"github.com/gin-gonic/gin"
)

// TemplateAccessMiddleware 模板访问控制中间件
// 挂在带 :id 模板参数的路由上；管理员放行，普通用户需要持有授权。
// 拒绝必须发生在任何事务开始之前
func TemplateAccessMiddleware(accessService *service.AccessService) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, model.Error(401, "missing user identity"))
			c.Abort()
			return
		}

		templateID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, model.Error(400, "invalid template id"))
			c.Abort()
			return
		}

		allowed, err := accessService.CanAccess(principal, uint(templateID))
		if err != nil {
			model.HandleError(c, http.StatusInternalServerError, err, "failed to check template access")
			c.Abort()
			return
		}
		if !allowed {
			c.JSON(http.StatusForbidden, model.Error(403, "you do not have access to this template"))
			c.Abort()
			return
		}

		c.Next()
	}
}
