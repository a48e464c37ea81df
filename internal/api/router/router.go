package router

import (
	"github.com/HadiHz88/medical-records-api/internal/api/handler"
	"github.com/HadiHz88/medical-records-api/internal/api/middleware"
	"github.com/HadiHz88/medical-records-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers 路由需要的全部处理器
type Handlers struct {
	Auth       *handler.AuthHandler
	Template   *handler.TemplateHandler
	Field      *handler.FieldHandler
	Record     *handler.RecordHandler
	Permission *handler.PermissionHandler
	Dashboard  *handler.DashboardHandler
}

// SetupRouter 组装全部路由和中间件
func SetupRouter(h *Handlers, authService *service.AuthService, accessService *service.AccessService) *gin.Engine {
	r := gin.New()

	r.Use(middleware.RecoveryMiddleware())
	r.Use(gin.Logger())
	r.Use(middleware.CORS())
	r.Use(middleware.MetricsMiddleware())

	// Prometheus指标端点
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	// 公开路由
	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
	}

	// 认证路由
	authed := api.Group("")
	authed.Use(middleware.AuthMiddleware(authService))
	{
		authed.GET("/counts", h.Dashboard.Counts)

		// 模板集合：列表公开给所有登录用户，创建仅管理员
		authed.GET("/templates", h.Template.List)
		authed.POST("/templates", middleware.AdminMiddleware(), h.Template.Create)

		// 模板详情及其下级资源：按模板授权
		templates := authed.Group("/templates/:id")
		templates.Use(middleware.TemplateAccessMiddleware(accessService))
		{
			templates.GET("", h.Template.Get)
			templates.PUT("", h.Template.Update)
			templates.DELETE("", h.Template.Delete)

			templates.GET("/fields", h.Field.List)
			templates.POST("/fields", h.Field.Create)
			templates.PUT("/fields/:fieldId", h.Field.Update)
			templates.DELETE("/fields/:fieldId", h.Field.Delete)

			// 授权管理仅管理员
			permissions := templates.Group("/permissions")
			permissions.Use(middleware.AdminMiddleware())
			{
				permissions.GET("", h.Permission.List)
				permissions.POST("", h.Permission.Grant)
				permissions.DELETE("/:userId", h.Permission.Revoke)
			}
		}

		// 记录路由：访问控制在处理器内按所属模板检查
		records := authed.Group("/records")
		{
			records.GET("", h.Record.List)
			records.POST("", h.Record.Create)
			records.GET("/:id", h.Record.Get)
			records.PUT("/:id", h.Record.Update)
			records.DELETE("/:id", h.Record.Delete)
			records.GET("/:id/values", h.Record.ListValues)
		}
	}

	return r
}
