package app

import (
	"github.com/HadiHz88/medical-records-api/internal/api/handler"
	"github.com/HadiHz88/medical-records-api/internal/api/router"
)

// InitializeHandlers 初始化所有 Handler
func InitializeHandlers(repos *Repositories, services *Services) *router.Handlers {
	return &router.Handlers{
		Auth:       handler.NewAuthHandler(services.Auth),
		Template:   handler.NewTemplateHandler(services.Template),
		Field:      handler.NewFieldHandler(services.Template),
		Record:     handler.NewRecordHandler(services.Record, services.Access),
		Permission: handler.NewPermissionHandler(services.Access),
		Dashboard:  handler.NewDashboardHandler(repos.Template, repos.Record),
	}
}
