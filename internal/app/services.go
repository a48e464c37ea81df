package app

import (
	"github.com/HadiHz88/medical-records-api/internal/service"
	"github.com/HadiHz88/medical-records-api/pkg/config"
	"github.com/HadiHz88/medical-records-api/pkg/database"
)

// Services 包含所有 Service 实例
type Services struct {
	Template *service.TemplateService
	Record   *service.RecordService
	Access   *service.AccessService
	Auth     *service.AuthService
}

// InitializeServices 初始化所有 Service
func InitializeServices(repos *Repositories, cfg *config.Config) *Services {
	return &Services{
		Template: service.NewTemplateService(database.DB, repos.Template, repos.Field),
		Record:   service.NewRecordService(database.DB, repos.Record),
		Access:   service.NewAccessService(database.DB, repos.Permission, repos.User),
		Auth:     service.NewAuthService(repos.User, cfg.Security.JWTSecret, cfg.Security.TokenTTL),
	}
}
