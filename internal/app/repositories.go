package app

import (
	"github.com/HadiHz88/medical-records-api/internal/repository"
	"github.com/HadiHz88/medical-records-api/pkg/database"
)

// Repositories 包含所有 Repository 实例
type Repositories struct {
	Template   *repository.TemplateRepository
	Field      *repository.FieldRepository
	Record     *repository.RecordRepository
	Permission *repository.PermissionRepository
	User       *repository.UserRepository
}

// InitializeRepositories 初始化所有 Repository
func InitializeRepositories() *Repositories {
	return &Repositories{
		Template:   repository.NewTemplateRepository(database.DB),
		Field:      repository.NewFieldRepository(database.DB),
		Record:     repository.NewRecordRepository(database.DB),
		Permission: repository.NewPermissionRepository(database.DB),
		User:       repository.NewUserRepository(database.DB),
	}
}
