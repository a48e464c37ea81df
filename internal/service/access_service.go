package service

import (
	"errors"

	"github.com/HadiHz88/medical-records-api/internal/model"
	"github.com/HadiHz88/medical-records-api/internal/repository"
	"gorm.io/gorm"
)

// Principal 请求主体
// 管理员对全部模板放行，普通用户需要持有对应模板的授权行
type Principal struct {
	UserID  uint
	IsAdmin bool
}

// AccessService 模板访问决策
// 所有模板范围内的读写操作在进入事务前都要先通过这里
type AccessService struct {
	db             *gorm.DB
	permissionRepo *repository.PermissionRepository
	userRepo       *repository.UserRepository
}

func NewAccessService(db *gorm.DB, permissionRepo *repository.PermissionRepository, userRepo *repository.UserRepository) *AccessService {
	return &AccessService{
		db:             db,
		permissionRepo: permissionRepo,
		userRepo:       userRepo,
	}
}

// CanAccess 主体是否可以操作指定模板
func (s *AccessService) CanAccess(principal Principal, templateID uint) (bool, error) {
	if principal.IsAdmin {
		return true, nil
	}
	return s.permissionRepo.Has(principal.UserID, templateID)
}

// Grant 给用户授予模板访问权（仅管理员可调用，调用方负责校验）
func (s *AccessService) Grant(templateID, userID uint) (*model.Permission, error) {
	if err := s.ensureTemplateExists(templateID); err != nil {
		return nil, err
	}
	if _, err := s.userRepo.FindByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "user", ID: userID}
		}
		return nil, err
	}
	return s.permissionRepo.Create(userID, templateID)
}

// Revoke 撤销用户的模板访问权
func (s *AccessService) Revoke(templateID, userID uint) error {
	if err := s.ensureTemplateExists(templateID); err != nil {
		return err
	}
	return s.permissionRepo.Delete(userID, templateID)
}

// ListByTemplate 列出模板的全部授权（带用户信息）
func (s *AccessService) ListByTemplate(templateID uint) ([]model.Permission, error) {
	if err := s.ensureTemplateExists(templateID); err != nil {
		return nil, err
	}
	return s.permissionRepo.FindByTemplateID(templateID)
}

func (s *AccessService) ensureTemplateExists(id uint) error {
	var count int64
	if err := s.db.Model(&model.Template{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return &NotFoundError{Resource: "template", ID: id}
	}
	return nil
}
