package repository

import (
	"errors"

	"github.com/HadiHz88/medical-records-api/internal/model"
	"gorm.io/gorm"
)

type PermissionRepository struct {
	db *gorm.DB
}

func NewPermissionRepository(db *gorm.DB) *PermissionRepository {
	return &PermissionRepository{db: db}
}

// Has 用户对模板是否持有授权
func (r *PermissionRepository) Has(userID, templateID uint) (bool, error) {
	var count int64
	err := r.db.Model(&model.Permission{}).
		Where("user_id = ? AND template_id = ?", userID, templateID).
		Count(&count).Error
	return count > 0, err
}

// Create 创建授权（重复授权直接返回既有行）
func (r *PermissionRepository) Create(userID, templateID uint) (*model.Permission, error) {
	var existing model.Permission
	err := r.db.Where("user_id = ? AND template_id = ?", userID, templateID).
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	permission := model.Permission{
		UserID:     userID,
		TemplateID: templateID,
	}
	if err := r.db.Create(&permission).Error; err != nil {
		return nil, err
	}
	return &permission, nil
}

// Delete 撤销授权
func (r *PermissionRepository) Delete(userID, templateID uint) error {
	return r.db.Where("user_id = ? AND template_id = ?", userID, templateID).
		Delete(&model.Permission{}).Error
}

// FindByTemplateID 查找模板的所有授权（带用户信息）
func (r *PermissionRepository) FindByTemplateID(templateID uint) ([]model.Permission, error) {
	var permissions []model.Permission
	err := r.db.Where("template_id = ?", templateID).
		Preload("User").
		Find(&permissions).Error
	return permissions, err
}
