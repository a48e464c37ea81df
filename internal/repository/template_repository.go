package repository

import (
	"github.com/HadiHz88/medical-records-api/internal/model"
	"gorm.io/gorm"
)

type TemplateRepository struct {
	db *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// FindByID 根据ID查找模板（字段按 display_order 升序，选项随字段加载）
func (r *TemplateRepository) FindByID(id uint) (*model.Template, error) {
	var template model.Template
	err := r.db.
		Preload("Fields", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		Preload("Fields.Options").
		First(&template, id).Error
	if err != nil {
		return nil, err
	}

	// 填充关联记录数量
	count, err := r.CountRecords(id)
	if err != nil {
		return nil, err
	}
	template.RecordsCount = count

	return &template, nil
}

// FindAll 查找所有模板（按创建时间倒序，带记录数量）
func (r *TemplateRepository) FindAll() ([]model.Template, error) {
	var templates []model.Template
	err := r.db.
		Preload("Fields", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		Preload("Fields.Options").
		Order("created_at DESC").
		Find(&templates).Error
	if err != nil {
		return nil, err
	}

	for i := range templates {
		count, err := r.CountRecords(templates[i].ID)
		if err != nil {
			return nil, err
		}
		templates[i].RecordsCount = count
	}

	return templates, nil
}

// CountRecords 统计模板下的记录数量
func (r *TemplateRepository) CountRecords(templateID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Record{}).
		Where("template_id = ?", templateID).
		Count(&count).Error
	return count, err
}

// HasRecords 模板下是否存在记录（删除保护）
func (r *TemplateRepository) HasRecords(templateID uint) (bool, error) {
	count, err := r.CountRecords(templateID)
	return count > 0, err
}

// Count 统计模板总数
func (r *TemplateRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.Template{}).Count(&count).Error
	return count, err
}
