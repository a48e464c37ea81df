package repository

import (
	"github.com/HadiHz88/medical-records-api/internal/model"
	"gorm.io/gorm"
)

type FieldRepository struct {
	db *gorm.DB
}

func NewFieldRepository(db *gorm.DB) *FieldRepository {
	return &FieldRepository{db: db}
}

// FindByID 根据ID查找字段（带选项）
func (r *FieldRepository) FindByID(id uint) (*model.Field, error) {
	var field model.Field
	err := r.db.Preload("Options").First(&field, id).Error
	if err != nil {
		return nil, err
	}
	return &field, nil
}

// FindByTemplateID 查找模板下的所有字段（按 display_order 升序）
func (r *FieldRepository) FindByTemplateID(templateID uint) ([]model.Field, error) {
	var fields []model.Field
	err := r.db.Where("template_id = ?", templateID).
		Preload("Options").
		Order("display_order ASC").
		Find(&fields).Error
	return fields, err
}

// CountValues 统计引用该字段的值数量（字段删除保护）
func (r *FieldRepository) CountValues(fieldID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Value{}).
		Where("field_id = ?", fieldID).
		Count(&count).Error
	return count, err
}

// CountOptionReferences 统计选项被值引用的数量（含单选回填和多选行）
// 选项删除保护：被引用的选项不允许删除，避免悬空引用
func (r *FieldRepository) CountOptionReferences(optionID uint) (int64, error) {
	var direct int64
	if err := r.db.Model(&model.Value{}).
		Where("option_id = ?", optionID).
		Count(&direct).Error; err != nil {
		return 0, err
	}

	var multiple int64
	if err := r.db.Model(&model.MultipleSelection{}).
		Where("option_id = ?", optionID).
		Count(&multiple).Error; err != nil {
		return 0, err
	}

	return direct + multiple, nil
}
