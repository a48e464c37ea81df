package repository

import (
	"github.com/HadiHz88/medical-records-api/internal/model"
	"gorm.io/gorm"
)

type RecordRepository struct {
	db *gorm.DB
}

func NewRecordRepository(db *gorm.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// FindByID 根据ID查找记录（完整加载模板、值、字段、选项和多选项）
func (r *RecordRepository) FindByID(id uint) (*model.Record, error) {
	var record model.Record
	err := r.db.
		Preload("Template").
		Preload("Values.Field").
		Preload("Values.Option").
		Preload("Values.MultipleSelections.Option").
		First(&record, id).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// FindAll 查找所有记录（可按模板过滤）
func (r *RecordRepository) FindAll(templateID uint) ([]model.Record, error) {
	var records []model.Record
	query := r.db.
		Preload("Template").
		Preload("Values.Field").
		Preload("Values.Option").
		Preload("Values.MultipleSelections.Option")
	if templateID > 0 {
		query = query.Where("template_id = ?", templateID)
	}
	err := query.Order("created_at DESC").Find(&records).Error
	return records, err
}

// FindValuesByRecordID 查找记录下的所有值
func (r *RecordRepository) FindValuesByRecordID(recordID uint) ([]model.Value, error) {
	var values []model.Value
	err := r.db.Where("record_id = ?", recordID).
		Preload("Field").
		Preload("Option").
		Preload("MultipleSelections.Option").
		Find(&values).Error
	return values, err
}

// Count 统计记录总数
func (r *RecordRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.Record{}).Count(&count).Error
	return count, err
}
