package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/HadiHz88/medical-records-api/internal/model"
	"github.com/HadiHz88/medical-records-api/internal/repository"
	"github.com/HadiHz88/medical-records-api/pkg/metrics"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ValueInput 记录中单个字段的提交
// 单值字段用 value，多选字段用 values
type ValueInput struct {
	FieldID uint     `json:"field_id"`
	Value   *string  `json:"value"`
	Values  []string `json:"values"`
}

// CreateRecordRequest 创建记录请求
type CreateRecordRequest struct {
	TemplateID uint         `json:"template_id"`
	Fields     []ValueInput `json:"fields"`
}

// UpdateRecordRequest 更新记录请求
// 提交即全量：既有值未出现在本次提交中的会被删除
type UpdateRecordRequest struct {
	Fields []ValueInput `json:"fields"`
}

// RecordService 记录管理服务
// 负责按模板结构校验提交、事务性写入值和多选项
type RecordService struct {
	db         *gorm.DB
	recordRepo *repository.RecordRepository
}

func NewRecordService(db *gorm.DB, recordRepo *repository.RecordRepository) *RecordService {
	return &RecordService{
		db:         db,
		recordRepo: recordRepo,
	}
}

// generateRecordNumber 生成记录编号
func generateRecordNumber() string {
	return fmt.Sprintf("REC-%s%s", time.Now().Format("20060102150405"), uuid.New().String()[:8])
}

// loadSchema 在事务内加载模板及其字段/选项
func loadSchema(tx *gorm.DB, templateID uint) (*model.Template, map[uint]*model.Field, error) {
	var template model.Template
	err := tx.Preload("Fields", func(db *gorm.DB) *gorm.DB {
		return db.Order("display_order ASC")
	}).
		Preload("Fields.Options").
		First(&template, templateID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, &NotFoundError{Resource: "template", ID: templateID}
		}
		return nil, nil, err
	}

	fieldByID := make(map[uint]*model.Field, len(template.Fields))
	for i := range template.Fields {
		fieldByID[template.Fields[i].ID] = &template.Fields[i]
	}
	return &template, fieldByID, nil
}

// checkRequiredCoverage 必填完整性预检：模板上每个必填字段都要有有效提交
// 在写入任何值之前执行，保证失败时不产生半成品记录
func checkRequiredCoverage(template *model.Template, inputs []ValueInput) error {
	submitted := make(map[uint]ValueSubmission, len(inputs))
	for _, input := range inputs {
		submitted[input.FieldID] = ValueSubmission{Value: input.Value, Values: input.Values}
	}

	for i := range template.Fields {
		field := &template.Fields[i]
		if !field.IsRequired {
			continue
		}
		sub, ok := submitted[field.ID]
		if !ok || !submissionCovers(field, sub) {
			return &RequiredFieldError{FieldName: field.FieldName}
		}
	}
	return nil
}

// countValidationFailure 校验失败计数（按失败类型）
func countValidationFailure(err error) {
	var rf *RequiredFieldError
	var io *InvalidOptionError
	switch {
	case errors.As(err, &rf):
		metrics.ValidationFailuresTotal.WithLabelValues("required_field_missing").Inc()
	case errors.As(err, &io):
		metrics.ValidationFailuresTotal.WithLabelValues("invalid_option_value").Inc()
	default:
		if IsDomainError(err) {
			metrics.ValidationFailuresTotal.WithLabelValues("validation_failed").Inc()
		}
	}
}

// Create 创建记录（全量校验通过后原子写入，任何失败整体回滚）
func (s *RecordService) Create(req *CreateRecordRequest) (*model.Record, error) {
	if len(req.Fields) == 0 {
		return nil, &ValidationError{Message: "fields must be a non-empty array"}
	}

	var recordID uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		template, fieldByID, err := loadSchema(tx, req.TemplateID)
		if err != nil {
			return err
		}

		if err := checkRequiredCoverage(template, req.Fields); err != nil {
			return err
		}

		record := model.Record{
			RecordNumber: generateRecordNumber(),
			TemplateID:   template.ID,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		recordID = record.ID

		// 按提交顺序逐个校验并写入
		for _, input := range req.Fields {
			field, ok := fieldByID[input.FieldID]
			if !ok {
				return &ValidationError{Message: fmt.Sprintf("field %d does not belong to template %d", input.FieldID, template.ID)}
			}

			normalized, err := ValidateValue(field, ValueSubmission{Value: input.Value, Values: input.Values})
			if err != nil {
				return err
			}
			if normalized.Empty {
				// 可选字段未提交：稀疏存储，不产生行
				continue
			}

			if err := insertValue(tx, record.ID, field.ID, normalized); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		countValidationFailure(err)
		return nil, err
	}

	metrics.RecordsCreatedTotal.WithLabelValues(strconv.FormatUint(uint64(req.TemplateID), 10)).Inc()
	return s.recordRepo.FindByID(recordID)
}

// insertValue 在事务内写入一个规范化的值（多选时附带多选行）
func insertValue(tx *gorm.DB, recordID, fieldID uint, normalized *NormalizedValue) error {
	value := model.Value{
		RecordID: recordID,
		FieldID:  fieldID,
		Value:    normalized.Value,
		OptionID: normalized.OptionID,
	}
	if err := tx.Create(&value).Error; err != nil {
		return err
	}

	for _, optionID := range normalized.OptionIDs {
		selection := model.MultipleSelection{
			ValueID:  value.ID,
			OptionID: optionID,
		}
		if err := tx.Create(&selection).Error; err != nil {
			return err
		}
	}
	return nil
}

// Get 获取记录（完整加载模板、值、字段、选项、多选项）
func (s *RecordService) Get(id uint) (*model.Record, error) {
	record, err := s.recordRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "record", ID: id}
		}
		return nil, err
	}
	return record, nil
}

// List 获取记录列表（templateID 为 0 时不过滤）
func (s *RecordService) List(templateID uint) ([]model.Record, error) {
	return s.recordRepo.FindAll(templateID)
}

// Update 更新记录
//
// 提交是权威的全量覆盖而非合并：
//   - 提交中的字段：有既有值则原地更新，没有则新建
//   - 既有值对应的字段未出现在提交中：连同其多选行一并删除
//
// 必填完整性按当前模板结构重新检查（模板可能已演化）
func (s *RecordService) Update(id uint, req *UpdateRecordRequest) (*model.Record, error) {
	if len(req.Fields) == 0 {
		return nil, &ValidationError{Message: "fields must be a non-empty array"}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var record model.Record
		if err := tx.First(&record, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "record", ID: id}
			}
			return err
		}

		template, fieldByID, err := loadSchema(tx, record.TemplateID)
		if err != nil {
			return err
		}

		if err := checkRequiredCoverage(template, req.Fields); err != nil {
			return err
		}

		var existingValues []model.Value
		if err := tx.Where("record_id = ?", record.ID).Find(&existingValues).Error; err != nil {
			return err
		}
		existingByField := make(map[uint]*model.Value, len(existingValues))
		for i := range existingValues {
			existingByField[existingValues[i].FieldID] = &existingValues[i]
		}

		submitted := make(map[uint]bool, len(req.Fields))
		for _, input := range req.Fields {
			field, ok := fieldByID[input.FieldID]
			if !ok {
				return &ValidationError{Message: fmt.Sprintf("field %d does not belong to template %d", input.FieldID, template.ID)}
			}
			submitted[field.ID] = true

			normalized, err := ValidateValue(field, ValueSubmission{Value: input.Value, Values: input.Values})
			if err != nil {
				return err
			}

			existing := existingByField[field.ID]

			if normalized.Empty {
				// 可选字段本次未提交：删除既有值
				if existing != nil {
					if err := deleteValue(tx, existing); err != nil {
						return err
					}
				}
				continue
			}

			if existing == nil {
				if err := insertValue(tx, record.ID, field.ID, normalized); err != nil {
					return err
				}
				continue
			}

			// 原地更新：先替换值列，再以删除重建的方式刷新选项关联
			if err := tx.Model(&model.Value{}).
				Where("id = ?", existing.ID).
				Updates(map[string]interface{}{
					"value":     normalized.Value,
					"option_id": normalized.OptionID,
				}).Error; err != nil {
				return err
			}
			if err := tx.Where("value_id = ?", existing.ID).Delete(&model.MultipleSelection{}).Error; err != nil {
				return err
			}
			for _, optionID := range normalized.OptionIDs {
				selection := model.MultipleSelection{
					ValueID:  existing.ID,
					OptionID: optionID,
				}
				if err := tx.Create(&selection).Error; err != nil {
					return err
				}
			}
		}

		// 提交中缺席的既有值：整体覆盖语义，删除
		for i := range existingValues {
			if submitted[existingValues[i].FieldID] {
				continue
			}
			if err := deleteValue(tx, &existingValues[i]); err != nil {
				return err
			}
		}

		// 记录本身只刷新更新时间
		return tx.Model(&model.Record{}).
			Where("id = ?", record.ID).
			Update("updated_at", time.Now()).Error
	})
	if err != nil {
		countValidationFailure(err)
		return nil, err
	}

	return s.recordRepo.FindByID(id)
}

// deleteValue 在事务内删除一个值及其多选行
func deleteValue(tx *gorm.DB, value *model.Value) error {
	if err := tx.Where("value_id = ?", value.ID).Delete(&model.MultipleSelection{}).Error; err != nil {
		return err
	}
	return tx.Delete(&model.Value{}, value.ID).Error
}

// Delete 删除记录（显式删除值和多选行后删除记录本身，整体原子）
func (s *RecordService) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var record model.Record
		if err := tx.First(&record, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "record", ID: id}
			}
			return err
		}

		var valueIDs []uint
		if err := tx.Model(&model.Value{}).
			Where("record_id = ?", record.ID).
			Pluck("id", &valueIDs).Error; err != nil {
			return err
		}
		if len(valueIDs) > 0 {
			if err := tx.Where("value_id IN ?", valueIDs).Delete(&model.MultipleSelection{}).Error; err != nil {
				return err
			}
			if err := tx.Where("record_id = ?", record.ID).Delete(&model.Value{}).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&model.Record{}, record.ID).Error
	})
}

// ListValues 获取记录下的所有值
func (s *RecordService) ListValues(recordID uint) ([]model.Value, error) {
	if _, err := s.Get(recordID); err != nil {
		return nil, err
	}
	return s.recordRepo.FindValuesByRecordID(recordID)
}
