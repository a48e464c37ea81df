package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/HadiHz88/medical-records-api/internal/model"
	"github.com/HadiHz88/medical-records-api/internal/repository"
	"github.com/HadiHz88/medical-records-api/pkg/metrics"
	"github.com/HadiHz88/medical-records-api/pkg/redis"
	"gorm.io/gorm"
)

// OptionInput 选项提交结构
// ID 仅在模板更新的增量对账中使用，匹配既有选项
type OptionInput struct {
	ID           *uint  `json:"id"`
	OptionName   string `json:"option_name"`
	OptionValue  string `json:"option_value"`
	DisplayOrder *int   `json:"display_order"`
}

// FieldInput 字段提交结构
type FieldInput struct {
	ID           *uint         `json:"id"`
	FieldName    string        `json:"field_name"`
	FieldType    string        `json:"field_type"`
	IsRequired   bool          `json:"is_required"`
	IsMultiple   bool          `json:"is_multiple"`
	DisplayOrder *int          `json:"display_order"`
	Options      []OptionInput `json:"options"`
}

// CreateTemplateRequest 创建模板请求
type CreateTemplateRequest struct {
	Name        string       `json:"name"`
	Description *string      `json:"description"`
	Fields      []FieldInput `json:"fields"`
}

// UpdateTemplateRequest 更新模板请求
// Name/Description 为 nil 表示不修改；Fields 为 nil 表示字段不动
type UpdateTemplateRequest struct {
	Name        *string      `json:"name"`
	Description *string      `json:"description"`
	Fields      []FieldInput `json:"fields"`
}

// TemplateService 模板管理服务
// 负责模板/字段/选项的结构校验、事务性变更和安全演化规则
type TemplateService struct {
	db           *gorm.DB
	templateRepo *repository.TemplateRepository
	fieldRepo    *repository.FieldRepository
}

func NewTemplateService(db *gorm.DB, templateRepo *repository.TemplateRepository, fieldRepo *repository.FieldRepository) *TemplateService {
	return &TemplateService{
		db:           db,
		templateRepo: templateRepo,
		fieldRepo:    fieldRepo,
	}
}

func templateCacheKey(id uint) string {
	return fmt.Sprintf("template:%d", id)
}

// invalidateCache 模板结构变更后使缓存失效
func (s *TemplateService) invalidateCache(templateID uint) {
	redis.Del(context.Background(), templateCacheKey(templateID))
}

// validateFieldInput 校验单个字段提交，返回解析后的字段类型
func validateFieldInput(f *FieldInput) (model.FieldType, error) {
	if f.FieldName == "" {
		return "", &ValidationError{Message: "field_name is required"}
	}
	if len(f.FieldName) > 255 {
		return "", &ValidationError{Message: "field_name must not exceed 255 characters"}
	}

	fieldType, err := model.ParseFieldType(f.FieldType)
	if err != nil {
		return "", &ValidationError{Message: err.Error()}
	}

	if f.IsMultiple && fieldType != model.FieldTypeSelect {
		return "", &ValidationError{Message: fmt.Sprintf("is_multiple is only supported for select fields, got %s", fieldType)}
	}

	if f.DisplayOrder != nil && *f.DisplayOrder < 0 {
		return "", &ValidationError{Message: "display_order must be a non-negative integer"}
	}

	if fieldType.IsChoice() {
		// 选项类字段必须携带非空选项集合，作为结构校验失败处理
		if len(f.Options) == 0 {
			return "", &ValidationError{Message: fmt.Sprintf("field %s of type %s requires at least one option", f.FieldName, fieldType)}
		}
		for _, o := range f.Options {
			if o.OptionName == "" || o.OptionValue == "" {
				return "", &ValidationError{Message: fmt.Sprintf("options of field %s require both option_name and option_value", f.FieldName)}
			}
			if len(o.OptionName) > 255 || len(o.OptionValue) > 255 {
				return "", &ValidationError{Message: fmt.Sprintf("option name/value of field %s must not exceed 255 characters", f.FieldName)}
			}
		}
	}

	return fieldType, nil
}

func validateTemplateName(name string) error {
	if name == "" {
		return &ValidationError{Message: "name is required"}
	}
	if len(name) > 255 {
		return &ValidationError{Message: "name must not exceed 255 characters"}
	}
	return nil
}

// Create 创建模板及其字段/选项（原子操作）
// display_order 省略时默认为字段在提交中的 1-based 位置
func (s *TemplateService) Create(req *CreateTemplateRequest) (*model.Template, error) {
	if err := validateTemplateName(req.Name); err != nil {
		return nil, err
	}
	if len(req.Fields) == 0 {
		return nil, &ValidationError{Message: "fields must contain at least one entry"}
	}

	fieldTypes := make([]model.FieldType, len(req.Fields))
	for i := range req.Fields {
		fieldType, err := validateFieldInput(&req.Fields[i])
		if err != nil {
			return nil, err
		}
		fieldTypes[i] = fieldType
	}

	var templateID uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		template := model.Template{
			Name:        req.Name,
			Description: req.Description,
		}
		if err := tx.Create(&template).Error; err != nil {
			return err
		}
		templateID = template.ID

		for i := range req.Fields {
			if err := createField(tx, template.ID, &req.Fields[i], fieldTypes[i], i+1); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.TemplatesCreatedTotal.Inc()
	return s.templateRepo.FindByID(templateID)
}

// createField 在事务内创建字段及其选项
func createField(tx *gorm.DB, templateID uint, input *FieldInput, fieldType model.FieldType, position int) error {
	displayOrder := position
	if input.DisplayOrder != nil {
		displayOrder = *input.DisplayOrder
	}

	field := model.Field{
		TemplateID:   templateID,
		FieldName:    input.FieldName,
		FieldType:    fieldType,
		IsRequired:   input.IsRequired,
		IsMultiple:   input.IsMultiple,
		DisplayOrder: displayOrder,
	}
	if err := tx.Create(&field).Error; err != nil {
		return err
	}

	if fieldType.IsChoice() {
		for _, o := range input.Options {
			option := model.Option{
				FieldID:      field.ID,
				OptionName:   o.OptionName,
				OptionValue:  o.OptionValue,
				DisplayOrder: o.DisplayOrder,
			}
			if err := tx.Create(&option).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// Get 获取模板（字段按 display_order 排序，选项随字段加载）
// 启用 Redis 时走读缓存
func (s *TemplateService) Get(id uint) (*model.Template, error) {
	var cached model.Template
	if redis.GetJSON(context.Background(), templateCacheKey(id), &cached) {
		metrics.TemplateCacheHits.Inc()
		return &cached, nil
	}
	metrics.TemplateCacheMisses.Inc()

	template, err := s.templateRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "template", ID: id}
		}
		return nil, err
	}

	redis.SetJSON(context.Background(), templateCacheKey(id), template)
	return template, nil
}

// List 获取所有模板（带记录数量）
func (s *TemplateService) List() ([]model.Template, error) {
	return s.templateRepo.FindAll()
}

// Update 更新模板
//
// 字段集合的变更策略取决于模板是否已有记录：
//   - 无记录：整体替换，旧字段/选项全部删除后按提交重建（没有值引用，安全）
//   - 有记录：增量对账，带 id 的字段原地更新，无 id 的新增；
//     提交中缺席的既有字段视为删除，仍被值引用时以 Conflict 拒绝。
//     字段下的选项按同样方式对账，被引用的选项禁止删除
func (s *TemplateService) Update(id uint, req *UpdateTemplateRequest) (*model.Template, error) {
	if req.Name != nil {
		if err := validateTemplateName(*req.Name); err != nil {
			return nil, err
		}
	}

	var fieldTypes []model.FieldType
	if req.Fields != nil {
		if len(req.Fields) == 0 {
			return nil, &ValidationError{Message: "fields must contain at least one entry"}
		}
		fieldTypes = make([]model.FieldType, len(req.Fields))
		for i := range req.Fields {
			fieldType, err := validateFieldInput(&req.Fields[i])
			if err != nil {
				return nil, err
			}
			fieldTypes[i] = fieldType
		}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var template model.Template
		if err := tx.First(&template, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "template", ID: id}
			}
			return err
		}

		updates := map[string]interface{}{}
		if req.Name != nil {
			updates["name"] = *req.Name
		}
		if req.Description != nil {
			updates["description"] = *req.Description
		}
		if len(updates) > 0 {
			if err := tx.Model(&template).Updates(updates).Error; err != nil {
				return err
			}
		}

		if req.Fields == nil {
			return nil
		}

		var recordCount int64
		if err := tx.Model(&model.Record{}).
			Where("template_id = ?", id).
			Count(&recordCount).Error; err != nil {
			return err
		}

		if recordCount == 0 {
			return replaceFields(tx, id, req.Fields, fieldTypes)
		}
		return reconcileFields(tx, id, req.Fields, fieldTypes)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCache(id)
	return s.templateRepo.FindByID(id)
}

// replaceFields 整体替换模板字段（仅在模板无记录时安全）
func replaceFields(tx *gorm.DB, templateID uint, inputs []FieldInput, fieldTypes []model.FieldType) error {
	var fieldIDs []uint
	if err := tx.Model(&model.Field{}).
		Where("template_id = ?", templateID).
		Pluck("id", &fieldIDs).Error; err != nil {
		return err
	}

	if len(fieldIDs) > 0 {
		if err := tx.Where("field_id IN ?", fieldIDs).Delete(&model.Option{}).Error; err != nil {
			return err
		}
		if err := tx.Where("template_id = ?", templateID).Delete(&model.Field{}).Error; err != nil {
			return err
		}
	}

	for i := range inputs {
		if err := createField(tx, templateID, &inputs[i], fieldTypes[i], i+1); err != nil {
			return err
		}
	}
	return nil
}

// reconcileFields 增量对账模板字段（模板已有记录时的安全演化路径）
func reconcileFields(tx *gorm.DB, templateID uint, inputs []FieldInput, fieldTypes []model.FieldType) error {
	var existing []model.Field
	if err := tx.Where("template_id = ?", templateID).
		Preload("Options").
		Find(&existing).Error; err != nil {
		return err
	}

	existingByID := make(map[uint]*model.Field, len(existing))
	for i := range existing {
		existingByID[existing[i].ID] = &existing[i]
	}

	seen := make(map[uint]bool, len(inputs))
	for i := range inputs {
		input := &inputs[i]
		if input.ID == nil {
			// 新增字段
			if err := createField(tx, templateID, input, fieldTypes[i], i+1); err != nil {
				return err
			}
			continue
		}

		field, ok := existingByID[*input.ID]
		if !ok {
			return &ValidationError{Message: fmt.Sprintf("field %d does not belong to template %d", *input.ID, templateID)}
		}
		seen[field.ID] = true

		displayOrder := field.DisplayOrder
		if input.DisplayOrder != nil {
			displayOrder = *input.DisplayOrder
		}

		if err := tx.Model(&model.Field{}).
			Where("id = ?", field.ID).
			Updates(map[string]interface{}{
				"field_name":    input.FieldName,
				"field_type":    fieldTypes[i],
				"is_required":   input.IsRequired,
				"is_multiple":   input.IsMultiple,
				"display_order": displayOrder,
			}).Error; err != nil {
			return err
		}

		if err := reconcileOptions(tx, field, input.Options, fieldTypes[i]); err != nil {
			return err
		}
	}

	// 提交中缺席的既有字段：仍被值引用时拒绝删除
	for i := range existing {
		field := &existing[i]
		if seen[field.ID] {
			continue
		}

		var valueCount int64
		if err := tx.Model(&model.Value{}).
			Where("field_id = ?", field.ID).
			Count(&valueCount).Error; err != nil {
			return err
		}
		if valueCount > 0 {
			return &ConflictError{Message: fmt.Sprintf("cannot delete field %s: %d values still reference it", field.FieldName, valueCount)}
		}

		if err := tx.Where("field_id = ?", field.ID).Delete(&model.Option{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.Field{}, field.ID).Error; err != nil {
			return err
		}
	}

	return nil
}

// reconcileOptions 对账字段的选项集合
// 带 id 的选项原地更新，无 id 的新增，缺席的删除；被值引用的选项禁止删除
func reconcileOptions(tx *gorm.DB, field *model.Field, inputs []OptionInput, fieldType model.FieldType) error {
	if !fieldType.IsChoice() {
		// 字段改为非选项类型：旧选项全部作废，但被引用时同样拒绝
		for i := range field.Options {
			if err := deleteOptionGuarded(tx, &field.Options[i]); err != nil {
				return err
			}
		}
		return nil
	}

	existingByID := make(map[uint]*model.Option, len(field.Options))
	for i := range field.Options {
		existingByID[field.Options[i].ID] = &field.Options[i]
	}

	seen := make(map[uint]bool, len(inputs))
	for _, input := range inputs {
		if input.ID == nil {
			option := model.Option{
				FieldID:      field.ID,
				OptionName:   input.OptionName,
				OptionValue:  input.OptionValue,
				DisplayOrder: input.DisplayOrder,
			}
			if err := tx.Create(&option).Error; err != nil {
				return err
			}
			continue
		}

		option, ok := existingByID[*input.ID]
		if !ok {
			return &ValidationError{Message: fmt.Sprintf("option %d does not belong to field %s", *input.ID, field.FieldName)}
		}
		seen[option.ID] = true

		updates := map[string]interface{}{
			"option_name":  input.OptionName,
			"option_value": input.OptionValue,
		}
		if input.DisplayOrder != nil {
			updates["display_order"] = *input.DisplayOrder
		}
		if err := tx.Model(&model.Option{}).
			Where("id = ?", option.ID).
			Updates(updates).Error; err != nil {
			return err
		}
	}

	for i := range field.Options {
		option := &field.Options[i]
		if seen[option.ID] {
			continue
		}
		if err := deleteOptionGuarded(tx, option); err != nil {
			return err
		}
	}

	return nil
}

// deleteOptionGuarded 删除选项，被值或多选行引用时拒绝
func deleteOptionGuarded(tx *gorm.DB, option *model.Option) error {
	var direct int64
	if err := tx.Model(&model.Value{}).
		Where("option_id = ?", option.ID).
		Count(&direct).Error; err != nil {
		return err
	}

	var multiple int64
	if err := tx.Model(&model.MultipleSelection{}).
		Where("option_id = ?", option.ID).
		Count(&multiple).Error; err != nil {
		return err
	}

	if direct+multiple > 0 {
		return &ConflictError{Message: fmt.Sprintf("cannot delete option %s: %d values still reference it", option.OptionName, direct+multiple)}
	}

	return tx.Delete(&model.Option{}, option.ID).Error
}

// Delete 删除模板
// 模板下存在记录时以 Conflict 拒绝（数据保护）；否则级联删除字段和选项
func (s *TemplateService) Delete(id uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var template model.Template
		if err := tx.First(&template, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "template", ID: id}
			}
			return err
		}

		var recordCount int64
		if err := tx.Model(&model.Record{}).
			Where("template_id = ?", id).
			Count(&recordCount).Error; err != nil {
			return err
		}
		if recordCount > 0 {
			return &ConflictError{Message: "cannot delete template that has records associated with it"}
		}

		var fieldIDs []uint
		if err := tx.Model(&model.Field{}).
			Where("template_id = ?", id).
			Pluck("id", &fieldIDs).Error; err != nil {
			return err
		}
		if len(fieldIDs) > 0 {
			if err := tx.Where("field_id IN ?", fieldIDs).Delete(&model.Option{}).Error; err != nil {
				return err
			}
			if err := tx.Where("template_id = ?", id).Delete(&model.Field{}).Error; err != nil {
				return err
			}
		}

		// 授权随模板一并清理
		if err := tx.Where("template_id = ?", id).Delete(&model.Permission{}).Error; err != nil {
			return err
		}

		return tx.Delete(&model.Template{}, id).Error
	})
	if err != nil {
		return err
	}

	s.invalidateCache(id)
	return nil
}

// ListFields 获取模板下的字段（按 display_order 升序）
func (s *TemplateService) ListFields(templateID uint) ([]model.Field, error) {
	if err := s.ensureTemplateExists(templateID); err != nil {
		return nil, err
	}
	return s.fieldRepo.FindByTemplateID(templateID)
}

// AddField 向既有模板追加一个字段
func (s *TemplateService) AddField(templateID uint, input *FieldInput) (*model.Field, error) {
	fieldType, err := validateFieldInput(input)
	if err != nil {
		return nil, err
	}
	if err := s.ensureTemplateExists(templateID); err != nil {
		return nil, err
	}

	var fieldID uint
	err = s.db.Transaction(func(tx *gorm.DB) error {
		displayOrder := 1
		if input.DisplayOrder != nil {
			displayOrder = *input.DisplayOrder
		} else {
			var count int64
			if err := tx.Model(&model.Field{}).
				Where("template_id = ?", templateID).
				Count(&count).Error; err != nil {
				return err
			}
			displayOrder = int(count) + 1
		}

		field := model.Field{
			TemplateID:   templateID,
			FieldName:    input.FieldName,
			FieldType:    fieldType,
			IsRequired:   input.IsRequired,
			IsMultiple:   input.IsMultiple,
			DisplayOrder: displayOrder,
		}
		if err := tx.Create(&field).Error; err != nil {
			return err
		}
		fieldID = field.ID

		if fieldType.IsChoice() {
			for _, o := range input.Options {
				option := model.Option{
					FieldID:      field.ID,
					OptionName:   o.OptionName,
					OptionValue:  o.OptionValue,
					DisplayOrder: o.DisplayOrder,
				}
				if err := tx.Create(&option).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCache(templateID)
	return s.fieldRepo.FindByID(fieldID)
}

// UpdateField 更新单个字段（选项按增量对账）
func (s *TemplateService) UpdateField(templateID, fieldID uint, input *FieldInput) (*model.Field, error) {
	fieldType, err := validateFieldInput(input)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var field model.Field
		if err := tx.Preload("Options").First(&field, fieldID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "field", ID: fieldID}
			}
			return err
		}
		if field.TemplateID != templateID {
			return &NotFoundError{Resource: "field", ID: fieldID}
		}

		displayOrder := field.DisplayOrder
		if input.DisplayOrder != nil {
			displayOrder = *input.DisplayOrder
		}

		if err := tx.Model(&model.Field{}).
			Where("id = ?", field.ID).
			Updates(map[string]interface{}{
				"field_name":    input.FieldName,
				"field_type":    fieldType,
				"is_required":   input.IsRequired,
				"is_multiple":   input.IsMultiple,
				"display_order": displayOrder,
			}).Error; err != nil {
			return err
		}

		return reconcileOptions(tx, &field, input.Options, fieldType)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCache(templateID)
	return s.fieldRepo.FindByID(fieldID)
}

// DeleteField 删除单个字段
// 字段仍被值引用时以 Conflict 拒绝（模板已有数据的安全演化规则）
func (s *TemplateService) DeleteField(templateID, fieldID uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var field model.Field
		if err := tx.First(&field, fieldID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "field", ID: fieldID}
			}
			return err
		}
		if field.TemplateID != templateID {
			return &NotFoundError{Resource: "field", ID: fieldID}
		}

		var valueCount int64
		if err := tx.Model(&model.Value{}).
			Where("field_id = ?", fieldID).
			Count(&valueCount).Error; err != nil {
			return err
		}
		if valueCount > 0 {
			return &ConflictError{Message: fmt.Sprintf("cannot delete field %s: %d values still reference it", field.FieldName, valueCount)}
		}

		if err := tx.Where("field_id = ?", fieldID).Delete(&model.Option{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Field{}, fieldID).Error
	})
	if err != nil {
		return err
	}

	s.invalidateCache(templateID)
	return nil
}

func (s *TemplateService) ensureTemplateExists(id uint) error {
	var count int64
	if err := s.db.Model(&model.Template{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return &NotFoundError{Resource: "template", ID: id}
	}
	return nil
}
