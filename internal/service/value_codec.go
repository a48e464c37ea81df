package service

import (
	"github.com/HadiHz88/medical-records-api/internal/model"
)

// ValueSubmission 一个字段的提交形态
// 单值字段使用 Value，多选字段使用 Values
type ValueSubmission struct {
	Value  *string
	Values []string
}

// NormalizedValue 校验通过后的规范化结果
// Empty 为 true 表示可选字段未提交，不产生存储行（稀疏存储）
type NormalizedValue struct {
	// Empty 未提交（可选字段跳过存储）
	Empty bool

	// Multiple 多选结果，OptionIDs 按提交顺序排列，重复提交各占一行
	Multiple  bool
	OptionIDs []uint

	// 单值结果；选项类字段回填 OptionID
	Value    *string
	OptionID *uint
}

// isMultiSelect 是否为多选字段（仅 select 类型支持多选标记）
func isMultiSelect(field *model.Field) bool {
	return field.FieldType == model.FieldTypeSelect && field.IsMultiple
}

// ValidateValue 按字段定义校验并规范化一次提交
//
// 规则（按顺序）：
//  1. 必填字段无有效提交 -> RequiredFieldError
//  2. 多选字段：values 中每个条目必须命中该字段某个选项的 option_value，
//     全部解析为 option_id 并保持提交顺序（不去重）
//  3. 单选类字段（select/radio/checkbox）：value 必须命中某个选项，回填 option_id
//  4. 其余类型（text/number/date/boolean）：value 原样存储，不做类型转换
//  5. 可选字段未提交 -> Empty，不产生存储行
func ValidateValue(field *model.Field, sub ValueSubmission) (*NormalizedValue, error) {
	if isMultiSelect(field) {
		return validateMultiple(field, sub.Values)
	}
	return validateSingle(field, sub.Value)
}

func validateMultiple(field *model.Field, values []string) (*NormalizedValue, error) {
	if len(values) == 0 {
		if field.IsRequired {
			return nil, &RequiredFieldError{FieldName: field.FieldName}
		}
		return &NormalizedValue{Empty: true}, nil
	}

	optionIDs := make([]uint, 0, len(values))
	for _, v := range values {
		option := matchOption(field, v)
		if option == nil {
			return nil, &InvalidOptionError{FieldName: field.FieldName, Value: v}
		}
		optionIDs = append(optionIDs, option.ID)
	}

	return &NormalizedValue{Multiple: true, OptionIDs: optionIDs}, nil
}

func validateSingle(field *model.Field, value *string) (*NormalizedValue, error) {
	if value == nil || *value == "" {
		if field.IsRequired {
			return nil, &RequiredFieldError{FieldName: field.FieldName}
		}
		return &NormalizedValue{Empty: true}, nil
	}

	normalized := &NormalizedValue{Value: value}

	if field.FieldType.IsChoice() {
		option := matchOption(field, *value)
		if option == nil {
			return nil, &InvalidOptionError{FieldName: field.FieldName, Value: *value}
		}
		optionID := option.ID
		normalized.OptionID = &optionID
	}

	return normalized, nil
}

// matchOption 在字段的选项集合中按 option_value 精确匹配
func matchOption(field *model.Field, value string) *model.Option {
	for i := range field.Options {
		if field.Options[i].OptionValue == value {
			return &field.Options[i]
		}
	}
	return nil
}

// submissionCovers 提交是否覆盖了该字段（必填完整性预检用）
func submissionCovers(field *model.Field, sub ValueSubmission) bool {
	if isMultiSelect(field) {
		return len(sub.Values) > 0
	}
	return sub.Value != nil && *sub.Value != ""
}
