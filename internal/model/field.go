package model

import (
	"fmt"
	"time"
)

// FieldType 字段类型（闭合集合）
// 外部输入的字符串只在 ParseFieldType 这一处转换为 FieldType，
// 内部代码统一使用常量，避免无效枚举串扩散
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeNumber   FieldType = "number"
	FieldTypeDate     FieldType = "date"
	FieldTypeBoolean  FieldType = "boolean"
	FieldTypeSelect   FieldType = "select"
	FieldTypeRadio    FieldType = "radio"
	FieldTypeCheckbox FieldType = "checkbox"
)

// ParseFieldType 解析字段类型字符串
func ParseFieldType(s string) (FieldType, error) {
	switch t := FieldType(s); t {
	case FieldTypeText, FieldTypeNumber, FieldTypeDate, FieldTypeBoolean,
		FieldTypeSelect, FieldTypeRadio, FieldTypeCheckbox:
		return t, nil
	default:
		return "", fmt.Errorf("invalid field type: %q (allowed: text, number, date, boolean, select, radio, checkbox)", s)
	}
}

// IsChoice 是否为选项类字段（取值必须命中选项集合）
func (t FieldType) IsChoice() bool {
	return t == FieldTypeSelect || t == FieldTypeRadio || t == FieldTypeCheckbox
}

// Field 模板字段
type Field struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	TemplateID uint      `gorm:"not null;index" json:"template_id"`
	FieldName  string    `gorm:"type:varchar(255);not null" json:"field_name"`
	FieldType  FieldType `gorm:"type:varchar(20);not null" json:"field_type"`
	IsRequired bool      `gorm:"not null;default:false" json:"is_required"`
	// IsMultiple 多选标记，仅 select 类型有效；多选提交存入 multiple_selections 表
	IsMultiple   bool      `gorm:"not null;default:false" json:"is_multiple"`
	DisplayOrder int       `gorm:"not null;default:1" json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// 关联
	Template *Template `gorm:"foreignKey:TemplateID" json:"template,omitempty"`
	Options  []Option  `gorm:"foreignKey:FieldID;constraint:OnDelete:CASCADE" json:"options,omitempty"`
}

// TableName 指定表名
func (Field) TableName() string {
	return "fields"
}
