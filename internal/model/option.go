package model

import "time"

// Option 选项类字段的一个可选值
// option_value 是提交匹配用的规范值，option_name 是展示名
type Option struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	FieldID      uint      `gorm:"not null;index" json:"field_id"`
	OptionName   string    `gorm:"type:varchar(255);not null" json:"option_name"`
	OptionValue  string    `gorm:"type:varchar(255);not null" json:"option_value"`
	DisplayOrder *int      `json:"display_order,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// 关联
	Field *Field `gorm:"foreignKey:FieldID" json:"field,omitempty"`
}

// TableName 指定表名
func (Option) TableName() string {
	return "options"
}
