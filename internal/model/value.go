package model

import "time"

// Value 记录中某个字段的存储值
// 多选字段的 Value 仅作为容器（value 为 null），实际选中项存 multiple_selections；
// 单选类字段（select/radio/checkbox）命中选项后回填 option_id
type Value struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RecordID  uint      `gorm:"not null;index" json:"record_id"`
	FieldID   uint      `gorm:"not null;index" json:"field_id"`
	Value     *string   `gorm:"type:text" json:"value"`
	OptionID  *uint     `gorm:"index" json:"option_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 关联
	Record             *Record             `gorm:"foreignKey:RecordID" json:"record,omitempty"`
	Field              *Field              `gorm:"foreignKey:FieldID" json:"field,omitempty"`
	Option             *Option             `gorm:"foreignKey:OptionID" json:"option,omitempty"`
	MultipleSelections []MultipleSelection `gorm:"foreignKey:ValueID;constraint:OnDelete:CASCADE" json:"multiple_selections,omitempty"`
}

// TableName 指定表名
func (Value) TableName() string {
	return "values"
}
