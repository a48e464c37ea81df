package model

import "time"

// MultipleSelection 多选字段提交中的一个选中项
// option_id 必须属于所属 Value 对应字段的选项集合
type MultipleSelection struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ValueID   uint      `gorm:"not null;index" json:"value_id"`
	OptionID  uint      `gorm:"not null;index" json:"option_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 关联
	Value  *Value  `gorm:"foreignKey:ValueID" json:"value,omitempty"`
	Option *Option `gorm:"foreignKey:OptionID" json:"option,omitempty"`
}

// TableName 指定表名
func (MultipleSelection) TableName() string {
	return "multiple_selections"
}
