package model

import "time"

// Record 一份已填写的模板实例
// template_id 创建后不可变更
type Record struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	RecordNumber string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"record_number"`
	TemplateID   uint      `gorm:"not null;index" json:"template_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// 关联
	Template *Template `gorm:"foreignKey:TemplateID" json:"template,omitempty"`
	Values   []Value   `gorm:"foreignKey:RecordID;constraint:OnDelete:CASCADE" json:"values,omitempty"`
}

// TableName 指定表名
func (Record) TableName() string {
	return "records"
}
