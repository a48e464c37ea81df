package model

import "time"

// Template 表单模板
// 模板由管理员定义，持有一组有序字段；存在关联记录时禁止删除
type Template struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Description *string   `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// 关联
	Fields  []Field  `gorm:"foreignKey:TemplateID;constraint:OnDelete:CASCADE" json:"fields,omitempty"`
	Records []Record `gorm:"foreignKey:TemplateID;constraint:OnDelete:CASCADE" json:"records,omitempty"`

	// RecordsCount 关联记录数量（查询时填充，不落库）
	RecordsCount int64 `gorm:"-" json:"records_count"`
}

// TableName 指定表名
func (Template) TableName() string {
	return "templates"
}
