package model

import "time"

// Permission 用户对模板的访问授权
type Permission struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index;uniqueIndex:uq_permissions_user_template" json:"user_id"`
	TemplateID uint      `gorm:"not null;index;uniqueIndex:uq_permissions_user_template" json:"template_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// 关联
	User     *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Template *Template `gorm:"foreignKey:TemplateID" json:"template,omitempty"`
}

// TableName 指定表名
func (Permission) TableName() string {
	return "permissions"
}
