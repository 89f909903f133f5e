package models

import "time"

// Branch 门店
type Branch struct {
	ID        uint      `gorm:"primarykey" json:"id"`                      // 主键
	Slug      string    `gorm:"uniqueIndex;size:128;not null" json:"slug"` // 门店标识
	Name      string    `gorm:"size:255;not null" json:"name"`             // 门店名称
	IsActive  bool      `gorm:"not null" json:"is_active"`                 // 是否营业
	CreatedAt time.Time `gorm:"index" json:"created_at"`                   // 创建时间
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`                   // 更新时间
}

// TableName 指定表名
func (Branch) TableName() string {
	return "branches"
}
