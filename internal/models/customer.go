package models

import (
	"time"
)

// Customer 会员（按手机号唯一，可在多个门店持有积分账户）
type Customer struct {
	ID          uint      `gorm:"primarykey" json:"id"`                             // 主键
	Phone       string    `gorm:"uniqueIndex;size:32;not null" json:"phone"`        // 手机号
	DisplayName string    `gorm:"size:128" json:"display_name"`                     // 昵称
	AvatarURL   string    `gorm:"size:512" json:"avatar_url"`                       // 头像地址
	CreatedAt   time.Time `gorm:"index" json:"created_at"`                          // 创建时间
	UpdatedAt   time.Time `gorm:"index" json:"updated_at"`                          // 更新时间
}

// TableName 指定表名
func (Customer) TableName() string {
	return "customers"
}
