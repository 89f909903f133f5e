package models

import (
	"time"

	"gorm.io/gorm"
)

// CouponTemplate 可兑换优惠券模板
type CouponTemplate struct {
	ID                 uint           `gorm:"primarykey" json:"id"`                                      // 主键
	Name               string         `gorm:"size:255;not null" json:"name"`                             // 名称
	RewardType         string         `gorm:"size:32;not null" json:"reward_type"`                       // 奖励类型
	RewardValue        Money          `gorm:"type:decimal(20,2);not null;default:0" json:"reward_value"` // 奖励数值（金额或百分比）
	PointsCost         int64          `gorm:"not null;index" json:"points_cost"`                         // 兑换所需积分
	MaxRedemptions     *int64         `json:"max_redemptions"`                                           // 发放上限（空为不限）
	CurrentRedemptions int64          `gorm:"not null;default:0" json:"current_redemptions"`             // 已兑换数量
	ValidDays          int            `gorm:"not null;default:30" json:"valid_days"`                     // 领取后有效天数
	ExpiresAt          *time.Time     `gorm:"index" json:"expires_at"`                                   // 模板失效时间
	BranchID           *uint          `gorm:"index" json:"branch_id"`                                    // 适用门店（空为全部门店）
	IsActive           bool           `gorm:"not null" json:"is_active"`                                 // 是否启用
	CreatedAt          time.Time      `gorm:"index" json:"created_at"`                                   // 创建时间
	UpdatedAt          time.Time      `gorm:"index" json:"updated_at"`                                   // 更新时间
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`                                            // 软删除时间
}

// TableName 指定表名
func (CouponTemplate) TableName() string {
	return "coupon_templates"
}

// IsExpiredAt 模板在给定时间是否已过期
func (t CouponTemplate) IsExpiredAt(now time.Time) bool {
	return t.ExpiresAt != nil && now.After(*t.ExpiresAt)
}

// SupplyExhausted 是否已达发放上限
func (t CouponTemplate) SupplyExhausted() bool {
	return t.MaxRedemptions != nil && t.CurrentRedemptions >= *t.MaxRedemptions
}

// AvailableAtBranch 是否可在指定门店兑换
func (t CouponTemplate) AvailableAtBranch(branchID uint) bool {
	return t.BranchID == nil || *t.BranchID == branchID
}
