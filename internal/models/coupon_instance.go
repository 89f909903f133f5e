package models

import (
	"time"

	"github.com/washpoint-loyalty/internal/constants"
)

// CouponInstance 已发放的优惠券
type CouponInstance struct {
	ID             uint            `gorm:"primarykey" json:"id"`                                                                                         // 主键
	Code           string          `gorm:"uniqueIndex;size:32;not null" json:"code"`                                                                     // 券码
	CustomerID     uint            `gorm:"not null;index:idx_coupon_customer_branch;uniqueIndex:idx_coupon_customer_idem,priority:1" json:"customer_id"` // 会员ID
	BranchID       uint            `gorm:"not null;index:idx_coupon_customer_branch" json:"branch_id"`                                                   // 发放门店
	TemplateID     uint            `gorm:"not null;index" json:"template_id"`                                                                            // 模板ID
	Template       *CouponTemplate `gorm:"foreignKey:TemplateID" json:"template,omitempty"`                                                              // 模板
	Status         string          `gorm:"size:16;not null;index" json:"status"`                                                                         // 状态
	ExpiresAt      time.Time       `gorm:"index;not null" json:"expires_at"`                                                                             // 过期时间
	UsedAt         *time.Time      `json:"used_at"`                                                                                                      // 核销时间
	IdempotencyKey *string         `gorm:"size:128;uniqueIndex:idx_coupon_customer_idem,priority:2" json:"-"`                                            // 兑换幂等键（按会员唯一）
	CreatedAt      time.Time       `gorm:"index" json:"created_at"`                                                                                      // 创建时间
	UpdatedAt      time.Time       `gorm:"index" json:"updated_at"`                                                                                      // 更新时间
}

// TableName 指定表名
func (CouponInstance) TableName() string {
	return "coupon_instances"
}

// EffectiveStatus 计算当前有效状态（过期由时间推导，不依赖定时任务）
func (c CouponInstance) EffectiveStatus(now time.Time) string {
	if c.Status == constants.CouponStatusAvailable && now.After(c.ExpiresAt) {
		return constants.CouponStatusExpired
	}
	return c.Status
}
