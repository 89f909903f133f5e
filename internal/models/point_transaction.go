package models

import "time"

// PointTransaction 积分流水（只追加，不修改不删除）
type PointTransaction struct {
	ID               uint      `gorm:"primarykey" json:"id"`                                                  // 主键
	CustomerID       uint      `gorm:"not null;index:idx_point_txn_customer_branch" json:"customer_id"`     // 会员ID
	BranchID         uint      `gorm:"not null;index:idx_point_txn_customer_branch" json:"branch_id"`       // 门店ID
	Type             string    `gorm:"size:16;not null;index" json:"type"`                                   // 类型（EARN/REDEEM）
	Amount           int64     `gorm:"not null" json:"amount"`                                               // 变动积分（获得为正，兑换为负）
	BalanceBefore    int64     `gorm:"not null" json:"balance_before"`                                       // 变动前余额
	BalanceAfter     int64     `gorm:"not null" json:"balance_after"`                                        // 变动后余额
	Description      string    `gorm:"size:255" json:"description"`                                          // 描述
	SourceRef        string    `gorm:"size:128;index" json:"source_ref,omitempty"`                           // 来源消费单号
	GrossAmount      Money     `gorm:"type:decimal(20,2);not null;default:0" json:"gross_amount"`           // 消费金额（兑换流水为 0）
	CouponInstanceID *uint     `gorm:"index" json:"coupon_instance_id,omitempty"`                            // 关联优惠券实例
	Reference        *string   `gorm:"size:191;uniqueIndex" json:"-"`                                        // 幂等参考号
	CreatedAt        time.Time `gorm:"index" json:"created_at"`                                              // 创建时间
}

// TableName 指定表名
func (PointTransaction) TableName() string {
	return "point_transactions"
}
