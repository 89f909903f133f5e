package models

import "time"

// PointAccount 会员在某门店的积分账户（首次获得积分时创建，永不删除）
type PointAccount struct {
	ID          uint      `gorm:"primarykey" json:"id"`                                                   // 主键
	CustomerID  uint      `gorm:"not null;uniqueIndex:idx_point_account_customer_branch" json:"customer_id"` // 会员ID
	BranchID    uint      `gorm:"not null;uniqueIndex:idx_point_account_customer_branch" json:"branch_id"`   // 门店ID
	Balance     int64     `gorm:"not null;default:0" json:"balance"`                                      // 可用积分
	TotalEarned int64     `gorm:"not null;default:0" json:"total_earned"`                                 // 累计获得积分
	Tier        string    `gorm:"size:16;not null;default:SILVER" json:"tier"`                           // 会员等级
	Stamps      int       `gorm:"not null;default:0" json:"stamps"`                                       // 集章进度
	Version     int64     `gorm:"not null;default:0" json:"-"`                                            // 乐观锁版本号
	CreatedAt   time.Time `gorm:"index" json:"created_at"`                                                // 创建时间
	UpdatedAt   time.Time `gorm:"index" json:"updated_at"`                                                // 更新时间
}

// TableName 指定表名
func (PointAccount) TableName() string {
	return "point_accounts"
}
