package models

import "time"

// LoyaltyConfig 积分策略配置（BranchID 为空表示全局默认）
type LoyaltyConfig struct {
	ID                 uint      `gorm:"primarykey" json:"id"`                                           // 主键
	BranchID           *uint     `gorm:"uniqueIndex" json:"branch_id"`                                   // 门店ID（空为全局）
	PointsPerBaht      int64     `gorm:"not null;default:10" json:"points_per_baht"`                     // 每多少铢积 1 分
	GoldThreshold      int64     `gorm:"not null;default:1000" json:"gold_threshold"`                    // 金卡门槛
	PlatinumThreshold  int64     `gorm:"not null;default:5000" json:"platinum_threshold"`                // 白金卡门槛
	GoldMultiplier     Money     `gorm:"type:decimal(10,2);not null;default:1" json:"gold_multiplier"`     // 金卡积分倍率
	PlatinumMultiplier Money     `gorm:"type:decimal(10,2);not null;default:1" json:"platinum_multiplier"` // 白金卡积分倍率
	StampsForFreeWash  int       `gorm:"not null;default:10" json:"stamps_for_free_wash"`                // 集满多少章送免费洗车
	CreatedAt          time.Time `gorm:"index" json:"created_at"`                                        // 创建时间
	UpdatedAt          time.Time `gorm:"index" json:"updated_at"`                                        // 更新时间
}

// TableName 指定表名
func (LoyaltyConfig) TableName() string {
	return "loyalty_configs"
}

// IsGlobal 是否为全局默认配置
func (c LoyaltyConfig) IsGlobal() bool {
	return c.BranchID == nil
}
