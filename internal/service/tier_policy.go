package service

import (
	"github.com/washpoint-loyalty/internal/constants"

	"github.com/shopspring/decimal"
)

// LoyaltyPolicy 门店生效的积分策略
type LoyaltyPolicy struct {
	ConfigID           uint
	BranchID           *uint
	PointsPerBaht      int64
	GoldThreshold      int64
	PlatinumThreshold  int64
	GoldMultiplier     decimal.Decimal
	PlatinumMultiplier decimal.Decimal
	StampsForFreeWash  int
}

var tierRanks = map[string]int{
	constants.TierSilver:   0,
	constants.TierGold:     1,
	constants.TierPlatinum: 2,
}

// TierFor 根据累计获得积分计算等级
func TierFor(totalEarned int64, policy LoyaltyPolicy) string {
	switch {
	case totalEarned >= policy.PlatinumThreshold:
		return constants.TierPlatinum
	case totalEarned >= policy.GoldThreshold:
		return constants.TierGold
	default:
		return constants.TierSilver
	}
}

// MultiplierFor 等级对应的积分倍率
func MultiplierFor(tier string, policy LoyaltyPolicy) decimal.Decimal {
	switch tier {
	case constants.TierPlatinum:
		return policy.PlatinumMultiplier
	case constants.TierGold:
		return policy.GoldMultiplier
	default:
		return decimal.NewFromInt(1)
	}
}

// TierRank 等级序号，未知等级按银卡处理
func TierRank(tier string) int {
	return tierRanks[tier]
}

// maxTier 等级只升不降
func maxTier(current, computed string) string {
	if _, ok := tierRanks[current]; !ok {
		return computed
	}
	if TierRank(computed) > TierRank(current) {
		return computed
	}
	return current
}

// RawPoints 消费金额折算的基础积分：floor(gross / pointsPerBaht)
func RawPoints(gross decimal.Decimal, pointsPerBaht int64) int64 {
	if pointsPerBaht <= 0 || !gross.IsPositive() {
		return 0
	}
	return gross.Div(decimal.NewFromInt(pointsPerBaht)).Floor().IntPart()
}

// EarnedPoints 应用倍率后的实得积分：floor(raw * multiplier)
func EarnedPoints(rawPoints int64, multiplier decimal.Decimal) int64 {
	if rawPoints <= 0 {
		return 0
	}
	return decimal.NewFromInt(rawPoints).Mul(multiplier).Floor().IntPart()
}

// NextStamps 集章推进一格，满一轮归零
func NextStamps(current int, cycle int) int {
	if cycle <= 0 {
		return 0
	}
	if current < 0 {
		current = 0
	}
	return (current + 1) % cycle
}
