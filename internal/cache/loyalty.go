package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/washpoint-loyalty/internal/constants"
)

// LoyaltyPolicySnapshot 积分策略缓存快照（倍率以字符串保存，避免浮点误差）
type LoyaltyPolicySnapshot struct {
	ConfigID           uint   `json:"config_id"`
	BranchID           *uint  `json:"branch_id"`
	PointsPerBaht      int64  `json:"points_per_baht"`
	GoldThreshold      int64  `json:"gold_threshold"`
	PlatinumThreshold  int64  `json:"platinum_threshold"`
	GoldMultiplier     string `json:"gold_multiplier"`
	PlatinumMultiplier string `json:"platinum_multiplier"`
	StampsForFreeWash  int    `json:"stamps_for_free_wash"`
}

func loyaltyConfigKey(branchID uint) string {
	return fmt.Sprintf("%s:%d", constants.CacheKeyLoyaltyConfig, branchID)
}

func couponCatalogKey(branchID uint) string {
	return fmt.Sprintf("%s:%d", constants.CacheKeyCouponCatalog, branchID)
}

// GetLoyaltyPolicy 读取门店生效的积分策略
func GetLoyaltyPolicy(ctx context.Context, branchID uint) (*LoyaltyPolicySnapshot, bool, error) {
	var snapshot LoyaltyPolicySnapshot
	hit, err := GetJSON(ctx, loyaltyConfigKey(branchID), &snapshot)
	if err != nil || !hit {
		return nil, false, err
	}
	return &snapshot, true, nil
}

// SetLoyaltyPolicy 写入门店生效的积分策略
func SetLoyaltyPolicy(ctx context.Context, branchID uint, snapshot *LoyaltyPolicySnapshot, ttl time.Duration) error {
	if snapshot == nil || ttl <= 0 {
		return nil
	}
	return SetJSON(ctx, loyaltyConfigKey(branchID), snapshot, ttl)
}

// InvalidateLoyaltyPolicies 清除策略缓存，branchID 为 0 时清除全部门店
func InvalidateLoyaltyPolicies(ctx context.Context, branchID uint) error {
	if branchID != 0 {
		return Del(ctx, loyaltyConfigKey(branchID))
	}
	return delByPattern(ctx, constants.CacheKeyLoyaltyConfig+":*")
}

// GetCouponCatalog 读取门店可兑换模板列表缓存
func GetCouponCatalog(ctx context.Context, branchID uint, dest interface{}) (bool, error) {
	return GetJSON(ctx, couponCatalogKey(branchID), dest)
}

// SetCouponCatalog 写入门店可兑换模板列表缓存
func SetCouponCatalog(ctx context.Context, branchID uint, value interface{}, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return SetJSON(ctx, couponCatalogKey(branchID), value, ttl)
}

// InvalidateCouponCatalog 清除全部门店的模板列表缓存
func InvalidateCouponCatalog(ctx context.Context) error {
	return delByPattern(ctx, constants.CacheKeyCouponCatalog+":*")
}

func delByPattern(ctx context.Context, pattern string) error {
	if !Enabled() {
		return nil
	}
	iter := redisClient.Scan(ctx, 0, buildKey(pattern), 100).Iterator()
	keys := make([]string, 0, 16)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return redisClient.Del(ctx, keys...).Err()
}
