package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/washpoint-loyalty/internal/cache"
	"github.com/washpoint-loyalty/internal/config"
	"github.com/washpoint-loyalty/internal/logger"
	"github.com/washpoint-loyalty/internal/models"
	"github.com/washpoint-loyalty/internal/repository"

	"github.com/shopspring/decimal"
)

// LoyaltyConfigService 积分策略解析服务
type LoyaltyConfigService struct {
	repo repository.LoyaltyConfigRepository
	opts LedgerOptions
}

// UpsertLoyaltyConfigInput 写入策略输入（BranchID 为空表示全局默认）
type UpsertLoyaltyConfigInput struct {
	BranchID           *uint
	PointsPerBaht      int64
	GoldThreshold      int64
	PlatinumThreshold  int64
	GoldMultiplier     decimal.Decimal
	PlatinumMultiplier decimal.Decimal
	StampsForFreeWash  int
}

// NewLoyaltyConfigService 创建策略服务
func NewLoyaltyConfigService(repo repository.LoyaltyConfigRepository, opts LedgerOptions) *LoyaltyConfigService {
	return &LoyaltyConfigService{repo: repo, opts: opts.normalize()}
}

// Resolve 解析门店生效策略：先门店专属，再全局默认
func (s *LoyaltyConfigService) Resolve(ctx context.Context, branchID uint) (*LoyaltyPolicy, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if branchID == 0 {
		return nil, ErrLedgerInvalidInput
	}
	if snapshot, hit, err := cache.GetLoyaltyPolicy(ctx, branchID); err != nil {
		logger.FromContext(ctx).Warnw("loyalty_config_cache_read_failed", "branch_id", branchID, "error", err)
	} else if hit {
		if policy, err := policyFromSnapshot(snapshot); err == nil {
			return policy, nil
		}
	}

	repo := s.repo.WithContext(ctx)
	row, err := repo.GetByBranch(branchID)
	if err != nil {
		return nil, classifyLedgerError(err)
	}
	if row == nil {
		row, err = repo.GetGlobal()
		if err != nil {
			return nil, classifyLedgerError(err)
		}
	}
	if row == nil {
		logger.FromContext(ctx).Errorw("loyalty_config_missing", "branch_id", branchID)
		return nil, ErrLoyaltyConfigMissing
	}

	policy := policyFromModel(row)
	if err := ValidatePolicy(*policy); err != nil {
		logger.FromContext(ctx).Errorw("loyalty_config_invalid", "branch_id", branchID, "config_id", row.ID, "error", err)
		return nil, err
	}
	if err := cache.SetLoyaltyPolicy(ctx, branchID, snapshotFromPolicy(policy), s.opts.ConfigCacheTTL); err != nil {
		logger.FromContext(ctx).Warnw("loyalty_config_cache_write_failed", "branch_id", branchID, "error", err)
	}
	return policy, nil
}

// ValidatePolicy 校验策略取值
func ValidatePolicy(policy LoyaltyPolicy) error {
	switch {
	case policy.PointsPerBaht <= 0:
		return fmt.Errorf("%w: points_per_baht must be positive", ErrLoyaltyConfigInvalid)
	case policy.StampsForFreeWash <= 0:
		return fmt.Errorf("%w: stamps_for_free_wash must be positive", ErrLoyaltyConfigInvalid)
	case policy.GoldThreshold < 0:
		return fmt.Errorf("%w: gold_threshold must not be negative", ErrLoyaltyConfigInvalid)
	case policy.PlatinumThreshold < policy.GoldThreshold:
		return fmt.Errorf("%w: platinum_threshold below gold_threshold", ErrLoyaltyConfigInvalid)
	case policy.GoldMultiplier.LessThan(decimal.NewFromInt(1)):
		return fmt.Errorf("%w: gold_multiplier below 1", ErrLoyaltyConfigInvalid)
	case policy.PlatinumMultiplier.LessThan(decimal.NewFromInt(1)):
		return fmt.Errorf("%w: platinum_multiplier below 1", ErrLoyaltyConfigInvalid)
	}
	return nil
}

// Upsert 写入门店或全局策略并清除缓存
func (s *LoyaltyConfigService) Upsert(ctx context.Context, input UpsertLoyaltyConfigInput) (*models.LoyaltyConfig, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	policy := LoyaltyPolicy{
		BranchID:           input.BranchID,
		PointsPerBaht:      input.PointsPerBaht,
		GoldThreshold:      input.GoldThreshold,
		PlatinumThreshold:  input.PlatinumThreshold,
		GoldMultiplier:     input.GoldMultiplier,
		PlatinumMultiplier: input.PlatinumMultiplier,
		StampsForFreeWash:  input.StampsForFreeWash,
	}
	if err := ValidatePolicy(policy); err != nil {
		return nil, err
	}

	repo := s.repo.WithContext(ctx)
	var existing *models.LoyaltyConfig
	var err error
	if input.BranchID != nil && *input.BranchID != 0 {
		existing, err = repo.GetByBranch(*input.BranchID)
	} else {
		existing, err = repo.GetGlobal()
	}
	if err != nil {
		return nil, classifyLedgerError(err)
	}
	row := existing
	if row == nil {
		row = &models.LoyaltyConfig{}
		if input.BranchID != nil && *input.BranchID != 0 {
			branchID := *input.BranchID
			row.BranchID = &branchID
		}
	}
	row.PointsPerBaht = input.PointsPerBaht
	row.GoldThreshold = input.GoldThreshold
	row.PlatinumThreshold = input.PlatinumThreshold
	row.GoldMultiplier = models.NewMoneyFromDecimal(input.GoldMultiplier)
	row.PlatinumMultiplier = models.NewMoneyFromDecimal(input.PlatinumMultiplier)
	row.StampsForFreeWash = input.StampsForFreeWash
	if err := repo.Save(row); err != nil {
		return nil, classifyLedgerError(err)
	}

	var invalidateBranch uint
	if row.BranchID != nil {
		invalidateBranch = *row.BranchID
	}
	if err := cache.InvalidateLoyaltyPolicies(ctx, invalidateBranch); err != nil {
		logger.FromContext(ctx).Warnw("loyalty_config_cache_invalidate_failed", "branch_id", invalidateBranch, "error", err)
	}
	logger.FromContext(ctx).Infow("loyalty_config_saved", "config_id", row.ID, "branch_id", invalidateBranch)
	return row, nil
}

// EnsureGlobalDefault 保证全局默认策略存在，返回是否新建
func (s *LoyaltyConfigService) EnsureGlobalDefault(ctx context.Context, defaults config.LoyaltyPolicyConfig) (*models.LoyaltyConfig, bool, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	existing, err := s.repo.WithContext(ctx).GetGlobal()
	if err != nil {
		return nil, false, classifyLedgerError(err)
	}
	if existing != nil {
		return existing, false, nil
	}
	goldMultiplier, err := parseMultiplier(defaults.GoldMultiplier)
	if err != nil {
		return nil, false, err
	}
	platinumMultiplier, err := parseMultiplier(defaults.PlatinumMultiplier)
	if err != nil {
		return nil, false, err
	}
	row, err := s.Upsert(ctx, UpsertLoyaltyConfigInput{
		PointsPerBaht:      defaults.PointsPerBaht,
		GoldThreshold:      defaults.GoldThreshold,
		PlatinumThreshold:  defaults.PlatinumThreshold,
		GoldMultiplier:     goldMultiplier,
		PlatinumMultiplier: platinumMultiplier,
		StampsForFreeWash:  defaults.StampsForFreeWash,
	})
	if err != nil {
		return nil, false, err
	}
	return row, true, nil
}

func parseMultiplier(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.NewFromInt(1), nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: multiplier %q", ErrLoyaltyConfigInvalid, raw)
	}
	return d, nil
}

func policyFromModel(row *models.LoyaltyConfig) *LoyaltyPolicy {
	return &LoyaltyPolicy{
		ConfigID:           row.ID,
		BranchID:           row.BranchID,
		PointsPerBaht:      row.PointsPerBaht,
		GoldThreshold:      row.GoldThreshold,
		PlatinumThreshold:  row.PlatinumThreshold,
		GoldMultiplier:     row.GoldMultiplier.Decimal,
		PlatinumMultiplier: row.PlatinumMultiplier.Decimal,
		StampsForFreeWash:  row.StampsForFreeWash,
	}
}

func snapshotFromPolicy(policy *LoyaltyPolicy) *cache.LoyaltyPolicySnapshot {
	return &cache.LoyaltyPolicySnapshot{
		ConfigID:           policy.ConfigID,
		BranchID:           policy.BranchID,
		PointsPerBaht:      policy.PointsPerBaht,
		GoldThreshold:      policy.GoldThreshold,
		PlatinumThreshold:  policy.PlatinumThreshold,
		GoldMultiplier:     policy.GoldMultiplier.String(),
		PlatinumMultiplier: policy.PlatinumMultiplier.String(),
		StampsForFreeWash:  policy.StampsForFreeWash,
	}
}

func policyFromSnapshot(snapshot *cache.LoyaltyPolicySnapshot) (*LoyaltyPolicy, error) {
	if snapshot == nil {
		return nil, ErrLoyaltyConfigMissing
	}
	gold, err := decimal.NewFromString(snapshot.GoldMultiplier)
	if err != nil {
		return nil, err
	}
	platinum, err := decimal.NewFromString(snapshot.PlatinumMultiplier)
	if err != nil {
		return nil, err
	}
	policy := &LoyaltyPolicy{
		ConfigID:           snapshot.ConfigID,
		BranchID:           snapshot.BranchID,
		PointsPerBaht:      snapshot.PointsPerBaht,
		GoldThreshold:      snapshot.GoldThreshold,
		PlatinumThreshold:  snapshot.PlatinumThreshold,
		GoldMultiplier:     gold,
		PlatinumMultiplier: platinum,
		StampsForFreeWash:  snapshot.StampsForFreeWash,
	}
	if err := ValidatePolicy(*policy); err != nil {
		return nil, err
	}
	return policy, nil
}
