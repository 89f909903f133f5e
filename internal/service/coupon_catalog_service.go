package service

import (
	"context"
	"strings"
	"time"

	"github.com/washpoint-loyalty/internal/cache"
	"github.com/washpoint-loyalty/internal/constants"
	"github.com/washpoint-loyalty/internal/logger"
	"github.com/washpoint-loyalty/internal/models"
	"github.com/washpoint-loyalty/internal/repository"

	"github.com/shopspring/decimal"
)

// CouponCatalogService 可兑换模板目录
type CouponCatalogService struct {
	repo repository.CouponTemplateRepository
	opts LedgerOptions
	now  func() time.Time
}

// CreateCouponTemplateInput 创建模板输入
type CreateCouponTemplateInput struct {
	Name           string
	RewardType     string
	RewardValue    models.Money
	PointsCost     int64
	MaxRedemptions *int64
	ValidDays      int
	ExpiresAt      *time.Time
	BranchID       *uint
	IsActive       bool
}

// NewCouponCatalogService 创建模板目录服务
func NewCouponCatalogService(repo repository.CouponTemplateRepository, opts LedgerOptions) *CouponCatalogService {
	return &CouponCatalogService{repo: repo, opts: opts.normalize(), now: defaultClock}
}

// SetClock 替换时钟
func (s *CouponCatalogService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// ListAvailable 门店当前可兑换模板，按所需积分升序；允许短暂读到旧数据
func (s *CouponCatalogService) ListAvailable(ctx context.Context, branchID uint) ([]models.CouponTemplate, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if branchID == 0 {
		return nil, ErrLedgerInvalidInput
	}
	var cached []models.CouponTemplate
	if hit, err := cache.GetCouponCatalog(ctx, branchID, &cached); err != nil {
		logger.FromContext(ctx).Warnw("coupon_catalog_cache_read_failed", "branch_id", branchID, "error", err)
	} else if hit {
		return cached, nil
	}

	templates, err := s.repo.WithContext(ctx).ListAvailable(branchID, s.now())
	if err != nil {
		return nil, classifyLedgerError(err)
	}
	if err := cache.SetCouponCatalog(ctx, branchID, templates, s.opts.CatalogCacheTTL); err != nil {
		logger.FromContext(ctx).Warnw("coupon_catalog_cache_write_failed", "branch_id", branchID, "error", err)
	}
	return templates, nil
}

// CheckRedeemable 提示性校验模板是否可兑换，最终以兑换事务为准
func (s *CouponCatalogService) CheckRedeemable(ctx context.Context, templateID, branchID uint, now time.Time) error {
	template, err := s.repo.WithContext(ctx).GetByID(templateID)
	if err != nil {
		return classifyLedgerError(err)
	}
	return checkTemplateRedeemable(template, branchID, now)
}

// GetTemplate 获取模板（对其他门店专属模板视为不存在）
func (s *CouponCatalogService) GetTemplate(ctx context.Context, templateID, branchID uint) (*models.CouponTemplate, error) {
	template, err := s.repo.WithContext(ctx).GetByID(templateID)
	if err != nil {
		return nil, classifyLedgerError(err)
	}
	if template == nil || (branchID != 0 && !template.AvailableAtBranch(branchID)) {
		return nil, ErrCouponTemplateNotFound
	}
	return template, nil
}

// CreateTemplate 创建模板并清除目录缓存
func (s *CouponCatalogService) CreateTemplate(ctx context.Context, input CreateCouponTemplateInput) (*models.CouponTemplate, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := validateTemplateInput(input); err != nil {
		return nil, err
	}
	template := &models.CouponTemplate{
		Name:           strings.TrimSpace(input.Name),
		RewardType:     input.RewardType,
		RewardValue:    models.NewMoneyFromDecimal(input.RewardValue.Decimal),
		PointsCost:     input.PointsCost,
		MaxRedemptions: input.MaxRedemptions,
		ValidDays:      input.ValidDays,
		ExpiresAt:      input.ExpiresAt,
		BranchID:       input.BranchID,
		IsActive:       input.IsActive,
	}
	if err := s.repo.WithContext(ctx).Create(template); err != nil {
		return nil, classifyLedgerError(err)
	}
	s.invalidateCatalog(ctx)
	logger.FromContext(ctx).Infow("coupon_template_created", "template_id", template.ID, "points_cost", template.PointsCost)
	return template, nil
}

// ListTemplates 运营侧模板列表（含停用与过期）
func (s *CouponCatalogService) ListTemplates(ctx context.Context, filter repository.CouponTemplateListFilter) ([]models.CouponTemplate, int64, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	templates, total, err := s.repo.WithContext(ctx).List(filter)
	if err != nil {
		return nil, 0, classifyLedgerError(err)
	}
	return templates, total, nil
}

// SetTemplateActive 启用或停用模板
func (s *CouponCatalogService) SetTemplateActive(ctx context.Context, templateID uint, active bool) (*models.CouponTemplate, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	repo := s.repo.WithContext(ctx)
	template, err := repo.GetByID(templateID)
	if err != nil {
		return nil, classifyLedgerError(err)
	}
	if template == nil {
		return nil, ErrCouponTemplateNotFound
	}
	template.IsActive = active
	if err := repo.Update(template); err != nil {
		return nil, classifyLedgerError(err)
	}
	s.invalidateCatalog(ctx)
	return template, nil
}

func (s *CouponCatalogService) invalidateCatalog(ctx context.Context) {
	if err := cache.InvalidateCouponCatalog(ctx); err != nil {
		logger.FromContext(ctx).Warnw("coupon_catalog_cache_invalidate_failed", "error", err)
	}
}

// checkTemplateRedeemable 模板可兑换判定，兑换事务内复用
func checkTemplateRedeemable(template *models.CouponTemplate, branchID uint, now time.Time) error {
	if template == nil {
		return ErrCouponTemplateNotFound
	}
	if branchID != 0 && !template.AvailableAtBranch(branchID) {
		return ErrCouponTemplateNotFound
	}
	if !template.IsActive {
		return ErrCouponTemplateInactive
	}
	if template.IsExpiredAt(now) {
		return ErrCouponTemplateExpired
	}
	if template.SupplyExhausted() {
		return ErrCouponSupplyExhausted
	}
	return nil
}

func validateTemplateInput(input CreateCouponTemplateInput) error {
	if strings.TrimSpace(input.Name) == "" || input.PointsCost <= 0 || input.ValidDays <= 0 {
		return ErrLedgerInvalidInput
	}
	if input.MaxRedemptions != nil && *input.MaxRedemptions < 0 {
		return ErrLedgerInvalidInput
	}
	value := input.RewardValue.Decimal
	switch input.RewardType {
	case constants.RewardTypeFixedAmount:
		if !value.IsPositive() {
			return ErrLedgerInvalidInput
		}
	case constants.RewardTypePercent:
		if !value.IsPositive() || value.GreaterThan(decimal.NewFromInt(100)) {
			return ErrLedgerInvalidInput
		}
	case constants.RewardTypeFreeService:
		if value.IsNegative() {
			return ErrLedgerInvalidInput
		}
	default:
		return ErrLedgerInvalidInput
	}
	return nil
}
