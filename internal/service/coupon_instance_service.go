package service

import (
	"context"
	"time"

	"github.com/washpoint-loyalty/internal/constants"
	"github.com/washpoint-loyalty/internal/logger"
	"github.com/washpoint-loyalty/internal/metrics"
	"github.com/washpoint-loyalty/internal/models"
	"github.com/washpoint-loyalty/internal/repository"

	"gorm.io/gorm"
)

const opUseCoupon = "use_coupon"

// CouponInstanceService 已发放优惠券的查询与核销
type CouponInstanceService struct {
	repo repository.CouponInstanceRepository
	opts LedgerOptions
	now  func() time.Time
}

// NewCouponInstanceService 创建优惠券核销服务
func NewCouponInstanceService(repo repository.CouponInstanceRepository, opts LedgerOptions) *CouponInstanceService {
	return &CouponInstanceService{repo: repo, opts: opts.normalize(), now: defaultClock}
}

// SetClock 替换时钟
func (s *CouponInstanceService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Now 当前时间
func (s *CouponInstanceService) Now() time.Time {
	return s.now()
}

// UseByCode 门店扫码核销，同一券码只能成功一次
// branchID 为 0 时不校验发放门店
func (s *CouponInstanceService) UseByCode(ctx context.Context, code string, branchID uint, now time.Time) (*models.CouponInstance, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	code = NormalizeCouponCode(code)
	log := logger.FromContext(ctx).With("code", code, "branch_id", branchID)
	if code == "" {
		metrics.ObserveLedger(opUseCoupon, metrics.OutcomeRejected)
		return nil, ErrCouponNotFound
	}

	var used *models.CouponInstance
	var expiredID uint
	err := runLedgerTx(ctx, s.repo, s.opts, opUseCoupon, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		expiredID = 0
		instance, err := repo.GetByCodeForUpdate(code)
		if err != nil {
			return err
		}
		if instance == nil || (branchID != 0 && instance.BranchID != branchID) {
			return ErrCouponNotFound
		}
		switch instance.EffectiveStatus(now) {
		case constants.CouponStatusUsed:
			return ErrCouponAlreadyUsed
		case constants.CouponStatusExpired:
			if instance.Status == constants.CouponStatusAvailable {
				expiredID = instance.ID
			}
			return ErrCouponExpired
		}
		ok, err := repo.MarkUsed(instance.ID, now)
		if err != nil {
			return err
		}
		if !ok {
			return ErrCouponAlreadyUsed
		}
		usedAt := now
		instance.Status = constants.CouponStatusUsed
		instance.UsedAt = &usedAt
		used = instance
		return nil
	})
	if err != nil {
		if expiredID != 0 {
			if _, markErr := s.repo.WithContext(ctx).MarkExpired(expiredID, now); markErr != nil {
				log.Warnw("coupon_mark_expired_failed", "coupon_instance_id", expiredID, "error", markErr)
			}
		}
		metrics.ObserveLedger(opUseCoupon, ledgerOutcome(err))
		if IsBusinessRejection(err) {
			log.Infow("coupon_use_rejected", "reason", err.Error())
		} else {
			log.Errorw("coupon_use_failed", "error", err)
		}
		return nil, err
	}

	metrics.ObserveLedger(opUseCoupon, metrics.OutcomeSuccess)
	log.Infow("coupon_used", "coupon_instance_id", used.ID, "customer_id", used.CustomerID)
	if full, err := s.repo.WithContext(ctx).GetByID(used.ID); err == nil && full != nil {
		return full, nil
	}
	return used, nil
}

// ListMyCoupons 会员在门店的券，新到旧，状态按当前时间推导
func (s *CouponInstanceService) ListMyCoupons(ctx context.Context, customerID, branchID uint) ([]models.CouponInstance, error) {
	if customerID == 0 || branchID == 0 {
		return nil, ErrLedgerInvalidInput
	}
	instances, err := s.repo.WithContext(ctx).List(repository.CouponInstanceListFilter{
		CustomerID: customerID,
		BranchID:   branchID,
	})
	if err != nil {
		return nil, classifyLedgerError(err)
	}
	now := s.now()
	for i := range instances {
		instances[i].Status = instances[i].EffectiveStatus(now)
	}
	return instances, nil
}

// GetByCode 收银台预览券信息
func (s *CouponInstanceService) GetByCode(ctx context.Context, code string, branchID uint) (*models.CouponInstance, error) {
	code = NormalizeCouponCode(code)
	if code == "" {
		return nil, ErrCouponNotFound
	}
	instance, err := s.repo.WithContext(ctx).GetByCode(code)
	if err != nil {
		return nil, classifyLedgerError(err)
	}
	if instance == nil || (branchID != 0 && instance.BranchID != branchID) {
		return nil, ErrCouponNotFound
	}
	instance.Status = instance.EffectiveStatus(s.now())
	return instance, nil
}
