package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/washpoint-loyalty/internal/constants"
	"github.com/washpoint-loyalty/internal/logger"
	"github.com/washpoint-loyalty/internal/metrics"
	"github.com/washpoint-loyalty/internal/models"
	"github.com/washpoint-loyalty/internal/repository"

	"gorm.io/gorm"
)

const (
	opRedeem                = "redeem"
	maxIdempotencyKeyLength = 128
)

// RedemptionService 积分兑换优惠券
type RedemptionService struct {
	pointRepo    repository.PointRepository
	templateRepo repository.CouponTemplateRepository
	instanceRepo repository.CouponInstanceRepository
	catalogSvc   *CouponCatalogService
	opts         LedgerOptions
	now          func() time.Time
	newCode      func() (string, error)
}

// RedeemInput 兑换输入
type RedeemInput struct {
	CustomerID     uint
	BranchID       uint
	TemplateID     uint
	IdempotencyKey string
}

// NewRedemptionService 创建兑换服务
func NewRedemptionService(
	pointRepo repository.PointRepository,
	templateRepo repository.CouponTemplateRepository,
	instanceRepo repository.CouponInstanceRepository,
	catalogSvc *CouponCatalogService,
	opts LedgerOptions,
) *RedemptionService {
	return &RedemptionService{
		pointRepo:    pointRepo,
		templateRepo: templateRepo,
		instanceRepo: instanceRepo,
		catalogSvc:   catalogSvc,
		opts:         opts.normalize(),
		now:          defaultClock,
		newCode:      GenerateCouponCode,
	}
}

// SetClock 替换时钟
func (s *RedemptionService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Redeem 扣减积分、占用库存、发放券码并记录流水，四者同一事务提交
func (s *RedemptionService) Redeem(ctx context.Context, input RedeemInput) (*models.CouponInstance, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	key := strings.TrimSpace(input.IdempotencyKey)
	if input.CustomerID == 0 || input.BranchID == 0 || input.TemplateID == 0 || len(key) > maxIdempotencyKeyLength {
		return nil, ErrLedgerInvalidInput
	}
	log := logger.FromContext(ctx).With(
		"customer_id", input.CustomerID,
		"branch_id", input.BranchID,
		"template_id", input.TemplateID,
	)

	var issued *models.CouponInstance
	var replayed bool
	var cost int64
	err := runLedgerTx(ctx, s.pointRepo, s.opts, opRedeem, func(tx *gorm.DB) error {
		pointRepo := s.pointRepo.WithTx(tx)
		templateRepo := s.templateRepo.WithTx(tx)
		instanceRepo := s.instanceRepo.WithTx(tx)
		replayed = false

		if key != "" {
			existing, err := instanceRepo.GetByIdempotencyKey(input.CustomerID, key)
			if err != nil {
				return err
			}
			if existing != nil {
				issued = existing
				replayed = true
				return nil
			}
		}

		now := s.now()
		template, err := templateRepo.GetByIDForUpdate(input.TemplateID)
		if err != nil {
			return err
		}
		if err := checkTemplateRedeemable(template, input.BranchID, now); err != nil {
			return err
		}

		account, err := pointRepo.GetAccountForUpdate(input.CustomerID, input.BranchID)
		if err != nil {
			return err
		}
		if account == nil || account.Balance < template.PointsCost {
			return ErrInsufficientPoints
		}

		code, err := s.generateUniqueCode(instanceRepo)
		if err != nil {
			return err
		}

		if template.PointsCost > 0 {
			ok, err := pointRepo.DebitWithVersion(account.ID, account.Version, template.PointsCost, now)
			if err != nil {
				return err
			}
			if !ok {
				return errLedgerConflict
			}
		}

		ok, err := templateRepo.IncrementRedemptions(template.ID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrCouponSupplyExhausted
		}

		instance := &models.CouponInstance{
			Code:           code,
			CustomerID:     input.CustomerID,
			BranchID:       input.BranchID,
			TemplateID:     template.ID,
			Status:         constants.CouponStatusAvailable,
			ExpiresAt:      now.AddDate(0, 0, template.ValidDays),
			IdempotencyKey: optionalString(key),
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := instanceRepo.Create(instance); err != nil {
			if repository.IsUniqueViolation(err) {
				return errLedgerConflict
			}
			return err
		}

		instanceID := instance.ID
		txn := &models.PointTransaction{
			CustomerID:       input.CustomerID,
			BranchID:         input.BranchID,
			Type:             constants.PointTxnTypeRedeem,
			Amount:           -template.PointsCost,
			BalanceBefore:    account.Balance,
			BalanceAfter:     account.Balance - template.PointsCost,
			Description:      cleanLedgerRemark("Redeem: "+template.Name, "Redeem"),
			CouponInstanceID: &instanceID,
			Reference:        optionalString(buildRedeemReference(instanceID)),
			CreatedAt:        now,
		}
		if err := pointRepo.CreateTransaction(txn); err != nil {
			return err
		}

		instance.Template = template
		issued = instance
		cost = template.PointsCost
		return nil
	})
	if err != nil {
		metrics.ObserveLedger(opRedeem, ledgerOutcome(err))
		if IsBusinessRejection(err) {
			log.Infow("redemption_rejected", "reason", err.Error())
		} else {
			log.Errorw("redemption_failed", "error", err)
		}
		return nil, err
	}

	if replayed {
		metrics.ObserveLedger(opRedeem, metrics.OutcomeReplayed)
		log.Infow("redemption_replayed", "coupon_instance_id", issued.ID)
		return s.withTemplate(ctx, issued), nil
	}
	if s.catalogSvc != nil {
		s.catalogSvc.invalidateCatalog(ctx)
	}
	metrics.ObserveLedger(opRedeem, metrics.OutcomeSuccess)
	metrics.AddPoints(constants.PointTxnTypeRedeem, cost)
	log.Infow("redemption_issued", "coupon_instance_id", issued.ID, "points_cost", cost)
	return issued, nil
}

func (s *RedemptionService) generateUniqueCode(repo *repository.GormCouponInstanceRepository) (string, error) {
	for attempt := 0; attempt < s.opts.CodeGenerateAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return "", err
		}
		exists, err := repo.ExistsByCode(code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("%w: coupon code space exhausted after %d attempts", ErrLedgerInternal, s.opts.CodeGenerateAttempts)
}

func (s *RedemptionService) withTemplate(ctx context.Context, instance *models.CouponInstance) *models.CouponInstance {
	if instance == nil || instance.Template != nil {
		return instance
	}
	full, err := s.instanceRepo.WithContext(ctx).GetByID(instance.ID)
	if err != nil || full == nil {
		return instance
	}
	return full
}
