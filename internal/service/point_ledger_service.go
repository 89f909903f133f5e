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
	opEarn             = "earn"
	maxSourceRefLength = 96
	defaultEarnRemark  = "Wash purchase"
)

// PointLedgerService 积分账本服务
type PointLedgerService struct {
	pointRepo repository.PointRepository
	configSvc *LoyaltyConfigService
	opts      LedgerOptions
	now       func() time.Time
}

// EarnInput 消费积分输入
type EarnInput struct {
	CustomerID  uint
	BranchID    uint
	GrossAmount models.Money
	SourceRef   string
	Description string
}

// EarnResult 消费积分结果
type EarnResult struct {
	EarnedPoints      int64                    `json:"earned_points"`
	Balance           int64                    `json:"balance"`
	TotalEarned       int64                    `json:"total_earned"`
	Tier              string                   `json:"tier"`
	Stamps            int                      `json:"stamps"`
	FreeServiceEarned bool                     `json:"free_service_earned"`
	Replayed          bool                     `json:"replayed"`
	Transaction       *models.PointTransaction `json:"transaction,omitempty"`
}

// BalanceView 账户余额视图（账户不存在时为零值）
type BalanceView struct {
	CustomerID  uint   `json:"customer_id"`
	BranchID    uint   `json:"branch_id"`
	Balance     int64  `json:"balance"`
	TotalEarned int64  `json:"total_earned"`
	Tier        string `json:"tier"`
	Stamps      int    `json:"stamps"`
}

// LedgerCheck 流水与余额核对结果
type LedgerCheck struct {
	Balance       int64 `json:"balance"`
	EarnedTotal   int64 `json:"earned_total"`
	RedeemedTotal int64 `json:"redeemed_total"`
	Consistent    bool  `json:"consistent"`
}

// NewPointLedgerService 创建积分账本服务
func NewPointLedgerService(pointRepo repository.PointRepository, configSvc *LoyaltyConfigService, opts LedgerOptions) *PointLedgerService {
	return &PointLedgerService{
		pointRepo: pointRepo,
		configSvc: configSvc,
		opts:      opts.normalize(),
		now:       defaultClock,
	}
}

// SetClock 替换时钟
func (s *PointLedgerService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Earn 按消费金额发放积分，同时推进等级与集章
func (s *PointLedgerService) Earn(ctx context.Context, input EarnInput) (*EarnResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	sourceRef := strings.TrimSpace(input.SourceRef)
	if input.CustomerID == 0 || input.BranchID == 0 || input.GrossAmount.IsNegative() || len(sourceRef) > maxSourceRefLength {
		return nil, ErrLedgerInvalidInput
	}
	log := logger.FromContext(ctx).With("customer_id", input.CustomerID, "branch_id", input.BranchID, "source_ref", sourceRef)

	policy, err := s.configSvc.Resolve(ctx, input.BranchID)
	if err != nil {
		metrics.ObserveLedger(opEarn, metrics.OutcomeError)
		return nil, err
	}
	rawPoints := RawPoints(input.GrossAmount.Decimal, policy.PointsPerBaht)
	reference := buildEarnReference(input.BranchID, input.CustomerID, sourceRef)
	description := cleanLedgerRemark(input.Description, defaultEarnRemark)

	var result *EarnResult
	err = runLedgerTx(ctx, s.pointRepo, s.opts, opEarn, func(tx *gorm.DB) error {
		repo := s.pointRepo.WithTx(tx)
		if reference != "" {
			existing, err := repo.GetTransactionByReference(reference)
			if err != nil {
				return err
			}
			if existing != nil {
				account, err := repo.GetAccount(input.CustomerID, input.BranchID)
				if err != nil {
					return err
				}
				result = replayedEarnResult(existing, account)
				return nil
			}
		}

		account, err := repo.GetAccountForUpdate(input.CustomerID, input.BranchID)
		if err != nil {
			return err
		}
		currentTier := constants.TierSilver
		if account != nil {
			currentTier = account.Tier
		}
		earned := EarnedPoints(rawPoints, MultiplierFor(currentTier, *policy))
		if earned <= 0 {
			result = zeroEarnResult(account)
			return nil
		}

		now := s.now()
		if account == nil {
			account = &models.PointAccount{
				CustomerID: input.CustomerID,
				BranchID:   input.BranchID,
				Tier:       constants.TierSilver,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			if err := repo.CreateAccount(account); err != nil {
				if repository.IsUniqueViolation(err) {
					return errLedgerConflict
				}
				return err
			}
		}

		expectedVersion := account.Version
		before := account.Balance
		account.Balance += earned
		account.TotalEarned += earned
		account.Tier = maxTier(account.Tier, TierFor(account.TotalEarned, *policy))
		account.Stamps = NextStamps(account.Stamps, policy.StampsForFreeWash)
		account.UpdatedAt = now
		ok, err := repo.UpdateAccountWithVersion(account, expectedVersion)
		if err != nil {
			return err
		}
		if !ok {
			return errLedgerConflict
		}

		txn := &models.PointTransaction{
			CustomerID:    input.CustomerID,
			BranchID:      input.BranchID,
			Type:          constants.PointTxnTypeEarn,
			Amount:        earned,
			BalanceBefore: before,
			BalanceAfter:  account.Balance,
			Description:   description,
			SourceRef:     sourceRef,
			GrossAmount:   models.NewMoneyFromDecimal(input.GrossAmount.Decimal),
			Reference:     optionalString(reference),
			CreatedAt:     now,
		}
		if err := repo.CreateTransaction(txn); err != nil {
			if repository.IsUniqueViolation(err) {
				return errLedgerConflict
			}
			return err
		}

		result = &EarnResult{
			EarnedPoints:      earned,
			Balance:           account.Balance,
			TotalEarned:       account.TotalEarned,
			Tier:              account.Tier,
			Stamps:            account.Stamps,
			FreeServiceEarned: account.Stamps == 0,
			Transaction:       txn,
		}
		return nil
	})
	if err != nil {
		metrics.ObserveLedger(opEarn, ledgerOutcome(err))
		log.Errorw("ledger_earn_failed", "error", err)
		return nil, err
	}

	switch {
	case result.Replayed:
		metrics.ObserveLedger(opEarn, metrics.OutcomeReplayed)
		log.Infow("ledger_earn_replayed", "earned_points", result.EarnedPoints)
	case result.EarnedPoints == 0:
		metrics.ObserveLedger(opEarn, metrics.OutcomeNoop)
		log.Debugw("ledger_earn_noop", "gross_amount", input.GrossAmount.String())
	default:
		metrics.ObserveLedger(opEarn, metrics.OutcomeSuccess)
		metrics.AddPoints(constants.PointTxnTypeEarn, result.EarnedPoints)
		log.Infow("ledger_earn_applied",
			"earned_points", result.EarnedPoints,
			"balance", result.Balance,
			"tier", result.Tier,
			"stamps", result.Stamps,
			"free_service_earned", result.FreeServiceEarned,
		)
	}
	return result, nil
}

// GetBalance 查询账户余额，账户不存在时返回零值
func (s *PointLedgerService) GetBalance(ctx context.Context, customerID, branchID uint) (*BalanceView, error) {
	if customerID == 0 || branchID == 0 {
		return nil, ErrLedgerInvalidInput
	}
	account, err := s.pointRepo.WithContext(ctx).GetAccount(customerID, branchID)
	if err != nil {
		return nil, classifyLedgerError(err)
	}
	view := &BalanceView{
		CustomerID: customerID,
		BranchID:   branchID,
		Tier:       constants.TierSilver,
	}
	if account != nil {
		view.Balance = account.Balance
		view.TotalEarned = account.TotalEarned
		view.Tier = account.Tier
		view.Stamps = account.Stamps
	}
	return view, nil
}

// ListTransactions 最近 limit 条流水，按提交顺序返回
func (s *PointLedgerService) ListTransactions(ctx context.Context, customerID, branchID uint, limit int) ([]models.PointTransaction, error) {
	if customerID == 0 || branchID == 0 {
		return nil, ErrLedgerInvalidInput
	}
	txns, err := s.pointRepo.WithContext(ctx).ListRecentTransactions(customerID, branchID, s.opts.clampLimit(limit))
	if err != nil {
		return nil, classifyLedgerError(err)
	}
	return txns, nil
}

// ListTransactionsPage 分页查询流水（新到旧）
func (s *PointLedgerService) ListTransactionsPage(ctx context.Context, filter repository.PointTransactionListFilter) ([]models.PointTransaction, int64, error) {
	if filter.CustomerID == 0 || filter.BranchID == 0 {
		return nil, 0, ErrLedgerInvalidInput
	}
	filter.PageSize = s.opts.clampLimit(filter.PageSize)
	txns, total, err := s.pointRepo.WithContext(ctx).ListTransactions(filter)
	if err != nil {
		return nil, 0, classifyLedgerError(err)
	}
	return txns, total, nil
}

// VerifyLedger 核对流水合计与账户余额
func (s *PointLedgerService) VerifyLedger(ctx context.Context, customerID, branchID uint) (*LedgerCheck, error) {
	view, err := s.GetBalance(ctx, customerID, branchID)
	if err != nil {
		return nil, err
	}
	earned, redeemed, err := s.pointRepo.WithContext(ctx).SumTransactionAmounts(customerID, branchID)
	if err != nil {
		return nil, classifyLedgerError(err)
	}
	check := &LedgerCheck{
		Balance:       view.Balance,
		EarnedTotal:   earned,
		RedeemedTotal: redeemed,
		Consistent:    earned-redeemed == view.Balance,
	}
	if !check.Consistent {
		logger.FromContext(ctx).Errorw("ledger_inconsistent",
			"customer_id", customerID,
			"branch_id", branchID,
			"balance", check.Balance,
			"earned_total", earned,
			"redeemed_total", redeemed,
		)
	}
	return check, nil
}

func replayedEarnResult(txn *models.PointTransaction, account *models.PointAccount) *EarnResult {
	result := zeroEarnResult(account)
	result.EarnedPoints = txn.Amount
	result.Replayed = true
	result.Transaction = txn
	return result
}

func zeroEarnResult(account *models.PointAccount) *EarnResult {
	result := &EarnResult{Tier: constants.TierSilver}
	if account != nil {
		result.Balance = account.Balance
		result.TotalEarned = account.TotalEarned
		result.Tier = account.Tier
		result.Stamps = account.Stamps
	}
	return result
}

// buildEarnReference 小票号按门店和顾客隔离
func buildEarnReference(branchID, customerID uint, sourceRef string) string {
	if sourceRef == "" {
		return ""
	}
	return fmt.Sprintf("earn:%d:%d:%s", branchID, customerID, sourceRef)
}

func buildRedeemReference(instanceID uint) string {
	return fmt.Sprintf("redeem:%d", instanceID)
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func cleanLedgerRemark(raw string, fallback string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return fallback
	}
	if len([]rune(trimmed)) > 255 {
		return string([]rune(trimmed)[:255])
	}
	return trimmed
}
