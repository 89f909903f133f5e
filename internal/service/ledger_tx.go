package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/washpoint-loyalty/internal/config"
	"github.com/washpoint-loyalty/internal/logger"
	"github.com/washpoint-loyalty/internal/metrics"
	"github.com/washpoint-loyalty/internal/repository"

	"gorm.io/gorm"
)

const (
	defaultMaxCommitAttempts    = 3
	defaultCodeGenerateAttempts = 8
	defaultTransactionListLimit = 20
	maxTransactionListLimit     = 100
)

// LedgerOptions 积分引擎运行参数
type LedgerOptions struct {
	MaxCommitAttempts      int
	RetryBackoff           time.Duration
	CodeGenerateAttempts   int
	ConfigCacheTTL         time.Duration
	CatalogCacheTTL        time.Duration
	TransactionListDefault int
	TransactionListMax     int
}

// NewLedgerOptions 从应用配置构建运行参数
func NewLedgerOptions(cfg config.LoyaltyConfig) LedgerOptions {
	return LedgerOptions{
		MaxCommitAttempts:      cfg.MaxCommitAttempts,
		RetryBackoff:           cfg.RetryBackoff(),
		CodeGenerateAttempts:   cfg.CodeGenerateAttempts,
		ConfigCacheTTL:         cfg.ConfigCacheTTL(),
		CatalogCacheTTL:        cfg.CatalogCacheTTL(),
		TransactionListDefault: cfg.TransactionListDefault,
		TransactionListMax:     cfg.TransactionListMax,
	}.normalize()
}

func (o LedgerOptions) normalize() LedgerOptions {
	if o.MaxCommitAttempts <= 0 {
		o.MaxCommitAttempts = defaultMaxCommitAttempts
	}
	if o.CodeGenerateAttempts <= 0 {
		o.CodeGenerateAttempts = defaultCodeGenerateAttempts
	}
	if o.TransactionListMax <= 0 {
		o.TransactionListMax = maxTransactionListLimit
	}
	if o.TransactionListDefault <= 0 {
		o.TransactionListDefault = defaultTransactionListLimit
	}
	if o.TransactionListDefault > o.TransactionListMax {
		o.TransactionListDefault = o.TransactionListMax
	}
	return o
}

// clampLimit 规范化流水条数
func (o LedgerOptions) clampLimit(limit int) int {
	if limit <= 0 {
		return o.TransactionListDefault
	}
	if limit > o.TransactionListMax {
		return o.TransactionListMax
	}
	return limit
}

type txRunner interface {
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// runLedgerTx 执行一次完整事务，写冲突时整体重试，业务拒绝原样返回
func runLedgerTx(ctx context.Context, runner txRunner, opts LedgerOptions, operation string, fn func(tx *gorm.DB) error) error {
	attempts := opts.MaxCommitAttempts
	if attempts <= 0 {
		attempts = defaultMaxCommitAttempts
	}
	for attempt := 1; ; attempt++ {
		err := runner.Transaction(ctx, fn)
		if err == nil {
			return nil
		}
		if !errors.Is(err, errLedgerConflict) && !repository.IsRetryableTxError(err) {
			return classifyLedgerError(err)
		}
		if attempt >= attempts {
			logger.FromContext(ctx).Warnw("ledger_commit_retries_exhausted",
				"operation", operation,
				"attempts", attempt,
				"error", err,
			)
			return ErrLedgerUnavailable
		}
		metrics.CommitRetriesTotal.WithLabelValues(operation).Inc()
		if err := sleepWithContext(ctx, opts.RetryBackoff*time.Duration(attempt)); err != nil {
			return err
		}
	}
}

func classifyLedgerError(err error) error {
	if err == nil {
		return nil
	}
	if isKnownServiceError(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrLedgerInternal, err)
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func defaultClock() time.Time {
	return time.Now().UTC()
}

// ledgerOutcome 业务结果对应的指标标签
func ledgerOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case IsBusinessRejection(err):
		return metrics.OutcomeRejected
	default:
		return metrics.OutcomeError
	}
}
