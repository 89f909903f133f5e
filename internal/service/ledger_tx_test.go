package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/washpoint-loyalty/internal/config"
	"github.com/washpoint-loyalty/internal/metrics"
	"github.com/washpoint-loyalty/internal/models"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"gorm.io/gorm"
)

type fakeTxRunner struct {
	errs  []error
	calls int
}

func (r *fakeTxRunner) Transaction(_ context.Context, fn func(tx *gorm.DB) error) error {
	r.calls++
	if r.calls <= len(r.errs) && r.errs[r.calls-1] != nil {
		return r.errs[r.calls-1]
	}
	return fn(nil)
}

func TestRunLedgerTxRetriesConflict(t *testing.T) {
	runner := &fakeTxRunner{errs: []error{errLedgerConflict, errLedgerConflict}}
	executed := 0
	err := runLedgerTx(context.Background(), runner, LedgerOptions{MaxCommitAttempts: 3}, "test", func(tx *gorm.DB) error {
		executed++
		return nil
	})
	if err != nil {
		t.Fatalf("want success after retries, got %v", err)
	}
	if runner.calls != 3 || executed != 1 {
		t.Fatalf("calls=%d executed=%d", runner.calls, executed)
	}
}

func TestRunLedgerTxExhaustsAttempts(t *testing.T) {
	runner := &fakeTxRunner{errs: []error{errLedgerConflict, errLedgerConflict, errLedgerConflict}}
	err := runLedgerTx(context.Background(), runner, LedgerOptions{MaxCommitAttempts: 3}, "test", func(tx *gorm.DB) error {
		return nil
	})
	if !errors.Is(err, ErrLedgerUnavailable) {
		t.Fatalf("want ErrLedgerUnavailable, got %v", err)
	}
	if runner.calls != 3 {
		t.Fatalf("want 3 attempts got %d", runner.calls)
	}
}

func TestRunLedgerTxDoesNotRetryRejections(t *testing.T) {
	runner := &fakeTxRunner{errs: []error{ErrInsufficientPoints}}
	err := runLedgerTx(context.Background(), runner, LedgerOptions{MaxCommitAttempts: 3}, "test", func(tx *gorm.DB) error {
		return nil
	})
	if !errors.Is(err, ErrInsufficientPoints) {
		t.Fatalf("want ErrInsufficientPoints, got %v", err)
	}
	if runner.calls != 1 {
		t.Fatalf("rejection must not retry, calls=%d", runner.calls)
	}
}

func TestRunLedgerTxWrapsUnknownErrors(t *testing.T) {
	boom := errors.New("disk full")
	runner := &fakeTxRunner{errs: []error{boom}}
	err := runLedgerTx(context.Background(), runner, LedgerOptions{MaxCommitAttempts: 3}, "test", func(tx *gorm.DB) error {
		return nil
	})
	if !errors.Is(err, ErrLedgerInternal) || !errors.Is(err, boom) {
		t.Fatalf("want wrapped internal error, got %v", err)
	}
}

func TestRunLedgerTxStopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	runner := &fakeTxRunner{errs: []error{errLedgerConflict, errLedgerConflict}}
	err := runLedgerTx(ctx, runner, LedgerOptions{MaxCommitAttempts: 3, RetryBackoff: time.Second}, "test", func(tx *gorm.DB) error {
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}

func TestNewLedgerOptionsNormalizes(t *testing.T) {
	opts := NewLedgerOptions(config.LoyaltyConfig{TransactionListDefault: 500, TransactionListMax: 50})
	if opts.MaxCommitAttempts != defaultMaxCommitAttempts || opts.CodeGenerateAttempts != defaultCodeGenerateAttempts {
		t.Fatalf("defaults not applied: %+v", opts)
	}
	if opts.TransactionListDefault != 50 {
		t.Fatalf("default limit should clamp to max, got %d", opts.TransactionListDefault)
	}
	if opts.clampLimit(0) != 50 || opts.clampLimit(1000) != 50 || opts.clampLimit(7) != 7 {
		t.Fatalf("clamp limit mismatch")
	}
}

// 在版本号 CAS 更新前抢先改写版本，模拟并发写入已提交
func TestPointLedgerEarnRecoversFromStaleVersion(t *testing.T) {
	f := setupLoyaltyServiceTest(t)
	seedGlobalPolicy(t, f)
	earnBaht(t, f, 1, 1, 300, "bill-1")

	bumped := false
	err := f.db.Callback().Update().Before("gorm:update").Register("test:stale_point_account", func(tx *gorm.DB) {
		if bumped || tx.Statement.Table != "point_accounts" {
			return
		}
		bumped = true
		tx.Session(&gorm.Session{NewDB: true}).Exec("UPDATE point_accounts SET version = version + 1")
	})
	if err != nil {
		t.Fatalf("register callback failed: %v", err)
	}
	t.Cleanup(func() {
		_ = f.db.Callback().Update().Remove("test:stale_point_account")
	})

	retries := metrics.CommitRetriesTotal.WithLabelValues(opEarn)
	before := testutil.ToFloat64(retries)
	result := earnBaht(t, f, 1, 1, 200, "bill-2")
	if !bumped {
		t.Fatalf("stale version was never injected")
	}
	if got := testutil.ToFloat64(retries) - before; got != 1 {
		t.Fatalf("want exactly one commit retry, got %v", got)
	}
	if result.Replayed || result.EarnedPoints != 20 || result.Balance != 50 {
		t.Fatalf("unexpected earn result after retry: %+v", result)
	}

	var account models.PointAccount
	if err := f.db.Where("customer_id = ? AND branch_id = ?", 1, 1).First(&account).Error; err != nil {
		t.Fatalf("load account failed: %v", err)
	}
	if account.Balance != 50 || account.Version != 2 {
		t.Fatalf("account want balance 50 version 2, got balance %d version %d", account.Balance, account.Version)
	}
	var txns int64
	f.db.Model(&models.PointTransaction{}).Where("customer_id = ?", 1).Count(&txns)
	if txns != 2 {
		t.Fatalf("retry must not duplicate transactions, got %d", txns)
	}
	check, err := f.ledger.VerifyLedger(context.Background(), 1, 1)
	if err != nil || !check.Consistent {
		t.Fatalf("ledger inconsistent after retry: %+v err=%v", check, err)
	}
}
