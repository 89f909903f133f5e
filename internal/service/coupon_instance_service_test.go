package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/washpoint-loyalty/internal/constants"
	"github.com/washpoint-loyalty/internal/models"
)

func issueTestCoupon(t *testing.T, f *loyaltyServiceFixture, customerID, branchID uint) *models.CouponInstance {
	t.Helper()
	earnBaht(t, f, customerID, branchID, 1000, "seed-coupon")
	template := createTemplate(t, f, CreateCouponTemplateInput{PointsCost: 100, IsActive: true, ValidDays: 30})
	instance, err := f.redemption.Redeem(context.Background(), RedeemInput{
		CustomerID: customerID,
		BranchID:   branchID,
		TemplateID: template.ID,
	})
	if err != nil {
		t.Fatalf("issue coupon failed: %v", err)
	}
	return instance
}

func TestCouponUseByCodeOnce(t *testing.T) {
	f := setupLoyaltyServiceTest(t)
	seedGlobalPolicy(t, f)
	ctx := context.Background()
	instance := issueTestCoupon(t, f, 1, 1)

	used, err := f.coupons.UseByCode(ctx, strings.ToLower(instance.Code), 1, f.clock.Now())
	if err != nil {
		t.Fatalf("use coupon failed: %v", err)
	}
	if used.Status != constants.CouponStatusUsed || used.UsedAt == nil {
		t.Fatalf("coupon should be used, got %+v", used)
	}
	if used.Template == nil {
		t.Fatalf("used coupon should carry template")
	}

	if _, err := f.coupons.UseByCode(ctx, instance.Code, 1, f.clock.Now()); !errors.Is(err, ErrCouponAlreadyUsed) {
		t.Fatalf("second use want ErrCouponAlreadyUsed, got %v", err)
	}
}

func TestCouponUseByCodeExpiredScenario(t *testing.T) {
	f := setupLoyaltyServiceTest(t)
	seedGlobalPolicy(t, f)
	ctx := context.Background()
	instance := issueTestCoupon(t, f, 1, 1)

	later := f.clock.Now().Add(31 * 24 * time.Hour)
	if _, err := f.coupons.UseByCode(ctx, instance.Code, 1, later); !errors.Is(err, ErrCouponExpired) {
		t.Fatalf("want ErrCouponExpired, got %v", err)
	}

	var stored models.CouponInstance
	if err := f.db.First(&stored, instance.ID).Error; err != nil {
		t.Fatalf("reload coupon failed: %v", err)
	}
	if stored.Status != constants.CouponStatusExpired || stored.UsedAt != nil {
		t.Fatalf("coupon should be expired and unused, got %+v", stored)
	}
	if _, err := f.coupons.UseByCode(ctx, instance.Code, 1, later); !errors.Is(err, ErrCouponExpired) {
		t.Fatalf("expired coupon want ErrCouponExpired again, got %v", err)
	}
}

func TestCouponUseByCodeUnknownOrOtherBranch(t *testing.T) {
	f := setupLoyaltyServiceTest(t)
	seedGlobalPolicy(t, f)
	ctx := context.Background()
	instance := issueTestCoupon(t, f, 1, 1)

	if _, err := f.coupons.UseByCode(ctx, "WP-ZZZZ-ZZZZ", 1, f.clock.Now()); !errors.Is(err, ErrCouponNotFound) {
		t.Fatalf("unknown code want ErrCouponNotFound, got %v", err)
	}
	if _, err := f.coupons.UseByCode(ctx, "   ", 1, f.clock.Now()); !errors.Is(err, ErrCouponNotFound) {
		t.Fatalf("blank code want ErrCouponNotFound, got %v", err)
	}
	if _, err := f.coupons.UseByCode(ctx, instance.Code, 2, f.clock.Now()); !errors.Is(err, ErrCouponNotFound) {
		t.Fatalf("other branch want ErrCouponNotFound, got %v", err)
	}
	preview, err := f.coupons.GetByCode(ctx, instance.Code, 1)
	if err != nil || preview.Status != constants.CouponStatusAvailable {
		t.Fatalf("coupon should still be available, got %+v err=%v", preview, err)
	}
}

func TestCouponUseByCodeConcurrentScansSucceedOnce(t *testing.T) {
	f := setupLoyaltyServiceTest(t)
	seedGlobalPolicy(t, f)
	ctx := context.Background()
	instance := issueTestCoupon(t, f, 1, 1)

	var wg sync.WaitGroup
	results := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.coupons.UseByCode(ctx, instance.Code, 1, f.clock.Now())
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	success := 0
	for err := range results {
		if err == nil {
			success++
			continue
		}
		if !errors.Is(err, ErrCouponAlreadyUsed) {
			t.Fatalf("unexpected use error: %v", err)
		}
	}
	if success != 1 {
		t.Fatalf("exactly one scan should succeed, got %d", success)
	}
}

func TestCouponListMyCouponsDerivesStatus(t *testing.T) {
	f := setupLoyaltyServiceTest(t)
	seedGlobalPolicy(t, f)
	ctx := context.Background()
	instance := issueTestCoupon(t, f, 1, 1)

	coupons, err := f.coupons.ListMyCoupons(ctx, 1, 1)
	if err != nil {
		t.Fatalf("list coupons failed: %v", err)
	}
	if len(coupons) != 1 || coupons[0].ID != instance.ID || coupons[0].Status != constants.CouponStatusAvailable {
		t.Fatalf("unexpected coupons: %+v", coupons)
	}

	f.clock.Advance(40 * 24 * time.Hour)
	coupons, err = f.coupons.ListMyCoupons(ctx, 1, 1)
	if err != nil {
		t.Fatalf("list coupons failed: %v", err)
	}
	if coupons[0].Status != constants.CouponStatusExpired {
		t.Fatalf("status want EXPIRED got %s", coupons[0].Status)
	}

	other, err := f.coupons.ListMyCoupons(ctx, 1, 2)
	if err != nil || len(other) != 0 {
		t.Fatalf("other branch should have no coupons, got %d err=%v", len(other), err)
	}
}
