package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/washpoint-loyalty/internal/constants"
	"github.com/washpoint-loyalty/internal/models"
	"github.com/washpoint-loyalty/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type loyaltyServiceFixture struct {
	db         *gorm.DB
	configs    *LoyaltyConfigService
	ledger     *PointLedgerService
	catalog    *CouponCatalogService
	redemption *RedemptionService
	coupons    *CouponInstanceService
	customers  *CustomerService
	branches   *BranchService
	clock      *testClock
}

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func setupLoyaltyServiceTest(t *testing.T) *loyaltyServiceFixture {
	t.Helper()
	dsn := fmt.Sprintf("file:loyalty_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := models.MigrateModels(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	opts := LedgerOptions{MaxCommitAttempts: 5}
	pointRepo := repository.NewPointRepository(db)
	templateRepo := repository.NewCouponTemplateRepository(db)
	instanceRepo := repository.NewCouponInstanceRepository(db)

	clock := &testClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	configs := NewLoyaltyConfigService(repository.NewLoyaltyConfigRepository(db), opts)
	ledger := NewPointLedgerService(pointRepo, configs, opts)
	ledger.SetClock(clock.Now)
	catalog := NewCouponCatalogService(templateRepo, opts)
	catalog.SetClock(clock.Now)
	redemption := NewRedemptionService(pointRepo, templateRepo, instanceRepo, catalog, opts)
	redemption.SetClock(clock.Now)
	coupons := NewCouponInstanceService(instanceRepo, opts)
	coupons.SetClock(clock.Now)

	return &loyaltyServiceFixture{
		db:         db,
		configs:    configs,
		ledger:     ledger,
		catalog:    catalog,
		redemption: redemption,
		coupons:    coupons,
		customers:  NewCustomerService(repository.NewCustomerRepository(db)),
		branches:   NewBranchService(repository.NewBranchRepository(db)),
		clock:      clock,
	}
}

// seedGlobalPolicy 每 10 泰铢 1 分，金卡 100，白金 500
func seedGlobalPolicy(t *testing.T, f *loyaltyServiceFixture) {
	t.Helper()
	_, err := f.configs.Upsert(context.Background(), UpsertLoyaltyConfigInput{
		PointsPerBaht:      10,
		GoldThreshold:      100,
		PlatinumThreshold:  500,
		GoldMultiplier:     decimal.RequireFromString("1.5"),
		PlatinumMultiplier: decimal.NewFromInt(2),
		StampsForFreeWash:  10,
	})
	if err != nil {
		t.Fatalf("seed global policy failed: %v", err)
	}
}

func earnBaht(t *testing.T, f *loyaltyServiceFixture, customerID, branchID uint, baht int64, sourceRef string) *EarnResult {
	t.Helper()
	result, err := f.ledger.Earn(context.Background(), EarnInput{
		CustomerID:  customerID,
		BranchID:    branchID,
		GrossAmount: models.NewMoneyFromInt(baht),
		SourceRef:   sourceRef,
	})
	if err != nil {
		t.Fatalf("earn %d baht failed: %v", baht, err)
	}
	return result
}

func createTemplate(t *testing.T, f *loyaltyServiceFixture, input CreateCouponTemplateInput) *models.CouponTemplate {
	t.Helper()
	if input.Name == "" {
		input.Name = "Free wash"
	}
	if input.RewardType == "" {
		input.RewardType = constants.RewardTypeFreeService
	}
	if input.ValidDays == 0 {
		input.ValidDays = 30
	}
	template, err := f.catalog.CreateTemplate(context.Background(), input)
	if err != nil {
		t.Fatalf("create template failed: %v", err)
	}
	return template
}

func int64Ptr(v int64) *int64 {
	return &v
}

func uintPtr(v uint) *uint {
	return &v
}
