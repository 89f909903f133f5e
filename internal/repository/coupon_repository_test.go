package repository

import (
	"testing"
	"time"

	"github.com/washpoint-loyalty/internal/constants"
	"github.com/washpoint-loyalty/internal/models"
)

func TestCouponTemplateRepositoryIncrementRespectsCap(t *testing.T) {
	db := setupLoyaltyRepositoryTest(t)
	repo := NewCouponTemplateRepository(db)
	max := int64(2)
	template := &models.CouponTemplate{
		Name:           "Free wash",
		RewardType:     constants.RewardTypeFreeService,
		PointsCost:     100,
		MaxRedemptions: &max,
		ValidDays:      30,
		IsActive:       true,
	}
	if err := repo.Create(template); err != nil {
		t.Fatalf("create template failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		ok, err := repo.IncrementRedemptions(template.ID)
		if err != nil || !ok {
			t.Fatalf("increment %d want ok, got ok=%v err=%v", i, ok, err)
		}
	}
	ok, err := repo.IncrementRedemptions(template.ID)
	if err != nil {
		t.Fatalf("increment beyond cap failed: %v", err)
	}
	if ok {
		t.Fatalf("increment beyond cap should not apply")
	}
	stored, _ := repo.GetByID(template.ID)
	if stored.CurrentRedemptions != 2 {
		t.Fatalf("current redemptions want 2 got %d", stored.CurrentRedemptions)
	}
}

func TestCouponTemplateRepositoryListAvailable(t *testing.T) {
	db := setupLoyaltyRepositoryTest(t)
	repo := NewCouponTemplateRepository(db)
	now := time.Now().UTC()
	past := now.Add(-time.Hour)
	future := now.Add(24 * time.Hour)
	branchA := uint(1)
	branchB := uint(2)
	zero := int64(0)

	templates := []*models.CouponTemplate{
		{Name: "global-expensive", RewardType: constants.RewardTypeFixedAmount, PointsCost: 500, ValidDays: 30, IsActive: true},
		{Name: "global-cheap", RewardType: constants.RewardTypeFixedAmount, PointsCost: 50, ValidDays: 30, IsActive: true, ExpiresAt: &future},
		{Name: "branch-a", RewardType: constants.RewardTypePercent, PointsCost: 100, ValidDays: 30, IsActive: true, BranchID: &branchA},
		{Name: "branch-b", RewardType: constants.RewardTypePercent, PointsCost: 100, ValidDays: 30, IsActive: true, BranchID: &branchB},
		{Name: "expired", RewardType: constants.RewardTypeFixedAmount, PointsCost: 10, ValidDays: 30, IsActive: true, ExpiresAt: &past},
		{Name: "sold-out", RewardType: constants.RewardTypeFixedAmount, PointsCost: 10, ValidDays: 30, IsActive: true, MaxRedemptions: &zero},
		{Name: "inactive", RewardType: constants.RewardTypeFixedAmount, PointsCost: 10, ValidDays: 30, IsActive: false},
	}
	for _, item := range templates {
		if err := repo.Create(item); err != nil {
			t.Fatalf("create template %s failed: %v", item.Name, err)
		}
	}

	rows, err := repo.ListAvailable(branchA, now)
	if err != nil {
		t.Fatalf("list available failed: %v", err)
	}
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, row.Name)
	}
	want := []string{"sold-out", "global-cheap", "branch-a", "global-expensive"}
	if len(names) != len(want) {
		t.Fatalf("available want %v got %v", want, names)
	}
	for idx := range want {
		if names[idx] != want[idx] {
			t.Fatalf("available want %v got %v", want, names)
		}
	}
}

func TestCouponInstanceRepositoryMarkUsedOnce(t *testing.T) {
	db := setupLoyaltyRepositoryTest(t)
	repo := NewCouponInstanceRepository(db)
	now := time.Now().UTC()
	instance := &models.CouponInstance{
		Code:       "WP-AAAA-BBBB",
		CustomerID: 1,
		BranchID:   1,
		TemplateID: 1,
		Status:     constants.CouponStatusAvailable,
		ExpiresAt:  now.Add(24 * time.Hour),
	}
	if err := repo.Create(instance); err != nil {
		t.Fatalf("create instance failed: %v", err)
	}

	exists, err := repo.ExistsByCode("WP-AAAA-BBBB")
	if err != nil || !exists {
		t.Fatalf("code should exist, err=%v", err)
	}

	ok, err := repo.MarkUsed(instance.ID, now)
	if err != nil || !ok {
		t.Fatalf("first mark used want ok, got ok=%v err=%v", ok, err)
	}
	ok, err = repo.MarkUsed(instance.ID, now)
	if err != nil {
		t.Fatalf("second mark used failed: %v", err)
	}
	if ok {
		t.Fatalf("second mark used should not apply")
	}
	ok, err = repo.MarkExpired(instance.ID, now.Add(48*time.Hour))
	if err != nil || ok {
		t.Fatalf("used coupon should not be marked expired, ok=%v err=%v", ok, err)
	}
}

func TestCouponInstanceRepositoryIdempotencyLookup(t *testing.T) {
	db := setupLoyaltyRepositoryTest(t)
	repo := NewCouponInstanceRepository(db)
	key := "tap-123"
	instance := &models.CouponInstance{
		Code:           "WP-CCCC-DDDD",
		CustomerID:     9,
		BranchID:       1,
		TemplateID:     1,
		Status:         constants.CouponStatusAvailable,
		ExpiresAt:      time.Now().UTC().Add(time.Hour),
		IdempotencyKey: &key,
	}
	if err := repo.Create(instance); err != nil {
		t.Fatalf("create instance failed: %v", err)
	}
	found, err := repo.GetByIdempotencyKey(9, key)
	if err != nil || found == nil || found.ID != instance.ID {
		t.Fatalf("lookup by key mismatch: %+v err=%v", found, err)
	}
	other, err := repo.GetByIdempotencyKey(10, key)
	if err != nil || other != nil {
		t.Fatalf("other customer should not see key, got %+v err=%v", other, err)
	}

	sameKeyOther := &models.CouponInstance{
		Code:           "WP-EEEE-FFFF",
		CustomerID:     10,
		BranchID:       1,
		TemplateID:     1,
		Status:         constants.CouponStatusAvailable,
		ExpiresAt:      time.Now().UTC().Add(time.Hour),
		IdempotencyKey: &key,
	}
	if err := repo.Create(sameKeyOther); err != nil {
		t.Fatalf("another customer may reuse the key, got %v", err)
	}
	dup := &models.CouponInstance{
		Code:           "WP-GGGG-HHHH",
		CustomerID:     9,
		BranchID:       1,
		TemplateID:     1,
		Status:         constants.CouponStatusAvailable,
		ExpiresAt:      time.Now().UTC().Add(time.Hour),
		IdempotencyKey: &key,
	}
	if err := repo.Create(dup); !IsUniqueViolation(err) {
		t.Fatalf("same customer and key should be unique violation, got %v", err)
	}
}

func TestLoyaltyConfigRepositoryBranchAndGlobal(t *testing.T) {
	db := setupLoyaltyRepositoryTest(t)
	repo := NewLoyaltyConfigRepository(db)
	branchID := uint(5)

	global, err := repo.GetGlobal()
	if err != nil || global != nil {
		t.Fatalf("empty global want nil, got %+v err=%v", global, err)
	}
	if err := repo.Save(&models.LoyaltyConfig{PointsPerBaht: 10, StampsForFreeWash: 10}); err != nil {
		t.Fatalf("save global failed: %v", err)
	}
	if err := repo.Save(&models.LoyaltyConfig{BranchID: &branchID, PointsPerBaht: 5, StampsForFreeWash: 8}); err != nil {
		t.Fatalf("save branch failed: %v", err)
	}

	branchCfg, err := repo.GetByBranch(branchID)
	if err != nil || branchCfg == nil || branchCfg.PointsPerBaht != 5 {
		t.Fatalf("branch cfg mismatch: %+v err=%v", branchCfg, err)
	}
	missing, err := repo.GetByBranch(99)
	if err != nil || missing != nil {
		t.Fatalf("missing branch cfg want nil, got %+v err=%v", missing, err)
	}
	global, err = repo.GetGlobal()
	if err != nil || global == nil || !global.IsGlobal() || global.PointsPerBaht != 10 {
		t.Fatalf("global cfg mismatch: %+v err=%v", global, err)
	}
}
