package service

import (
	"testing"

	"github.com/washpoint-loyalty/internal/constants"

	"github.com/shopspring/decimal"
)

func testPolicy() LoyaltyPolicy {
	return LoyaltyPolicy{
		PointsPerBaht:      10,
		GoldThreshold:      100,
		PlatinumThreshold:  500,
		GoldMultiplier:     decimal.RequireFromString("1.5"),
		PlatinumMultiplier: decimal.RequireFromString("2"),
		StampsForFreeWash:  10,
	}
}

func TestTierForThresholds(t *testing.T) {
	policy := testPolicy()
	cases := []struct {
		total int64
		want  string
	}{
		{0, constants.TierSilver},
		{99, constants.TierSilver},
		{100, constants.TierGold},
		{499, constants.TierGold},
		{500, constants.TierPlatinum},
		{100000, constants.TierPlatinum},
	}
	for _, tc := range cases {
		if got := TierFor(tc.total, policy); got != tc.want {
			t.Fatalf("TierFor(%d) want %s got %s", tc.total, tc.want, got)
		}
	}
}

func TestMultiplierFor(t *testing.T) {
	policy := testPolicy()
	if !MultiplierFor(constants.TierSilver, policy).Equal(decimal.NewFromInt(1)) {
		t.Fatalf("silver multiplier should be 1")
	}
	if !MultiplierFor(constants.TierGold, policy).Equal(decimal.RequireFromString("1.5")) {
		t.Fatalf("gold multiplier mismatch")
	}
	if !MultiplierFor(constants.TierPlatinum, policy).Equal(decimal.NewFromInt(2)) {
		t.Fatalf("platinum multiplier mismatch")
	}
}

func TestMaxTierNeverDowngrades(t *testing.T) {
	if got := maxTier(constants.TierPlatinum, constants.TierGold); got != constants.TierPlatinum {
		t.Fatalf("platinum must stay platinum, got %s", got)
	}
	if got := maxTier(constants.TierSilver, constants.TierGold); got != constants.TierGold {
		t.Fatalf("silver should upgrade to gold, got %s", got)
	}
	if got := maxTier("", constants.TierSilver); got != constants.TierSilver {
		t.Fatalf("empty tier should take computed, got %s", got)
	}
}

func TestRawAndEarnedPoints(t *testing.T) {
	if got := RawPoints(decimal.NewFromInt(250), 10); got != 25 {
		t.Fatalf("raw points for 250 want 25 got %d", got)
	}
	if got := RawPoints(decimal.RequireFromString("9.99"), 10); got != 0 {
		t.Fatalf("raw points below divisor want 0 got %d", got)
	}
	if got := RawPoints(decimal.NewFromInt(-50), 10); got != 0 {
		t.Fatalf("negative gross want 0 got %d", got)
	}
	if got := EarnedPoints(10, decimal.RequireFromString("1.5")); got != 15 {
		t.Fatalf("earned for raw 10 x1.5 want 15 got %d", got)
	}
	if got := EarnedPoints(3, decimal.RequireFromString("1.5")); got != 4 {
		t.Fatalf("earned for raw 3 x1.5 want floor(4.5)=4 got %d", got)
	}
}

func TestNextStampsCycles(t *testing.T) {
	stamps := 0
	for i := 1; i <= 23; i++ {
		stamps = NextStamps(stamps, 10)
		if stamps != i%10 {
			t.Fatalf("after %d earns want %d got %d", i, i%10, stamps)
		}
	}
	if NextStamps(12, 10) != 3 {
		t.Fatalf("stale counter beyond cycle should wrap")
	}
	if NextStamps(5, 0) != 0 {
		t.Fatalf("zero cycle should reset")
	}
}
