package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestSetDefaultsLoyaltySection(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		t.Fatalf("unmarshal defaults failed: %v", err)
	}
	if cfg.Loyalty.MaxCommitAttempts != 3 {
		t.Fatalf("max commit attempts want 3 got %d", cfg.Loyalty.MaxCommitAttempts)
	}
	if cfg.Loyalty.CodeGenerateAttempts != 8 {
		t.Fatalf("code attempts want 8 got %d", cfg.Loyalty.CodeGenerateAttempts)
	}
	if cfg.Loyalty.DefaultPolicy.PointsPerBaht != 10 || cfg.Loyalty.DefaultPolicy.GoldMultiplier != "1.5" {
		t.Fatalf("unexpected default policy: %+v", cfg.Loyalty.DefaultPolicy)
	}
	if cfg.Loyalty.RetryBackoff() != 20*time.Millisecond {
		t.Fatalf("retry backoff want 20ms got %s", cfg.Loyalty.RetryBackoff())
	}
	if cfg.Loyalty.CatalogCacheTTL() != 15*time.Second {
		t.Fatalf("catalog ttl want 15s got %s", cfg.Loyalty.CatalogCacheTTL())
	}
	if cfg.Security.RedeemRateLimit.MaxAttempts != 10 {
		t.Fatalf("redeem rate limit want 10 got %d", cfg.Security.RedeemRateLimit.MaxAttempts)
	}
	if cfg.Security.CouponUseRateLimit.BlockSeconds != 300 {
		t.Fatalf("coupon use block seconds want 300 got %d", cfg.Security.CouponUseRateLimit.BlockSeconds)
	}
	if cfg.Queue.Queues["critical"] != 6 {
		t.Fatalf("critical queue weight want 6 got %d", cfg.Queue.Queues["critical"])
	}
}

func TestEnvOverridesDefaults(t *testing.T) {
	t.Setenv("LOYALTY_MAX_COMMIT_ATTEMPTS", "5")
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(envKeyReplacer())

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if cfg.Loyalty.MaxCommitAttempts != 5 {
		t.Fatalf("env override want 5 got %d", cfg.Loyalty.MaxCommitAttempts)
	}
}

func TestLoyaltyConfigDurationsZero(t *testing.T) {
	var cfg LoyaltyConfig
	if cfg.RetryBackoff() != 0 || cfg.ConfigCacheTTL() != 0 {
		t.Fatalf("zero config should produce zero durations")
	}
}
