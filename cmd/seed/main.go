package main

import (
	"context"
	"errors"

	"github.com/washpoint-loyalty/internal/config"
	"github.com/washpoint-loyalty/internal/constants"
	"github.com/washpoint-loyalty/internal/logger"
	"github.com/washpoint-loyalty/internal/models"
	"github.com/washpoint-loyalty/internal/provider"
	"github.com/washpoint-loyalty/internal/service"

	"github.com/shopspring/decimal"
)

type seedTemplate struct {
	Name           string
	RewardType     string
	RewardValue    int64
	PointsCost     int64
	MaxRedemptions *int64
	ValidDays      int
	BranchOnly     bool
}

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}, cfg.Database.LogLevel); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	ctx := context.Background()
	c := provider.NewContainerWithDB(cfg, models.DB)

	// 全局默认策略
	if _, created, err := c.LoyaltyConfigService.EnsureGlobalDefault(ctx, cfg.Loyalty.DefaultPolicy); err != nil {
		stdLog.Fatalf("Failed to seed global loyalty config: %v", err)
	} else if created {
		stdLog.Printf("Created global loyalty config")
	}

	// 门店
	branchNames := []string{"Sukhumvit 24", "Ratchada", "Bang Na"}
	branches := make([]*models.Branch, 0, len(branchNames))
	for _, name := range branchNames {
		branch, err := c.BranchService.Create(ctx, name, "")
		if err != nil {
			stdLog.Printf("Failed to create branch %s: %v", name, err)
			continue
		}
		stdLog.Printf("Created branch: %s (%s)", branch.Name, branch.Slug)
		branches = append(branches, branch)
	}
	if len(branches) == 0 {
		stdLog.Printf("No branches created, skip templates")
		return
	}

	// 旗舰店使用更高的积分门槛
	flagship := branches[0]
	if _, err := c.LoyaltyConfigService.Upsert(ctx, service.UpsertLoyaltyConfigInput{
		BranchID:           &flagship.ID,
		PointsPerBaht:      10,
		GoldThreshold:      200,
		PlatinumThreshold:  1000,
		GoldMultiplier:     decimal.RequireFromString("1.5"),
		PlatinumMultiplier: decimal.NewFromInt(2),
		StampsForFreeWash:  8,
	}); err != nil {
		stdLog.Printf("Failed to seed branch config for %s: %v", flagship.Slug, err)
	}

	limited := int64(50)
	templates := []seedTemplate{
		{Name: "Free exterior wash", RewardType: constants.RewardTypeFreeService, PointsCost: 100, ValidDays: 30},
		{Name: "50 THB off wax", RewardType: constants.RewardTypeFixedAmount, RewardValue: 50, PointsCost: 60, ValidDays: 60},
		{Name: "20% off interior detail", RewardType: constants.RewardTypePercent, RewardValue: 20, PointsCost: 150, MaxRedemptions: &limited, ValidDays: 14, BranchOnly: true},
	}
	for _, tpl := range templates {
		var scope *uint
		if tpl.BranchOnly {
			scope = &flagship.ID
		}
		created, err := c.CouponCatalogService.CreateTemplate(ctx, service.CreateCouponTemplateInput{
			Name:           tpl.Name,
			RewardType:     tpl.RewardType,
			RewardValue:    models.NewMoneyFromInt(tpl.RewardValue),
			PointsCost:     tpl.PointsCost,
			MaxRedemptions: tpl.MaxRedemptions,
			ValidDays:      tpl.ValidDays,
			BranchID:       scope,
			IsActive:       true,
		})
		if err != nil {
			if errors.Is(err, service.ErrLedgerInvalidInput) {
				stdLog.Printf("Invalid template %s: %v", tpl.Name, err)
				continue
			}
			stdLog.Printf("Failed to create template %s: %v", tpl.Name, err)
			continue
		}
		stdLog.Printf("Created template: %s (#%d)", created.Name, created.ID)
	}

	stdLog.Printf("Seed completed")
}
