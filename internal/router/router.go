package router

import (
	"fmt"
	"strings"

	"github.com/washpoint-loyalty/internal/cache"
	"github.com/washpoint-loyalty/internal/config"
	"github.com/washpoint-loyalty/internal/constants"
	publichandlers "github.com/washpoint-loyalty/internal/http/handlers/public"
	staffhandlers "github.com/washpoint-loyalty/internal/http/handlers/staff"
	"github.com/washpoint-loyalty/internal/http/response"
	"github.com/washpoint-loyalty/internal/logger"
	"github.com/washpoint-loyalty/internal/provider"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultMetricsPath = "/metrics"

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	RegisterValidators()
	r := gin.New()

	// 初始化 Handler（按顾客端/门店端分组）
	publicHandler := publichandlers.New(c)
	staffHandler := staffhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "wp"
	}
	redisClient := cache.Client()
	redeemRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:%s", redisPrefix, constants.CacheKeyRedeemRateRule),
		WindowSeconds: cfg.Security.RedeemRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.RedeemRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.RedeemRateLimit.BlockSeconds,
		MessageKey:    "error.rate_limited",
	}
	couponUseRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:%s", redisPrefix, constants.CacheKeyCouponUseRateRule),
		WindowSeconds: cfg.Security.CouponUseRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.CouponUseRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.CouponUseRateLimit.BlockSeconds,
		MessageKey:    "error.rate_limited",
	}

	// 中间件
	r.Use(RecoveryMiddleware())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))
	if cfg.Metrics.Enabled {
		r.Use(MetricsMiddleware())
		metricsPath := strings.TrimSpace(cfg.Metrics.Path)
		if metricsPath == "" {
			metricsPath = defaultMetricsPath
		}
		r.GET(metricsPath, gin.WrapH(promhttp.Handler()))
	}

	r.GET("/healthz", func(ctx *gin.Context) {
		response.Success(ctx, gin.H{"status": "ok"})
	})

	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		public := apiV1.Group("/public")
		{
			public.GET("/branches", publicHandler.ListBranches)
			public.GET("/branches/slug/:slug", publicHandler.GetBranchBySlug)
			public.GET("/branches/:branch_id/coupons", publicHandler.ListBranchCoupons)
			public.GET("/branches/:branch_id/coupons/:template_id/availability", publicHandler.CheckCouponAvailability)
		}

		// 顾客钱包接口
		customer := apiV1.Group("/customers/:customer_id/branches/:branch_id")
		{
			customer.GET("/points", publicHandler.GetPoints)
			customer.GET("/transactions", publicHandler.ListTransactions)
			customer.GET("/coupons", publicHandler.ListMyCoupons)
			customer.POST("/redemptions",
				RateLimitMiddleware(redisClient, redeemRule, KeyByParamAndIP("customer_id", "branch_id")),
				publicHandler.Redeem,
			)
		}

		// 门店接口
		staff := apiV1.Group("/staff")
		{
			staff.POST("/branches", staffHandler.CreateBranch)
			staff.GET("/customers", staffHandler.LookupCustomers)
			staff.POST("/customers", staffHandler.RegisterCustomer)
			staff.PUT("/templates/:template_id/active", staffHandler.SetTemplateActive)

			branch := staff.Group("/branches/:branch_id")
			{
				branch.POST("/earn", staffHandler.Earn)
				branch.POST("/coupons/use",
					RateLimitMiddleware(redisClient, couponUseRule, KeyByIPAndJSONField("code")),
					staffHandler.UseCoupon,
				)
				branch.GET("/coupons/:code", staffHandler.PreviewCoupon)
				branch.GET("/templates", staffHandler.ListTemplates)
				branch.POST("/templates", staffHandler.CreateTemplate)
				branch.GET("/config", staffHandler.GetLoyaltyConfig)
				branch.PUT("/config", staffHandler.UpsertLoyaltyConfig)
				branch.GET("/customers/:customer_id/ledger-check", staffHandler.CheckLedger)
			}
		}
	}

	return r
}
