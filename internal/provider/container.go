package provider

import (
	"github.com/washpoint-loyalty/internal/cache"
	"github.com/washpoint-loyalty/internal/config"
	"github.com/washpoint-loyalty/internal/logger"
	"github.com/washpoint-loyalty/internal/models"
	"github.com/washpoint-loyalty/internal/queue"
	"github.com/washpoint-loyalty/internal/repository"
	"github.com/washpoint-loyalty/internal/service"

	"gorm.io/gorm"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	CustomerRepo       repository.CustomerRepository
	BranchRepo         repository.BranchRepository
	LoyaltyConfigRepo  repository.LoyaltyConfigRepository
	PointRepo          repository.PointRepository
	CouponTemplateRepo repository.CouponTemplateRepository
	CouponInstanceRepo repository.CouponInstanceRepository

	// Services
	CustomerService       *service.CustomerService
	BranchService         *service.BranchService
	LoyaltyConfigService  *service.LoyaltyConfigService
	PointLedgerService    *service.PointLedgerService
	CouponCatalogService  *service.CouponCatalogService
	RedemptionService     *service.RedemptionService
	CouponInstanceService *service.CouponInstanceService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := NewContainerWithDB(cfg, models.DB)
	c.QueueClient = queueClient
	return c
}

// NewContainerWithDB 使用指定连接组装仓储与服务（不初始化 Redis 与队列）
func NewContainerWithDB(cfg *config.Config, db *gorm.DB) *Container {
	c := &Container{Config: cfg}

	// 1. 初始化 Repositories
	c.initRepositories(db)

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories(db *gorm.DB) {
	c.CustomerRepo = repository.NewCustomerRepository(db)
	c.BranchRepo = repository.NewBranchRepository(db)
	c.LoyaltyConfigRepo = repository.NewLoyaltyConfigRepository(db)
	c.PointRepo = repository.NewPointRepository(db)
	c.CouponTemplateRepo = repository.NewCouponTemplateRepository(db)
	c.CouponInstanceRepo = repository.NewCouponInstanceRepository(db)
}

func (c *Container) initServices() {
	opts := service.NewLedgerOptions(c.Config.Loyalty)

	c.CustomerService = service.NewCustomerService(c.CustomerRepo)
	c.BranchService = service.NewBranchService(c.BranchRepo)
	c.LoyaltyConfigService = service.NewLoyaltyConfigService(c.LoyaltyConfigRepo, opts)
	c.PointLedgerService = service.NewPointLedgerService(c.PointRepo, c.LoyaltyConfigService, opts)
	c.CouponCatalogService = service.NewCouponCatalogService(c.CouponTemplateRepo, opts)
	c.RedemptionService = service.NewRedemptionService(c.PointRepo, c.CouponTemplateRepo, c.CouponInstanceRepo, c.CouponCatalogService, opts)
	c.CouponInstanceService = service.NewCouponInstanceService(c.CouponInstanceRepo, opts)
}
