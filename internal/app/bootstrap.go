package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/washpoint-loyalty/internal/config"
	"github.com/washpoint-loyalty/internal/logger"
	"github.com/washpoint-loyalty/internal/provider"
	"github.com/washpoint-loyalty/internal/router"
	"github.com/washpoint-loyalty/internal/worker"
)

// BuildRunner 构建服务运行器
func BuildRunner(cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	container := provider.NewContainer(cfg)

	// 保证全局默认积分策略存在
	global, created, err := container.LoyaltyConfigService.EnsureGlobalDefault(context.Background(), cfg.Loyalty.DefaultPolicy)
	if err != nil {
		return nil, fmt.Errorf("ensure global loyalty config: %w", err)
	}
	if created {
		logger.Infow("loyalty_global_config_created", "config_id", global.ID, "points_per_baht", global.PointsPerBaht)
	}

	var services []Service

	// 初始化 HTTP 服务
	if mode == ModeAll || mode == ModeAPI {
		engine := router.SetupRouter(cfg, container)
		addr := cfg.Server.Host + ":" + cfg.Server.Port
		httpService := NewHTTPService(addr, engine)
		services = append(services, httpService)
	}

	// 初始化 Worker 服务
	if mode == ModeAll || mode == ModeWorker {
		consumer := worker.NewConsumer(container)
		workerService, err := worker.NewService(&cfg.Queue, consumer)
		if err != nil {
			return nil, err
		}
		services = append(services, workerService)
	}

	// 如果没有服务被启动（例如模式错误或配置导致都没起），应该报错或至少打日志
	if len(services) == 0 {
		return nil, errors.New("no services initialized (check mode and config)")
	}

	return NewRunner(services...), nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	runner, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}

	addr := opts.Config.Server.Host + ":" + opts.Config.Server.Port
	opts.Logger.Infow("app_start", "addr", addr, "mode", opts.Mode)
	return RunWithOptions(runner, opts)
}
