package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/washpoint-loyalty/internal/logger"
	"github.com/washpoint-loyalty/internal/models"
	"github.com/washpoint-loyalty/internal/provider"
	"github.com/washpoint-loyalty/internal/queue"
	"github.com/washpoint-loyalty/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskLoyaltyEarn, c.handleLoyaltyEarn)
}

func (c *Consumer) handleLoyaltyEarn(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_loyalty_earn_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseLoyaltyEarnPayload(task)
	if err != nil {
		logger.Warnw("worker_loyalty_earn_unmarshal_failed", "error", err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	if payload.CustomerID == 0 || payload.BranchID == 0 {
		logger.Warnw("worker_loyalty_earn_skip_invalid_payload",
			"customer_id", payload.CustomerID,
			"branch_id", payload.BranchID,
		)
		return nil
	}
	gross, err := models.NewMoneyFromString(payload.GrossAmount)
	if err != nil {
		logger.Warnw("worker_loyalty_earn_invalid_amount", "gross_amount", payload.GrossAmount, "error", err)
		return nil
	}
	if c.PointLedgerService == nil {
		logger.Warnw("worker_loyalty_earn_skip_ledger_service_nil", "source_ref", payload.SourceRef)
		return nil
	}

	ctx = logger.IntoContext(ctx, "request_id", payload.RequestID, "task", queue.TaskLoyaltyEarn)
	log := logger.FromContext(ctx).With("source_ref", payload.SourceRef)
	result, err := c.PointLedgerService.Earn(ctx, service.EarnInput{
		CustomerID:  payload.CustomerID,
		BranchID:    payload.BranchID,
		GrossAmount: gross,
		SourceRef:   payload.SourceRef,
		Description: payload.Description,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLedgerInvalidInput):
			log.Warnw("worker_loyalty_earn_skip_invalid_input", "error", err)
			return nil
		case service.IsConfigError(err):
			// 等待运营补齐配置后由重试完成入账
			log.Errorw("worker_loyalty_earn_config_error", "branch_id", payload.BranchID, "error", err)
			return err
		default:
			log.Warnw("worker_loyalty_earn_failed", "error", err)
			return err
		}
	}
	log.Debugw("worker_loyalty_earn_done",
		"earned_points", result.EarnedPoints,
		"replayed", result.Replayed,
	)
	return nil
}
