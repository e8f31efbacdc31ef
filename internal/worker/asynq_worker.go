package worker

import (
	"context"
	"errors"
	"time"

	"github.com/ayurcare-next/internal/logger"
	"github.com/ayurcare-next/internal/provider"
	"github.com/ayurcare-next/internal/queue"
	"github.com/ayurcare-next/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
	now func() time.Time
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
		now:       time.Now,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskPaymentReconcile, c.handlePaymentReconcile)
	mux.HandleFunc(queue.TaskTierExpire, c.handleTierExpire)
}

// handlePaymentReconcile 与网关核对已支付记录，不一致仅记录审计事件
func (c *Consumer) handlePaymentReconcile(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil || c.ReconcileService == nil {
		logger.Debugw("worker_payment_reconcile_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParsePaymentReconcilePayload(task)
	if err != nil {
		logger.Warnw("worker_payment_reconcile_unmarshal_failed", "error", err)
		return errors.Join(err, asynq.SkipRetry)
	}
	if payload.PurchasableID == 0 || payload.RemotePaymentID == "" {
		logger.Debugw("worker_payment_reconcile_skip_invalid_payload",
			"kind", payload.Kind,
			"purchasable_id", payload.PurchasableID,
		)
		return nil
	}

	result, err := c.ReconcileService.Reconcile(ctx, service.ReconcileInput{
		Kind:            payload.Kind,
		PurchasableID:   payload.PurchasableID,
		RemotePaymentID: payload.RemotePaymentID,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGatewayUnavailable):
			// 网关抖动交给 asynq 重试
			logger.Warnw("worker_payment_reconcile_gateway_failed",
				"kind", payload.Kind,
				"purchasable_id", payload.PurchasableID,
				"error", err,
			)
			return err
		case errors.Is(err, service.ErrPurchaseKindInvalid), errors.Is(err, service.ErrPurchasableNotFound):
			logger.Warnw("worker_payment_reconcile_target_invalid",
				"kind", payload.Kind,
				"purchasable_id", payload.PurchasableID,
				"error", err,
			)
			return nil
		default:
			logger.Errorw("worker_payment_reconcile_failed",
				"kind", payload.Kind,
				"purchasable_id", payload.PurchasableID,
				"error", err,
			)
			return err
		}
	}
	if !result.Matched {
		logger.Warnw("worker_payment_reconcile_mismatch",
			"kind", payload.Kind,
			"purchasable_id", payload.PurchasableID,
			"remote_payment_id", payload.RemotePaymentID,
			"mismatches", result.Mismatches,
		)
	}
	return nil
}

func (c *Consumer) handleTierExpire(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil || c.TierService == nil {
		logger.Debugw("worker_tier_expire_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseTierExpirePayload(task)
	if err != nil {
		logger.Warnw("worker_tier_expire_unmarshal_failed", "error", err)
		return errors.Join(err, asynq.SkipRetry)
	}
	if payload.UserID == 0 {
		return nil
	}
	expired, err := c.TierService.ExpireIfDue(payload.UserID, c.now())
	if err != nil {
		logger.Warnw("worker_tier_expire_failed", "user_id", payload.UserID, "error", err)
		return err
	}
	logger.Debugw("worker_tier_expire_done", "user_id", payload.UserID, "expired", expired)
	return nil
}
