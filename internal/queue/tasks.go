package queue

import (
	"encoding/json"

	"github.com/ayurcare-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskPaymentReconcile 支付对账任务
	TaskPaymentReconcile = constants.TaskPaymentReconcile
	// TaskTierExpire 会员到期降级任务
	TaskTierExpire = constants.TaskTierExpire
)

// PaymentReconcilePayload 支付对账任务载荷
type PaymentReconcilePayload struct {
	Kind            string `json:"kind"`
	PurchasableID   uint   `json:"purchasable_id"`
	RemotePaymentID string `json:"remote_payment_id"`
}

// TierExpirePayload 会员到期任务载荷
type TierExpirePayload struct {
	UserID uint `json:"user_id"`
}

// NewPaymentReconcileTask 创建支付对账任务
func NewPaymentReconcileTask(payload PaymentReconcilePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPaymentReconcile, body), nil
}

// NewTierExpireTask 创建会员到期任务
func NewTierExpireTask(payload TierExpirePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTierExpire, body), nil
}

// ParsePaymentReconcilePayload 解析支付对账任务载荷
func ParsePaymentReconcilePayload(task *asynq.Task) (PaymentReconcilePayload, error) {
	var payload PaymentReconcilePayload
	if task == nil {
		return payload, nil
	}
	err := json.Unmarshal(task.Payload(), &payload)
	return payload, err
}

// ParseTierExpirePayload 解析会员到期任务载荷
func ParseTierExpirePayload(task *asynq.Task) (TierExpirePayload, error) {
	var payload TierExpirePayload
	if task == nil {
		return payload, nil
	}
	err := json.Unmarshal(task.Payload(), &payload)
	return payload, err
}
