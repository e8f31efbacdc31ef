package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ayurcare-next/internal/constants"
	"github.com/ayurcare-next/internal/logger"
	"github.com/ayurcare-next/internal/models"
	"github.com/ayurcare-next/internal/payment/razorpay"
	"github.com/ayurcare-next/internal/queue"
	"github.com/ayurcare-next/internal/repository"

	"go.uber.org/zap"
)

// PaymentGateway 支付网关能力
type PaymentGateway interface {
	CreateOrder(ctx context.Context, input razorpay.CreateOrderInput) (*razorpay.Order, error)
	VerifySignature(orderID, paymentID, signature string) bool
	FetchPayment(ctx context.Context, paymentID string) (*razorpay.Payment, error)
	KeyID() string
	Currency() string
}

// PaymentService 支付编排服务（发起 / 确认 / 失败）
type PaymentService struct {
	registry    *PurchasableRegistry
	gateway     PaymentGateway
	eventRepo   repository.PaymentEventRepository
	queueClient *queue.Client
	now         func() time.Time
}

// NewPaymentService 创建支付服务
func NewPaymentService(registry *PurchasableRegistry, gateway PaymentGateway, eventRepo repository.PaymentEventRepository, queueClient *queue.Client) *PaymentService {
	return &PaymentService{
		registry:    registry,
		gateway:     gateway,
		eventRepo:   eventRepo,
		queueClient: queueClient,
		now:         time.Now,
	}
}

func paymentLogger(kv ...interface{}) *zap.SugaredLogger {
	if len(kv) == 0 {
		return logger.S()
	}
	return logger.SW(kv...)
}

// InitiatePaymentInput 发起支付输入
type InitiatePaymentInput struct {
	UserID        uint
	Kind          string
	PurchasableID uint
	Context       context.Context
}

// InitiatePaymentResult 发起支付结果（客户端拉起网关收银台所需的全部信息）
type InitiatePaymentResult struct {
	Kind          string
	PurchasableID uint
	RemoteOrderID string
	Amount        int64
	Currency      string
	KeyID         string
	Receipt       string
}

// ConfirmPaymentInput 确认支付输入
type ConfirmPaymentInput struct {
	UserID          uint
	Kind            string
	PurchasableID   uint
	RemoteOrderID   string
	RemotePaymentID string
	Signature       string
}

// FailPaymentInput 支付失败输入
type FailPaymentInput struct {
	UserID        uint
	Kind          string
	PurchasableID uint
	Reason        string
}

// GatewayKey 返回可公开的网关 key 与币种
func (s *PaymentService) GatewayKey() (string, string) {
	if s.gateway == nil {
		return "", constants.DefaultGatewayCurrency
	}
	return s.gateway.KeyID(), s.gateway.Currency()
}

// Initiate 在网关创建订单并把网关订单号写回可支付对象
func (s *PaymentService) Initiate(input InitiatePaymentInput) (*InitiatePaymentResult, error) {
	log := paymentLogger(
		"kind", input.Kind,
		"purchasable_id", input.PurchasableID,
		"user_id", input.UserID,
	)
	purchasable, strategy, err := s.registry.Load(input.Kind, input.PurchasableID)
	if err != nil {
		return nil, err
	}
	if err := s.registry.AssertOwnership(purchasable, input.UserID); err != nil {
		log.Warnw("payment_initiate_forbidden", "owner_id", purchasable.OwnerID)
		return nil, err
	}
	now := s.now()
	if err := strategy.AssertNotAlreadyPaid(purchasable, now); err != nil {
		return nil, err
	}
	amount, err := strategy.DueAmount(purchasable)
	if err != nil {
		return nil, err
	}
	if !amount.IsPositive() {
		log.Warnw("payment_initiate_invalid_amount", "amount", amount.String())
		return nil, ErrInvalidAmount
	}
	if s.gateway == nil {
		return nil, ErrGatewayUnavailable
	}

	ctx := input.Context
	if ctx == nil {
		ctx = context.Background()
	}
	receipt := strategy.ReceiptPrefix() + strconv.FormatInt(now.UnixMilli(), 10)
	remote, err := s.gateway.CreateOrder(ctx, razorpay.CreateOrderInput{
		Amount:   amount,
		Currency: s.gateway.Currency(),
		Receipt:  receipt,
		Notes: map[string]string{
			"purchasable_id": strconv.FormatUint(uint64(purchasable.ID), 10),
			"user_id":        strconv.FormatUint(uint64(input.UserID), 10),
			"kind":           purchasable.Kind,
		},
	})
	if err != nil {
		if errors.Is(err, razorpay.ErrRequestInvalid) {
			log.Warnw("payment_initiate_amount_rejected", "amount", amount.String(), "error", err)
			return nil, ErrInvalidAmount
		}
		log.Errorw("payment_initiate_gateway_failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}

	if err := strategy.AttachRemoteOrder(purchasable, remote); err != nil {
		if errors.Is(err, ErrAlreadyPaid) {
			log.Warnw("payment_initiate_paid_concurrently", "remote_order_id", remote.ID)
			return nil, err
		}
		log.Errorw("payment_initiate_persist_failed", "remote_order_id", remote.ID, "error", err)
		return nil, err
	}
	s.recordEvent(&models.PaymentEvent{
		Kind:          purchasable.Kind,
		PurchasableID: purchasable.ID,
		UserID:        input.UserID,
		Event:         constants.PaymentEventInitiated,
		RemoteOrderID: remote.ID,
		Amount:        remote.Amount,
		Currency:      remote.Currency,
		Payload:       models.JSON{"receipt": remote.Receipt},
	})
	log.Infow("payment_initiate_succeeded",
		"remote_order_id", remote.ID,
		"amount", remote.Amount,
		"currency", remote.Currency,
	)
	return &InitiatePaymentResult{
		Kind:          purchasable.Kind,
		PurchasableID: purchasable.ID,
		RemoteOrderID: remote.ID,
		Amount:        remote.Amount,
		Currency:      remote.Currency,
		KeyID:         s.gateway.KeyID(),
		Receipt:       receipt,
	}, nil
}

// Confirm 校验网关回传并落库支付成功
func (s *PaymentService) Confirm(input ConfirmPaymentInput) (*Purchasable, error) {
	remoteOrderID := strings.TrimSpace(input.RemoteOrderID)
	remotePaymentID := strings.TrimSpace(input.RemotePaymentID)
	signature := strings.TrimSpace(input.Signature)
	log := paymentLogger(
		"kind", input.Kind,
		"purchasable_id", input.PurchasableID,
		"user_id", input.UserID,
		"remote_order_id", remoteOrderID,
		"remote_payment_id", remotePaymentID,
	)
	if remoteOrderID == "" || remotePaymentID == "" || signature == "" {
		return nil, ErrPaymentInputInvalid
	}

	purchasable, strategy, err := s.registry.Load(input.Kind, input.PurchasableID)
	if err != nil {
		return nil, err
	}
	if err := s.registry.AssertOwnership(purchasable, input.UserID); err != nil {
		log.Warnw("payment_confirm_forbidden", "owner_id", purchasable.OwnerID)
		return nil, err
	}
	if purchasable.Payment.RemoteOrderID == "" || purchasable.Payment.RemoteOrderID != remoteOrderID {
		log.Warnw("payment_confirm_order_mismatch", "stored_remote_order_id", purchasable.Payment.RemoteOrderID)
		return nil, ErrOrderMismatch
	}
	if s.gateway == nil || !s.gateway.VerifySignature(remoteOrderID, remotePaymentID, signature) {
		log.Warnw("payment_confirm_signature_invalid")
		return nil, ErrInvalidSignature
	}
	if purchasable.Payment.IsPaid() {
		if purchasable.Payment.RemotePaymentID == remotePaymentID {
			log.Infow("payment_confirm_idempotent")
			return purchasable, nil
		}
		log.Warnw("payment_confirm_already_paid", "stored_remote_payment_id", purchasable.Payment.RemotePaymentID)
		return nil, ErrAlreadyPaid
	}

	now := s.now()
	if err := strategy.ApplyPaid(purchasable, remotePaymentID, signature, now); err != nil {
		if errors.Is(err, ErrAlreadyPaid) {
			log.Warnw("payment_confirm_paid_concurrently")
			return nil, err
		}
		log.Errorw("payment_confirm_persist_failed", "error", err)
		return nil, err
	}
	s.recordEvent(&models.PaymentEvent{
		Kind:            purchasable.Kind,
		PurchasableID:   purchasable.ID,
		UserID:          input.UserID,
		Event:           constants.PaymentEventPaid,
		RemoteOrderID:   remoteOrderID,
		RemotePaymentID: remotePaymentID,
		Amount:          purchasable.Payment.RemoteAmount,
		Currency:        purchasable.Payment.Currency,
	})
	s.enqueueAfterPaid(purchasable, remotePaymentID, now, log)
	log.Infow("payment_confirm_succeeded")
	return purchasable, nil
}

// Fail 记录支付失败；已支付对象保持 paid 不变
func (s *PaymentService) Fail(input FailPaymentInput) (*Purchasable, error) {
	log := paymentLogger(
		"kind", input.Kind,
		"purchasable_id", input.PurchasableID,
		"user_id", input.UserID,
	)
	purchasable, strategy, err := s.registry.Load(input.Kind, input.PurchasableID)
	if err != nil {
		return nil, err
	}
	if err := s.registry.AssertOwnership(purchasable, input.UserID); err != nil {
		log.Warnw("payment_fail_forbidden", "owner_id", purchasable.OwnerID)
		return nil, err
	}
	if purchasable.Payment.IsPaid() {
		log.Infow("payment_fail_ignored_paid")
		return purchasable, nil
	}
	if purchasable.Payment.PaymentStatus == constants.PaymentStatusFailed {
		return purchasable, nil
	}
	if err := strategy.ApplyFailed(purchasable); err != nil {
		if errors.Is(err, ErrAlreadyPaid) {
			log.Infow("payment_fail_ignored_paid")
			return strategy.Load(purchasable.ID)
		}
		log.Errorw("payment_fail_persist_failed", "error", err)
		return nil, err
	}
	reason := strings.TrimSpace(input.Reason)
	s.recordEvent(&models.PaymentEvent{
		Kind:          purchasable.Kind,
		PurchasableID: purchasable.ID,
		UserID:        input.UserID,
		Event:         constants.PaymentEventFailed,
		RemoteOrderID: purchasable.Payment.RemoteOrderID,
		Amount:        purchasable.Payment.RemoteAmount,
		Currency:      purchasable.Payment.Currency,
		Reason:        reason,
	})
	log.Infow("payment_fail_recorded", "reason", reason)
	return purchasable, nil
}

func (s *PaymentService) enqueueAfterPaid(purchasable *Purchasable, remotePaymentID string, now time.Time, log *zap.SugaredLogger) {
	if s.queueClient == nil {
		return
	}
	if err := s.queueClient.EnqueuePaymentReconcile(queue.PaymentReconcilePayload{
		Kind:            purchasable.Kind,
		PurchasableID:   purchasable.ID,
		RemotePaymentID: remotePaymentID,
	}); err != nil {
		log.Warnw("payment_reconcile_enqueue_failed", "error", err)
	}
	user := purchasable.User()
	if user == nil || user.TierExpiresAt == nil {
		return
	}
	if err := s.queueClient.EnqueueTierExpire(queue.TierExpirePayload{UserID: user.ID}, user.TierExpiresAt.Sub(now)); err != nil {
		log.Warnw("tier_expire_enqueue_failed", "error", err)
	}
}

// recordEvent 写入审计事件，失败仅记录日志
func (s *PaymentService) recordEvent(event *models.PaymentEvent) {
	if s.eventRepo == nil || event == nil {
		return
	}
	if err := s.eventRepo.Create(event); err != nil {
		paymentLogger(
			"kind", event.Kind,
			"purchasable_id", event.PurchasableID,
			"event", event.Event,
		).Errorw("payment_event_record_failed", "error", err)
	}
}
