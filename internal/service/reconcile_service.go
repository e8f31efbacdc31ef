package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ayurcare-next/internal/constants"
	"github.com/ayurcare-next/internal/models"
	"github.com/ayurcare-next/internal/payment/razorpay"
	"github.com/ayurcare-next/internal/repository"
)

// reconcileFetchRejected 网关无法返回该支付详情时记录的不一致原因
const reconcileFetchRejected = "remote_payment_unavailable"

// ReconcileService 支付对账（只读比对网关支付详情，不改变支付状态）
type ReconcileService struct {
	registry  *PurchasableRegistry
	gateway   PaymentGateway
	eventRepo repository.PaymentEventRepository
}

// NewReconcileService 创建对账服务
func NewReconcileService(registry *PurchasableRegistry, gateway PaymentGateway, eventRepo repository.PaymentEventRepository) *ReconcileService {
	return &ReconcileService{registry: registry, gateway: gateway, eventRepo: eventRepo}
}

// ReconcileInput 对账输入
type ReconcileInput struct {
	Kind            string
	PurchasableID   uint
	RemotePaymentID string
}

// ReconcileResult 对账结果
type ReconcileResult struct {
	Matched    bool
	Mismatches []string
}

// Reconcile 拉取网关支付详情并与支付信封比对
func (s *ReconcileService) Reconcile(ctx context.Context, input ReconcileInput) (*ReconcileResult, error) {
	log := paymentLogger(
		"kind", input.Kind,
		"purchasable_id", input.PurchasableID,
		"remote_payment_id", input.RemotePaymentID,
	)
	purchasable, _, err := s.registry.Load(input.Kind, input.PurchasableID)
	if err != nil {
		return nil, err
	}
	if s.gateway == nil {
		return nil, ErrGatewayUnavailable
	}
	if ctx == nil {
		ctx = context.Background()
	}
	remote, err := s.gateway.FetchPayment(ctx, input.RemotePaymentID)
	if err != nil {
		if errors.Is(err, razorpay.ErrRequestFailed) {
			log.Warnw("payment_reconcile_fetch_failed", "error", err)
			return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
		}
		// 网关明确拒绝或返回异常数据，重试无意义，记为不一致
		log.Warnw("payment_reconcile_fetch_rejected", "error", err)
		if err := s.recordEvent(&models.PaymentEvent{
			Kind:            purchasable.Kind,
			PurchasableID:   purchasable.ID,
			UserID:          purchasable.OwnerID,
			Event:           constants.PaymentEventReconcileMismatch,
			RemoteOrderID:   purchasable.Payment.RemoteOrderID,
			RemotePaymentID: input.RemotePaymentID,
			Reason:          reconcileFetchRejected,
			Payload:         models.JSON{"error": err.Error()},
		}); err != nil {
			return nil, err
		}
		return &ReconcileResult{Matched: false, Mismatches: []string{reconcileFetchRejected}}, nil
	}

	envelope := purchasable.Payment
	var mismatches []string
	if envelope.RemotePaymentID != remote.ID {
		mismatches = append(mismatches, "remote_payment_id")
	}
	if envelope.RemoteOrderID != remote.OrderID {
		mismatches = append(mismatches, "remote_order_id")
	}
	if envelope.RemoteAmount != remote.Amount {
		mismatches = append(mismatches, "amount")
	}
	if !strings.EqualFold(envelope.Currency, remote.Currency) {
		mismatches = append(mismatches, "currency")
	}
	if remote.Status == "failed" || remote.Status == "refunded" {
		mismatches = append(mismatches, "status")
	}

	event := &models.PaymentEvent{
		Kind:            purchasable.Kind,
		PurchasableID:   purchasable.ID,
		UserID:          purchasable.OwnerID,
		Event:           constants.PaymentEventReconciled,
		RemoteOrderID:   remote.OrderID,
		RemotePaymentID: remote.ID,
		Amount:          remote.Amount,
		Currency:        remote.Currency,
		Payload: models.JSON{
			"status":   remote.Status,
			"method":   remote.Method,
			"captured": remote.Captured,
		},
	}
	if len(mismatches) > 0 {
		event.Event = constants.PaymentEventReconcileMismatch
		event.Reason = strings.Join(mismatches, ",")
		log.Warnw("payment_reconcile_mismatch",
			"fields", event.Reason,
			"remote_status", remote.Status,
			"remote_amount", remote.Amount,
			"local_amount", envelope.RemoteAmount,
		)
	} else {
		log.Infow("payment_reconcile_matched", "remote_status", remote.Status)
	}
	if err := s.recordEvent(event); err != nil {
		return nil, err
	}
	return &ReconcileResult{Matched: len(mismatches) == 0, Mismatches: mismatches}, nil
}

func (s *ReconcileService) recordEvent(event *models.PaymentEvent) error {
	if s.eventRepo == nil {
		return nil
	}
	if err := s.eventRepo.Create(event); err != nil {
		return fmt.Errorf("record reconcile event: %w", err)
	}
	return nil
}
