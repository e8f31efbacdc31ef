package service

import (
	"sort"
	"strings"
	"time"

	"github.com/ayurcare-next/internal/constants"
	"github.com/ayurcare-next/internal/models"
	"github.com/ayurcare-next/internal/payment/razorpay"
	"github.com/ayurcare-next/internal/repository"

	"github.com/shopspring/decimal"
)

// Purchasable 可支付对象（预约 / 商品订单 / 会员升级）
type Purchasable struct {
	Kind    string
	ID      uint
	OwnerID uint
	Payment *models.PaymentEnvelope
	Record  interface{}
}

// Appointment 返回预约记录（非预约类型返回 nil）
func (p *Purchasable) Appointment() *models.Appointment {
	if p == nil {
		return nil
	}
	record, _ := p.Record.(*models.Appointment)
	return record
}

// Order 返回订单记录
func (p *Purchasable) Order() *models.Order {
	if p == nil {
		return nil
	}
	record, _ := p.Record.(*models.Order)
	return record
}

// User 返回会员升级对应的用户记录
func (p *Purchasable) User() *models.User {
	if p == nil {
		return nil
	}
	record, _ := p.Record.(*models.User)
	return record
}

// PurchasableStrategy 单一可支付类型的加载、计价与结果落库
type PurchasableStrategy interface {
	Kind() string
	ReceiptPrefix() string
	Load(id uint) (*Purchasable, error)
	DueAmount(p *Purchasable) (decimal.Decimal, error)
	AssertNotAlreadyPaid(p *Purchasable, now time.Time) error
	AttachRemoteOrder(p *Purchasable, order *razorpay.Order) error
	ApplyPaid(p *Purchasable, remotePaymentID, remoteSignature string, now time.Time) error
	ApplyFailed(p *Purchasable) error
}

// PurchasableRegistry 按 kind 分派的可支付对象注册表
type PurchasableRegistry struct {
	strategies map[string]PurchasableStrategy
}

// NewPurchasableRegistry 创建注册表
func NewPurchasableRegistry(strategies ...PurchasableStrategy) *PurchasableRegistry {
	registry := &PurchasableRegistry{strategies: make(map[string]PurchasableStrategy, len(strategies))}
	for _, strategy := range strategies {
		if strategy == nil {
			continue
		}
		registry.strategies[strategy.Kind()] = strategy
	}
	return registry
}

// Resolve 根据 kind 获取策略
func (r *PurchasableRegistry) Resolve(kind string) (PurchasableStrategy, error) {
	if r == nil {
		return nil, ErrPurchaseKindInvalid
	}
	strategy, ok := r.strategies[normalizePurchaseKind(kind)]
	if !ok {
		return nil, ErrPurchaseKindInvalid
	}
	return strategy, nil
}

// Load 加载可支付对象
func (r *PurchasableRegistry) Load(kind string, id uint) (*Purchasable, PurchasableStrategy, error) {
	strategy, err := r.Resolve(kind)
	if err != nil {
		return nil, nil, err
	}
	if id == 0 {
		return nil, nil, ErrPurchasableNotFound
	}
	purchasable, err := strategy.Load(id)
	if err != nil {
		return nil, nil, err
	}
	return purchasable, strategy, nil
}

// AssertOwnership 校验操作人是否为可支付对象所有者
func (r *PurchasableRegistry) AssertOwnership(p *Purchasable, actingUserID uint) error {
	if p == nil || actingUserID == 0 || p.OwnerID != actingUserID {
		return ErrForbidden
	}
	return nil
}

// Kinds 返回已注册的 kind 列表
func (r *PurchasableRegistry) Kinds() []string {
	if r == nil {
		return nil
	}
	kinds := make([]string, 0, len(r.strategies))
	for kind := range r.strategies {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

func normalizePurchaseKind(kind string) string {
	return strings.ToLower(strings.TrimSpace(kind))
}

// remoteOrderUpdate 本次发起的网关订单信息；已支付对象（会员到期续费）允许覆盖加载时的那笔支付
func remoteOrderUpdate(id uint, loaded *models.PaymentEnvelope, order *razorpay.Order) repository.EnvelopeUpdate {
	allow := ""
	if loaded != nil && loaded.IsPaid() {
		allow = loaded.RemotePaymentID
	}
	return repository.EnvelopeUpdate{
		ID:             id,
		AllowPaymentID: allow,
		Fields: map[string]interface{}{
			"remote_order_id": order.ID,
			"remote_amount":   order.Amount,
			"currency":        order.Currency,
			"payment_status":  constants.PaymentStatusPending,
		},
	}
}

// paidUpdate 支付成功信息；同一支付流水号重复写入视为幂等
func paidUpdate(id uint, remoteOrderID, remotePaymentID, remoteSignature string, now time.Time) repository.EnvelopeUpdate {
	return repository.EnvelopeUpdate{
		ID:             id,
		AllowPaymentID: remotePaymentID,
		Fields: map[string]interface{}{
			"remote_order_id":   remoteOrderID,
			"remote_payment_id": remotePaymentID,
			"remote_signature":  remoteSignature,
			"payment_status":    constants.PaymentStatusPaid,
			"paid_at":           now,
		},
	}
}

// failedUpdate 支付失败状态
func failedUpdate(id uint) repository.EnvelopeUpdate {
	return repository.EnvelopeUpdate{
		ID:     id,
		Fields: map[string]interface{}{"payment_status": constants.PaymentStatusFailed},
	}
}

// markEnvelopeRemoteOrder 同步内存中的网关订单信息
func markEnvelopeRemoteOrder(envelope *models.PaymentEnvelope, order *razorpay.Order) {
	envelope.RemoteOrderID = order.ID
	envelope.RemoteAmount = order.Amount
	envelope.Currency = order.Currency
	envelope.PaymentStatus = constants.PaymentStatusPending
}

// markEnvelopePaid 同步内存中的支付成功信息
func markEnvelopePaid(envelope *models.PaymentEnvelope, remoteOrderID, remotePaymentID, remoteSignature string, now time.Time) {
	paidAt := now
	envelope.RemoteOrderID = remoteOrderID
	envelope.RemotePaymentID = remotePaymentID
	envelope.RemoteSignature = remoteSignature
	envelope.PaymentStatus = constants.PaymentStatusPaid
	envelope.PaidAt = &paidAt
}
