package service

import (
	"fmt"
	"time"

	"github.com/ayurcare-next/internal/constants"
	"github.com/ayurcare-next/internal/payment/razorpay"
	"github.com/ayurcare-next/internal/repository"

	"github.com/shopspring/decimal"
)

// OrderPurchasable 商品订单支付策略
type OrderPurchasable struct {
	orderRepo repository.OrderRepository
	cartRepo  repository.CartRepository
}

// NewOrderPurchasable 创建订单支付策略
func NewOrderPurchasable(orderRepo repository.OrderRepository, cartRepo repository.CartRepository) *OrderPurchasable {
	return &OrderPurchasable{orderRepo: orderRepo, cartRepo: cartRepo}
}

// Kind 类型标识
func (s *OrderPurchasable) Kind() string {
	return constants.PurchaseKindProductOrder
}

// ReceiptPrefix 网关收据前缀
func (s *OrderPurchasable) ReceiptPrefix() string {
	return constants.ReceiptPrefixOrder
}

// Load 加载订单
func (s *OrderPurchasable) Load(id uint) (*Purchasable, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	if order == nil {
		return nil, ErrPurchasableNotFound
	}
	return &Purchasable{
		Kind:    s.Kind(),
		ID:      order.ID,
		OwnerID: order.UserID,
		Payment: &order.Payment,
		Record:  order,
	}, nil
}

// DueAmount 应付金额为下单时的快照总额
func (s *OrderPurchasable) DueAmount(p *Purchasable) (decimal.Decimal, error) {
	order := p.Order()
	if order == nil {
		return decimal.Zero, ErrPurchasableNotFound
	}
	return order.TotalAmount.Decimal, nil
}

// AssertNotAlreadyPaid 已支付订单不可再次发起
func (s *OrderPurchasable) AssertNotAlreadyPaid(p *Purchasable, _ time.Time) error {
	if p.Payment.IsPaid() {
		return ErrAlreadyPaid
	}
	return nil
}

// AttachRemoteOrder 持久化网关订单号；期间已被确认支付则返回 ErrAlreadyPaid
func (s *OrderPurchasable) AttachRemoteOrder(p *Purchasable, remote *razorpay.Order) error {
	order := p.Order()
	if order == nil {
		return ErrPurchasableNotFound
	}
	ok, err := s.orderRepo.UpdatePaymentUnlessPaid(remoteOrderUpdate(order.ID, &order.Payment, remote))
	if err != nil {
		return fmt.Errorf("save order remote order: %w", err)
	}
	if !ok {
		return ErrAlreadyPaid
	}
	markEnvelopeRemoteOrder(&order.Payment, remote)
	return nil
}

// ApplyPaid 标记已支付并清空下单用户当前购物车
func (s *OrderPurchasable) ApplyPaid(p *Purchasable, remotePaymentID, remoteSignature string, now time.Time) error {
	order := p.Order()
	if order == nil {
		return ErrPurchasableNotFound
	}
	remoteOrderID := order.Payment.RemoteOrderID
	ok, err := s.orderRepo.UpdatePaymentUnlessPaid(paidUpdate(order.ID, remoteOrderID, remotePaymentID, remoteSignature, now))
	if err != nil {
		return fmt.Errorf("save order paid: %w", err)
	}
	if !ok {
		return ErrAlreadyPaid
	}
	markEnvelopePaid(&order.Payment, remoteOrderID, remotePaymentID, remoteSignature, now)
	if s.cartRepo == nil {
		return nil
	}
	// 清空购物车失败不影响支付结果
	if err := s.cartRepo.ClearByUser(order.UserID); err != nil {
		paymentLogger(
			"kind", s.Kind(),
			"purchasable_id", order.ID,
			"user_id", order.UserID,
		).Warnw("order_paid_cart_clear_failed", "error", err)
	}
	return nil
}

// ApplyFailed 标记支付失败；已支付的订单返回 ErrAlreadyPaid
func (s *OrderPurchasable) ApplyFailed(p *Purchasable) error {
	order := p.Order()
	if order == nil {
		return ErrPurchasableNotFound
	}
	ok, err := s.orderRepo.UpdatePaymentUnlessPaid(failedUpdate(order.ID))
	if err != nil {
		return fmt.Errorf("save order failed: %w", err)
	}
	if !ok {
		return ErrAlreadyPaid
	}
	order.Payment.PaymentStatus = constants.PaymentStatusFailed
	return nil
}
