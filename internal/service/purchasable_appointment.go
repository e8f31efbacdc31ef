package service

import (
	"fmt"
	"time"

	"github.com/ayurcare-next/internal/constants"
	"github.com/ayurcare-next/internal/payment/razorpay"
	"github.com/ayurcare-next/internal/repository"

	"github.com/shopspring/decimal"
)

// AppointmentPurchasable 预约问诊费支付策略
type AppointmentPurchasable struct {
	appointmentRepo repository.AppointmentRepository
}

// NewAppointmentPurchasable 创建预约支付策略
func NewAppointmentPurchasable(appointmentRepo repository.AppointmentRepository) *AppointmentPurchasable {
	return &AppointmentPurchasable{appointmentRepo: appointmentRepo}
}

// Kind 类型标识
func (s *AppointmentPurchasable) Kind() string {
	return constants.PurchaseKindAppointment
}

// ReceiptPrefix 网关收据前缀
func (s *AppointmentPurchasable) ReceiptPrefix() string {
	return constants.ReceiptPrefixAppointment
}

// Load 加载预约
func (s *AppointmentPurchasable) Load(id uint) (*Purchasable, error) {
	appointment, err := s.appointmentRepo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("load appointment: %w", err)
	}
	if appointment == nil {
		return nil, ErrPurchasableNotFound
	}
	return &Purchasable{
		Kind:    s.Kind(),
		ID:      appointment.ID,
		OwnerID: appointment.UserID,
		Payment: &appointment.Payment,
		Record:  appointment,
	}, nil
}

// DueAmount 应付金额为创建时锁定的问诊费
func (s *AppointmentPurchasable) DueAmount(p *Purchasable) (decimal.Decimal, error) {
	appointment := p.Appointment()
	if appointment == nil {
		return decimal.Zero, ErrPurchasableNotFound
	}
	return appointment.Fee.Decimal, nil
}

// AssertNotAlreadyPaid 已支付的预约不可再次发起
func (s *AppointmentPurchasable) AssertNotAlreadyPaid(p *Purchasable, _ time.Time) error {
	if p.Payment.IsPaid() {
		return ErrAlreadyPaid
	}
	return nil
}

// AttachRemoteOrder 持久化网关订单号；期间已被确认支付则返回 ErrAlreadyPaid
func (s *AppointmentPurchasable) AttachRemoteOrder(p *Purchasable, order *razorpay.Order) error {
	appointment := p.Appointment()
	if appointment == nil {
		return ErrPurchasableNotFound
	}
	ok, err := s.appointmentRepo.UpdatePaymentUnlessPaid(remoteOrderUpdate(appointment.ID, &appointment.Payment, order))
	if err != nil {
		return fmt.Errorf("save appointment remote order: %w", err)
	}
	if !ok {
		return ErrAlreadyPaid
	}
	markEnvelopeRemoteOrder(&appointment.Payment, order)
	return nil
}

// ApplyPaid 标记已支付，预约状态保持不变（由医生确认推进）
func (s *AppointmentPurchasable) ApplyPaid(p *Purchasable, remotePaymentID, remoteSignature string, now time.Time) error {
	appointment := p.Appointment()
	if appointment == nil {
		return ErrPurchasableNotFound
	}
	remoteOrderID := appointment.Payment.RemoteOrderID
	ok, err := s.appointmentRepo.UpdatePaymentUnlessPaid(paidUpdate(appointment.ID, remoteOrderID, remotePaymentID, remoteSignature, now))
	if err != nil {
		return fmt.Errorf("save appointment paid: %w", err)
	}
	if !ok {
		return ErrAlreadyPaid
	}
	markEnvelopePaid(&appointment.Payment, remoteOrderID, remotePaymentID, remoteSignature, now)
	return nil
}

// ApplyFailed 标记支付失败；已支付的预约返回 ErrAlreadyPaid
func (s *AppointmentPurchasable) ApplyFailed(p *Purchasable) error {
	appointment := p.Appointment()
	if appointment == nil {
		return ErrPurchasableNotFound
	}
	ok, err := s.appointmentRepo.UpdatePaymentUnlessPaid(failedUpdate(appointment.ID))
	if err != nil {
		return fmt.Errorf("save appointment failed: %w", err)
	}
	if !ok {
		return ErrAlreadyPaid
	}
	appointment.Payment.PaymentStatus = constants.PaymentStatusFailed
	return nil
}
