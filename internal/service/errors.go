package service

import "errors"

// 支付与可支付对象错误
var (
	ErrPurchaseKindInvalid = errors.New("purchase kind invalid")
	ErrPurchasableNotFound = errors.New("purchasable not found")
	ErrForbidden           = errors.New("forbidden")
	ErrAlreadyPaid         = errors.New("already paid")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrOrderMismatch       = errors.New("remote order mismatch")
	ErrInvalidSignature    = errors.New("invalid signature")
	ErrGatewayUnavailable  = errors.New("payment gateway unavailable")
	ErrPaymentInputInvalid = errors.New("payment input invalid")
	ErrUserNotFound        = errors.New("user not found")
	ErrMissingDeliveryInfo = errors.New("missing delivery info")
	ErrCartEmpty           = errors.New("cart is empty")
	ErrProductNotAvailable = errors.New("product not available")
	ErrInvalidOrderItem    = errors.New("invalid order item")
	ErrDoctorNotFound      = errors.New("doctor not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrAppointmentInvalid  = errors.New("appointment invalid")
	ErrAppointmentNotPaid  = errors.New("appointment not paid")
	ErrInvalidToken        = errors.New("invalid token")
)
