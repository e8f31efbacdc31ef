package models

import (
	"strings"
	"time"

	"github.com/ayurcare-next/internal/constants"
)

// PaymentEnvelope 可支付对象上的网关支付信封（嵌入 Appointment / Order / User）
type PaymentEnvelope struct {
	RemoteOrderID   string     `gorm:"type:varchar(64);index" json:"remote_order_id"`   // 网关订单号（发起支付时写入）
	RemotePaymentID string     `gorm:"type:varchar(64);index" json:"remote_payment_id"` // 网关支付流水号（确认成功后写入）
	RemoteSignature string     `gorm:"type:varchar(128)" json:"-"`                      // 网关签名（审计留存）
	PaymentStatus   string     `gorm:"type:varchar(20);index" json:"payment_status"`    // pending / paid / failed
	RemoteAmount    int64      `gorm:"not null;default:0" json:"remote_amount"`         // 网关下单金额（最小货币单位）
	Currency        string     `gorm:"type:varchar(8)" json:"currency"`                 // 币种
	PaidAt          *time.Time `json:"paid_at"`                                         // 支付确认时间
}

// IsPaid 是否已支付
func (e PaymentEnvelope) IsPaid() bool {
	return strings.TrimSpace(e.PaymentStatus) == constants.PaymentStatusPaid
}

// HasRemoteOrder 是否已在网关下单
func (e PaymentEnvelope) HasRemoteOrder() bool {
	return strings.TrimSpace(e.RemoteOrderID) != ""
}
