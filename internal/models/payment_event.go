package models

import "time"

// PaymentEvent 支付审计事件（仅在状态变更或对账时写入）
type PaymentEvent struct {
	ID              uint      `gorm:"primarykey" json:"id"`                                          // 主键
	Kind            string    `gorm:"type:varchar(32);index:idx_payment_event_target;not null" json:"kind"` // 可支付对象类型
	PurchasableID   uint      `gorm:"index:idx_payment_event_target;not null" json:"purchasable_id"` // 可支付对象ID
	UserID          uint      `gorm:"index" json:"user_id"`                                          // 操作用户
	Event           string    `gorm:"type:varchar(32);index;not null" json:"event"`                  // initiated / paid / failed / reconciled / reconcile_mismatch
	RemoteOrderID   string    `gorm:"type:varchar(64);index" json:"remote_order_id"`                 // 网关订单号
	RemotePaymentID string    `gorm:"type:varchar(64)" json:"remote_payment_id"`                     // 网关支付流水号
	Amount          int64     `gorm:"not null;default:0" json:"amount"`                              // 金额（最小货币单位）
	Currency        string    `gorm:"type:varchar(8)" json:"currency"`                               // 币种
	Reason          string    `gorm:"type:text" json:"reason"`                                       // 失败原因 / 对账说明
	Payload         JSON      `gorm:"type:json" json:"payload"`                                      // 附加数据
	CreatedAt       time.Time `gorm:"index" json:"created_at"`                                       // 创建时间
}

// TableName 指定表名
func (PaymentEvent) TableName() string {
	return "payment_events"
}
