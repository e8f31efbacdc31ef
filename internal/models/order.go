package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 商品订单表
type Order struct {
	ID              uint            `gorm:"primarykey" json:"id"`                                          // 主键
	UserID          uint            `gorm:"index;not null" json:"user_id"`                                 // 下单用户
	Status          string          `gorm:"type:varchar(20);index;not null" json:"status"`                 // placed / shipped / delivered / cancelled
	ShippingAddress string          `gorm:"type:text;not null" json:"shipping_address"`                   // 收货地址
	ShippingPhone   string          `gorm:"type:varchar(32);not null" json:"shipping_phone"`               // 收货电话
	TotalAmount     Money           `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`     // 订单总额（快照价 × 数量）
	Payment         PaymentEnvelope `gorm:"embedded" json:"payment"`                                       // 支付信封
	CreatedAt       time.Time       `gorm:"index" json:"created_at"`                                       // 创建时间
	UpdatedAt       time.Time       `gorm:"index" json:"updated_at"`                                       // 更新时间
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`                                                // 软删除时间

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"` // 订单项
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
