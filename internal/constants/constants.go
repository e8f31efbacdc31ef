package constants

// 支付状态常量（Payment Envelope）
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

// 可支付对象类型常量
const (
	PurchaseKindAppointment  = "appointment"
	PurchaseKindProductOrder = "product_order"
	PurchaseKindTierUpgrade  = "tier_upgrade"
)

// 网关收据前缀常量
const (
	ReceiptPrefixAppointment = "appt_"
	ReceiptPrefixOrder       = "ord_"
	ReceiptPrefixUpgrade     = "upg_"
)

// 预约状态常量
const (
	AppointmentStatusRequested = "requested"
	AppointmentStatusConfirmed = "confirmed"
	AppointmentStatusCancelled = "cancelled"
)

// 预约方式常量
const (
	AppointmentModeOnline  = "online"
	AppointmentModeOffline = "offline"
)

// 订单履约状态常量
const (
	OrderStatusPlaced    = "placed"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// 账户等级常量
const (
	AccountTierFree = "free"
	AccountTierPro  = "pro"
)

// 用户角色常量
const (
	UserRolePatient = "patient"
	UserRoleDoctor  = "doctor"
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 支付审计事件常量
const (
	PaymentEventInitiated         = "initiated"
	PaymentEventPaid              = "paid"
	PaymentEventFailed            = "failed"
	PaymentEventReconciled        = "reconciled"
	PaymentEventReconcileMismatch = "reconcile_mismatch"
)

// 队列常量
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// 异步任务类型常量
const (
	TaskPaymentReconcile = "payment:reconcile"
	TaskTierExpire       = "tier:expire"
)

// 网关默认值
const (
	DefaultGatewayCurrency = "INR"
	DefaultProTierPrice    = 999
	DefaultProTierDays     = 30
)
