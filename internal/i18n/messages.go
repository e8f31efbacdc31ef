package i18n

var catalog = map[string]map[string]string{
	LocaleZH: {
		"error.bad_request":                 "请求参数错误",
		"error.unauthorized":                "未授权",
		"error.forbidden":                   "无权访问",
		"error.internal":                    "服务器内部错误",
		"error.not_found":                   "资源不存在",
		"error.user_id_invalid":             "用户 ID 无效",
		"error.user_id_type_invalid":        "用户 ID 类型无效",
		"error.user_disabled":               "账号已被禁用",
		"error.user_not_found":              "用户不存在",
		"error.jwt_secret_missing":          "鉴权配置缺失",
		"error.auth_header_missing":         "缺少 Authorization 请求头",
		"error.auth_header_invalid":         "Authorization 请求头格式错误",
		"error.token_invalid":               "登录凭证无效或已过期",
		"error.rate_limited":                "请求过于频繁，请 %d 秒后再试",
		"error.rate_limit_unavailable":      "限流服务暂不可用",
		"error.purchase_kind_invalid":       "不支持的支付对象类型",
		"error.purchasable_not_found":       "支付对象不存在",
		"error.already_paid":                "该对象已支付",
		"error.invalid_amount":              "应付金额无效",
		"error.payment_verification_failed": "支付校验失败",
		"error.gateway_unavailable":         "支付网关暂不可用，请稍后重试",
		"error.payment_input_invalid":       "支付参数不完整",
		"error.payment_failed":              "支付处理失败",
		"error.missing_delivery_info":       "请填写收货地址和联系电话",
		"error.cart_empty":                  "购物车为空",
		"error.product_not_available":       "商品不可购买",
		"error.order_item_invalid":          "订单商品无效",
		"error.checkout_failed":             "下单失败",
		"error.cart_fetch_failed":           "获取购物车失败",
		"error.cart_update_failed":          "更新购物车失败",
		"error.doctor_not_found":            "医生不存在或已停诊",
		"error.appointment_not_found":       "预约不存在",
		"error.appointment_invalid":         "预约参数无效",
		"error.appointment_not_paid":        "预约尚未支付",
		"error.appointment_create_failed":   "创建预约失败",
		"error.appointment_fetch_failed":    "获取预约失败",
		"error.appointment_confirm_failed":  "确认预约失败",
		"error.appointment_id_invalid":      "预约 ID 无效",
		"error.product_id_invalid":          "商品 ID 无效",
	},
	LocaleEN: {
		"error.bad_request":                 "Invalid request parameters",
		"error.unauthorized":                "Unauthorized",
		"error.forbidden":                   "Access denied",
		"error.internal":                    "Internal server error",
		"error.not_found":                   "Resource not found",
		"error.user_id_invalid":             "Invalid user id",
		"error.user_id_type_invalid":        "Invalid user id type",
		"error.user_disabled":               "Account is disabled",
		"error.user_not_found":              "User not found",
		"error.jwt_secret_missing":          "Authentication is not configured",
		"error.auth_header_missing":         "Missing Authorization header",
		"error.auth_header_invalid":         "Malformed Authorization header",
		"error.token_invalid":               "Token is invalid or expired",
		"error.rate_limited":                "Too many requests, retry in %d seconds",
		"error.rate_limit_unavailable":      "Rate limiter is unavailable",
		"error.purchase_kind_invalid":       "Unsupported purchasable kind",
		"error.purchasable_not_found":       "Purchasable not found",
		"error.already_paid":                "Already paid",
		"error.invalid_amount":              "Amount due is invalid",
		"error.payment_verification_failed": "Payment verification failed",
		"error.gateway_unavailable":         "Payment gateway is unavailable, please retry later",
		"error.payment_input_invalid":       "Payment parameters are incomplete",
		"error.payment_failed":              "Payment processing failed",
		"error.missing_delivery_info":       "Delivery address and phone are required",
		"error.cart_empty":                  "Cart is empty",
		"error.product_not_available":       "Product is not available",
		"error.order_item_invalid":          "Invalid order item",
		"error.checkout_failed":             "Checkout failed",
		"error.cart_fetch_failed":           "Failed to load cart",
		"error.cart_update_failed":          "Failed to update cart",
		"error.doctor_not_found":            "Doctor not found or inactive",
		"error.appointment_not_found":       "Appointment not found",
		"error.appointment_invalid":         "Invalid appointment request",
		"error.appointment_not_paid":        "Appointment is not paid",
		"error.appointment_create_failed":   "Failed to create appointment",
		"error.appointment_fetch_failed":    "Failed to load appointments",
		"error.appointment_confirm_failed":  "Failed to confirm appointment",
		"error.appointment_id_invalid":      "Invalid appointment id",
		"error.product_id_invalid":          "Invalid product id",
	},
}
