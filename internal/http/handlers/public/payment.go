package public

import (
	"github.com/ayurcare-next/internal/http/response"
	"github.com/ayurcare-next/internal/service"

	"github.com/gin-gonic/gin"
)

// InitiatePaymentRequest 发起支付请求
type InitiatePaymentRequest struct {
	PurchasableKind string `json:"purchasable_kind" binding:"required"`
	PurchasableID   uint   `json:"purchasable_id" binding:"required"`
}

// ConfirmPaymentRequest 确认支付请求（网关收银台回传的三元组）
type ConfirmPaymentRequest struct {
	PurchasableKind string `json:"purchasable_kind" binding:"required"`
	PurchasableID   uint   `json:"purchasable_id" binding:"required"`
	RemoteOrderID   string `json:"remote_order_id"`
	RemotePaymentID string `json:"remote_payment_id"`
	Signature       string `json:"signature"`
}

// FailPaymentRequest 支付失败上报请求
type FailPaymentRequest struct {
	PurchasableKind string `json:"purchasable_kind" binding:"required"`
	PurchasableID   uint   `json:"purchasable_id" binding:"required"`
	Reason          string `json:"reason"`
}

// GetPaymentKey 获取前端拉起收银台所需的公开 key
func (h *Handler) GetPaymentKey(c *gin.Context) {
	keyID, currency := h.PaymentService.GatewayKey()
	response.Success(c, gin.H{
		"key_id":   keyID,
		"currency": currency,
	})
}

// InitiatePayment 发起支付
func (h *Handler) InitiatePayment(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	result, err := h.PaymentService.Initiate(service.InitiatePaymentInput{
		UserID:        uid,
		Kind:          req.PurchasableKind,
		PurchasableID: req.PurchasableID,
		Context:       c.Request.Context(),
	})
	if err != nil {
		respondPaymentInitiateError(c, err)
		return
	}

	response.Success(c, gin.H{
		"purchasable_kind": result.Kind,
		"purchasable_id":   result.PurchasableID,
		"remote_order_id":  result.RemoteOrderID,
		"amount":           result.Amount,
		"currency":         result.Currency,
		"key_id":           result.KeyID,
		"receipt":          result.Receipt,
	})
}

// ConfirmPayment 校验网关签名并标记已支付
func (h *Handler) ConfirmPayment(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	purchasable, err := h.PaymentService.Confirm(service.ConfirmPaymentInput{
		UserID:          uid,
		Kind:            req.PurchasableKind,
		PurchasableID:   req.PurchasableID,
		RemoteOrderID:   req.RemoteOrderID,
		RemotePaymentID: req.RemotePaymentID,
		Signature:       req.Signature,
	})
	if err != nil {
		respondPaymentConfirmError(c, err)
		return
	}

	response.Success(c, gin.H{
		"purchasable_kind":  purchasable.Kind,
		"purchasable_id":    purchasable.ID,
		"status":            purchasable.Payment.PaymentStatus,
		"remote_payment_id": purchasable.Payment.RemotePaymentID,
		"paid_at":           purchasable.Payment.PaidAt,
	})
}

// FailPayment 记录客户端上报的支付失败
func (h *Handler) FailPayment(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req FailPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	purchasable, err := h.PaymentService.Fail(service.FailPaymentInput{
		UserID:        uid,
		Kind:          req.PurchasableKind,
		PurchasableID: req.PurchasableID,
		Reason:        req.Reason,
	})
	if err != nil {
		respondPaymentFailError(c, err)
		return
	}

	response.Success(c, gin.H{
		"purchasable_kind": purchasable.Kind,
		"purchasable_id":   purchasable.ID,
		"status":           purchasable.Payment.PaymentStatus,
	})
}
