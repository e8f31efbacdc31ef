package public

import (
	"github.com/ayurcare-next/internal/http/response"
	"github.com/ayurcare-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CheckoutRequest 结算请求（地址/电话缺省时使用用户资料）
type CheckoutRequest struct {
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

// Checkout 购物车结算为待支付订单
func (h *Handler) Checkout(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CheckoutRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
	}

	order, err := h.CheckoutService.Checkout(service.CheckoutInput{
		UserID:  uid,
		Address: req.Address,
		Phone:   req.Phone,
	})
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	response.Success(c, order)
}
