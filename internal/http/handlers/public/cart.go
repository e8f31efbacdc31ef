package public

import (
	"strconv"

	"github.com/ayurcare-next/internal/http/response"
	"github.com/ayurcare-next/internal/models"
	"github.com/ayurcare-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CartItemRequest 购物车项请求（数量为绝对值，<=0 表示移除）
type CartItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity"`
}

// CartProduct 购物车商品摘要
type CartProduct struct {
	ID          uint         `json:"id"`
	Name        string       `json:"name"`
	PriceAmount models.Money `json:"price_amount"`
	IsActive    bool         `json:"is_active"`
}

// CartItemResponse 购物车项响应
type CartItemResponse struct {
	ProductID uint         `json:"product_id"`
	Quantity  int          `json:"quantity"`
	LineTotal models.Money `json:"line_total"`
	Product   CartProduct  `json:"product"`
}

// GetCart 获取购物车
func (h *Handler) GetCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	items, err := h.CartService.List(uid)
	if err != nil {
		respondError(c, response.CodeInternal, "error.cart_fetch_failed", err)
		return
	}

	respItems := make([]CartItemResponse, 0, len(items))
	total := models.NewMoneyFromInt(0)
	for _, item := range items {
		if item.Product == nil {
			continue
		}
		lineTotal := models.NewMoneyFromDecimal(item.Product.PriceAmount.Decimal.Mul(decimal.NewFromInt(int64(item.Quantity))))
		total = models.NewMoneyFromDecimal(total.Decimal.Add(lineTotal.Decimal))
		respItems = append(respItems, CartItemResponse{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			LineTotal: lineTotal,
			Product: CartProduct{
				ID:          item.Product.ID,
				Name:        item.Product.Name,
				PriceAmount: item.Product.PriceAmount,
				IsActive:    item.Product.IsActive,
			},
		})
	}

	response.Success(c, gin.H{"items": respItems, "total_amount": total})
}

// UpsertCartItem 设置购物车项数量
func (h *Handler) UpsertCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.CartService.SetItem(service.SetCartItemInput{
		UserID:    uid,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	}); err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, gin.H{"updated": true})
}

// DeleteCartItem 删除购物车项
func (h *Handler) DeleteCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	productID, err := strconv.ParseUint(c.Param("product_id"), 10, 64)
	if err != nil || productID == 0 {
		respondError(c, response.CodeBadRequest, "error.product_id_invalid", nil)
		return
	}
	if err := h.CartService.RemoveItem(uid, uint(productID)); err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}
