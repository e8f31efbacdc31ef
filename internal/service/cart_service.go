package service

import (
	"fmt"
	"time"

	"github.com/ayurcare-next/internal/models"
	"github.com/ayurcare-next/internal/repository"
)

// CartService 购物车服务（数量为绝对值）
type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) *CartService {
	return &CartService{cartRepo: cartRepo, productRepo: productRepo}
}

// SetCartItemInput 写入购物车项输入
type SetCartItemInput struct {
	UserID    uint
	ProductID uint
	Quantity  int
}

// List 获取购物车
func (s *CartService) List(userID uint) ([]models.CartItem, error) {
	return s.cartRepo.ListByUser(userID)
}

// SetItem 设置购物车项数量，数量不大于 0 时移除
func (s *CartService) SetItem(input SetCartItemInput) error {
	if input.UserID == 0 || input.ProductID == 0 {
		return ErrInvalidOrderItem
	}
	if input.Quantity <= 0 {
		return s.RemoveItem(input.UserID, input.ProductID)
	}
	product, err := s.productRepo.GetByID(input.ProductID)
	if err != nil {
		return fmt.Errorf("load product: %w", err)
	}
	if product == nil || !product.IsActive {
		return ErrProductNotAvailable
	}
	now := time.Now()
	return s.cartRepo.Upsert(&models.CartItem{
		UserID:    input.UserID,
		ProductID: input.ProductID,
		Quantity:  input.Quantity,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// RemoveItem 移除购物车项
func (s *CartService) RemoveItem(userID, productID uint) error {
	if userID == 0 || productID == 0 {
		return ErrInvalidOrderItem
	}
	return s.cartRepo.DeleteByUserAndProduct(userID, productID)
}
