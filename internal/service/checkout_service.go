package service

import (
	"fmt"
	"strings"

	"github.com/ayurcare-next/internal/constants"
	"github.com/ayurcare-next/internal/logger"
	"github.com/ayurcare-next/internal/models"
	"github.com/ayurcare-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CheckoutService 购物车结算服务
type CheckoutService struct {
	cartRepo  repository.CartRepository
	userRepo  repository.UserRepository
	orderRepo repository.OrderRepository
}

// NewCheckoutService 创建结算服务
func NewCheckoutService(cartRepo repository.CartRepository, userRepo repository.UserRepository, orderRepo repository.OrderRepository) *CheckoutService {
	return &CheckoutService{
		cartRepo:  cartRepo,
		userRepo:  userRepo,
		orderRepo: orderRepo,
	}
}

// CheckoutInput 结算输入
type CheckoutInput struct {
	UserID  uint
	Address string
	Phone   string
}

// Checkout 将购物车转换为待支付订单
func (s *CheckoutService) Checkout(input CheckoutInput) (*models.Order, error) {
	cartItems, err := s.cartRepo.ListByUser(input.UserID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if len(cartItems) == 0 {
		return nil, ErrCartEmpty
	}

	user, err := s.userRepo.GetByID(input.UserID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	requestAddress := strings.TrimSpace(input.Address)
	requestPhone := strings.TrimSpace(input.Phone)
	address := requestAddress
	if address == "" {
		address = strings.TrimSpace(user.Address)
	}
	phone := requestPhone
	if phone == "" {
		phone = strings.TrimSpace(user.Phone)
	}
	if address == "" || phone == "" {
		return nil, ErrMissingDeliveryInfo
	}

	items, total, err := snapshotCartItems(cartItems)
	if err != nil {
		return nil, err
	}
	order := &models.Order{
		UserID:          input.UserID,
		Status:          constants.OrderStatusPlaced,
		ShippingAddress: address,
		ShippingPhone:   phone,
		TotalAmount:     models.NewMoneyFromDecimal(total),
		Payment: models.PaymentEnvelope{
			PaymentStatus: constants.PaymentStatusPending,
		},
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.orderRepo.WithTx(tx).Create(order, items); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		if err := s.cartRepo.WithTx(tx).ClearByUser(input.UserID); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		if err := s.userRepo.WithTx(tx).UpdateDeliveryInfo(input.UserID, requestAddress, requestPhone); err != nil {
			return fmt.Errorf("save delivery info: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("checkout_order_created",
		"order_id", order.ID,
		"user_id", order.UserID,
		"items", len(items),
		"total_amount", order.TotalAmount.String(),
	)
	return order, nil
}

// snapshotCartItems 以当前商品名称与价格生成订单项快照并汇总金额
func snapshotCartItems(cartItems []models.CartItem) ([]models.OrderItem, decimal.Decimal, error) {
	items := make([]models.OrderItem, 0, len(cartItems))
	total := decimal.Zero
	for _, cartItem := range cartItems {
		if cartItem.Quantity <= 0 {
			return nil, decimal.Zero, ErrInvalidOrderItem
		}
		product := cartItem.Product
		if product == nil || !product.IsActive {
			return nil, decimal.Zero, ErrProductNotAvailable
		}
		unitPrice := product.PriceAmount.Decimal
		lineTotal := unitPrice.Mul(decimal.NewFromInt(int64(cartItem.Quantity)))
		items = append(items, models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: models.NewMoneyFromDecimal(unitPrice),
			Quantity:  cartItem.Quantity,
			LineTotal: models.NewMoneyFromDecimal(lineTotal),
		})
		total = total.Add(lineTotal)
	}
	return items, total, nil
}
