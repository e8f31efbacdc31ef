package service

import (
	"fmt"
	"time"

	"github.com/ayurcare-next/internal/constants"
	"github.com/ayurcare-next/internal/models"
	"github.com/ayurcare-next/internal/payment/razorpay"
	"github.com/ayurcare-next/internal/repository"

	"github.com/shopspring/decimal"
)

// TierPricing 会员等级定价
type TierPricing struct {
	ProPrice models.Money
	Duration time.Duration
}

// DefaultTierPricing 默认定价：999 / 30 天
func DefaultTierPricing() TierPricing {
	return TierPricing{
		ProPrice: models.NewMoneyFromInt(constants.DefaultProTierPrice),
		Duration: time.Duration(constants.DefaultProTierDays) * 24 * time.Hour,
	}
}

// NewTierPricing 由配置值构造定价，非法值回退默认
func NewTierPricing(proPrice string, durationDays int) TierPricing {
	pricing := DefaultTierPricing()
	if parsed, err := models.ParseMoney(proPrice); err == nil && parsed.IsPositive() {
		pricing.ProPrice = parsed
	}
	if durationDays > 0 {
		pricing.Duration = time.Duration(durationDays) * 24 * time.Hour
	}
	return pricing
}

// UpgradePurchasable 账户等级升级支付策略（可支付对象 ID 即用户 ID）
type UpgradePurchasable struct {
	userRepo repository.UserRepository
	pricing  TierPricing
}

// NewUpgradePurchasable 创建升级支付策略
func NewUpgradePurchasable(userRepo repository.UserRepository, pricing TierPricing) *UpgradePurchasable {
	return &UpgradePurchasable{userRepo: userRepo, pricing: pricing}
}

// Kind 类型标识
func (s *UpgradePurchasable) Kind() string {
	return constants.PurchaseKindTierUpgrade
}

// ReceiptPrefix 网关收据前缀
func (s *UpgradePurchasable) ReceiptPrefix() string {
	return constants.ReceiptPrefixUpgrade
}

// Pricing 当前定价
func (s *UpgradePurchasable) Pricing() TierPricing {
	return s.pricing
}

// Load 加载用户
func (s *UpgradePurchasable) Load(id uint) (*Purchasable, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, ErrPurchasableNotFound
	}
	return &Purchasable{
		Kind:    s.Kind(),
		ID:      user.ID,
		OwnerID: user.ID,
		Payment: &user.Upgrade,
		Record:  user,
	}, nil
}

// DueAmount 应付金额取配置的固定价格，不读取记录
func (s *UpgradePurchasable) DueAmount(_ *Purchasable) (decimal.Decimal, error) {
	return s.pricing.ProPrice.Decimal, nil
}

// AssertNotAlreadyPaid 会员仍在有效期内视为已支付
func (s *UpgradePurchasable) AssertNotAlreadyPaid(p *Purchasable, now time.Time) error {
	if p.User().TierActive(now) {
		return ErrAlreadyPaid
	}
	return nil
}

// AttachRemoteOrder 持久化网关订单号并清理上一次升级的支付凭据
func (s *UpgradePurchasable) AttachRemoteOrder(p *Purchasable, order *razorpay.Order) error {
	user := p.User()
	if user == nil {
		return ErrPurchasableNotFound
	}
	update := remoteOrderUpdate(user.ID, &user.Upgrade, order)
	update.Fields["remote_payment_id"] = ""
	update.Fields["remote_signature"] = ""
	update.Fields["paid_at"] = nil
	ok, err := s.userRepo.UpdateUpgradeUnlessPaid(update)
	if err != nil {
		return fmt.Errorf("save upgrade remote order: %w", err)
	}
	if !ok {
		return ErrAlreadyPaid
	}
	markEnvelopeRemoteOrder(&user.Upgrade, order)
	user.Upgrade.RemotePaymentID = ""
	user.Upgrade.RemoteSignature = ""
	user.Upgrade.PaidAt = nil
	return nil
}

// ApplyPaid 升级为 pro 并从确认时刻起计算到期时间
func (s *UpgradePurchasable) ApplyPaid(p *Purchasable, remotePaymentID, remoteSignature string, now time.Time) error {
	user := p.User()
	if user == nil {
		return ErrPurchasableNotFound
	}
	expiresAt := now.Add(s.pricing.Duration)
	remoteOrderID := user.Upgrade.RemoteOrderID
	update := paidUpdate(user.ID, remoteOrderID, remotePaymentID, remoteSignature, now)
	update.Extra = map[string]interface{}{
		"account_tier":    constants.AccountTierPro,
		"tier_expires_at": expiresAt,
	}
	ok, err := s.userRepo.UpdateUpgradeUnlessPaid(update)
	if err != nil {
		return fmt.Errorf("save upgrade paid: %w", err)
	}
	if !ok {
		return ErrAlreadyPaid
	}
	markEnvelopePaid(&user.Upgrade, remoteOrderID, remotePaymentID, remoteSignature, now)
	user.AccountTier = constants.AccountTierPro
	user.TierExpiresAt = &expiresAt
	return nil
}

// ApplyFailed 标记升级支付失败，账户等级不变
func (s *UpgradePurchasable) ApplyFailed(p *Purchasable) error {
	user := p.User()
	if user == nil {
		return ErrPurchasableNotFound
	}
	ok, err := s.userRepo.UpdateUpgradeUnlessPaid(failedUpdate(user.ID))
	if err != nil {
		return fmt.Errorf("save upgrade failed: %w", err)
	}
	if !ok {
		return ErrAlreadyPaid
	}
	user.Upgrade.PaymentStatus = constants.PaymentStatusFailed
	return nil
}
