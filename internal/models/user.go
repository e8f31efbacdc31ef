package models

import (
	"strings"
	"time"

	"github.com/ayurcare-next/internal/constants"

	"gorm.io/gorm"
)

// User 用户表（账户等级升级的可支付对象）
type User struct {
	ID            uint            `gorm:"primarykey" json:"id"`                                          // 主键
	Email         string          `gorm:"uniqueIndex;not null" json:"email"`                             // 邮箱
	DisplayName   string          `gorm:"default:''" json:"display_name"`                                // 昵称
	Phone         string          `gorm:"type:varchar(32);default:''" json:"phone"`                      // 默认收货电话
	Address       string          `gorm:"type:text" json:"address"`                                      // 默认收货地址
	Role          string          `gorm:"type:varchar(20);not null;default:'patient'" json:"role"`       // patient / doctor
	Status        string          `gorm:"type:varchar(20);not null;default:'active'" json:"status"`      // 账号状态
	AccountTier   string          `gorm:"type:varchar(20);not null;default:'free'" json:"account_tier"`  // free / pro
	TierExpiresAt *time.Time      `gorm:"index" json:"tier_expires_at"`                                  // 会员到期时间
	Upgrade       PaymentEnvelope `gorm:"embedded;embeddedPrefix:upgrade_" json:"upgrade"`               // 最近一次升级支付
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`                                       // 创建时间
	UpdatedAt     time.Time       `gorm:"index" json:"updated_at"`                                       // 更新时间
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`                                                // 软删除时间
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// TierActive 判断 pro 等级在 now 时刻是否有效（无到期时间视为长期有效）
func (u *User) TierActive(now time.Time) bool {
	if u == nil || strings.TrimSpace(u.AccountTier) != constants.AccountTierPro {
		return false
	}
	if u.TierExpiresAt == nil {
		return true
	}
	return u.TierExpiresAt.After(now)
}
