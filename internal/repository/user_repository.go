package repository

import (
	"errors"
	"time"

	"github.com/ayurcare-next/internal/constants"
	"github.com/ayurcare-next/internal/models"

	"gorm.io/gorm"
)

// UserRepository 用户数据访问接口
type UserRepository interface {
	GetByID(id uint) (*models.User, error)
	Create(user *models.User) error
	Update(user *models.User) error
	UpdateUpgradeUnlessPaid(update EnvelopeUpdate) (bool, error)
	DowngradeExpiredTier(userID uint, now time.Time) (bool, error)
	UpdateDeliveryInfo(userID uint, address, phone string) error
	ListTierExpiredIDs(now time.Time, limit int) ([]uint, error)
	WithTx(tx *gorm.DB) *GormUserRepository
}

// GormUserRepository GORM 实现
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓库
func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// WithTx 绑定事务
func (r *GormUserRepository) WithTx(tx *gorm.DB) *GormUserRepository {
	if tx == nil {
		return r
	}
	return &GormUserRepository{db: tx}
}

// GetByID 根据 ID 获取用户
func (r *GormUserRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// Create 创建用户
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// Update 更新用户
func (r *GormUserRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// UpdateDeliveryInfo 回写默认收货信息，空值字段保持不变
func (r *GormUserRepository) UpdateDeliveryInfo(userID uint, address, phone string) error {
	updates := map[string]interface{}{}
	if address != "" {
		updates["address"] = address
	}
	if phone != "" {
		updates["phone"] = phone
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error
}

// ListTierExpiredIDs 查询 pro 等级已过期但尚未降级的用户
func (r *GormUserRepository) ListTierExpiredIDs(now time.Time, limit int) ([]uint, error) {
	if limit <= 0 {
		limit = 100
	}
	var ids []uint
	err := r.db.Model(&models.User{}).
		Where("account_tier = ? AND tier_expires_at IS NOT NULL AND tier_expires_at <= ?", constants.AccountTierPro, now).
		Order("id ASC").
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// UpdateUpgradeUnlessPaid 条件更新会员升级支付信封
func (r *GormUserRepository) UpdateUpgradeUnlessPaid(update EnvelopeUpdate) (bool, error) {
	return updateEnvelopeUnlessPaid(r.db, &models.User{}, "upgrade_", update)
}

// DowngradeExpiredTier 仅当用户仍为已过期的 pro 时降级为 free
func (r *GormUserRepository) DowngradeExpiredTier(userID uint, now time.Time) (bool, error) {
	result := r.db.Model(&models.User{}).
		Where("id = ? AND account_tier = ? AND tier_expires_at IS NOT NULL AND tier_expires_at <= ?", userID, constants.AccountTierPro, now).
		Update("account_tier", constants.AccountTierFree)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
