package repository

import (
	"github.com/ayurcare-next/internal/models"

	"gorm.io/gorm"
)

// PaymentEventRepository 支付审计事件数据访问接口
type PaymentEventRepository interface {
	Create(event *models.PaymentEvent) error
	ListByTarget(kind string, purchasableID uint) ([]models.PaymentEvent, error)
	CountByTargetAndEvent(kind string, purchasableID uint, event string) (int64, error)
}

// GormPaymentEventRepository GORM 实现
type GormPaymentEventRepository struct {
	db *gorm.DB
}

// NewPaymentEventRepository 创建审计事件仓库
func NewPaymentEventRepository(db *gorm.DB) *GormPaymentEventRepository {
	return &GormPaymentEventRepository{db: db}
}

// Create 写入审计事件
func (r *GormPaymentEventRepository) Create(event *models.PaymentEvent) error {
	return r.db.Create(event).Error
}

// ListByTarget 按可支付对象查询审计事件
func (r *GormPaymentEventRepository) ListByTarget(kind string, purchasableID uint) ([]models.PaymentEvent, error) {
	var events []models.PaymentEvent
	if err := r.db.Where("kind = ? AND purchasable_id = ?", kind, purchasableID).Order("id asc").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// CountByTargetAndEvent 统计指定事件数量
func (r *GormPaymentEventRepository) CountByTargetAndEvent(kind string, purchasableID uint, event string) (int64, error) {
	var count int64
	err := r.db.Model(&models.PaymentEvent{}).
		Where("kind = ? AND purchasable_id = ? AND event = ?", kind, purchasableID, event).
		Count(&count).Error
	return count, err
}
