package repository

import (
	"errors"

	"github.com/ayurcare-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AppointmentRepository 预约数据访问接口
type AppointmentRepository interface {
	GetByID(id uint) (*models.Appointment, error)
	Create(appointment *models.Appointment) error
	Update(appointment *models.Appointment) error
	UpdatePaymentUnlessPaid(update EnvelopeUpdate) (bool, error)
	ListByUser(userID uint) ([]models.Appointment, error)
	WithTx(tx *gorm.DB) *GormAppointmentRepository
}

// GormAppointmentRepository GORM 实现
type GormAppointmentRepository struct {
	db *gorm.DB
}

// NewAppointmentRepository 创建预约仓库
func NewAppointmentRepository(db *gorm.DB) *GormAppointmentRepository {
	return &GormAppointmentRepository{db: db}
}

// WithTx 绑定事务
func (r *GormAppointmentRepository) WithTx(tx *gorm.DB) *GormAppointmentRepository {
	if tx == nil {
		return r
	}
	return &GormAppointmentRepository{db: tx}
}

// GetByID 根据 ID 获取预约
func (r *GormAppointmentRepository) GetByID(id uint) (*models.Appointment, error) {
	var appointment models.Appointment
	if err := r.db.First(&appointment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

// Create 创建预约
func (r *GormAppointmentRepository) Create(appointment *models.Appointment) error {
	return r.db.Omit(clause.Associations).Create(appointment).Error
}

// Update 保存预约（不级联关联）
func (r *GormAppointmentRepository) Update(appointment *models.Appointment) error {
	return r.db.Omit(clause.Associations).Save(appointment).Error
}

// ListByUser 获取用户预约列表
func (r *GormAppointmentRepository) ListByUser(userID uint) ([]models.Appointment, error) {
	var appointments []models.Appointment
	if err := r.db.Preload("Doctor").Where("user_id = ?", userID).Order("scheduled_at desc").Find(&appointments).Error; err != nil {
		return nil, err
	}
	return appointments, nil
}

// UpdatePaymentUnlessPaid 条件更新预约支付信封
func (r *GormAppointmentRepository) UpdatePaymentUnlessPaid(update EnvelopeUpdate) (bool, error) {
	return updateEnvelopeUnlessPaid(r.db, &models.Appointment{}, "", update)
}
