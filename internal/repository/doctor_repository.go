package repository

import (
	"errors"

	"github.com/ayurcare-next/internal/models"

	"gorm.io/gorm"
)

// DoctorRepository 医生数据访问接口
type DoctorRepository interface {
	GetByID(id uint) (*models.Doctor, error)
	GetByUserID(userID uint) (*models.Doctor, error)
	Create(doctor *models.Doctor) error
	AppendPatientLog(log *models.DoctorPatientLog) error
	ListPatientLogs(doctorID uint) ([]models.DoctorPatientLog, error)
	WithTx(tx *gorm.DB) *GormDoctorRepository
}

// GormDoctorRepository GORM 实现
type GormDoctorRepository struct {
	db *gorm.DB
}

// NewDoctorRepository 创建医生仓库
func NewDoctorRepository(db *gorm.DB) *GormDoctorRepository {
	return &GormDoctorRepository{db: db}
}

// WithTx 绑定事务
func (r *GormDoctorRepository) WithTx(tx *gorm.DB) *GormDoctorRepository {
	if tx == nil {
		return r
	}
	return &GormDoctorRepository{db: tx}
}

// GetByID 根据 ID 获取医生
func (r *GormDoctorRepository) GetByID(id uint) (*models.Doctor, error) {
	var doctor models.Doctor
	if err := r.db.First(&doctor, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &doctor, nil
}

// GetByUserID 根据登录身份获取医生
func (r *GormDoctorRepository) GetByUserID(userID uint) (*models.Doctor, error) {
	var doctor models.Doctor
	if err := r.db.Where("user_id = ?", userID).First(&doctor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &doctor, nil
}

// Create 创建医生
func (r *GormDoctorRepository) Create(doctor *models.Doctor) error {
	return r.db.Create(doctor).Error
}

// AppendPatientLog 追加接诊记录
func (r *GormDoctorRepository) AppendPatientLog(log *models.DoctorPatientLog) error {
	return r.db.Create(log).Error
}

// ListPatientLogs 获取医生接诊记录
func (r *GormDoctorRepository) ListPatientLogs(doctorID uint) ([]models.DoctorPatientLog, error) {
	var logs []models.DoctorPatientLog
	if err := r.db.Where("doctor_id = ?", doctorID).Order("id desc").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
