package models

import (
	"time"

	"gorm.io/gorm"
)

// Doctor 医生表
type Doctor struct {
	ID        uint           `gorm:"primarykey" json:"id"`                                // 主键
	UserID    uint           `gorm:"uniqueIndex;not null" json:"user_id"`                 // 医生登录身份
	Name      string         `gorm:"not null" json:"name"`                                // 姓名
	Specialty string         `gorm:"type:varchar(120)" json:"specialty"`                  // 专长
	Fee       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"fee"`    // 问诊费
	IsActive  bool           `gorm:"default:true;index" json:"is_active"`                 // 是否接诊
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                             // 创建时间
	UpdatedAt time.Time      `json:"updated_at"`                                          // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                                      // 软删除时间
}

// TableName 指定表名
func (Doctor) TableName() string {
	return "doctors"
}

// DoctorPatientLog 医生接诊记录
type DoctorPatientLog struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	DoctorID      uint      `gorm:"index;not null" json:"doctor_id"`
	UserID        uint      `gorm:"index;not null" json:"user_id"`
	AppointmentID uint      `gorm:"uniqueIndex;not null" json:"appointment_id"`
	ScheduledAt   time.Time `json:"scheduled_at"`
	FeeCharged    Money     `gorm:"type:decimal(20,2);not null;default:0" json:"fee_charged"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (DoctorPatientLog) TableName() string {
	return "doctor_patient_logs"
}
