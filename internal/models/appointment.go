package models

import (
	"time"

	"gorm.io/gorm"
)

// Appointment 问诊预约表
type Appointment struct {
	ID          uint            `gorm:"primarykey" json:"id"`                                          // 主键
	UserID      uint            `gorm:"index;not null" json:"user_id"`                                 // 预约患者
	DoctorID    uint            `gorm:"index;not null" json:"doctor_id"`                               // 医生ID
	ScheduledAt time.Time       `gorm:"index;not null" json:"scheduled_at"`                            // 预约时间
	Mode        string          `gorm:"type:varchar(20);not null" json:"mode"`                         // online / offline
	Fee         Money           `gorm:"type:decimal(20,2);not null;default:0" json:"fee"`              // 创建时锁定的问诊费
	Status      string          `gorm:"type:varchar(20);not null;default:'requested'" json:"status"`   // requested / confirmed / cancelled
	Notes       string          `gorm:"type:text" json:"notes"`                                        // 备注
	Payment     PaymentEnvelope `gorm:"embedded" json:"payment"`                                       // 支付信封
	ConfirmedAt *time.Time      `json:"confirmed_at"`                                                  // 医生确认时间
	CreatedAt   time.Time       `gorm:"index" json:"created_at"`                                       // 创建时间
	UpdatedAt   time.Time       `gorm:"index" json:"updated_at"`                                       // 更新时间
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`                                                // 软删除时间

	Doctor *Doctor `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

// TableName 指定表名
func (Appointment) TableName() string {
	return "appointments"
}
