package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/ayurcare-next/internal/constants"
	"github.com/ayurcare-next/internal/logger"
	"github.com/ayurcare-next/internal/models"
	"github.com/ayurcare-next/internal/repository"

	"gorm.io/gorm"
)

// AppointmentService 预约服务
type AppointmentService struct {
	appointmentRepo repository.AppointmentRepository
	doctorRepo      repository.DoctorRepository
	now             func() time.Time
}

// NewAppointmentService 创建预约服务
func NewAppointmentService(appointmentRepo repository.AppointmentRepository, doctorRepo repository.DoctorRepository) *AppointmentService {
	return &AppointmentService{
		appointmentRepo: appointmentRepo,
		doctorRepo:      doctorRepo,
		now:             time.Now,
	}
}

// RequestAppointmentInput 预约请求输入
type RequestAppointmentInput struct {
	UserID      uint
	DoctorID    uint
	ScheduledAt time.Time
	Mode        string
	Notes       string
}

// Request 创建待支付预约，问诊费取医生当前费率
func (s *AppointmentService) Request(input RequestAppointmentInput) (*models.Appointment, error) {
	mode := strings.ToLower(strings.TrimSpace(input.Mode))
	if mode != constants.AppointmentModeOnline && mode != constants.AppointmentModeOffline {
		return nil, ErrAppointmentInvalid
	}
	if input.UserID == 0 || input.ScheduledAt.IsZero() || !input.ScheduledAt.After(s.now()) {
		return nil, ErrAppointmentInvalid
	}
	doctor, err := s.doctorRepo.GetByID(input.DoctorID)
	if err != nil {
		return nil, fmt.Errorf("load doctor: %w", err)
	}
	if doctor == nil || !doctor.IsActive {
		return nil, ErrDoctorNotFound
	}

	appointment := &models.Appointment{
		UserID:      input.UserID,
		DoctorID:    doctor.ID,
		ScheduledAt: input.ScheduledAt,
		Mode:        mode,
		Fee:         doctor.Fee,
		Status:      constants.AppointmentStatusRequested,
		Notes:       strings.TrimSpace(input.Notes),
		Payment: models.PaymentEnvelope{
			PaymentStatus: constants.PaymentStatusPending,
		},
	}
	if err := s.appointmentRepo.Create(appointment); err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}
	logger.Infow("appointment_requested",
		"appointment_id", appointment.ID,
		"user_id", appointment.UserID,
		"doctor_id", appointment.DoctorID,
		"fee", appointment.Fee.String(),
	)
	return appointment, nil
}

// ConfirmByDoctor 医生确认已支付的预约，并记录接诊
func (s *AppointmentService) ConfirmByDoctor(doctorUserID, appointmentID uint) (*models.Appointment, error) {
	appointment, err := s.appointmentRepo.GetByID(appointmentID)
	if err != nil {
		return nil, fmt.Errorf("load appointment: %w", err)
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	doctor, err := s.doctorRepo.GetByUserID(doctorUserID)
	if err != nil {
		return nil, fmt.Errorf("load doctor: %w", err)
	}
	if doctor == nil || doctor.ID != appointment.DoctorID {
		return nil, ErrForbidden
	}
	switch appointment.Status {
	case constants.AppointmentStatusConfirmed:
		return appointment, nil
	case constants.AppointmentStatusCancelled:
		return nil, ErrAppointmentInvalid
	}
	if !appointment.Payment.IsPaid() {
		return nil, ErrAppointmentNotPaid
	}

	now := s.now()
	appointment.Status = constants.AppointmentStatusConfirmed
	appointment.ConfirmedAt = &now
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.appointmentRepo.WithTx(tx).Update(appointment); err != nil {
			return fmt.Errorf("save appointment: %w", err)
		}
		return s.doctorRepo.WithTx(tx).AppendPatientLog(&models.DoctorPatientLog{
			DoctorID:      doctor.ID,
			UserID:        appointment.UserID,
			AppointmentID: appointment.ID,
			ScheduledAt:   appointment.ScheduledAt,
			FeeCharged:    appointment.Fee,
		})
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("appointment_confirmed_by_doctor",
		"appointment_id", appointment.ID,
		"doctor_id", doctor.ID,
	)
	return appointment, nil
}

// ListMine 获取用户自己的预约
func (s *AppointmentService) ListMine(userID uint) ([]models.Appointment, error) {
	return s.appointmentRepo.ListByUser(userID)
}
