package public

import (
	"strconv"
	"time"

	handlershared "github.com/ayurcare-next/internal/http/handlers/shared"
	"github.com/ayurcare-next/internal/http/response"
	"github.com/ayurcare-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateAppointmentRequest 预约请求
type CreateAppointmentRequest struct {
	DoctorID    uint      `json:"doctor_id" binding:"required"`
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
	Mode        string    `json:"mode" binding:"required"`
	Notes       string    `json:"notes"`
}

// CreateAppointment 创建待支付预约
func (h *Handler) CreateAppointment(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	appointment, err := h.AppointmentService.Request(service.RequestAppointmentInput{
		UserID:      uid,
		DoctorID:    req.DoctorID,
		ScheduledAt: req.ScheduledAt,
		Mode:        req.Mode,
		Notes:       req.Notes,
	})
	if err != nil {
		respondAppointmentError(c, err, "error.appointment_create_failed")
		return
	}
	response.Success(c, appointment)
}

// ListAppointments 我的预约
func (h *Handler) ListAppointments(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	appointments, err := h.AppointmentService.ListMine(uid)
	if err != nil {
		respondError(c, response.CodeInternal, "error.appointment_fetch_failed", err)
		return
	}
	response.Success(c, gin.H{"items": appointments})
}

// DoctorConfirmAppointment 医生确认已支付预约
func (h *Handler) DoctorConfirmAppointment(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	appointmentID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || appointmentID == 0 {
		respondError(c, response.CodeBadRequest, "error.appointment_id_invalid", nil)
		return
	}

	appointment, err := h.AppointmentService.ConfirmByDoctor(uid, uint(appointmentID))
	if err != nil {
		respondAppointmentError(c, err, "error.appointment_confirm_failed")
		return
	}
	handlershared.RequestLog(c).Infow("doctor_appointment_confirmed",
		"appointment_id", appointment.ID,
		"role", handlershared.CurrentUserRole(c),
	)
	response.Success(c, appointment)
}
