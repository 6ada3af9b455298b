package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"carelink.id/clinicapi/internal/authz"
	"carelink.id/clinicapi/internal/modules/appointment/dto"
	"carelink.id/clinicapi/internal/modules/appointment/service"
	"carelink.id/clinicapi/pkg/apperror"
	"carelink.id/clinicapi/pkg/response"
)

type AppointmentHandler struct {
	appointments service.AppointmentService
}

func NewAppointmentHandler(appointments service.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{appointments: appointments}
}

func (h *AppointmentHandler) Create(c *gin.Context) {
	identity, err := authz.FromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var input dto.CreateAppointmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.InvalidInput(c, err)
		return
	}

	appointment, err := h.appointments.Create(c.Request.Context(), identity, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, appointment)
}

func (h *AppointmentHandler) List(c *gin.Context) {
	identity, err := authz.FromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	appointments, err := h.appointments.List(c.Request.Context(), identity)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, appointments)
}

func (h *AppointmentHandler) Get(c *gin.Context) {
	identity, err := authz.FromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, apperror.New(http.StatusBadRequest, "invalid id", apperror.ErrBadRequest))
		return
	}

	appointment, err := h.appointments.Get(c.Request.Context(), identity, uint(id))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, appointment)
}

// ListForPatient serves both the per-patient route and the bare admin route.
// The patient id may legitimately be absent; the policy layer decides what
// that means per role.
func (h *AppointmentHandler) ListForPatient(c *gin.Context) {
	identity, err := authz.FromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	appointments, err := h.appointments.ListForPatient(c.Request.Context(), identity, c.Param("patient_id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, appointments)
}

func (h *AppointmentHandler) Update(c *gin.Context) {
	identity, err := authz.FromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, apperror.New(http.StatusBadRequest, "invalid id", apperror.ErrBadRequest))
		return
	}

	var input dto.UpdateAppointmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.InvalidInput(c, err)
		return
	}

	appointment, err := h.appointments.Update(c.Request.Context(), identity, uint(id), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, appointment)
}

func (h *AppointmentHandler) Delete(c *gin.Context) {
	identity, err := authz.FromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, apperror.New(http.StatusBadRequest, "invalid id", apperror.ErrBadRequest))
		return
	}

	if err := h.appointments.Delete(c.Request.Context(), identity, uint(id)); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "appointment deleted"})
}
