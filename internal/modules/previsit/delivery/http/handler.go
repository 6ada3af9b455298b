package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"carelink.id/clinicapi/internal/authz"
	"carelink.id/clinicapi/internal/modules/previsit/dto"
	"carelink.id/clinicapi/internal/modules/previsit/service"
	"carelink.id/clinicapi/pkg/apperror"
	"carelink.id/clinicapi/pkg/response"
)

type PreVisitQuestionHandler struct {
	questions service.PreVisitQuestionService
}

func NewPreVisitQuestionHandler(questions service.PreVisitQuestionService) *PreVisitQuestionHandler {
	return &PreVisitQuestionHandler{questions: questions}
}

func uintParam(c *gin.Context, name string) (uint, error) {
	value, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, apperror.New(http.StatusBadRequest, "invalid "+name, apperror.ErrBadRequest)
	}
	return uint(value), nil
}

func (h *PreVisitQuestionHandler) Create(c *gin.Context) {
	var input dto.CreatePreVisitQuestionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.InvalidInput(c, err)
		return
	}

	question, err := h.questions.Create(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, question)
}

func (h *PreVisitQuestionHandler) List(c *gin.Context) {
	if deptParam := c.Query("department_id"); deptParam != "" {
		departmentID, err := strconv.ParseUint(deptParam, 10, 64)
		if err != nil {
			response.Error(c, apperror.New(http.StatusBadRequest, "invalid department_id", apperror.ErrBadRequest))
			return
		}

		questions, err := h.questions.ListByDepartment(c.Request.Context(), uint(departmentID))
		if err != nil {
			response.Error(c, err)
			return
		}

		c.JSON(http.StatusOK, questions)
		return
	}

	questions, err := h.questions.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, questions)
}

func (h *PreVisitQuestionHandler) Get(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	question, err := h.questions.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

func (h *PreVisitQuestionHandler) Update(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var input dto.UpdatePreVisitQuestionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.InvalidInput(c, err)
		return
	}

	question, err := h.questions.Update(c.Request.Context(), id, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

func (h *PreVisitQuestionHandler) Delete(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.questions.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "pre-visit question deleted"})
}

type PreVisitReportHandler struct {
	reports service.PreVisitReportService
}

func NewPreVisitReportHandler(reports service.PreVisitReportService) *PreVisitReportHandler {
	return &PreVisitReportHandler{reports: reports}
}

func (h *PreVisitReportHandler) Create(c *gin.Context) {
	identity, err := authz.FromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var input dto.CreatePreVisitReportInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.InvalidInput(c, err)
		return
	}

	report, err := h.reports.Create(c.Request.Context(), identity, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, report)
}

func (h *PreVisitReportHandler) List(c *gin.Context) {
	identity, err := authz.FromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	reports, err := h.reports.List(c.Request.Context(), identity)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, reports)
}

// Get looks the report up by its appointment id, which is how callers
// address intake reports.
func (h *PreVisitReportHandler) Get(c *gin.Context) {
	identity, err := authz.FromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	appointmentID, err := uintParam(c, "appointment_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	report, err := h.reports.GetByAppointment(c.Request.Context(), identity, appointmentID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *PreVisitReportHandler) Update(c *gin.Context) {
	identity, err := authz.FromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	appointmentID, err := uintParam(c, "appointment_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var input dto.UpdatePreVisitReportInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.InvalidInput(c, err)
		return
	}

	report, err := h.reports.UpdateByAppointment(c.Request.Context(), identity, appointmentID, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *PreVisitReportHandler) Delete(c *gin.Context) {
	identity, err := authz.FromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	appointmentID, err := uintParam(c, "appointment_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.reports.DeleteByAppointment(c.Request.Context(), identity, appointmentID); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "pre-visit report deleted"})
}
