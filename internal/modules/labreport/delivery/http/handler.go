package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"carelink.id/clinicapi/internal/authz"
	"carelink.id/clinicapi/internal/modules/labreport/dto"
	"carelink.id/clinicapi/internal/modules/labreport/service"
	"carelink.id/clinicapi/pkg/apperror"
	commonDto "carelink.id/clinicapi/pkg/dto"
	"carelink.id/clinicapi/pkg/response"
)

type ReportTypeHandler struct {
	types service.ReportTypeService
}

func NewReportTypeHandler(types service.ReportTypeService) *ReportTypeHandler {
	return &ReportTypeHandler{types: types}
}

func uintParam(c *gin.Context, name string) (uint, error) {
	value, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, apperror.New(http.StatusBadRequest, "invalid "+name, apperror.ErrBadRequest)
	}
	return uint(value), nil
}

func formFile(c *gin.Context, field string) (*commonDto.UploadFile, func(), error) {
	fileHeader, err := c.FormFile(field)
	if err != nil || fileHeader == nil {
		return nil, func() {}, nil
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, func() {}, apperror.New(http.StatusBadRequest, "failed to read file", apperror.ErrBadRequest)
	}

	return &commonDto.UploadFile{
		Reader:   file,
		FileName: fileHeader.Filename,
	}, func() { file.Close() }, nil
}

func (h *ReportTypeHandler) Create(c *gin.Context) {
	var input dto.CreateReportTypeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.InvalidInput(c, err)
		return
	}

	reportType, err := h.types.Create(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, reportType)
}

func (h *ReportTypeHandler) List(c *gin.Context) {
	types, err := h.types.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, types)
}

func (h *ReportTypeHandler) Get(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	reportType, err := h.types.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, reportType)
}

func (h *ReportTypeHandler) Update(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var input dto.UpdateReportTypeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.InvalidInput(c, err)
		return
	}

	reportType, err := h.types.Update(c.Request.Context(), id, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, reportType)
}

func (h *ReportTypeHandler) Delete(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.types.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "report type deleted"})
}

type LabReportHandler struct {
	reports service.LabReportService
}

func NewLabReportHandler(reports service.LabReportService) *LabReportHandler {
	return &LabReportHandler{reports: reports}
}

func (h *LabReportHandler) Upload(c *gin.Context) {
	identity, err := authz.FromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	patientID, err := uintParam(c, "patient_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var input dto.UploadLabReportInput
	if err := c.ShouldBind(&input); err != nil {
		response.InvalidInput(c, err)
		return
	}

	file, closeFile, err := formFile(c, "file")
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closeFile()

	report, err := h.reports.Upload(c.Request.Context(), identity, patientID, input, file)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, report)
}

func (h *LabReportHandler) List(c *gin.Context) {
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

func (h *LabReportHandler) Get(c *gin.Context) {
	identity, err := authz.FromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	id, err := uintParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	report, err := h.reports.Get(c.Request.Context(), identity, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *LabReportHandler) ListByReportType(c *gin.Context) {
	identity, err := authz.FromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	reportTypeID, err := uintParam(c, "report_type_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	reports, err := h.reports.ListByReportType(c.Request.Context(), identity, reportTypeID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, reports)
}

func (h *LabReportHandler) ListByPatient(c *gin.Context) {
	identity, err := authz.FromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	patientID, err := uintParam(c, "patient_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	reports, err := h.reports.ListByPatient(c.Request.Context(), identity, patientID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, reports)
}

func (h *LabReportHandler) Update(c *gin.Context) {
	identity, err := authz.FromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	id, err := uintParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var input dto.UpdateLabReportInput
	if err := c.ShouldBind(&input); err != nil {
		response.InvalidInput(c, err)
		return
	}

	file, closeFile, err := formFile(c, "file")
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closeFile()

	report, err := h.reports.Update(c.Request.Context(), identity, id, input, file)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *LabReportHandler) Delete(c *gin.Context) {
	identity, err := authz.FromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	id, err := uintParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.reports.Delete(c.Request.Context(), identity, id); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "lab report deleted"})
}
