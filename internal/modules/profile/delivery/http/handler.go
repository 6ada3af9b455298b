package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"carelink.id/clinicapi/internal/authz"
	"carelink.id/clinicapi/internal/modules/profile/dto"
	"carelink.id/clinicapi/internal/modules/profile/service"
	"carelink.id/clinicapi/pkg/apperror"
	commonDto "carelink.id/clinicapi/pkg/dto"
	"carelink.id/clinicapi/pkg/response"
)

type DoctorProfileHandler struct {
	doctors service.DoctorProfileService
}

func NewDoctorProfileHandler(doctors service.DoctorProfileService) *DoctorProfileHandler {
	return &DoctorProfileHandler{doctors: doctors}
}

func parseUintParam(c *gin.Context, name string) (uint, error) {
	value, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, apperror.New(http.StatusBadRequest, "invalid "+name, apperror.ErrBadRequest)
	}
	return uint(value), nil
}

func (h *DoctorProfileHandler) List(c *gin.Context) {
	profiles, err := h.doctors.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, profiles)
}

func (h *DoctorProfileHandler) Get(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	profile, err := h.doctors.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *DoctorProfileHandler) ListByDepartment(c *gin.Context) {
	departmentID, err := parseUintParam(c, "department_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	profiles, err := h.doctors.ListByDepartment(c.Request.Context(), departmentID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, profiles)
}

func (h *DoctorProfileHandler) Update(c *gin.Context) {
	identity, err := authz.FromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var input dto.UpdateDoctorProfileInput
	if err := c.ShouldBind(&input); err != nil {
		response.InvalidInput(c, err)
		return
	}

	var image *commonDto.UploadFile
	if fileHeader, err := c.FormFile("image"); err == nil && fileHeader != nil {
		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read image"})
			return
		}
		defer file.Close()

		image = &commonDto.UploadFile{
			Reader:   file,
			FileName: fileHeader.Filename,
		}
	}

	profile, err := h.doctors.Update(c.Request.Context(), identity, id, input, image)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *DoctorProfileHandler) Delete(c *gin.Context) {
	identity, err := authz.FromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.doctors.Delete(c.Request.Context(), identity, id); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "doctor profile deleted"})
}

func (h *DoctorProfileHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter q is required"})
		return
	}

	results, err := h.doctors.Search(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

type PatientProfileHandler struct {
	patients service.PatientProfileService
}

func NewPatientProfileHandler(patients service.PatientProfileService) *PatientProfileHandler {
	return &PatientProfileHandler{patients: patients}
}

func (h *PatientProfileHandler) List(c *gin.Context) {
	identity, err := authz.FromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	profiles, err := h.patients.List(c.Request.Context(), identity)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, profiles)
}

func (h *PatientProfileHandler) Get(c *gin.Context) {
	identity, err := authz.FromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	id, err := parseUintParam(c, "patient_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	profile, err := h.patients.Get(c.Request.Context(), identity, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *PatientProfileHandler) Update(c *gin.Context) {
	identity, err := authz.FromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	id, err := parseUintParam(c, "patient_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var input dto.UpdatePatientProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.InvalidInput(c, err)
		return
	}

	profile, err := h.patients.Update(c.Request.Context(), identity, id, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}
