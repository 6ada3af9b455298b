package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"carelink.id/clinicapi/internal/modules/department/dto"
	"carelink.id/clinicapi/internal/modules/department/service"
	"carelink.id/clinicapi/pkg/apperror"
	"carelink.id/clinicapi/pkg/response"
)

type DepartmentHandler struct {
	departments service.DepartmentService
}

func NewDepartmentHandler(departments service.DepartmentService) *DepartmentHandler {
	return &DepartmentHandler{departments: departments}
}

func idParam(c *gin.Context) (uint, error) {
	value, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, apperror.New(http.StatusBadRequest, "invalid id", apperror.ErrBadRequest)
	}
	return uint(value), nil
}

func (h *DepartmentHandler) Create(c *gin.Context) {
	var input dto.CreateDepartmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.InvalidInput(c, err)
		return
	}

	department, err := h.departments.Create(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, department)
}

func (h *DepartmentHandler) List(c *gin.Context) {
	departments, err := h.departments.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, departments)
}

func (h *DepartmentHandler) Get(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	department, err := h.departments.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, department)
}

func (h *DepartmentHandler) Update(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var input dto.UpdateDepartmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.InvalidInput(c, err)
		return
	}

	department, err := h.departments.Update(c.Request.Context(), id, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, department)
}

func (h *DepartmentHandler) Delete(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.departments.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "department deleted"})
}
