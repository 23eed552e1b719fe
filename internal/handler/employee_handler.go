package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"wellnesshub/internal/middleware"
	"wellnesshub/internal/service"
)

// EmployeeHandler handles employee management endpoints.
type EmployeeHandler struct {
	employeeService service.EmployeeService
}

// NewEmployeeHandler creates a new employee handler.
func NewEmployeeHandler(employeeService service.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{employeeService: employeeService}
}

// List godoc
// @Summary List employees
// @Tags employees
// @Produce json
// @Security BearerAuth
// @Param search query string false "Search name, email or department"
// @Param role query string false "Role filter (comma separated)"
// @Param status query string false "Status filter"
// @Param department query string false "Department filter"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} ListResponse{data=[]model.Account}
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /employees [get]
func (h *EmployeeHandler) List(c echo.Context) error {
	items, p, err := h.employeeService.List(c.Request().Context(), service.EmployeeFilter(c.QueryParams()))
	if err != nil {
		return err
	}
	return page(c, len(items), p, items)
}

// Get godoc
// @Summary Get employee
// @Tags employees
// @Produce json
// @Security BearerAuth
// @Param id path string true "Employee ID"
// @Success 200 {object} DataResponse{data=model.Account}
// @Failure 404 {object} errors.ErrorResponse
// @Router /employees/{id} [get]
func (h *EmployeeHandler) Get(c echo.Context) error {
	id, err := service.ParseID(c.Param("id"), "employee")
	if err != nil {
		return err
	}
	account, err := h.employeeService.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return ok(c, account)
}

// Create godoc
// @Summary Create employee
// @Tags employees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateEmployeeInput true "Employee"
// @Success 201 {object} DataResponse{data=model.Account}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /employees [post]
func (h *EmployeeHandler) Create(c echo.Context) error {
	var req service.CreateEmployeeInput
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	account, err := h.employeeService.Create(c.Request().Context(), middleware.PrincipalFrom(c), req)
	if err != nil {
		return err
	}
	return created(c, "employee created successfully", account)
}

// Update godoc
// @Summary Update employee
// @Tags employees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Employee ID"
// @Param request body service.UpdateEmployeeInput true "Fields to change"
// @Success 200 {object} DataResponse{data=model.Account}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /employees/{id} [put]
func (h *EmployeeHandler) Update(c echo.Context) error {
	id, err := service.ParseID(c.Param("id"), "employee")
	if err != nil {
		return err
	}
	var req service.UpdateEmployeeInput
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	account, err := h.employeeService.Update(c.Request().Context(), middleware.PrincipalFrom(c), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, DataResponse{Success: true, Message: "employee updated successfully", Data: account})
}

// Delete godoc
// @Summary Delete employee
// @Description Requires the delete_users permission and the master code.
// @Tags employees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Employee ID"
// @Param request body service.MasterCodeInput true "Master code"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /employees/{id} [delete]
func (h *EmployeeHandler) Delete(c echo.Context) error {
	var req service.MasterCodeInput
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	id, err := service.ParseID(c.Param("id"), "employee")
	if err != nil {
		return err
	}
	if err := h.employeeService.Delete(c.Request().Context(), middleware.PrincipalFrom(c), id, req.MasterCode); err != nil {
		return err
	}
	return message(c, "employee deleted successfully")
}

// ResetPassword godoc
// @Summary Reset employee password
// @Description Sets a temporary password and emails it to the account holder.
// @Tags employees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Employee ID"
// @Param request body service.MasterCodeInput true "Master code"
// @Success 200 {object} DataResponse{data=service.ResetResult}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /employees/{id}/reset-password [post]
func (h *EmployeeHandler) ResetPassword(c echo.Context) error {
	var req service.MasterCodeInput
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	id, err := service.ParseID(c.Param("id"), "user")
	if err != nil {
		return err
	}
	result, err := h.employeeService.ResetPassword(c.Request().Context(), middleware.PrincipalFrom(c), id, req.MasterCode)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, DataResponse{Success: true, Message: "temporary password sent", Data: result})
}
