package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"wellnesshub/internal/middleware"
	"wellnesshub/internal/service"
)

// PractitionerHandler handles practitioner directory endpoints.
type PractitionerHandler struct {
	practitionerService service.PractitionerService
}

// NewPractitionerHandler creates a new practitioner handler.
func NewPractitionerHandler(practitionerService service.PractitionerService) *PractitionerHandler {
	return &PractitionerHandler{practitionerService: practitionerService}
}

// List godoc
// @Summary List active practitioners
// @Tags practitioners
// @Produce json
// @Param search query string false "Search name, specialty or bio"
// @Param specialty query string false "Specialty (comma separated)"
// @Param location query string false "Location contains"
// @Param insurance query string false "Accepted insurance (comma separated)"
// @Param paymentOption query string false "Payment option (comma separated)"
// @Param sessionType query string false "Session type (comma separated)"
// @Param maxFee query number false "Maximum session fee"
// @Param isFeatured query bool false "Featured only"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(12)
// @Success 200 {object} ListResponse{data=[]model.Practitioner}
// @Router /practitioners [get]
func (h *PractitionerHandler) List(c echo.Context) error {
	return h.list(c, service.AudiencePublic)
}

// ListAdmin godoc
// @Summary List all practitioners
// @Tags practitioners
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter (comma separated)"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} ListResponse{data=[]model.Practitioner}
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /practitioners/admin/all [get]
func (h *PractitionerHandler) ListAdmin(c echo.Context) error {
	return h.list(c, service.AudienceAdmin)
}

func (h *PractitionerHandler) list(c echo.Context, audience service.Audience) error {
	f := service.PractitionerFilter(c.QueryParams(), audience)
	items, p, err := h.practitionerService.List(c.Request().Context(), f)
	if err != nil {
		return err
	}
	return page(c, len(items), p, items)
}

// Get godoc
// @Summary Get practitioner
// @Tags practitioners
// @Produce json
// @Param id path string true "Practitioner ID"
// @Success 200 {object} DataResponse{data=model.Practitioner}
// @Failure 404 {object} errors.ErrorResponse
// @Router /practitioners/{id} [get]
func (h *PractitionerHandler) Get(c echo.Context) error {
	id, err := service.ParseID(c.Param("id"), "practitioner")
	if err != nil {
		return err
	}
	p, err := h.practitionerService.Get(c.Request().Context(), id, service.AudiencePublic)
	if err != nil {
		return err
	}
	return ok(c, p)
}

// Create godoc
// @Summary Create practitioner
// @Tags practitioners
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreatePractitionerInput true "Practitioner"
// @Success 201 {object} DataResponse{data=model.Practitioner}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /practitioners [post]
func (h *PractitionerHandler) Create(c echo.Context) error {
	var req service.CreatePractitionerInput
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	p, err := h.practitionerService.Create(c.Request().Context(), middleware.PrincipalFrom(c), req)
	if err != nil {
		return err
	}
	return created(c, "practitioner created successfully", p)
}

// Update godoc
// @Summary Update practitioner
// @Tags practitioners
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Practitioner ID"
// @Param request body service.UpdatePractitionerInput true "Fields to change"
// @Success 200 {object} DataResponse{data=model.Practitioner}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /practitioners/{id} [put]
func (h *PractitionerHandler) Update(c echo.Context) error {
	id, err := service.ParseID(c.Param("id"), "practitioner")
	if err != nil {
		return err
	}
	var req service.UpdatePractitionerInput
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	p, err := h.practitionerService.Update(c.Request().Context(), middleware.PrincipalFrom(c), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, DataResponse{Success: true, Message: "practitioner updated successfully", Data: p})
}

// ToggleFeatured godoc
// @Summary Toggle featured flag
// @Tags practitioners
// @Produce json
// @Security BearerAuth
// @Param id path string true "Practitioner ID"
// @Success 200 {object} DataResponse{data=model.Practitioner}
// @Failure 404 {object} errors.ErrorResponse
// @Router /practitioners/{id}/featured [patch]
func (h *PractitionerHandler) ToggleFeatured(c echo.Context) error {
	id, err := service.ParseID(c.Param("id"), "practitioner")
	if err != nil {
		return err
	}
	p, err := h.practitionerService.ToggleFeatured(c.Request().Context(), middleware.PrincipalFrom(c), id)
	if err != nil {
		return err
	}
	return ok(c, p)
}

// Delete godoc
// @Summary Delete practitioner
// @Tags practitioners
// @Produce json
// @Security BearerAuth
// @Param id path string true "Practitioner ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /practitioners/{id} [delete]
func (h *PractitionerHandler) Delete(c echo.Context) error {
	id, err := service.ParseID(c.Param("id"), "practitioner")
	if err != nil {
		return err
	}
	if err := h.practitionerService.Delete(c.Request().Context(), middleware.PrincipalFrom(c), id); err != nil {
		return err
	}
	return message(c, "practitioner deleted successfully")
}
