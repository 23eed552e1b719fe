package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"wellnesshub/internal/middleware"
	"wellnesshub/internal/service"
)

// EventHandler handles event endpoints.
type EventHandler struct {
	eventService service.EventService
	now          func() time.Time
}

// NewEventHandler creates a new event handler.
func NewEventHandler(eventService service.EventService) *EventHandler {
	return &EventHandler{eventService: eventService, now: time.Now}
}

// List godoc
// @Summary List events
// @Description Cancelled events are hidden. Without a date filter only events from today on are listed.
// @Tags events
// @Produce json
// @Param search query string false "Search title, description or location"
// @Param type query string false "Event type (comma separated)"
// @Param status query string false "Status (comma separated)"
// @Param isFeatured query bool false "Featured only"
// @Param fromDate query string false "Start date (YYYY-MM-DD or RFC3339)"
// @Param toDate query string false "End date, inclusive"
// @Param dateRange query string false "today, thisWeek, next7days, thisMonth or nextMonth"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} ListResponse{data=[]model.Event}
// @Router /events [get]
func (h *EventHandler) List(c echo.Context) error {
	return h.list(c, service.AudiencePublic)
}

// ListAdmin godoc
// @Summary List all events
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ListResponse{data=[]model.Event}
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /events/admin/all [get]
func (h *EventHandler) ListAdmin(c echo.Context) error {
	return h.list(c, service.AudienceAdmin)
}

func (h *EventHandler) list(c echo.Context, audience service.Audience) error {
	f := service.EventFilter(c.QueryParams(), audience, h.now())
	items, p, err := h.eventService.List(c.Request().Context(), f)
	if err != nil {
		return err
	}
	return page(c, len(items), p, items)
}

// Featured godoc
// @Summary Featured events
// @Tags events
// @Produce json
// @Success 200 {object} DataResponse{data=[]model.Event}
// @Router /events/featured [get]
func (h *EventHandler) Featured(c echo.Context) error {
	items, err := h.eventService.Featured(c.Request().Context())
	if err != nil {
		return err
	}
	return ok(c, items)
}

// Upcoming godoc
// @Summary Upcoming events
// @Tags events
// @Produce json
// @Success 200 {object} DataResponse{data=[]model.Event}
// @Router /events/upcoming [get]
func (h *EventHandler) Upcoming(c echo.Context) error {
	items, err := h.eventService.Upcoming(c.Request().Context())
	if err != nil {
		return err
	}
	return ok(c, items)
}

// Get godoc
// @Summary Get event
// @Tags events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} DataResponse{data=model.Event}
// @Failure 404 {object} errors.ErrorResponse
// @Router /events/{id} [get]
func (h *EventHandler) Get(c echo.Context) error {
	id, err := service.ParseID(c.Param("id"), "event")
	if err != nil {
		return err
	}
	e, err := h.eventService.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return ok(c, e)
}

// Create godoc
// @Summary Create event
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateEventInput true "Event"
// @Success 201 {object} DataResponse{data=model.Event}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /events [post]
func (h *EventHandler) Create(c echo.Context) error {
	var req service.CreateEventInput
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	e, err := h.eventService.Create(c.Request().Context(), middleware.PrincipalFrom(c), req)
	if err != nil {
		return err
	}
	return created(c, "event created successfully", e)
}

// Update godoc
// @Summary Update event
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Param request body service.UpdateEventInput true "Fields to change"
// @Success 200 {object} DataResponse{data=model.Event}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /events/{id} [put]
func (h *EventHandler) Update(c echo.Context) error {
	id, err := service.ParseID(c.Param("id"), "event")
	if err != nil {
		return err
	}
	var req service.UpdateEventInput
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	e, err := h.eventService.Update(c.Request().Context(), middleware.PrincipalFrom(c), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, DataResponse{Success: true, Message: "event updated successfully", Data: e})
}

// Delete godoc
// @Summary Delete event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /events/{id} [delete]
func (h *EventHandler) Delete(c echo.Context) error {
	id, err := service.ParseID(c.Param("id"), "event")
	if err != nil {
		return err
	}
	if err := h.eventService.Delete(c.Request().Context(), middleware.PrincipalFrom(c), id); err != nil {
		return err
	}
	return message(c, "event deleted successfully")
}
