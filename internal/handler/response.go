package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperr "wellnesshub/internal/errors"
	"wellnesshub/internal/query"
)

// DataResponse wraps a single resource.
type DataResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ListResponse wraps a page of resources.
type ListResponse struct {
	Success    bool             `json:"success"`
	Count      int              `json:"count"`
	Pagination query.Pagination `json:"pagination"`
	Data       interface{}      `json:"data"`
}

// MessageResponse carries only a confirmation message.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func bindAndValidate(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		return apperr.Validation("invalid request body")
	}
	if err := c.Validate(dst); err != nil {
		return apperr.Normalize(err)
	}
	return nil
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, DataResponse{Success: true, Data: data})
}

func created(c echo.Context, message string, data interface{}) error {
	return c.JSON(http.StatusCreated, DataResponse{Success: true, Message: message, Data: data})
}

func message(c echo.Context, msg string) error {
	return c.JSON(http.StatusOK, MessageResponse{Success: true, Message: msg})
}

func page(c echo.Context, count int, p query.Pagination, data interface{}) error {
	return c.JSON(http.StatusOK, ListResponse{Success: true, Count: count, Pagination: p, Data: data})
}
