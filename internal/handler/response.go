package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ErrorResponse is the JSON body returned for rejected submissions.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Error sends a JSON error body.
func Error(c echo.Context, status int, message string) error {
	if status == 0 {
		status = http.StatusBadRequest
	}
	return c.JSON(status, ErrorResponse{Error: message})
}

// Text sends a plain-text body. Used where the response must not reveal structure.
func Text(c echo.Context, status int, body string) error {
	if status == 0 {
		status = http.StatusOK
	}
	return c.String(status, body)
}
