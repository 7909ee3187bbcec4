// Package response contains response utility functions and types
package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ErrorBody is the body carried by every non-2xx response
type ErrorBody struct {
	ErrorCode string `json:"errorCode"`
}

// SuccessResponse sends a 200 JSON response with the given payload
func SuccessResponse(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, data)
}

// ErrorResponse sends an error JSON response
func ErrorResponse(c echo.Context, httpStatus int, message string) error {
	return c.JSON(httpStatus, ErrorBody{ErrorCode: message})
}
