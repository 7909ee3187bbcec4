// Package handlers contains the handlers for the API
package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/vinnymaker/stockapp/internal/api/middleware"
	"github.com/vinnymaker/stockapp/internal/service"
	"github.com/vinnymaker/stockapp/pkg/utils/response"
)

// UserHandler is the handler for the user API
type UserHandler struct {
	service *service.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(service *service.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// successBody is returned by mutating user operations
var successBody = map[string]string{"success": "true"}

// GetUser returns the user record for the authenticated user. The path
// username must match the credentials, users can only read themselves.
func (h *UserHandler) GetUser(c echo.Context) error {
	username := c.Param("username")
	if username != middleware.AuthenticatedUsername(c) {
		return response.ErrorResponse(c, http.StatusUnauthorized, "Credentials do not match the requested user")
	}

	user, err := h.service.GetUser(username)
	if err != nil {
		return response.ErrorResponse(c, http.StatusInternalServerError, "Internal server error")
	}
	if user == nil {
		return response.ErrorResponse(c, http.StatusNotFound, "The specified resource doesn't exist")
	}
	return response.SuccessResponse(c, user)
}

// PostUser creates, updates or deletes a user depending on the form flags.
// Creation is unauthenticated, update and delete require basic auth for the
// affected user.
func (h *UserHandler) PostUser(c echo.Context) error {
	username := c.FormValue("username")
	password := c.FormValue("password")
	if username == "" {
		return response.ErrorResponse(c, http.StatusBadRequest, "This request must have a username")
	}

	if c.FormValue("create") == "1" {
		return h.createUser(c, username, password)
	}

	// Update and delete act on the authenticated user only.
	authUsername, authPassword, ok := middleware.ParseBasicAuth(c.Request().Header.Get("Authorization"))
	if !ok || authUsername != username || !h.service.VerifyPassword(authUsername, authPassword) {
		return response.ErrorResponse(c, http.StatusUnauthorized, "Invalid credentials")
	}

	if c.FormValue("delete") == "1" {
		return h.deleteUser(c, username)
	}
	return h.updatePassword(c, username, password)
}

func (h *UserHandler) createUser(c echo.Context, username, password string) error {
	_, err := h.service.CreateUser(username, password)
	if err != nil {
		var invalid *service.InvalidUserError
		if errors.As(err, &invalid) {
			return response.ErrorResponse(c, http.StatusBadRequest, invalid.Message)
		}
		return response.ErrorResponse(c, http.StatusInternalServerError, "Internal server error")
	}
	return response.SuccessResponse(c, successBody)
}

func (h *UserHandler) deleteUser(c echo.Context, username string) error {
	deleted, err := h.service.DeleteUser(username)
	if err != nil {
		return response.ErrorResponse(c, http.StatusInternalServerError, "Internal server error")
	}
	if !deleted {
		return response.ErrorResponse(c, http.StatusNotFound, "The specified resource doesn't exist")
	}
	return response.SuccessResponse(c, successBody)
}

func (h *UserHandler) updatePassword(c echo.Context, username, newPassword string) error {
	user, err := h.service.GetUser(username)
	if err != nil {
		return response.ErrorResponse(c, http.StatusInternalServerError, "Internal server error")
	}
	if user == nil {
		return response.ErrorResponse(c, http.StatusNotFound, "The specified resource doesn't exist")
	}

	if err := h.service.UpdatePassword(user, newPassword); err != nil {
		var invalid *service.InvalidUserError
		if errors.As(err, &invalid) {
			return response.ErrorResponse(c, http.StatusBadRequest, invalid.Message)
		}
		return response.ErrorResponse(c, http.StatusInternalServerError, "Internal server error")
	}
	return response.SuccessResponse(c, successBody)
}
