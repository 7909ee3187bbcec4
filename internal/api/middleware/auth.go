// Package middleware provides the middleware for the Echo instance
package middleware

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/vinnymaker/stockapp/internal/service"
	"github.com/vinnymaker/stockapp/pkg/utils/response"
)

// UsernameContextKey is the context key under which the authenticated
// username is stored
const UsernameContextKey = "username"

// UsernameHeader is the header carrying the claimed identity on stock routes
const UsernameHeader = "Username"

// ParseBasicAuth decodes an Authorization header value per RFC 7617: the
// Basic scheme, base64 over UTF-8, credentials split at the first colon.
func ParseBasicAuth(header string) (username, password string, ok bool) {
	const prefix = "Basic "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(header[len(prefix):])
	if err != nil {
		return "", "", false
	}
	credentials := string(decoded)
	colon := strings.IndexByte(credentials, ':')
	if colon < 0 {
		return "", "", false
	}
	return credentials[:colon], credentials[colon+1:], true
}

// BasicAuthMiddleware authenticates requests with HTTP basic auth against
// the credential service and stores the username in the request context.
func BasicAuthMiddleware(userService *service.UserService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			username, password, ok := ParseBasicAuth(c.Request().Header.Get("Authorization"))
			if !ok {
				return response.ErrorResponse(c, http.StatusUnauthorized, "Missing or malformed Authorization header")
			}
			if !userService.VerifyPassword(username, password) {
				return response.ErrorResponse(c, http.StatusUnauthorized, "Invalid credentials")
			}

			c.Set(UsernameContextKey, username)
			return next(c)
		}
	}
}

// UsernameHeaderMiddleware requires the Username header to match the
// authenticated user. Stock routes authenticate with both headers.
func UsernameHeaderMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claimed := c.Request().Header.Get(UsernameHeader)
			if claimed == "" || claimed != AuthenticatedUsername(c) {
				return response.ErrorResponse(c, http.StatusUnauthorized, "Username header does not match credentials")
			}
			return next(c)
		}
	}
}

// AuthenticatedUsername returns the username set by BasicAuthMiddleware
func AuthenticatedUsername(c echo.Context) string {
	username, _ := c.Get(UsernameContextKey).(string)
	return username
}
