// Package api contains the API routes for the stockapp backend
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/vinnymaker/stockapp/internal/api/handlers"
	"github.com/vinnymaker/stockapp/internal/api/middleware"
	"github.com/vinnymaker/stockapp/internal/service"
	"github.com/vinnymaker/stockapp/pkg/utils/response"
)

// SetupRoutes configures the routes for the API
func SetupRoutes(e *echo.Echo, db *gorm.DB, redisClient *redis.Client, cacheTTL time.Duration) {
	e.HTTPErrorHandler = httpErrorHandler

	userService := service.NewUserService(db)
	quoteService := service.NewQuoteService(db, redisClient, cacheTTL)

	userHandler := handlers.NewUserHandler(userService)
	stockHandler := handlers.NewStockHandler(quoteService)

	basicAuth := middleware.BasicAuthMiddleware(userService)

	// User routes. Creation is unauthenticated, the rest require basic auth.
	e.GET("/user/:username", userHandler.GetUser, basicAuth)
	e.POST("/user", userHandler.PostUser)

	// Market data routes authenticate with basic auth plus a matching
	// Username header.
	stocks := e.Group("", basicAuth, middleware.UsernameHeaderMiddleware())
	stocks.GET("/stock/:exchange/:symbol", stockHandler.GetStock)
	stocks.GET("/index/:exchange/:symbol/members", stockHandler.GetIndexMembers)
	stocks.GET("/search", stockHandler.Search)
	stocks.GET("/indexes", stockHandler.GetIndexes)
	stocks.GET("/exchanges", stockHandler.GetExchanges)
}

// httpErrorHandler renders every unhandled error as the standard error body.
// A route matched with the wrong verb reports 403, not 405.
func httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "Internal server error"

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		code = httpErr.Code
		if m, ok := httpErr.Message.(string); ok && m != "" {
			message = m
		}
		switch code {
		case http.StatusMethodNotAllowed:
			code = http.StatusForbidden
			message = "Wrong request method for uri"
		case http.StatusNotFound:
			message = "Invalid uri"
		}
	}

	_ = response.ErrorResponse(c, code, message)
}
