package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/vinnymaker/stockapp/internal/models"
	"github.com/vinnymaker/stockapp/internal/service"
	"github.com/vinnymaker/stockapp/pkg/utils/response"
)

// Minimum length of a search substring. Shorter inputs yield an empty
// result set rather than an error.
const minSearchKeySize = 2

// StockHandler is the handler for the market data API
type StockHandler struct {
	service *service.QuoteService
}

// NewStockHandler creates a new stock handler
func NewStockHandler(service *service.QuoteService) *StockHandler {
	return &StockHandler{service: service}
}

// GetStock returns the quote for a single item given its exchange and symbol
func (h *StockHandler) GetStock(c echo.Context) error {
	exchange := c.Param("exchange")
	symbol := c.Param("symbol")

	quote, err := h.service.GetQuote(c.Request().Context(), exchange, symbol)
	if err != nil {
		return response.ErrorResponse(c, http.StatusInternalServerError, "Internal server error")
	}
	if quote == nil {
		return response.ErrorResponse(c, http.StatusNotFound, "The specified resource doesn't exist")
	}
	return response.SuccessResponse(c, quote)
}

// GetIndexMembers returns an index's own quote and all its constituents
func (h *StockHandler) GetIndexMembers(c echo.Context) error {
	exchange := c.Param("exchange")
	indexName := c.Param("symbol")

	members, err := h.service.GetIndexMembers(c.Request().Context(), exchange, indexName)
	if err != nil {
		return response.ErrorResponse(c, http.StatusInternalServerError, "Internal server error")
	}
	if members == nil {
		return response.ErrorResponse(c, http.StatusNotFound, "Requested index not found on the exchange")
	}
	return response.SuccessResponse(c, map[string]interface{}{"items": members})
}

// Search returns lightweight matches for a symbol substring
func (h *StockHandler) Search(c echo.Context) error {
	substr := c.QueryParam("substr")
	if len(substr) < minSearchKeySize {
		return response.SuccessResponse(c, map[string]interface{}{"results": []models.QuoteLite{}})
	}

	results, err := h.service.SearchBySubstring(strings.ToUpper(substr))
	if err != nil {
		return response.ErrorResponse(c, http.StatusInternalServerError, "Internal server error")
	}
	return response.SuccessResponse(c, map[string]interface{}{"results": results})
}

// GetIndexes returns the INDEX quotes for all indexes on an exchange
func (h *StockHandler) GetIndexes(c echo.Context) error {
	exchangeID, err := strconv.ParseUint(c.QueryParam("exid"), 10, 32)
	if err != nil {
		return response.ErrorResponse(c, http.StatusBadRequest, "Bad request")
	}

	indexes, err := h.service.ListIndexes(uint(exchangeID))
	if err != nil {
		return response.ErrorResponse(c, http.StatusInternalServerError, "Internal server error")
	}
	return response.SuccessResponse(c, map[string]interface{}{"indexes": indexes})
}

// GetExchanges returns exchange records for a comma separated id list
func (h *StockHandler) GetExchanges(c echo.Context) error {
	ids, ok := parseExchangeIDs(c.QueryParam("exids"))
	if !ok {
		return response.ErrorResponse(c, http.StatusBadRequest, "Bad request")
	}

	exchanges, err := h.service.ListExchanges(ids)
	if err != nil {
		return response.ErrorResponse(c, http.StatusInternalServerError, "Internal server error")
	}
	return response.SuccessResponse(c, map[string]interface{}{"exchanges": exchanges})
}

func parseExchangeIDs(raw string) ([]uint, bool) {
	if raw == "" {
		return nil, false
	}
	parts := strings.Split(raw, ",")
	ids := make([]uint, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return nil, false
		}
		ids = append(ids, uint(id))
	}
	return ids, true
}
