package repository

import (
	"errors"
	"fmt"

	"github.com/vinnymaker/stockapp/internal/models"
	"gorm.io/gorm"
)

// QuoteRepository is the database repository for quotes
type QuoteRepository struct {
	DB *gorm.DB
}

// NewQuoteRepository creates a new quote repository
func NewQuoteRepository(db *gorm.DB) *QuoteRepository {
	return &QuoteRepository{DB: db}
}

// GetQuote fetches the quote for (exchange, symbol). Returns nil when no
// such row exists.
func (r *QuoteRepository) GetQuote(exchangeID uint, symbol string) (*models.Quote, error) {
	var quote models.Quote
	err := r.DB.Where("exchange_id = ? AND symbol = ?", exchangeID, symbol).First(&quote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quote %d:%s: %v", exchangeID, symbol, err)
	}
	return &quote, nil
}

// GetQuotesByIDs fetches all quote rows with the given ids
func (r *QuoteRepository) GetQuotesByIDs(ids []uint) ([]models.Quote, error) {
	if len(ids) == 0 {
		return []models.Quote{}, nil
	}
	var quotes []models.Quote
	err := r.DB.Where("stock_id IN ?", ids).Find(&quotes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get quotes by ids: %v", err)
	}
	return quotes, nil
}

// GetQuotesBySymbols fetches quote rows on one exchange by symbol
func (r *QuoteRepository) GetQuotesBySymbols(exchangeID uint, symbols []string) ([]models.Quote, error) {
	if len(symbols) == 0 {
		return []models.Quote{}, nil
	}
	var quotes []models.Quote
	err := r.DB.Where("exchange_id = ? AND symbol IN ?", exchangeID, symbols).Find(&quotes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get quotes by symbols: %v", err)
	}
	return quotes, nil
}

// SearchBySymbol returns all quote rows whose symbol contains the given
// substring. Callers uppercase the input, symbols are stored uppercase.
func (r *QuoteRepository) SearchBySymbol(substr string) ([]models.Quote, error) {
	var quotes []models.Quote
	err := r.DB.Where("symbol LIKE ?", "%"+substr+"%").Find(&quotes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search quotes: %v", err)
	}
	return quotes, nil
}
