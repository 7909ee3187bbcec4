// Package repository contains the repository layer for the stockapp backend
package repository

import (
	"errors"
	"fmt"

	"github.com/vinnymaker/stockapp/internal/models"
	"gorm.io/gorm"
)

// ExchangeRepository is the database repository for exchanges
type ExchangeRepository struct {
	DB *gorm.DB
}

// NewExchangeRepository creates a new exchange repository
func NewExchangeRepository(db *gorm.DB) *ExchangeRepository {
	return &ExchangeRepository{DB: db}
}

// GetExchangeByCode fetches the exchange with the given code. Returns nil
// when no such exchange exists.
func (r *ExchangeRepository) GetExchangeByCode(code string) (*models.Exchange, error) {
	var exchange models.Exchange
	err := r.DB.Where("code = ?", code).First(&exchange).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get exchange %s: %v", code, err)
	}
	return &exchange, nil
}

// GetExchangesByIDs fetches the exchanges with the given ids
func (r *ExchangeRepository) GetExchangesByIDs(ids []uint) ([]models.Exchange, error) {
	var exchanges []models.Exchange
	err := r.DB.Where("exchange_id IN ?", ids).Find(&exchanges).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get exchanges: %v", err)
	}
	return exchanges, nil
}

// EnsureExchange creates the exchange row if it does not exist yet
func (r *ExchangeRepository) EnsureExchange(code, title string) (*models.Exchange, error) {
	exchange := models.Exchange{Code: code, Title: title}
	err := r.DB.Where("code = ?", code).FirstOrCreate(&exchange).Error
	if err != nil {
		return nil, fmt.Errorf("failed to ensure exchange %s: %v", code, err)
	}
	return &exchange, nil
}
