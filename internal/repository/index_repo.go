package repository

import (
	"fmt"

	"github.com/vinnymaker/stockapp/internal/models"
	"gorm.io/gorm"
)

// IndexRepository is the database repository for stock indexes and their listings
type IndexRepository struct {
	DB *gorm.DB
}

// NewIndexRepository creates a new index repository
func NewIndexRepository(db *gorm.DB) *IndexRepository {
	return &IndexRepository{DB: db}
}

// FindIndexIDs returns the ids of stock_indexes rows matching (exchange,
// name). The sync engine requires exactly one match before touching listings.
func (r *IndexRepository) FindIndexIDs(exchangeID uint, indexName string) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&models.StockIndex{}).
		Where("exchange_id = ? AND index_name = ?", exchangeID, indexName).
		Pluck("stock_index_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to resolve index %q: %v", indexName, err)
	}
	return ids, nil
}

// GetIndexesByExchange returns all index definitions on an exchange
func (r *IndexRepository) GetIndexesByExchange(exchangeID uint) ([]models.StockIndex, error) {
	var indexes []models.StockIndex
	err := r.DB.Where("exchange_id = ?", exchangeID).Find(&indexes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get indexes for exchange %d: %v", exchangeID, err)
	}
	return indexes, nil
}

// GetAllIndexes returns every index definition. Used to label search results
// as INDEX or STOCK.
func (r *IndexRepository) GetAllIndexes() ([]models.StockIndex, error) {
	var indexes []models.StockIndex
	err := r.DB.Find(&indexes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get indexes: %v", err)
	}
	return indexes, nil
}

// GetListingStockIDs returns the stock ids listed under an index
func (r *IndexRepository) GetListingStockIDs(indexID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&models.IndexListing{}).
		Where("index_id = ?", indexID).
		Pluck("stock_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get listings for index %d: %v", indexID, err)
	}
	return ids, nil
}

// EnsureIndex creates the index definition if it does not exist yet
func (r *IndexRepository) EnsureIndex(exchangeID uint, indexName string) (*models.StockIndex, error) {
	index := models.StockIndex{ExchangeID: exchangeID, IndexName: indexName}
	err := r.DB.Where("exchange_id = ? AND index_name = ?", exchangeID, indexName).FirstOrCreate(&index).Error
	if err != nil {
		return nil, fmt.Errorf("failed to ensure index %q: %v", indexName, err)
	}
	return &index, nil
}
