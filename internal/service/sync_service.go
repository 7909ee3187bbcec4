// Package service contains the service layer for the stockapp backend
package service

import (
	"github.com/vinnymaker/stockapp/internal/models"
	"github.com/vinnymaker/stockapp/internal/repository"
	"github.com/vinnymaker/stockapp/pkg/utils/zaplogger"
	"gorm.io/gorm"
)

// SyncService reconciles fetched quote batches into the store. Quote rows are
// upserted and index membership is fixed up, but quote rows are never deleted,
// a symbol that leaves an index only loses its listing.
type SyncService struct {
	db           *gorm.DB
	exchangeRepo *repository.ExchangeRepository
	indexRepo    *repository.IndexRepository
	quoteRepo    *repository.QuoteRepository
}

// NewSyncService creates a new SyncService
func NewSyncService(db *gorm.DB) *SyncService {
	return &SyncService{
		db:           db,
		exchangeRepo: repository.NewExchangeRepository(db),
		indexRepo:    repository.NewIndexRepository(db),
		quoteRepo:    repository.NewQuoteRepository(db),
	}
}

// SyncBatch updates a batch of quotes from a single index of an exchange in
// the database. Non existing quotes are created. Returns true only when both
// the quote upsert and the membership fixup succeeded.
//
// The upsert and the membership fixup run in separate transactions, so a
// failed fixup leaves updated quotes behind. Quote upserts are idempotent by
// the (exchange_id, symbol) key, so the next tick repairs the membership.
func (s *SyncService) SyncBatch(exchangeCode string, batch []models.Quote) bool {
	exchange, err := s.exchangeRepo.GetExchangeByCode(exchangeCode)
	if err != nil {
		zaplogger.Error("sync aborted, exchange lookup failed", zaplogger.Fields{
			"exchange": exchangeCode,
			"error":    err.Error(),
		})
		return false
	}
	if exchange == nil {
		zaplogger.Error("sync aborted, unknown exchange", zaplogger.Fields{"exchange": exchangeCode})
		return false
	}

	indexQuote := indexFromBatch(batch)
	if indexQuote == nil {
		zaplogger.Error("sync aborted, batch has no index quote", zaplogger.Fields{
			"exchange":   exchangeCode,
			"batch_size": len(batch),
		})
		return false
	}
	indexName := indexQuote.Symbol

	// A batch may carry a symbol more than once, the last occurrence wins.
	batch = dedupeBySymbol(batch)

	constituents, err := s.loadConstituents(exchange.ID, indexName)
	if err != nil {
		zaplogger.Error("sync aborted, failed to load existing constituents", zaplogger.Fields{
			"exchange": exchangeCode,
			"index":    indexName,
			"error":    err.Error(),
		})
		return false
	}

	// Persistent rows for every incoming symbol. A symbol may have a quote
	// row without being a current constituent, e.g. after it left the index.
	existingMap, err := s.loadExistingQuotes(exchange.ID, batch, constituents)
	if err != nil {
		zaplogger.Error("sync aborted, failed to load existing quotes", zaplogger.Fields{
			"exchange": exchangeCode,
			"index":    indexName,
			"error":    err.Error(),
		})
		return false
	}

	// Membership sets. The index quote is upserted like any other row but it
	// is never a member of its own listings.
	newSymbols := make(map[string]bool, len(batch))
	for _, q := range batch {
		newSymbols[q.Symbol] = true
	}
	var toRemoveIDs []uint
	for symbol, q := range constituents {
		if symbol != indexName && !newSymbols[symbol] {
			toRemoveIDs = append(toRemoveIDs, q.ID)
		}
	}

	// T1: upsert all quote rows.
	var listingIDsToInsert []uint
	err = s.db.Transaction(func(tx *gorm.DB) error {
		for i := range batch {
			incoming := batch[i]
			_, isMember := constituents[incoming.Symbol]
			persistent, exists := existingMap[incoming.Symbol]
			if !exists {
				zaplogger.Info("new symbol included in the index", zaplogger.Fields{
					"index":  indexName,
					"symbol": incoming.Symbol,
				})
				incoming.ID = 0
				incoming.ExchangeID = exchange.ID
				if err := tx.Create(&incoming).Error; err != nil {
					return err
				}
				if incoming.Symbol != indexName {
					listingIDsToInsert = append(listingIDsToInsert, incoming.ID)
				}
				continue
			}

			persistent.Open = incoming.Open
			persistent.Volume = incoming.Volume
			persistent.LastTradedPrice = incoming.LastTradedPrice
			persistent.PreviousClose = incoming.PreviousClose
			persistent.High = incoming.High
			persistent.Low = incoming.Low
			persistent.LastUpdatedAt = incoming.LastUpdatedAt
			if err := tx.Save(persistent).Error; err != nil {
				return err
			}
			// The row existed but wasn't listed, the symbol re-joined.
			if incoming.Symbol != indexName && !isMember {
				listingIDsToInsert = append(listingIDsToInsert, persistent.ID)
			}
		}
		return nil
	})
	if err != nil {
		zaplogger.Error("error updating index stocks", zaplogger.Fields{
			"exchange": exchangeCode,
			"index":    indexName,
			"error":    err.Error(),
		})
		return false
	}

	if len(listingIDsToInsert) == 0 && len(toRemoveIDs) == 0 {
		return true
	}

	// T2: the membership changed, fix up the index_listings rows.
	ok := true
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var indexIDs []uint
		if err := tx.Model(&models.StockIndex{}).
			Where("exchange_id = ? AND index_name = ?", exchange.ID, indexName).
			Pluck("stock_index_id", &indexIDs).Error; err != nil {
			return err
		}
		if len(indexIDs) != 1 {
			zaplogger.Error("index resolution is ambiguous, listings left untouched", zaplogger.Fields{
				"exchange": exchangeCode,
				"index":    indexName,
				"matches":  len(indexIDs),
			})
			ok = false
			return nil
		}
		indexID := indexIDs[0]

		if len(toRemoveIDs) > 0 {
			result := tx.Where("index_id = ? AND stock_id IN ?", indexID, toRemoveIDs).
				Delete(&models.IndexListing{})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected > 0 {
				zaplogger.Info("index listings removed", zaplogger.Fields{
					"index":   indexName,
					"removed": result.RowsAffected,
				})
			}
		}

		for _, stockID := range listingIDsToInsert {
			listing := models.IndexListing{IndexID: indexID, StockID: stockID}
			if err := tx.Create(&listing).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		zaplogger.Error("error updating index listings", zaplogger.Fields{
			"exchange": exchangeCode,
			"index":    indexName,
			"error":    err.Error(),
		})
		return false
	}

	return ok
}

// loadConstituents returns the current constituent quote rows of an index,
// keyed by symbol. An unknown index yields an empty map.
func (s *SyncService) loadConstituents(exchangeID uint, indexName string) (map[string]*models.Quote, error) {
	constituents := make(map[string]*models.Quote)

	indexIDs, err := s.indexRepo.FindIndexIDs(exchangeID, indexName)
	if err != nil {
		return nil, err
	}
	if len(indexIDs) != 1 {
		return constituents, nil
	}

	stockIDs, err := s.indexRepo.GetListingStockIDs(indexIDs[0])
	if err != nil {
		return nil, err
	}
	quotes, err := s.quoteRepo.GetQuotesByIDs(stockIDs)
	if err != nil {
		return nil, err
	}
	for i := range quotes {
		constituents[quotes[i].Symbol] = &quotes[i]
	}
	return constituents, nil
}

// loadExistingQuotes returns the persistent rows for every symbol in the
// batch, keyed by symbol. Constituent rows are reused, the rest are fetched
// by (exchange, symbol) so rows outside the current membership are found too.
func (s *SyncService) loadExistingQuotes(exchangeID uint, batch []models.Quote, constituents map[string]*models.Quote) (map[string]*models.Quote, error) {
	existing := make(map[string]*models.Quote, len(batch))

	var missing []string
	for _, q := range batch {
		if row, ok := constituents[q.Symbol]; ok {
			existing[q.Symbol] = row
		} else {
			missing = append(missing, q.Symbol)
		}
	}

	rows, err := s.quoteRepo.GetQuotesBySymbols(exchangeID, missing)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		existing[rows[i].Symbol] = &rows[i]
	}
	return existing, nil
}

// indexFromBatch returns the unique INDEX quote of a batch, or nil when the
// batch has none or more than one.
func indexFromBatch(batch []models.Quote) *models.Quote {
	var index *models.Quote
	for i := range batch {
		if batch[i].Type == models.QuoteTypeIndex {
			if index != nil {
				return nil
			}
			index = &batch[i]
		}
	}
	return index
}

// dedupeBySymbol collapses duplicate symbols in a batch, keeping the last
// occurrence of each while preserving first-seen order.
func dedupeBySymbol(batch []models.Quote) []models.Quote {
	seen := make(map[string]int, len(batch))
	deduped := make([]models.Quote, 0, len(batch))
	for _, q := range batch {
		if at, ok := seen[q.Symbol]; ok {
			keep := q
			keep.Type = deduped[at].Type
			deduped[at] = keep
			continue
		}
		seen[q.Symbol] = len(deduped)
		deduped = append(deduped, q)
	}
	return deduped
}
