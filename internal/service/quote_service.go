package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vinnymaker/stockapp/internal/models"
	"github.com/vinnymaker/stockapp/internal/repository"
	"github.com/vinnymaker/stockapp/pkg/utils/zaplogger"
	"gorm.io/gorm"
)

// QuoteService is the read side of the market data store. Single quote reads
// are cached in Redis for one refresh interval when a client is configured.
type QuoteService struct {
	redisClient  *redis.Client
	cacheTTL     time.Duration
	exchangeRepo *repository.ExchangeRepository
	quoteRepo    *repository.QuoteRepository
	indexRepo    *repository.IndexRepository
}

// NewQuoteService creates a new QuoteService. redisClient may be nil, reads
// then always go to the database.
func NewQuoteService(db *gorm.DB, redisClient *redis.Client, cacheTTL time.Duration) *QuoteService {
	if cacheTTL <= 0 {
		cacheTTL = 60 * time.Second
	}
	return &QuoteService{
		redisClient:  redisClient,
		cacheTTL:     cacheTTL,
		exchangeRepo: repository.NewExchangeRepository(db),
		quoteRepo:    repository.NewQuoteRepository(db),
		indexRepo:    repository.NewIndexRepository(db),
	}
}

// GetQuote returns the quote for (exchange code, symbol), or nil when either
// the exchange or the symbol is unknown.
func (s *QuoteService) GetQuote(ctx context.Context, exchangeCode, symbol string) (*models.Quote, error) {
	cacheKey := fmt.Sprintf("quote:%s:%s", exchangeCode, symbol)
	if cached := s.cacheGet(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	exchange, err := s.exchangeRepo.GetExchangeByCode(exchangeCode)
	if err != nil {
		return nil, err
	}
	if exchange == nil {
		return nil, nil
	}

	quote, err := s.quoteRepo.GetQuote(exchange.ID, symbol)
	if err != nil {
		return nil, err
	}
	if quote == nil {
		return nil, nil
	}

	isIndex, err := s.isIndexName(exchange.ID, symbol)
	if err != nil {
		return nil, err
	}
	enrichQuote(quote, isIndex)

	s.cacheSet(ctx, cacheKey, quote)
	return quote, nil
}

// GetIndexMembers returns the index's own quote followed by its constituent
// quotes, or nil when the exchange or index is unknown.
func (s *QuoteService) GetIndexMembers(ctx context.Context, exchangeCode, indexName string) ([]models.Quote, error) {
	exchange, err := s.exchangeRepo.GetExchangeByCode(exchangeCode)
	if err != nil {
		return nil, err
	}
	if exchange == nil {
		return nil, nil
	}

	indexIDs, err := s.indexRepo.FindIndexIDs(exchange.ID, indexName)
	if err != nil {
		return nil, err
	}
	if len(indexIDs) != 1 {
		return nil, nil
	}

	members := make([]models.Quote, 0)
	indexQuote, err := s.quoteRepo.GetQuote(exchange.ID, indexName)
	if err != nil {
		return nil, err
	}
	if indexQuote != nil {
		enrichQuote(indexQuote, true)
		members = append(members, *indexQuote)
	}

	stockIDs, err := s.indexRepo.GetListingStockIDs(indexIDs[0])
	if err != nil {
		return nil, err
	}
	stocks, err := s.quoteRepo.GetQuotesByIDs(stockIDs)
	if err != nil {
		return nil, err
	}
	for i := range stocks {
		enrichQuote(&stocks[i], false)
		members = append(members, stocks[i])
	}

	return members, nil
}

// SearchBySubstring returns lightweight results for all quotes whose symbol
// contains the given substring. The stocks schema does not persist the quote
// type, so each hit is labeled INDEX or STOCK by cross-referencing the
// stock_indexes definitions.
func (s *QuoteService) SearchBySubstring(substr string) ([]models.QuoteLite, error) {
	quotes, err := s.quoteRepo.SearchBySymbol(substr)
	if err != nil {
		return nil, err
	}

	indexes, err := s.indexRepo.GetAllIndexes()
	if err != nil {
		return nil, err
	}
	indexNames := make(map[uint]map[string]bool, len(indexes))
	for _, idx := range indexes {
		if indexNames[idx.ExchangeID] == nil {
			indexNames[idx.ExchangeID] = make(map[string]bool)
		}
		indexNames[idx.ExchangeID][idx.IndexName] = true
	}

	results := make([]models.QuoteLite, 0, len(quotes))
	for _, q := range quotes {
		quoteType := models.QuoteTypeStock
		if indexNames[q.ExchangeID][q.Symbol] {
			quoteType = models.QuoteTypeIndex
		}
		results = append(results, models.QuoteLite{
			ExchangeID: q.ExchangeID,
			Symbol:     q.Symbol,
			Type:       quoteType,
		})
	}
	return results, nil
}

// ListExchanges returns the exchange records with the given ids
func (s *QuoteService) ListExchanges(ids []uint) ([]models.Exchange, error) {
	return s.exchangeRepo.GetExchangesByIDs(ids)
}

// ListIndexes returns the INDEX quotes of all indexes defined on an exchange
func (s *QuoteService) ListIndexes(exchangeID uint) ([]models.Quote, error) {
	indexes, err := s.indexRepo.GetIndexesByExchange(exchangeID)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(indexes))
	for _, idx := range indexes {
		names = append(names, idx.IndexName)
	}

	quotes, err := s.quoteRepo.GetQuotesBySymbols(exchangeID, names)
	if err != nil {
		return nil, err
	}
	for i := range quotes {
		enrichQuote(&quotes[i], true)
	}
	return quotes, nil
}

func (s *QuoteService) isIndexName(exchangeID uint, symbol string) (bool, error) {
	indexIDs, err := s.indexRepo.FindIndexIDs(exchangeID, symbol)
	if err != nil {
		return false, err
	}
	return len(indexIDs) == 1, nil
}

// enrichQuote fills in the non-persisted type and change fields
func enrichQuote(q *models.Quote, isIndex bool) {
	if isIndex {
		q.Type = models.QuoteTypeIndex
	} else {
		q.Type = models.QuoteTypeStock
	}
	q.Change = q.GetChange()
}

func (s *QuoteService) cacheGet(ctx context.Context, key string) *models.Quote {
	if s.redisClient == nil {
		return nil
	}
	payload, err := s.redisClient.Get(ctx, key).Result()
	if err != nil {
		return nil
	}
	var quote models.Quote
	if err := json.Unmarshal([]byte(payload), &quote); err != nil {
		return nil
	}
	return &quote
}

func (s *QuoteService) cacheSet(ctx context.Context, key string, quote *models.Quote) {
	if s.redisClient == nil {
		return
	}
	payload, err := json.Marshal(quote)
	if err != nil {
		return
	}
	if err := s.redisClient.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
		zaplogger.Debug("quote cache write failed", zaplogger.Fields{
			"key":   key,
			"error": err.Error(),
		})
	}
}
