package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vinnymaker/stockapp/internal/models"
)

// seedMarketData loads one synced NIFTY 50 snapshot with two constituents
func seedMarketData(t *testing.T, db *gorm.DB) {
	t.Helper()
	seedExchangeAndIndex(t, db, "NSE", "NIFTY 50")
	require.True(t, NewSyncService(db).SyncBatch("NSE", []models.Quote{
		indexQuote("NIFTY 50", 24000),
		stockQuote("RELIANCE", 2900),
		stockQuote("TCS", 4100),
	}))
}

func TestGetQuote(t *testing.T) {
	db := setupTestDB(t)
	seedMarketData(t, db)
	svc := NewQuoteService(db, nil, time.Minute)
	ctx := context.Background()

	quote, err := svc.GetQuote(ctx, "NSE", "RELIANCE")
	require.NoError(t, err)
	require.NotNil(t, quote)
	assert.Equal(t, "RELIANCE", quote.Symbol)
	assert.Equal(t, models.QuoteTypeStock, quote.Type)
	assert.InDelta(t, 2.0, quote.Change, 1e-9)

	// An index name resolves to an INDEX quote.
	quote, err = svc.GetQuote(ctx, "NSE", "NIFTY 50")
	require.NoError(t, err)
	require.NotNil(t, quote)
	assert.Equal(t, models.QuoteTypeIndex, quote.Type)
	assert.InDelta(t, 25.0, quote.Change, 1e-9)
}

func TestGetQuote_Unknown(t *testing.T) {
	db := setupTestDB(t)
	seedMarketData(t, db)
	svc := NewQuoteService(db, nil, time.Minute)
	ctx := context.Background()

	quote, err := svc.GetQuote(ctx, "NSE", "NOSUCH")
	require.NoError(t, err)
	assert.Nil(t, quote)

	quote, err = svc.GetQuote(ctx, "BSE", "RELIANCE")
	require.NoError(t, err)
	assert.Nil(t, quote)
}

func TestGetIndexMembers(t *testing.T) {
	db := setupTestDB(t)
	seedMarketData(t, db)
	svc := NewQuoteService(db, nil, time.Minute)

	members, err := svc.GetIndexMembers(context.Background(), "NSE", "NIFTY 50")
	require.NoError(t, err)
	require.Len(t, members, 3)

	// The index's own quote leads the list.
	assert.Equal(t, "NIFTY 50", members[0].Symbol)
	assert.Equal(t, models.QuoteTypeIndex, members[0].Type)

	symbols := []string{members[1].Symbol, members[2].Symbol}
	assert.ElementsMatch(t, []string{"RELIANCE", "TCS"}, symbols)
	assert.Equal(t, models.QuoteTypeStock, members[1].Type)
	assert.Equal(t, models.QuoteTypeStock, members[2].Type)
}

func TestGetIndexMembers_UnknownIndex(t *testing.T) {
	db := setupTestDB(t)
	seedMarketData(t, db)
	svc := NewQuoteService(db, nil, time.Minute)

	members, err := svc.GetIndexMembers(context.Background(), "NSE", "NIFTY BANK")
	require.NoError(t, err)
	assert.Nil(t, members)

	members, err = svc.GetIndexMembers(context.Background(), "BSE", "NIFTY 50")
	require.NoError(t, err)
	assert.Nil(t, members)
}

func TestSearchBySubstring(t *testing.T) {
	db := setupTestDB(t)
	seedMarketData(t, db)
	svc := NewQuoteService(db, nil, time.Minute)

	results, err := svc.SearchBySubstring("REL")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "RELIANCE", results[0].Symbol)
	assert.Equal(t, models.QuoteTypeStock, results[0].Type)

	// Index hits are labeled INDEX.
	results, err = svc.SearchBySubstring("NIF")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "NIFTY 50", results[0].Symbol)
	assert.Equal(t, models.QuoteTypeIndex, results[0].Type)

	results, err = svc.SearchBySubstring("ZZZ")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestListIndexes(t *testing.T) {
	db := setupTestDB(t)
	seedMarketData(t, db)
	svc := NewQuoteService(db, nil, time.Minute)

	exchange, err := svc.exchangeRepo.GetExchangeByCode("NSE")
	require.NoError(t, err)
	require.NotNil(t, exchange)

	indexes, err := svc.ListIndexes(exchange.ID)
	require.NoError(t, err)
	require.Len(t, indexes, 1)
	assert.Equal(t, "NIFTY 50", indexes[0].Symbol)
	assert.Equal(t, models.QuoteTypeIndex, indexes[0].Type)
	assert.InDelta(t, 25.0, indexes[0].Change, 1e-9)
}

func TestListExchanges(t *testing.T) {
	db := setupTestDB(t)
	seedMarketData(t, db)
	svc := NewQuoteService(db, nil, time.Minute)

	exchange, err := svc.exchangeRepo.GetExchangeByCode("NSE")
	require.NoError(t, err)

	exchanges, err := svc.ListExchanges([]uint{exchange.ID, 9999})
	require.NoError(t, err)
	require.Len(t, exchanges, 1)
	assert.Equal(t, "NSE", exchanges[0].Code)
}
