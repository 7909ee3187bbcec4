package repository

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vinnymaker/stockapp/database"
	"github.com/vinnymaker/stockapp/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func TestExchangeRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewExchangeRepository(db)

	// Absent is nil, not an error.
	exchange, err := repo.GetExchangeByCode("NSE")
	require.NoError(t, err)
	assert.Nil(t, exchange)

	created, err := repo.EnsureExchange("NSE", "National Stock Exchange of India")
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	// Ensure is idempotent.
	again, err := repo.EnsureExchange("NSE", "National Stock Exchange of India")
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)

	exchange, err = repo.GetExchangeByCode("NSE")
	require.NoError(t, err)
	require.NotNil(t, exchange)
	assert.Equal(t, "National Stock Exchange of India", exchange.Title)

	exchanges, err := repo.GetExchangesByIDs([]uint{created.ID, 999})
	require.NoError(t, err)
	assert.Len(t, exchanges, 1)
}

func TestIndexRepository(t *testing.T) {
	db := setupTestDB(t)
	exchangeRepo := NewExchangeRepository(db)
	repo := NewIndexRepository(db)

	exchange, err := exchangeRepo.EnsureExchange("NSE", "NSE")
	require.NoError(t, err)

	ids, err := repo.FindIndexIDs(exchange.ID, "NIFTY 50")
	require.NoError(t, err)
	assert.Empty(t, ids)

	index, err := repo.EnsureIndex(exchange.ID, "NIFTY 50")
	require.NoError(t, err)
	require.NotZero(t, index.ID)

	again, err := repo.EnsureIndex(exchange.ID, "NIFTY 50")
	require.NoError(t, err)
	assert.Equal(t, index.ID, again.ID)

	ids, err = repo.FindIndexIDs(exchange.ID, "NIFTY 50")
	require.NoError(t, err)
	assert.Equal(t, []uint{index.ID}, ids)

	indexes, err := repo.GetIndexesByExchange(exchange.ID)
	require.NoError(t, err)
	assert.Len(t, indexes, 1)

	// Listings.
	stockIDs, err := repo.GetListingStockIDs(index.ID)
	require.NoError(t, err)
	assert.Empty(t, stockIDs)

	require.NoError(t, db.Create(&models.IndexListing{IndexID: index.ID, StockID: 42}).Error)
	stockIDs, err = repo.GetListingStockIDs(index.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{42}, stockIDs)
}

func TestQuoteRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewQuoteRepository(db)

	quote, err := repo.GetQuote(1, "RELIANCE")
	require.NoError(t, err)
	assert.Nil(t, quote)

	rows := []models.Quote{
		{Symbol: "RELIANCE", ExchangeID: 1, LastTradedPrice: 2910.45},
		{Symbol: "RELINFRA", ExchangeID: 1, LastTradedPrice: 300},
		{Symbol: "TCS", ExchangeID: 1, LastTradedPrice: 4100},
	}
	for i := range rows {
		require.NoError(t, db.Create(&rows[i]).Error)
	}

	quote, err = repo.GetQuote(1, "RELIANCE")
	require.NoError(t, err)
	require.NotNil(t, quote)
	assert.Equal(t, 2910.45, quote.LastTradedPrice)

	quotes, err := repo.GetQuotesByIDs([]uint{rows[0].ID, rows[2].ID})
	require.NoError(t, err)
	assert.Len(t, quotes, 2)

	quotes, err = repo.GetQuotesByIDs(nil)
	require.NoError(t, err)
	assert.Empty(t, quotes)

	quotes, err = repo.GetQuotesBySymbols(1, []string{"TCS", "NOSUCH"})
	require.NoError(t, err)
	assert.Len(t, quotes, 1)

	hits, err := repo.SearchBySymbol("REL")
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestUserRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	user, err := repo.LoadByUsername("vinny")
	require.NoError(t, err)
	assert.Nil(t, user)

	created := &models.User{Username: "vinny", PasswordHash: "hash", PasswordSalt: "salt"}
	require.NoError(t, repo.CreateUser(created))
	require.NotZero(t, created.ID)

	user, err = repo.LoadByUsername("vinny")
	require.NoError(t, err)
	require.NotNil(t, user)

	user.PasswordHash = "newhash"
	require.NoError(t, repo.UpdateUser(user))

	user, err = repo.LoadByUsername("vinny")
	require.NoError(t, err)
	assert.Equal(t, "newhash", user.PasswordHash)

	require.NoError(t, repo.DeleteUser(user))
	user, err = repo.LoadByUsername("vinny")
	require.NoError(t, err)
	assert.Nil(t, user)
}
