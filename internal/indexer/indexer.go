// Package indexer contains the per-exchange market data indexers
package indexer

import (
	"context"

	"github.com/vinnymaker/stockapp/internal/models"
)

// ExchangeDataIndexer indexes and maintains the data of a single stock
// exchange. An indexer knows which indexes it covers and how to fetch one
// index's latest quote batch from the exchange's data source.
type ExchangeDataIndexer interface {
	// ExchangeCode returns the short code of the indexed exchange, e.g. NSE.
	ExchangeCode() string

	// Indexes returns the names of the indexes covered by this indexer. The
	// names match both the data source and the stock_indexes rows.
	Indexes() []string

	// Fetch retrieves the latest quote batch for one index. The batch
	// contains exactly one INDEX quote followed by the constituent stocks.
	// On any fetch or parse failure the error is logged and an empty batch
	// is returned, a tick must never crash the update loop.
	Fetch(ctx context.Context, index string) []models.Quote
}
