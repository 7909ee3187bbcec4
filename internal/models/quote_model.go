package models

import "time"

// StocksTableName is the name of the table for quotes
var StocksTableName = "stocks"

// QuoteType distinguishes index quotes from stock quotes
type QuoteType string

const (
	QuoteTypeStock QuoteType = "STOCK"
	QuoteTypeIndex QuoteType = "INDEX"
)

// Quote is the latest snapshot of a single tradable item. An index is itself
// a Quote whose symbol equals the index name.
type Quote struct {
	ID              uint      `gorm:"column:stock_id;primaryKey;autoIncrement" json:"id"`
	Symbol          string    `gorm:"column:symbol;uniqueIndex:idx_exchange_symbol,priority:2" json:"symbol"`
	Open            float64   `gorm:"column:open" json:"open"`
	Volume          float64   `gorm:"column:volume" json:"volume"`
	LastTradedPrice float64   `gorm:"column:ltp" json:"last_traded_price"`
	PreviousClose   float64   `gorm:"column:prev_close" json:"previous_close"`
	High            float64   `gorm:"column:high" json:"high"`
	Low             float64   `gorm:"column:low" json:"low"`
	ExchangeID      uint      `gorm:"column:exchange_id;uniqueIndex:idx_exchange_symbol,priority:1" json:"exchange_id"`
	LastUpdatedAt   time.Time `gorm:"column:last_updated_at" json:"last_updated_at"`

	// Not persisted. The stocks schema carries no type or change columns,
	// both are filled in on read.
	Type   QuoteType `gorm:"-" json:"type"`
	Change float64   `gorm:"-" json:"change"`
}

// TableName specifies the table name for the Quote model
func (Quote) TableName() string {
	return StocksTableName
}

// GetChange returns the change in value from the previous day's close
func (q *Quote) GetChange() float64 {
	return q.LastTradedPrice - q.PreviousClose
}

// QuoteLite is a lightweight search result: exchange, symbol and type only
type QuoteLite struct {
	ExchangeID uint      `json:"exchange_id"`
	Symbol     string    `json:"symbol"`
	Type       QuoteType `json:"type"`
}
