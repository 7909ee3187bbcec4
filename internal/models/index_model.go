package models

// StockIndexesTableName is the name of the table for stock indexes
var StockIndexesTableName = "stock_indexes"

// IndexListingsTableName is the name of the table for index listings
var IndexListingsTableName = "index_listings"

// StockIndex is a named index on an exchange, e.g. NIFTY 50 on NSE
type StockIndex struct {
	ID         uint   `gorm:"column:stock_index_id;primaryKey;autoIncrement" json:"id"`
	ExchangeID uint   `gorm:"column:exchange_id;uniqueIndex:idx_exchange_index_name,priority:1" json:"exchange_id"`
	IndexName  string `gorm:"column:index_name;uniqueIndex:idx_exchange_index_name,priority:2" json:"index_name"`
}

// TableName specifies the table name for the StockIndex model
func (StockIndex) TableName() string {
	return StockIndexesTableName
}

// IndexListing records membership of one stock in one index. The index's own
// quote row is never listed as a member of itself.
type IndexListing struct {
	IndexID uint `gorm:"column:index_id;uniqueIndex:idx_index_stock,priority:1" json:"index_id"`
	StockID uint `gorm:"column:stock_id;uniqueIndex:idx_index_stock,priority:2" json:"stock_id"`
}

// TableName specifies the table name for the IndexListing model
func (IndexListing) TableName() string {
	return IndexListingsTableName
}
