// Package models contains the models for the stockapp backend
package models

// ExchangesTableName is the name of the table for exchanges
var ExchangesTableName = "exchanges"

// Exchange represents a trading venue, e.g. NSE, BSE
type Exchange struct {
	ID    uint   `gorm:"column:exchange_id;primaryKey;autoIncrement" json:"id"`
	Code  string `gorm:"column:code;uniqueIndex" json:"code"`
	Title string `gorm:"column:title" json:"title"`
}

// TableName specifies the table name for the Exchange model
func (Exchange) TableName() string {
	return ExchangesTableName
}
