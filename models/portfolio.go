package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Holding is one user position in a ticker symbol. Holdings are only ever
// added and deleted; there is no update-in-place.
type Holding struct {
	gorm.Model
	UserID   uint            `json:"-" gorm:"index"`
	Symbol   string          `json:"symbol" gorm:"index"`
	Quantity decimal.Decimal `json:"quantity" gorm:"type:numeric"`
	BuyPrice decimal.Decimal `json:"buy_price" gorm:"type:numeric"`
}

// Transaction is the append-only buy/sell journal behind the holdings table.
type Transaction struct {
	gorm.Model
	UserID    uint   `gorm:"index"`
	Type      string // buy/sell
	Symbol    string
	Quantity  decimal.Decimal `gorm:"type:numeric"`
	Price     decimal.Decimal `gorm:"type:numeric"`
	Timestamp time.Time       `gorm:"default:CURRENT_TIMESTAMP"`
}
