// models/wallet.go
package models

import "time"

// Wallet holds one tracked address. Balance fields are stale until a
// refresh overwrites them.
type Wallet struct {
	ID      string `json:"id" gorm:"primaryKey"`
	UserID  string `json:"user_id" gorm:"index;not null"`
	Name    string `json:"name" gorm:"not null"`
	Address string `json:"address" gorm:"not null"` // format depends on chain
	Chain   string `json:"chain"`

	Balance    float64 `json:"balance" gorm:"default:0"`    // native-token quantity
	BalanceUSD float64 `json:"balanceUSD" gorm:"default:0"` // balance × price at last refresh
	Price      float64 `json:"price" gorm:"default:0"`      // unit price in USD at last refresh

	// Aggregate across the full EVM panel, filled by the multi-chain sweep.
	TotalUSD float64 `json:"totalUSD,omitempty" gorm:"default:0"`

	CreatedAt   time.Time `json:"createdAt"`
	LastUpdated time.Time `json:"lastUpdated"`
}
