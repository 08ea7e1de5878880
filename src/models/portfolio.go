package models

import "time"

// Portfolio holds one foreign-currency position. CurrentBalance,
// AvgBuyRate and TotalInvested are mutated exclusively through the ledger
// update in services; never written directly by handlers.
type Portfolio struct {
	ID              string    `db:"id"`
	UserID          string    `db:"user_id"`
	BrokerAccountID *string   `db:"broker_account_id"`
	Name            string    `db:"name"`
	Currency        string    `db:"currency"`
	Description     string    `db:"description"`
	CurrentBalance  float64   `db:"current_balance"`
	AvgBuyRate      float64   `db:"avg_buy_rate"`
	TotalInvested   float64   `db:"total_invested"`
	IsDefault       bool      `db:"is_default"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}
