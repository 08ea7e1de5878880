package models

import "time"

const (
	TransactionTypeBuy  = "BUY"
	TransactionTypeSell = "SELL"
)

// Transaction is immutable once created; only manual transactions may be
// deleted. OrderID together with BrokerAccountID is the dedup key for
// broker-synced rows (unique constraint in the schema).
type Transaction struct {
	ID              string     `db:"id"`
	UserID          string     `db:"user_id"`
	PortfolioID     string     `db:"portfolio_id"`
	BrokerAccountID *string    `db:"broker_account_id"`
	Type            string     `db:"type"`
	Currency        string     `db:"currency"`
	Amount          float64    `db:"amount"`
	Rate            float64    `db:"rate"`
	KrwAmount       float64    `db:"krw_amount"`
	Fee             float64    `db:"fee"`
	Memo            string     `db:"memo"`
	OrderID         *string    `db:"order_id"`
	IsManual        bool       `db:"is_manual"`
	SyncedAt        *time.Time `db:"synced_at"`
	TradedAt        time.Time  `db:"traded_at"`
	CreatedAt       time.Time  `db:"created_at"`
}

// TransactionWithPortfolio carries the owning portfolio's name alongside
// the transaction for list views.
type TransactionWithPortfolio struct {
	Transaction
	PortfolioName string `db:"portfolio_name"`
}
