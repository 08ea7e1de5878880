package models

import "time"

// ExchangeRate is an append-only snapshot row. The "latest" rate per
// currency is derived by ordering on Timestamp; rows are never updated or
// deleted.
type ExchangeRate struct {
	ID            string    `db:"id"`
	Currency      string    `db:"currency"`
	Rate          float64   `db:"rate"`
	Change        float64   `db:"change"`
	ChangePercent float64   `db:"change_percent"`
	High          float64   `db:"high"`
	Low           float64   `db:"low"`
	Timestamp     time.Time `db:"timestamp"`
}
