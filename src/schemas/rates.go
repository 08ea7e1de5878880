package schemas

import "time"

// RateQuote is the normalized shape every rate source is mapped into:
// KRW per one unit of Currency.
type RateQuote struct {
	Currency      string    `json:"currency"`
	Rate          float64   `json:"rate"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"changePercent"`
	High          float64   `json:"high"`
	Low           float64   `json:"low"`
	Timestamp     time.Time `json:"timestamp"`
}

type GetRatesResponse struct {
	Rates     []RateQuote `json:"rates"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

type RateHistoryPoint struct {
	Date string  `json:"date"`
	Rate float64 `json:"rate"`
}

type GetRateHistoryResponse struct {
	Currency string             `json:"currency"`
	Days     int                `json:"days"`
	History  []RateHistoryPoint `json:"history"`
}
