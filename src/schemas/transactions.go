package schemas

import "time"

type CreateTransactionRequest struct {
	PortfolioID string     `json:"portfolioId"`
	Type        string     `json:"type"`
	Amount      float64    `json:"amount"`
	Rate        float64    `json:"rate"`
	Fee         float64    `json:"fee,omitempty"`
	Memo        string     `json:"memo,omitempty"`
	TradedAt    *time.Time `json:"tradedAt,omitempty"`
}

type TransactionResponse struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	Currency      string    `json:"currency"`
	Amount        float64   `json:"amount"`
	Rate          float64   `json:"rate"`
	KrwAmount     float64   `json:"krwAmount"`
	Fee           float64   `json:"fee"`
	Memo          string    `json:"memo,omitempty"`
	TradedAt      time.Time `json:"tradedAt"`
	IsManual      bool      `json:"isManual"`
	PortfolioID   string    `json:"portfolioId"`
	PortfolioName string    `json:"portfolioName,omitempty"`
}

type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Total        int                   `json:"total"`
	HasMore      bool                  `json:"hasMore"`
}
