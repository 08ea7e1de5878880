package schemas

import "time"

type CreatePortfolioRequest struct {
	Name            string  `json:"name"`
	Currency        string  `json:"currency"`
	Description     string  `json:"description,omitempty"`
	BrokerAccountID *string `json:"brokerAccountId,omitempty"`
}

type UpdatePortfolioRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	IsDefault   *bool   `json:"isDefault,omitempty"`
}

type PortfolioResponse struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Currency         string    `json:"currency"`
	Description      string    `json:"description,omitempty"`
	IsDefault        bool      `json:"isDefault"`
	CurrentBalance   float64   `json:"currentBalance"`
	AvgBuyRate       float64   `json:"avgBuyRate"`
	TotalInvested    float64   `json:"totalInvested"`
	Broker           string    `json:"broker"`
	BrokerAccountID  *string   `json:"brokerAccountId,omitempty"`
	AccountAlias     string    `json:"accountAlias,omitempty"`
	TransactionCount int       `json:"transactionCount"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

type PortfolioDetailResponse struct {
	PortfolioResponse
	RecentTransactions []TransactionResponse `json:"recentTransactions"`
}

type GetPortfoliosResponse struct {
	Portfolios []PortfolioResponse `json:"portfolios"`
}
