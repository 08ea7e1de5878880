package schemas

import "time"

type CreateBrokerAccountRequest struct {
	Broker    string `json:"broker"`
	AccountNo string `json:"accountNo"`
	AppKey    string `json:"appKey,omitempty"`
	AppSecret string `json:"appSecret,omitempty"`
	Alias     string `json:"alias,omitempty"`
}

type BrokerAccountResponse struct {
	ID           string                     `json:"id"`
	Broker       string                     `json:"broker"`
	AccountNo    string                     `json:"accountNo"`
	AccountAlias string                     `json:"accountAlias"`
	LastSyncAt   *time.Time                 `json:"lastSyncAt,omitempty"`
	Portfolios   []BrokerPortfolioReference `json:"portfolios"`
}

type BrokerPortfolioReference struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Currency string  `json:"currency"`
	Balance  float64 `json:"balance"`
}

type GetBrokerAccountsResponse struct {
	Accounts []BrokerAccountResponse `json:"accounts"`
}
