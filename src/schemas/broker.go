package schemas

import "time"

const (
	OrderSideBuy  = "BUY"
	OrderSideSell = "SELL"
)

// BrokerBalance is the broker-reported foreign-currency position.
type BrokerBalance struct {
	Currency          string  `json:"currency"`
	Balance           float64 `json:"balance"`
	AvailableBalance  float64 `json:"availableBalance"`
	AvgBuyRate        float64 `json:"avgBuyRate"`
	ProfitLoss        float64 `json:"profitLoss"`
	ProfitLossPercent float64 `json:"profitLossPercent"`
}

// BrokerOrder is one executed remote order, normalized across brokers.
// OrderID is the dedup key when feeding orders into the ledger.
type BrokerOrder struct {
	OrderID   string    `json:"orderId"`
	Type      string    `json:"type"`
	Currency  string    `json:"currency"`
	Amount    float64   `json:"amount"`
	Rate      float64   `json:"rate"`
	Status    string    `json:"status"`
	OrderedAt time.Time `json:"orderedAt"`
}

type OrderResult struct {
	OrderID string `json:"orderId"`
	Message string `json:"message"`
}

type BridgeStatus struct {
	Connected     bool   `json:"connected"`
	HanaConnected bool   `json:"hanaConnected"`
	Version       string `json:"version,omitempty"`
}

type PlaceOrderRequest struct {
	Side   string  `json:"side"`
	Amount float64 `json:"amount"`
	Rate   float64 `json:"rate,omitempty"`
}

type SyncResponse struct {
	SyncedCount int    `json:"syncedCount"`
	Total       int    `json:"totalTransactions"`
	Message     string `json:"message"`
}
