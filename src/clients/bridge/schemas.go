package bridge

// statusResponse is the /api/status payload of the local bridge process.
type statusResponse struct {
	Connected     bool   `json:"connected"`
	HanaConnected bool   `json:"hanaConnected"`
	Version       string `json:"version"`
}

// actionResponse is the common success/error envelope of the bridge's POST
// endpoints.
type actionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

type balanceRow struct {
	Currency          string  `json:"currency"`
	Balance           float64 `json:"balance"`
	AvailableBalance  float64 `json:"availableBalance"`
	AvgBuyRate        float64 `json:"avgBuyRate"`
	ProfitLoss        float64 `json:"profitLoss"`
	ProfitLossPercent float64 `json:"profitLossPercent"`
}

type balanceResponse struct {
	actionResponse
	Balance  *balanceRow  `json:"balance"`
	Balances []balanceRow `json:"balances"`
}

type orderRow struct {
	OrderID   string  `json:"orderId"`
	Type      string  `json:"type"`
	Currency  string  `json:"currency"`
	Amount    float64 `json:"amount"`
	Rate      float64 `json:"rate"`
	Status    string  `json:"status"`
	OrderedAt string  `json:"orderedAt"`
}

type ordersResponse struct {
	actionResponse
	Orders []orderRow `json:"orders"`
}

type placeOrderResponse struct {
	actionResponse
	OrderID string `json:"orderId"`
}
