package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/seonhu82/Dollar-Invest/src/config"
	"github.com/seonhu82/Dollar-Invest/src/schemas"
	"github.com/seonhu82/Dollar-Invest/src/utils"
)

// Call timeouts. Login waits much longer because the bridge may pop an
// interactive certificate dialog on the user's machine.
const (
	statusTimeout  = 3 * time.Second
	defaultTimeout = 10 * time.Second
	logoutTimeout  = 5 * time.Second
	loginTimeout   = 60 * time.Second
)

type BridgeServiceClientI interface {
	GetStatus(ctx context.Context) *schemas.BridgeStatus
	Connect(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	GetBalance(ctx context.Context, accountNo string) ([]schemas.BrokerBalance, error)
	GetOrders(ctx context.Context, accountNo string, startDate, endDate time.Time) ([]schemas.BrokerOrder, error)
	PlaceOrder(ctx context.Context, accountNo, side string, amount, rate float64) (*schemas.OrderResult, error)
}

// BridgeServiceClient talks to the local Windows bridge process that fronts
// the Hana desktop terminal. The bridge is user-run; it being down is an
// ordinary condition, not an internal error.
type BridgeServiceClient struct {
	Client  *http.Client
	BaseURL string
}

// NewClient creates a new instance of BridgeServiceClient
func NewClient(cfg *config.Config) *BridgeServiceClient {
	baseURL := cfg.ExternalClients.Bridge.BaseURL
	if baseURL == "" {
		baseURL = "http://127.0.0.1:8585"
	}
	return &BridgeServiceClient{
		// Per-call deadlines come from the request context.
		Client:  &http.Client{},
		BaseURL: baseURL,
	}
}

func (c *BridgeServiceClient) post(ctx context.Context, path string, timeout time.Duration, body interface{}) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var jsonBody []byte
	var err error
	if body != nil {
		jsonBody, err = json.Marshal(body)
		if err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+path, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

// GetStatus reports bridge availability. Any failure degrades to a
// disconnected status object; this call never errors.
func (c *BridgeServiceClient) GetStatus(ctx context.Context) *schemas.BridgeStatus {
	disconnected := &schemas.BridgeStatus{}

	ctx, cancel := context.WithTimeout(ctx, statusTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", c.BaseURL+"/api/status", nil)
	if err != nil {
		return disconnected
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return disconnected
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return disconnected
	}

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return disconnected
	}

	var status statusResponse
	if err = json.Unmarshal(responseBody, &status); err != nil {
		return disconnected
	}

	return &schemas.BridgeStatus{
		Connected:     status.Connected,
		HanaConnected: status.HanaConnected,
		Version:       status.Version,
	}
}

func (c *BridgeServiceClient) action(ctx context.Context, path string, timeout time.Duration) error {
	responseBody, err := c.post(ctx, path, timeout, nil)
	if err != nil {
		return err
	}

	var action actionResponse
	if err = json.Unmarshal(responseBody, &action); err != nil {
		return err
	}
	if !action.Success {
		return actionError(action, "bridge call failed")
	}
	return nil
}

// Connect attaches the bridge to the Hana terminal API.
func (c *BridgeServiceClient) Connect(ctx context.Context) error {
	return c.action(ctx, "/api/hana/connect", defaultTimeout)
}

// Login triggers certificate authentication on the bridge host.
func (c *BridgeServiceClient) Login(ctx context.Context) error {
	return c.action(ctx, "/api/hana/login", loginTimeout)
}

// Logout releases the terminal session.
func (c *BridgeServiceClient) Logout(ctx context.Context) error {
	return c.action(ctx, "/api/hana/logout", logoutTimeout)
}

// GetBalance fetches foreign-currency balances for the account.
func (c *BridgeServiceClient) GetBalance(ctx context.Context, accountNo string) ([]schemas.BrokerBalance, error) {
	responseBody, err := c.post(ctx, "/api/hana/balance", defaultTimeout, map[string]string{
		"accountNo": accountNo,
	})
	if err != nil {
		return nil, err
	}

	var balance balanceResponse
	if err = json.Unmarshal(responseBody, &balance); err != nil {
		return nil, err
	}
	if !balance.Success {
		return nil, actionError(balance.actionResponse, "balance inquiry failed")
	}

	rows := balance.Balances
	if len(rows) == 0 && balance.Balance != nil {
		rows = []balanceRow{*balance.Balance}
	}

	balances := make([]schemas.BrokerBalance, 0, len(rows))
	for _, row := range rows {
		balances = append(balances, schemas.BrokerBalance{
			Currency:          row.Currency,
			Balance:           row.Balance,
			AvailableBalance:  row.AvailableBalance,
			AvgBuyRate:        row.AvgBuyRate,
			ProfitLoss:        row.ProfitLoss,
			ProfitLossPercent: row.ProfitLossPercent,
		})
	}
	return balances, nil
}

// GetOrders fetches the order history for the date range.
func (c *BridgeServiceClient) GetOrders(ctx context.Context, accountNo string, startDate, endDate time.Time) ([]schemas.BrokerOrder, error) {
	body := map[string]string{
		"accountNo": accountNo,
		"startDate": "",
		"endDate":   "",
	}
	if !startDate.IsZero() {
		body["startDate"] = startDate.Format(utils.ShortDashDateLayout)
	}
	if !endDate.IsZero() {
		body["endDate"] = endDate.Format(utils.ShortDashDateLayout)
	}

	responseBody, err := c.post(ctx, "/api/hana/orders", defaultTimeout, body)
	if err != nil {
		return nil, err
	}

	var orders ordersResponse
	if err = json.Unmarshal(responseBody, &orders); err != nil {
		return nil, err
	}
	if !orders.Success {
		return nil, actionError(orders.actionResponse, "order inquiry failed")
	}

	result := make([]schemas.BrokerOrder, 0, len(orders.Orders))
	for _, row := range orders.Orders {
		result = append(result, schemas.BrokerOrder{
			OrderID:   row.OrderID,
			Type:      row.Type,
			Currency:  row.Currency,
			Amount:    row.Amount,
			Rate:      row.Rate,
			Status:    row.Status,
			OrderedAt: parseOrderedAt(row.OrderedAt),
		})
	}
	return result, nil
}

// PlaceOrder submits a buy or sell order. A zero rate means market price.
func (c *BridgeServiceClient) PlaceOrder(ctx context.Context, accountNo, side string, amount, rate float64) (*schemas.OrderResult, error) {
	path := "/api/hana/order/buy"
	if side == schemas.OrderSideSell {
		path = "/api/hana/order/sell"
	}

	responseBody, err := c.post(ctx, path, defaultTimeout, map[string]interface{}{
		"accountNo": accountNo,
		"amount":    amount,
		"rate":      rate,
		"password":  "",
	})
	if err != nil {
		return nil, err
	}

	var placed placeOrderResponse
	if err = json.Unmarshal(responseBody, &placed); err != nil {
		return nil, err
	}
	if !placed.Success {
		return nil, actionError(placed.actionResponse, "order failed")
	}

	return &schemas.OrderResult{
		OrderID: placed.OrderID,
		Message: placed.Message,
	}, nil
}

func actionError(action actionResponse, fallback string) error {
	if action.Error != "" {
		return fmt.Errorf("%s", action.Error)
	}
	if action.Message != "" {
		return fmt.Errorf("%s", action.Message)
	}
	return fmt.Errorf("%s", fallback)
}

func parseOrderedAt(value string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", utils.ShortDashDateLayout} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Now()
}
