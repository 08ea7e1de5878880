package kis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/seonhu82/Dollar-Invest/src/config"
	"github.com/seonhu82/Dollar-Invest/src/schemas"
)

// TR-IDs for the live trading environment. The sandbox variants (VTTC…,
// VTTT…) are not used here.
const (
	trBalance   = "CTRP6504R"
	trOrderList = "TTTC8001R"
	trOrderBuy  = "TTTT1002U"
	trOrderSell = "TTTT1006U"
)

// tokenExpiryMargin is subtracted from expires_in so a token is refreshed
// five minutes before the broker invalidates it.
const tokenExpiryMargin = 300 * time.Second

type KISServiceClientI interface {
	VerifyCredentials(ctx context.Context, creds Credentials) error
	GetBalance(ctx context.Context, creds Credentials) (*schemas.BrokerBalance, error)
	GetOrders(ctx context.Context, creds Credentials, startDate, endDate time.Time) ([]schemas.BrokerOrder, error)
	PlaceOrder(ctx context.Context, creds Credentials, side string, amount float64) (*schemas.OrderResult, error)
}

type cachedToken struct {
	token     string
	expiresAt time.Time
}

// KISServiceClient implements the KIS Developers REST API with an OAuth2
// client-credentials flow. Tokens are cached per (app key, account number);
// the cache is last-writer-wins, concurrent refreshes just waste one token
// request.
type KISServiceClient struct {
	Client  *http.Client
	BaseURL string

	mu     sync.Mutex
	tokens map[string]cachedToken
}

// NewClient creates a new instance of KISServiceClient
func NewClient(cfg *config.Config) *KISServiceClient {
	return &KISServiceClient{
		Client:  &http.Client{Timeout: 10 * time.Second},
		BaseURL: cfg.ExternalClients.KIS.BaseURL,
		tokens:  make(map[string]cachedToken),
	}
}

// VerifyCredentials checks a credential pair by issuing a token.
func (c *KISServiceClient) VerifyCredentials(ctx context.Context, creds Credentials) error {
	_, err := c.getAccessToken(ctx, creds)
	return err
}

func (c *KISServiceClient) getAccessToken(ctx context.Context, creds Credentials) (string, error) {
	cacheKey := creds.AppKey + ":" + creds.AccountNo

	c.mu.Lock()
	cached, ok := c.tokens[cacheKey]
	c.mu.Unlock()
	if ok && time.Now().Before(cached.expiresAt) {
		return cached.token, nil
	}

	body, err := json.Marshal(map[string]string{
		"grant_type": "client_credentials",
		"appkey":     creds.AppKey,
		"appsecret":  creds.AppSecret,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/oauth2/tokenP", bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var tokenResponse TokenResponse
	if err = json.Unmarshal(responseBody, &tokenResponse); err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK || tokenResponse.AccessToken == "" {
		if tokenResponse.Msg1 != "" {
			return "", fmt.Errorf("failed to retrieve token: %s", tokenResponse.Msg1)
		}
		return "", fmt.Errorf("failed to retrieve token | Status Code: %d", resp.StatusCode)
	}

	expiresIn := tokenResponse.ExpiresIn
	if expiresIn == 0 {
		expiresIn = 86400
	}

	c.mu.Lock()
	c.tokens[cacheKey] = cachedToken{
		token:     tokenResponse.AccessToken,
		expiresAt: time.Now().Add(time.Duration(expiresIn)*time.Second - tokenExpiryMargin),
	}
	c.mu.Unlock()

	return tokenResponse.AccessToken, nil
}

// request performs one domain call with the bearer token, app key headers
// and the per-call transaction id, returning the raw response body. Callers
// decode it and check the embedded envelope.
func (c *KISServiceClient) request(ctx context.Context, creds Credentials, method, endpoint, trID string, params url.Values, body interface{}) ([]byte, error) {
	token, err := c.getAccessToken(ctx, creds)
	if err != nil {
		return nil, err
	}

	fullURL := c.BaseURL + endpoint
	if params != nil {
		fullURL = fullURL + "?" + params.Encode()
	}

	var jsonBody []byte
	if body != nil {
		jsonBody, err = json.Marshal(body)
		if err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	req.Header.Set("authorization", "Bearer "+token)
	req.Header.Set("appkey", creds.AppKey)
	req.Header.Set("appsecret", creds.AppSecret)
	req.Header.Set("tr_id", trID)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

func (e envelope) check() error {
	if e.RtCd != "0" {
		if e.Msg1 != "" {
			return fmt.Errorf("kis api error: %s", e.Msg1)
		}
		return fmt.Errorf("kis api error: rt_cd %s", e.RtCd)
	}
	return nil
}

func (c Credentials) productCode() string {
	if c.AccountProductCode == "" {
		return "01"
	}
	return c.AccountProductCode
}

func (c Credentials) cano() string {
	if len(c.AccountNo) > 8 {
		return c.AccountNo[:8]
	}
	return c.AccountNo
}

// GetBalance fetches the foreign-currency balance of the account.
func (c *KISServiceClient) GetBalance(ctx context.Context, creds Credentials) (*schemas.BrokerBalance, error) {
	params := url.Values{}
	params.Add("CANO", creds.cano())
	params.Add("ACNT_PRDT_CD", creds.productCode())
	params.Add("WCRC_FRCR_DVSN_CD", "01")
	params.Add("NATN_CD", "840")
	params.Add("TR_MKET_CD", "00")
	params.Add("INQR_DVSN_CD", "00")

	responseBody, err := c.request(ctx, creds, "GET", "/uapi/overseas-stock/v1/trading/inquire-present-balance", trBalance, params, nil)
	if err != nil {
		return nil, err
	}

	var balanceResponse GetBalanceResponse
	if err = json.Unmarshal(responseBody, &balanceResponse); err != nil {
		return nil, err
	}
	if err = balanceResponse.check(); err != nil {
		return nil, err
	}

	if len(balanceResponse.Output2) == 0 {
		return &schemas.BrokerBalance{Currency: "USD"}, nil
	}

	output := balanceResponse.Output2[0]
	totalValue := parseAmount(output.FrcrEvluAmt2)
	availableBalance := parseAmount(output.FrcrDnclAmt2)
	purchaseAmount := parseAmount(output.FrcrPchsAmt1)
	profitLoss := parseAmount(output.OvrsRlztPflsAmt)

	profitLossPercent := 0.0
	if purchaseAmount > 0 {
		profitLossPercent = profitLoss / purchaseAmount * 100
	}

	return &schemas.BrokerBalance{
		Currency:          "USD",
		Balance:           totalValue,
		AvailableBalance:  availableBalance,
		ProfitLoss:        profitLoss,
		ProfitLossPercent: profitLossPercent,
	}, nil
}

// GetOrders fetches the executed-order history for the date range.
func (c *KISServiceClient) GetOrders(ctx context.Context, creds Credentials, startDate, endDate time.Time) ([]schemas.BrokerOrder, error) {
	params := url.Values{}
	params.Add("CANO", creds.cano())
	params.Add("ACNT_PRDT_CD", creds.productCode())
	params.Add("PDNO", "")
	params.Add("ORD_STRT_DT", startDate.Format("20060102"))
	params.Add("ORD_END_DT", endDate.Format("20060102"))
	params.Add("SLL_BUY_DVSN", "00")
	params.Add("CCLD_NCCS_DVSN", "00")
	params.Add("OVRS_EXCG_CD", "NASD")
	params.Add("SORT_SQN", "DS")
	params.Add("ORD_DT", "")
	params.Add("ORD_GNO_BRNO", "")
	params.Add("ODNO", "")

	responseBody, err := c.request(ctx, creds, "GET", "/uapi/overseas-stock/v1/trading/inquire-ccnl", trOrderList, params, nil)
	if err != nil {
		return nil, err
	}

	var ordersResponse GetOrdersResponse
	if err = json.Unmarshal(responseBody, &ordersResponse); err != nil {
		return nil, err
	}
	if err = ordersResponse.check(); err != nil {
		return nil, err
	}

	orders := make([]schemas.BrokerOrder, 0, len(ordersResponse.Output))
	for _, row := range ordersResponse.Output {
		if row.ODNO == "" {
			continue
		}
		orderType := schemas.OrderSideBuy
		if row.SllBuyDvsnCd == "01" {
			orderType = schemas.OrderSideSell
		}
		orders = append(orders, schemas.BrokerOrder{
			OrderID:   row.ODNO,
			Type:      orderType,
			Currency:  "USD",
			Amount:    parseAmount(row.FtCcldQty),
			Rate:      parseAmount(row.FtCcldUnpr3),
			Status:    "COMPLETED",
			OrderedAt: parseOrderTime(row.CcldDt, row.OrdTmd),
		})
	}
	return orders, nil
}

// PlaceOrder submits a market buy or sell order for the given USD amount.
func (c *KISServiceClient) PlaceOrder(ctx context.Context, creds Credentials, side string, amount float64) (*schemas.OrderResult, error) {
	trID := trOrderBuy
	if side == schemas.OrderSideSell {
		trID = trOrderSell
	}

	body := map[string]string{
		"CANO":            creds.cano(),
		"ACNT_PRDT_CD":    creds.productCode(),
		"OVRS_EXCG_CD":    "NASD",
		"PDNO":            "USD",
		"ORD_QTY":         strconv.FormatFloat(amount, 'f', -1, 64),
		"OVRS_ORD_UNPR":   "0",
		"ORD_DVSN":        "00",
		"ORD_SVR_DVSN_CD": "0",
	}

	responseBody, err := c.request(ctx, creds, "POST", "/uapi/overseas-stock/v1/trading/order", trID, nil, body)
	if err != nil {
		return nil, err
	}

	var orderResponse PlaceOrderResponse
	if err = json.Unmarshal(responseBody, &orderResponse); err != nil {
		return nil, err
	}
	if err = orderResponse.check(); err != nil {
		return nil, err
	}

	return &schemas.OrderResult{
		OrderID: orderResponse.Output.ODNO,
		Message: orderResponse.Msg1,
	}, nil
}

func parseAmount(s string) float64 {
	if s == "" {
		return 0
	}
	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return value
}

func parseOrderTime(ccldDt, ordTmd string) time.Time {
	if ccldDt != "" && ordTmd != "" {
		if t, err := time.Parse("20060102150405", ccldDt+ordTmd); err == nil {
			return t
		}
	}
	if ccldDt != "" {
		if t, err := time.Parse("20060102", ccldDt); err == nil {
			return t
		}
	}
	return time.Now()
}
