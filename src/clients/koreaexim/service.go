package koreaexim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/seonhu82/Dollar-Invest/src/config"
	"github.com/seonhu82/Dollar-Invest/src/utils"
	"github.com/seonhu82/Dollar-Invest/src/utils/requests"
)

type KoreaEximServiceClientI interface {
	GetDailyRates(ctx context.Context, date time.Time) ([]ExchangeRow, error)
}

// KoreaEximServiceClient talks to the Korea Eximbank open rate API, the
// primary (official) rate source.
type KoreaEximServiceClient struct {
	API     *requests.ExternalAPIService
	BaseURL string
	APIKey  string
}

// NewClient creates a new instance of KoreaEximServiceClient
func NewClient(cfg *config.Config) *KoreaEximServiceClient {
	api := requests.NewExternalAPIService(&http.Client{Timeout: 10 * time.Second})
	return &KoreaEximServiceClient{
		API:     api,
		BaseURL: cfg.ExternalClients.KoreaExim.BaseURL,
		APIKey:  cfg.ExternalClients.KoreaExim.APIKey,
	}
}

// GetDailyRates fetches the official rate table for the given date. The
// endpoint is date-keyed and returns an empty array on weekends and
// holidays; callers treat an empty result as "no data, try elsewhere".
func (c *KoreaEximServiceClient) GetDailyRates(ctx context.Context, date time.Time) ([]ExchangeRow, error) {
	if c.APIKey == "" {
		return nil, fmt.Errorf("korea exim api key is not configured")
	}

	endpoint := fmt.Sprintf("%s/site/program/financial/exchangeJSON", c.BaseURL)

	params := url.Values{}
	params.Add("authkey", c.APIKey)
	params.Add("searchdate", date.Format(utils.CompactDateLayout))
	params.Add("data", "AP01")

	resp, err := c.API.Get(ctx, endpoint, "", params)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("korea exim responded with status %d", resp.StatusCode)
	}

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var rows []ExchangeRow
	err = json.Unmarshal(responseBody, &rows)
	if err != nil {
		return nil, err
	}

	return rows, nil
}
