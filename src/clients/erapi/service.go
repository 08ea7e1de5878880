package erapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/seonhu82/Dollar-Invest/src/config"
	"github.com/seonhu82/Dollar-Invest/src/utils/requests"
)

type ERAPIServiceClientI interface {
	GetLatest(ctx context.Context, base string) (*GetLatestResponse, error)
}

// ERAPIServiceClient talks to the free ExchangeRate-API endpoint, the backup
// rate source. No API key is required.
type ERAPIServiceClient struct {
	API     *requests.ExternalAPIService
	BaseURL string
}

// NewClient creates a new instance of ERAPIServiceClient
func NewClient(cfg *config.Config) *ERAPIServiceClient {
	api := requests.NewExternalAPIService(&http.Client{Timeout: 10 * time.Second})
	return &ERAPIServiceClient{
		API:     api,
		BaseURL: cfg.ExternalClients.ERAPI.BaseURL,
	}
}

// GetLatest fetches all rates relative to the given pivot currency.
func (c *ERAPIServiceClient) GetLatest(ctx context.Context, base string) (*GetLatestResponse, error) {
	endpoint := fmt.Sprintf("%s/v6/latest/%s", c.BaseURL, base)

	resp, err := c.API.Get(ctx, endpoint, "", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("exchangerate-api responded with status %d", resp.StatusCode)
	}

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var latest GetLatestResponse
	err = json.Unmarshal(responseBody, &latest)
	if err != nil {
		return nil, err
	}

	if latest.Result != "success" {
		return nil, fmt.Errorf("exchangerate-api returned result %q", latest.Result)
	}

	return &latest, nil
}
