package services

import (
	"context"
	"fmt"
	"time"

	"github.com/seonhu82/Dollar-Invest/src/clients/bridge"
	"github.com/seonhu82/Dollar-Invest/src/clients/kis"
	"github.com/seonhu82/Dollar-Invest/src/models"
	"github.com/seonhu82/Dollar-Invest/src/schemas"
)

// BrokerClient is the per-account view of a broker: the caller picks an
// account, the factory binds the right transport and credentials, and the
// sync pipeline stays broker-agnostic.
type BrokerClient interface {
	VerifyAccess(ctx context.Context) error
	GetBalances(ctx context.Context) ([]schemas.BrokerBalance, error)
	GetOrders(ctx context.Context, startDate, endDate time.Time) ([]schemas.BrokerOrder, error)
	PlaceOrder(ctx context.Context, side string, amount, rate float64) (*schemas.OrderResult, error)
}

type BrokerClientFactoryI interface {
	ClientFor(account *models.BrokerAccount) (BrokerClient, error)
}

type BrokerClientFactory struct {
	bridgeClient bridge.BridgeServiceClientI
	kisClient    kis.KISServiceClientI
}

func NewBrokerClientFactory(bridgeClient bridge.BridgeServiceClientI, kisClient kis.KISServiceClientI) *BrokerClientFactory {
	return &BrokerClientFactory{
		bridgeClient: bridgeClient,
		kisClient:    kisClient,
	}
}

func (f *BrokerClientFactory) ClientFor(account *models.BrokerAccount) (BrokerClient, error) {
	switch account.Broker {
	case models.BrokerHana:
		return &hanaBrokerClient{client: f.bridgeClient, accountNo: account.HanaAccountNo}, nil
	case models.BrokerKIS:
		return &kisBrokerClient{
			client: f.kisClient,
			creds: kis.Credentials{
				AppKey:    account.KISAppKey,
				AppSecret: account.KISAppSecret,
				AccountNo: account.KISAccountNo,
			},
		}, nil
	default:
		return nil, fmt.Errorf("unknown broker: %s", account.Broker)
	}
}

type hanaBrokerClient struct {
	client    bridge.BridgeServiceClientI
	accountNo string
}

func (c *hanaBrokerClient) VerifyAccess(ctx context.Context) error {
	status := c.client.GetStatus(ctx)
	if !status.Connected {
		return fmt.Errorf("bridge is not reachable")
	}
	if !status.HanaConnected {
		return fmt.Errorf("bridge is not logged in to the broker")
	}
	return nil
}

func (c *hanaBrokerClient) GetBalances(ctx context.Context) ([]schemas.BrokerBalance, error) {
	return c.client.GetBalance(ctx, c.accountNo)
}

func (c *hanaBrokerClient) GetOrders(ctx context.Context, startDate, endDate time.Time) ([]schemas.BrokerOrder, error) {
	return c.client.GetOrders(ctx, c.accountNo, startDate, endDate)
}

func (c *hanaBrokerClient) PlaceOrder(ctx context.Context, side string, amount, rate float64) (*schemas.OrderResult, error) {
	return c.client.PlaceOrder(ctx, c.accountNo, side, amount, rate)
}

type kisBrokerClient struct {
	client kis.KISServiceClientI
	creds  kis.Credentials
}

func (c *kisBrokerClient) VerifyAccess(ctx context.Context) error {
	return c.client.VerifyCredentials(ctx, c.creds)
}

func (c *kisBrokerClient) GetBalances(ctx context.Context) ([]schemas.BrokerBalance, error) {
	balance, err := c.client.GetBalance(ctx, c.creds)
	if err != nil {
		return nil, err
	}
	if balance == nil {
		return nil, nil
	}
	return []schemas.BrokerBalance{*balance}, nil
}

func (c *kisBrokerClient) GetOrders(ctx context.Context, startDate, endDate time.Time) ([]schemas.BrokerOrder, error) {
	return c.client.GetOrders(ctx, c.creds, startDate, endDate)
}

// PlaceOrder ignores the requested rate: KIS foreign-exchange orders execute
// at the bank's posted rate.
func (c *kisBrokerClient) PlaceOrder(ctx context.Context, side string, amount, _ float64) (*schemas.OrderResult, error) {
	return c.client.PlaceOrder(ctx, c.creds, side, amount)
}
