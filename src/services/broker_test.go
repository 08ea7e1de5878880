package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/seonhu82/Dollar-Invest/src/clients/kis"
	"github.com/seonhu82/Dollar-Invest/src/models"
	"github.com/seonhu82/Dollar-Invest/src/schemas"
	"github.com/seonhu82/Dollar-Invest/src/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bridgeClientMock struct {
	status    schemas.BridgeStatus
	balances  []schemas.BrokerBalance
	orders    []schemas.BrokerOrder
	accountNo string
}

func (m *bridgeClientMock) GetStatus(_ context.Context) *schemas.BridgeStatus {
	status := m.status
	return &status
}
func (m *bridgeClientMock) Connect(_ context.Context) error { return nil }
func (m *bridgeClientMock) Login(_ context.Context) error   { return nil }
func (m *bridgeClientMock) Logout(_ context.Context) error  { return nil }

func (m *bridgeClientMock) GetBalance(_ context.Context, accountNo string) ([]schemas.BrokerBalance, error) {
	m.accountNo = accountNo
	return m.balances, nil
}

func (m *bridgeClientMock) GetOrders(_ context.Context, accountNo string, _, _ time.Time) ([]schemas.BrokerOrder, error) {
	m.accountNo = accountNo
	return m.orders, nil
}

func (m *bridgeClientMock) PlaceOrder(_ context.Context, accountNo, side string, _, _ float64) (*schemas.OrderResult, error) {
	m.accountNo = accountNo
	return &schemas.OrderResult{OrderID: "bridge-1", Message: side}, nil
}

type kisClientMock struct {
	verifyErr error
	balance   *schemas.BrokerBalance
	creds     kis.Credentials
}

func (m *kisClientMock) VerifyCredentials(_ context.Context, creds kis.Credentials) error {
	m.creds = creds
	return m.verifyErr
}

func (m *kisClientMock) GetBalance(_ context.Context, creds kis.Credentials) (*schemas.BrokerBalance, error) {
	m.creds = creds
	return m.balance, nil
}

func (m *kisClientMock) GetOrders(_ context.Context, creds kis.Credentials, _, _ time.Time) ([]schemas.BrokerOrder, error) {
	m.creds = creds
	return nil, nil
}

func (m *kisClientMock) PlaceOrder(_ context.Context, creds kis.Credentials, side string, _ float64) (*schemas.OrderResult, error) {
	m.creds = creds
	return &schemas.OrderResult{OrderID: "kis-1", Message: side}, nil
}

func TestBrokerClientFactory(t *testing.T) {
	bridgeClient := &bridgeClientMock{}
	kisClient := &kisClientMock{}
	factory := services.NewBrokerClientFactory(bridgeClient, kisClient)
	ctx := context.Background()

	t.Run("hana accounts route through the bridge", func(t *testing.T) {
		client, err := factory.ClientFor(&models.BrokerAccount{Broker: models.BrokerHana, HanaAccountNo: "111-222"})
		require.NoError(t, err)

		_, err = client.GetBalances(ctx)
		require.NoError(t, err)
		assert.Equal(t, "111-222", bridgeClient.accountNo)
	})

	t.Run("kis accounts carry their credentials", func(t *testing.T) {
		client, err := factory.ClientFor(&models.BrokerAccount{
			Broker:       models.BrokerKIS,
			KISAppKey:    "key",
			KISAppSecret: "secret",
			KISAccountNo: "12345678-01",
		})
		require.NoError(t, err)

		require.NoError(t, client.VerifyAccess(ctx))
		assert.Equal(t, "key", kisClient.creds.AppKey)
		assert.Equal(t, "12345678-01", kisClient.creds.AccountNo)
	})

	t.Run("unknown brokers are rejected", func(t *testing.T) {
		_, err := factory.ClientFor(&models.BrokerAccount{Broker: "MIRAE"})
		assert.Error(t, err)
	})
}

func TestHanaVerifyAccess(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		status  schemas.BridgeStatus
		wantErr bool
	}{
		{"bridge down", schemas.BridgeStatus{}, true},
		{"bridge up, not logged in", schemas.BridgeStatus{Connected: true}, true},
		{"fully connected", schemas.BridgeStatus{Connected: true, HanaConnected: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			factory := services.NewBrokerClientFactory(&bridgeClientMock{status: tt.status}, &kisClientMock{})
			client, err := factory.ClientFor(&models.BrokerAccount{Broker: models.BrokerHana, HanaAccountNo: "111"})
			require.NoError(t, err)

			err = client.VerifyAccess(ctx)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestKISBalancesWrapSingleRow(t *testing.T) {
	kisClient := &kisClientMock{balance: &schemas.BrokerBalance{Currency: "USD", Balance: 1000}}
	factory := services.NewBrokerClientFactory(&bridgeClientMock{}, kisClient)

	client, err := factory.ClientFor(&models.BrokerAccount{Broker: models.BrokerKIS, KISAccountNo: "12345678-01"})
	require.NoError(t, err)

	balances, err := client.GetBalances(context.Background())
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Equal(t, 1000.0, balances[0].Balance)
}

func TestKISVerifyAccessPropagatesError(t *testing.T) {
	kisClient := &kisClientMock{verifyErr: errors.New("invalid appsecret")}
	factory := services.NewBrokerClientFactory(&bridgeClientMock{}, kisClient)

	client, err := factory.ClientFor(&models.BrokerAccount{Broker: models.BrokerKIS, KISAccountNo: "12345678-01"})
	require.NoError(t, err)

	assert.Error(t, client.VerifyAccess(context.Background()))
}
