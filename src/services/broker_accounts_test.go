package services_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/seonhu82/Dollar-Invest/src/models"
	"github.com/seonhu82/Dollar-Invest/src/schemas"
	"github.com/seonhu82/Dollar-Invest/src/services"
	"github.com/seonhu82/Dollar-Invest/src/utils"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokerAccountRepoMock struct {
	accounts []models.BrokerAccount
}

func (m *brokerAccountRepoMock) Create(_ context.Context, a *models.BrokerAccount) error {
	if a.ID == "" {
		a.ID = "account-1"
	}
	a.CreatedAt = time.Now()
	m.accounts = append(m.accounts, *a)
	return nil
}

func (m *brokerAccountRepoMock) GetByIDAndUser(_ context.Context, id, userID string) (*models.BrokerAccount, error) {
	for i := range m.accounts {
		if m.accounts[i].ID == id && m.accounts[i].UserID == userID {
			return &m.accounts[i], nil
		}
	}
	return nil, nil
}

func (m *brokerAccountRepoMock) GetActiveByUserID(_ context.Context, userID string) ([]models.BrokerAccount, error) {
	var out []models.BrokerAccount
	for _, a := range m.accounts {
		if a.UserID == userID && a.IsActive {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *brokerAccountRepoMock) Exists(_ context.Context, userID, broker, accountNo string) (bool, error) {
	for _, a := range m.accounts {
		if a.UserID == userID && a.Broker == broker && a.IsActive &&
			(a.HanaAccountNo == accountNo || a.KISAccountNo == accountNo) {
			return true, nil
		}
	}
	return false, nil
}

func (m *brokerAccountRepoMock) UpdateLastSync(_ context.Context, id string, syncedAt time.Time) error {
	for i := range m.accounts {
		if m.accounts[i].ID == id {
			m.accounts[i].LastSyncAt = &syncedAt
		}
	}
	return nil
}

func (m *brokerAccountRepoMock) Deactivate(_ context.Context, id string) error {
	for i := range m.accounts {
		if m.accounts[i].ID == id {
			m.accounts[i].IsActive = false
		}
	}
	return nil
}

type portfolioRepoMock struct {
	portfolios []models.Portfolio
}

func (m *portfolioRepoMock) Create(_ context.Context, p *models.Portfolio) error {
	if p.ID == "" {
		p.ID = "portfolio-1"
	}
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	m.portfolios = append(m.portfolios, *p)
	return nil
}

func (m *portfolioRepoMock) GetByID(_ context.Context, id string) (*models.Portfolio, error) {
	for i := range m.portfolios {
		if m.portfolios[i].ID == id {
			return &m.portfolios[i], nil
		}
	}
	return nil, nil
}

func (m *portfolioRepoMock) GetByIDAndUser(_ context.Context, id, userID string) (*models.Portfolio, error) {
	for i := range m.portfolios {
		if m.portfolios[i].ID == id && m.portfolios[i].UserID == userID {
			return &m.portfolios[i], nil
		}
	}
	return nil, nil
}

func (m *portfolioRepoMock) GetByUserID(_ context.Context, userID string) ([]models.Portfolio, error) {
	var out []models.Portfolio
	for _, p := range m.portfolios {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *portfolioRepoMock) GetByBrokerAccountID(_ context.Context, brokerAccountID string) ([]models.Portfolio, error) {
	var out []models.Portfolio
	for _, p := range m.portfolios {
		if p.BrokerAccountID != nil && *p.BrokerAccountID == brokerAccountID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *portfolioRepoMock) CountByUserID(_ context.Context, userID string) (int, error) {
	count := 0
	for _, p := range m.portfolios {
		if p.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (m *portfolioRepoMock) UpdateLedger(_ context.Context, id string, balance, avgRate, invested float64, _ pgx.Tx) error {
	for i := range m.portfolios {
		if m.portfolios[i].ID == id {
			m.portfolios[i].CurrentBalance = balance
			m.portfolios[i].AvgBuyRate = avgRate
			m.portfolios[i].TotalInvested = invested
		}
	}
	return nil
}

func (m *portfolioRepoMock) UpdateDetails(_ context.Context, p *models.Portfolio) error {
	for i := range m.portfolios {
		if m.portfolios[i].ID == p.ID {
			m.portfolios[i] = *p
		}
	}
	return nil
}

func (m *portfolioRepoMock) ClearDefaultForUser(_ context.Context, userID, exceptID string) error {
	for i := range m.portfolios {
		if m.portfolios[i].UserID == userID && m.portfolios[i].ID != exceptID {
			m.portfolios[i].IsDefault = false
		}
	}
	return nil
}

func (m *portfolioRepoMock) Delete(_ context.Context, id string) error {
	for i := range m.portfolios {
		if m.portfolios[i].ID == id {
			m.portfolios = append(m.portfolios[:i], m.portfolios[i+1:]...)
			return nil
		}
	}
	return nil
}

type brokerClientStub struct {
	verifyErr   error
	balances    []schemas.BrokerBalance
	balancesErr error
	orders      []schemas.BrokerOrder
	ordersErr   error
	placed      *schemas.OrderResult
}

func (s *brokerClientStub) VerifyAccess(_ context.Context) error { return s.verifyErr }
func (s *brokerClientStub) GetBalances(_ context.Context) ([]schemas.BrokerBalance, error) {
	return s.balances, s.balancesErr
}
func (s *brokerClientStub) GetOrders(_ context.Context, _, _ time.Time) ([]schemas.BrokerOrder, error) {
	return s.orders, s.ordersErr
}
func (s *brokerClientStub) PlaceOrder(_ context.Context, side string, amount, _ float64) (*schemas.OrderResult, error) {
	if s.placed != nil {
		return s.placed, nil
	}
	return &schemas.OrderResult{OrderID: "order-1", Message: side}, nil
}

type brokerFactoryStub struct {
	client *brokerClientStub
}

func (f *brokerFactoryStub) ClientFor(_ *models.BrokerAccount) (services.BrokerClient, error) {
	return f.client, nil
}

func httpStatus(t *testing.T, err error) int {
	t.Helper()
	var httpErr *utils.HTTPError
	require.ErrorAs(t, err, &httpErr)
	return httpErr.Code
}

func TestRegisterAccountValidation(t *testing.T) {
	service := services.NewBrokerAccountService(&brokerFactoryStub{client: &brokerClientStub{}}, &brokerAccountRepoMock{}, &portfolioRepoMock{})
	ctx := context.Background()

	t.Run("missing account number", func(t *testing.T) {
		_, err := service.RegisterAccount(ctx, "user-1", &schemas.CreateBrokerAccountRequest{Broker: models.BrokerHana})
		assert.Equal(t, http.StatusBadRequest, httpStatus(t, err))
	})

	t.Run("kis without app key", func(t *testing.T) {
		_, err := service.RegisterAccount(ctx, "user-1", &schemas.CreateBrokerAccountRequest{Broker: models.BrokerKIS, AccountNo: "12345678-01"})
		assert.Equal(t, http.StatusBadRequest, httpStatus(t, err))
	})

	t.Run("unknown broker", func(t *testing.T) {
		_, err := service.RegisterAccount(ctx, "user-1", &schemas.CreateBrokerAccountRequest{Broker: "MIRAE", AccountNo: "123"})
		assert.Equal(t, http.StatusBadRequest, httpStatus(t, err))
	})
}

func TestRegisterAccountVerifiesCredentials(t *testing.T) {
	factory := &brokerFactoryStub{client: &brokerClientStub{verifyErr: errors.New("bad credentials")}}
	service := services.NewBrokerAccountService(factory, &brokerAccountRepoMock{}, &portfolioRepoMock{})

	_, err := service.RegisterAccount(context.Background(), "user-1", &schemas.CreateBrokerAccountRequest{
		Broker:    models.BrokerKIS,
		AccountNo: "12345678-01",
		AppKey:    "key",
		AppSecret: "secret",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, httpStatus(t, err))
}

func TestRegisterAccountRejectsDuplicates(t *testing.T) {
	repo := &brokerAccountRepoMock{accounts: []models.BrokerAccount{
		{ID: "a1", UserID: "user-1", Broker: models.BrokerHana, HanaAccountNo: "111-222", IsActive: true},
	}}
	service := services.NewBrokerAccountService(&brokerFactoryStub{client: &brokerClientStub{}}, repo, &portfolioRepoMock{})

	_, err := service.RegisterAccount(context.Background(), "user-1", &schemas.CreateBrokerAccountRequest{
		Broker:    models.BrokerHana,
		AccountNo: "111-222",
	})
	assert.Equal(t, http.StatusConflict, httpStatus(t, err))
}

func TestRegisterAccountMasksAccountNumber(t *testing.T) {
	service := services.NewBrokerAccountService(&brokerFactoryStub{client: &brokerClientStub{}}, &brokerAccountRepoMock{}, &portfolioRepoMock{})

	account, err := service.RegisterAccount(context.Background(), "user-1", &schemas.CreateBrokerAccountRequest{
		Broker:    models.BrokerHana,
		AccountNo: "110-123456-789",
		Alias:     "Main",
	})
	require.NoError(t, err)
	assert.Equal(t, "**********-789", account.AccountNo)
	assert.Equal(t, "Main", account.AccountAlias)
}

func TestDeactivateAccount(t *testing.T) {
	repo := &brokerAccountRepoMock{accounts: []models.BrokerAccount{
		{ID: "a1", UserID: "user-1", Broker: models.BrokerHana, HanaAccountNo: "111", IsActive: true},
	}}
	service := services.NewBrokerAccountService(&brokerFactoryStub{client: &brokerClientStub{}}, repo, &portfolioRepoMock{})

	require.NoError(t, service.DeactivateAccount(context.Background(), "user-1", "a1"))
	assert.False(t, repo.accounts[0].IsActive)

	err := service.DeactivateAccount(context.Background(), "user-1", "a1")
	assert.Equal(t, http.StatusNotFound, httpStatus(t, err), "a deactivated account behaves as gone")
}

func TestPlaceOrderValidation(t *testing.T) {
	repo := &brokerAccountRepoMock{accounts: []models.BrokerAccount{
		{ID: "a1", UserID: "user-1", Broker: models.BrokerHana, HanaAccountNo: "111", IsActive: true},
	}}
	service := services.NewBrokerAccountService(&brokerFactoryStub{client: &brokerClientStub{}}, repo, &portfolioRepoMock{})
	ctx := context.Background()

	_, err := service.PlaceOrder(ctx, "user-1", "a1", &schemas.PlaceOrderRequest{Side: "HOLD", Amount: 100})
	assert.Equal(t, http.StatusBadRequest, httpStatus(t, err))

	_, err = service.PlaceOrder(ctx, "user-1", "a1", &schemas.PlaceOrderRequest{Side: schemas.OrderSideBuy, Amount: 0})
	assert.Equal(t, http.StatusBadRequest, httpStatus(t, err))

	result, err := service.PlaceOrder(ctx, "user-1", "a1", &schemas.PlaceOrderRequest{Side: schemas.OrderSideBuy, Amount: 100})
	require.NoError(t, err)
	assert.Equal(t, "order-1", result.OrderID)
}
