package services

import (
	"context"
	"strings"
	"time"

	"github.com/seonhu82/Dollar-Invest/src/models"
	"github.com/seonhu82/Dollar-Invest/src/repositories"
	"github.com/seonhu82/Dollar-Invest/src/schemas"
	"github.com/seonhu82/Dollar-Invest/src/utils"
)

type BrokerAccountServiceI interface {
	RegisterAccount(ctx context.Context, userID string, req *schemas.CreateBrokerAccountRequest) (*schemas.BrokerAccountResponse, error)
	GetAccounts(ctx context.Context, userID string) (*schemas.GetBrokerAccountsResponse, error)
	DeactivateAccount(ctx context.Context, userID, id string) error
	GetRecentOrders(ctx context.Context, userID, id string, days int) ([]schemas.BrokerOrder, error)
	PlaceOrder(ctx context.Context, userID, id string, req *schemas.PlaceOrderRequest) (*schemas.OrderResult, error)
}

type BrokerAccountService struct {
	factory           BrokerClientFactoryI
	brokerAccountRepo repositories.BrokerAccountRepository
	portfolioRepo     repositories.PortfolioRepository
}

func NewBrokerAccountService(
	factory BrokerClientFactoryI,
	brokerAccountRepo repositories.BrokerAccountRepository,
	portfolioRepo repositories.PortfolioRepository,
) *BrokerAccountService {
	return &BrokerAccountService{
		factory:           factory,
		brokerAccountRepo: brokerAccountRepo,
		portfolioRepo:     portfolioRepo,
	}
}

// RegisterAccount links a broker account after verifying the credentials
// actually work against the broker. Verification failure blocks the link;
// storing dead credentials only defers the error to the first sync.
func (s *BrokerAccountService) RegisterAccount(ctx context.Context, userID string, req *schemas.CreateBrokerAccountRequest) (*schemas.BrokerAccountResponse, error) {
	accountNo := strings.TrimSpace(req.AccountNo)
	if accountNo == "" {
		return nil, utils.BadRequest("account number is required")
	}

	account := &models.BrokerAccount{
		UserID:       userID,
		Broker:       req.Broker,
		AccountAlias: req.Alias,
		IsActive:     true,
	}
	switch req.Broker {
	case models.BrokerHana:
		account.HanaAccountNo = accountNo
	case models.BrokerKIS:
		if req.AppKey == "" || req.AppSecret == "" {
			return nil, utils.BadRequest("app key and secret are required for KIS accounts")
		}
		account.KISAccountNo = accountNo
		account.KISAppKey = req.AppKey
		account.KISAppSecret = req.AppSecret
	default:
		return nil, utils.BadRequest("broker must be HANA or KIS")
	}

	exists, err := s.brokerAccountRepo.Exists(ctx, userID, req.Broker, accountNo)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, utils.Conflict("broker account is already linked")
	}

	client, err := s.factory.ClientFor(account)
	if err != nil {
		return nil, err
	}
	if err := client.VerifyAccess(ctx); err != nil {
		return nil, utils.UnprocessableEntity("broker verification failed: " + err.Error())
	}

	if err := s.brokerAccountRepo.Create(ctx, account); err != nil {
		return nil, err
	}
	return s.toResponse(ctx, account)
}

func (s *BrokerAccountService) GetAccounts(ctx context.Context, userID string) (*schemas.GetBrokerAccountsResponse, error) {
	accounts, err := s.brokerAccountRepo.GetActiveByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	response := &schemas.GetBrokerAccountsResponse{Accounts: make([]schemas.BrokerAccountResponse, 0, len(accounts))}
	for i := range accounts {
		item, err := s.toResponse(ctx, &accounts[i])
		if err != nil {
			return nil, err
		}
		response.Accounts = append(response.Accounts, *item)
	}
	return response, nil
}

// DeactivateAccount unlinks the broker. Portfolios and imported transactions
// survive; only future syncs stop.
func (s *BrokerAccountService) DeactivateAccount(ctx context.Context, userID, id string) error {
	account, err := s.brokerAccountRepo.GetByIDAndUser(ctx, id, userID)
	if err != nil {
		return err
	}
	if account == nil || !account.IsActive {
		return utils.NotFound("broker account not found")
	}
	return s.brokerAccountRepo.Deactivate(ctx, id)
}

func (s *BrokerAccountService) GetRecentOrders(ctx context.Context, userID, id string, days int) ([]schemas.BrokerOrder, error) {
	_, client, err := s.resolve(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if days <= 0 || days > 90 {
		days = 30
	}
	end := time.Now()
	orders, err := client.GetOrders(ctx, end.AddDate(0, 0, -days), end)
	if err != nil {
		return nil, utils.ServiceUnavailable("failed to fetch orders: " + err.Error())
	}
	return orders, nil
}

func (s *BrokerAccountService) PlaceOrder(ctx context.Context, userID, id string, req *schemas.PlaceOrderRequest) (*schemas.OrderResult, error) {
	if req.Side != schemas.OrderSideBuy && req.Side != schemas.OrderSideSell {
		return nil, utils.BadRequest("order side must be BUY or SELL")
	}
	if req.Amount <= 0 {
		return nil, utils.BadRequest("amount must be positive")
	}

	_, client, err := s.resolve(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	result, err := client.PlaceOrder(ctx, req.Side, req.Amount, req.Rate)
	if err != nil {
		return nil, utils.ServiceUnavailable("order placement failed: " + err.Error())
	}
	return result, nil
}

func (s *BrokerAccountService) resolve(ctx context.Context, userID, id string) (*models.BrokerAccount, BrokerClient, error) {
	account, err := s.brokerAccountRepo.GetByIDAndUser(ctx, id, userID)
	if err != nil {
		return nil, nil, err
	}
	if account == nil || !account.IsActive {
		return nil, nil, utils.NotFound("broker account not found")
	}
	client, err := s.factory.ClientFor(account)
	if err != nil {
		return nil, nil, err
	}
	return account, client, nil
}

func (s *BrokerAccountService) toResponse(ctx context.Context, a *models.BrokerAccount) (*schemas.BrokerAccountResponse, error) {
	accountNo := a.HanaAccountNo
	if a.Broker == models.BrokerKIS {
		accountNo = a.KISAccountNo
	}

	response := &schemas.BrokerAccountResponse{
		ID:           a.ID,
		Broker:       a.Broker,
		AccountNo:    maskAccountNo(accountNo),
		AccountAlias: a.AccountAlias,
		LastSyncAt:   a.LastSyncAt,
		Portfolios:   []schemas.BrokerPortfolioReference{},
	}

	portfolios, err := s.portfolioRepo.GetByBrokerAccountID(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	for _, p := range portfolios {
		response.Portfolios = append(response.Portfolios, schemas.BrokerPortfolioReference{
			ID:       p.ID,
			Name:     p.Name,
			Currency: p.Currency,
			Balance:  p.CurrentBalance,
		})
	}
	return response, nil
}

// maskAccountNo hides all but the last four characters of an account number.
func maskAccountNo(accountNo string) string {
	if len(accountNo) <= 4 {
		return accountNo
	}
	return strings.Repeat("*", len(accountNo)-4) + accountNo[len(accountNo)-4:]
}
