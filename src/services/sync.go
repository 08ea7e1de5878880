package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/seonhu82/Dollar-Invest/src/models"
	"github.com/seonhu82/Dollar-Invest/src/repositories"
	"github.com/seonhu82/Dollar-Invest/src/schemas"
	"github.com/seonhu82/Dollar-Invest/src/utils"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

const syncOrderWindow = 30 * 24 * time.Hour

type SyncServiceI interface {
	SyncAccount(ctx context.Context, userID, accountID string) (*schemas.SyncResponse, error)
}

// SyncService pulls executed orders and balances from a linked broker
// account into the local ledger. Order import and balance reconciliation
// fail independently; last_sync_at advances whenever the broker answered at
// all, so partial syncs are visible but never retried from scratch.
type SyncService struct {
	db                *pgxpool.Pool
	factory           BrokerClientFactoryI
	brokerAccountRepo repositories.BrokerAccountRepository
	portfolioRepo     repositories.PortfolioRepository
	transactionRepo   repositories.TransactionRepository
}

func NewSyncService(
	db *pgxpool.Pool,
	factory BrokerClientFactoryI,
	brokerAccountRepo repositories.BrokerAccountRepository,
	portfolioRepo repositories.PortfolioRepository,
	transactionRepo repositories.TransactionRepository,
) *SyncService {
	return &SyncService{
		db:                db,
		factory:           factory,
		brokerAccountRepo: brokerAccountRepo,
		portfolioRepo:     portfolioRepo,
		transactionRepo:   transactionRepo,
	}
}

func (s *SyncService) SyncAccount(ctx context.Context, userID, accountID string) (*schemas.SyncResponse, error) {
	logger := utils.LoggerFromContext(ctx).WithField("broker_account_id", accountID)

	account, err := s.brokerAccountRepo.GetByIDAndUser(ctx, accountID, userID)
	if err != nil {
		return nil, err
	}
	if account == nil || !account.IsActive {
		return nil, utils.NotFound("broker account not found")
	}

	client, err := s.factory.ClientFor(account)
	if err != nil {
		return nil, err
	}

	synced, total, ordersErr := s.syncOrders(ctx, logger, account, client)
	balanceErr := s.syncBalances(ctx, logger, account, client)

	if ordersErr != nil && balanceErr != nil {
		return nil, utils.ServiceUnavailable("broker sync failed: " + ordersErr.Error())
	}

	now := time.Now()
	if err := s.brokerAccountRepo.UpdateLastSync(ctx, account.ID, now); err != nil {
		logger.WithError(err).Warn("failed to record sync timestamp")
	}

	message := "sync completed"
	switch {
	case ordersErr != nil:
		message = "balances updated; order import failed"
	case balanceErr != nil:
		message = "orders imported; balance update failed"
	}

	return &schemas.SyncResponse{
		SyncedCount: synced,
		Total:       total,
		Message:     message,
	}, nil
}

// syncOrders imports the last 30 days of executed orders. Each new order is
// inserted and folded into its portfolio's position inside one database
// transaction; previously seen order IDs are skipped via the unique
// constraint.
func (s *SyncService) syncOrders(ctx context.Context, logger *logrus.Entry, account *models.BrokerAccount, client BrokerClient) (synced, total int, err error) {
	end := time.Now()
	orders, err := client.GetOrders(ctx, end.Add(-syncOrderWindow), end)
	if err != nil {
		logger.WithError(err).Warn("failed to fetch broker orders")
		return 0, 0, err
	}

	sort.Slice(orders, func(i, j int) bool { return orders[i].OrderedAt.Before(orders[j].OrderedAt) })

	for _, order := range orders {
		if order.OrderID == "" {
			continue
		}
		total++
		inserted, err := s.importOrder(ctx, account, &order)
		if err != nil {
			logger.WithError(err).WithField("order_id", order.OrderID).Warn("failed to import order")
			continue
		}
		if inserted {
			synced++
		}
	}
	return synced, total, nil
}

func (s *SyncService) importOrder(ctx context.Context, account *models.BrokerAccount, order *schemas.BrokerOrder) (bool, error) {
	if order.Type != models.TransactionTypeBuy && order.Type != models.TransactionTypeSell {
		return false, fmt.Errorf("unknown order type: %s", order.Type)
	}
	if !utils.IsSupportedCurrency(order.Currency) {
		return false, fmt.Errorf("unsupported currency: %s", order.Currency)
	}

	portfolio, err := s.portfolioForCurrency(ctx, account, order.Currency)
	if err != nil {
		return false, err
	}

	now := time.Now()
	orderID := order.OrderID
	transaction := &models.Transaction{
		UserID:          account.UserID,
		PortfolioID:     portfolio.ID,
		BrokerAccountID: &account.ID,
		Type:            order.Type,
		Currency:        order.Currency,
		Amount:          order.Amount,
		Rate:            order.Rate,
		KrwAmount:       order.Amount * order.Rate,
		OrderID:         &orderID,
		IsManual:        false,
		SyncedAt:        &now,
		TradedAt:        order.OrderedAt,
	}

	state := NewLedgerState(portfolio.CurrentBalance, portfolio.AvgBuyRate, portfolio.TotalInvested)
	next, err := state.Apply(transaction)
	if err != nil {
		return false, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	inserted, err := s.transactionRepo.CreateSynced(ctx, transaction, tx)
	if err != nil {
		return false, err
	}
	if !inserted {
		return false, nil
	}

	balance, avgRate, invested := next.Floats()
	if err := s.portfolioRepo.UpdateLedger(ctx, portfolio.ID, balance, avgRate, invested, tx); err != nil {
		return false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// syncBalances reconciles portfolio positions against the broker-reported
// balances, which are authoritative for broker-linked portfolios.
func (s *SyncService) syncBalances(ctx context.Context, logger *logrus.Entry, account *models.BrokerAccount, client BrokerClient) error {
	balances, err := client.GetBalances(ctx)
	if err != nil {
		logger.WithError(err).Warn("failed to fetch broker balances")
		return err
	}

	for _, balance := range balances {
		if !utils.IsSupportedCurrency(balance.Currency) {
			continue
		}
		portfolio, err := s.portfolioForCurrency(ctx, account, balance.Currency)
		if err != nil {
			return err
		}
		invested := balance.Balance * balance.AvgBuyRate
		if err := s.portfolioRepo.UpdateLedger(ctx, portfolio.ID, balance.Balance, balance.AvgBuyRate, invested, nil); err != nil {
			return err
		}
	}
	return nil
}

// portfolioForCurrency finds the broker account's portfolio holding the
// given currency, creating one on first sight.
func (s *SyncService) portfolioForCurrency(ctx context.Context, account *models.BrokerAccount, currency string) (*models.Portfolio, error) {
	portfolios, err := s.portfolioRepo.GetByBrokerAccountID(ctx, account.ID)
	if err != nil {
		return nil, err
	}
	for i := range portfolios {
		if portfolios[i].Currency == currency {
			return &portfolios[i], nil
		}
	}

	name := account.AccountAlias
	if name == "" {
		name = account.Broker
	}
	count, err := s.portfolioRepo.CountByUserID(ctx, account.UserID)
	if err != nil {
		return nil, err
	}
	portfolio := &models.Portfolio{
		UserID:          account.UserID,
		BrokerAccountID: &account.ID,
		Name:            fmt.Sprintf("%s %s", name, currency),
		Currency:        currency,
		IsDefault:       count == 0,
	}
	if err := s.portfolioRepo.Create(ctx, portfolio); err != nil {
		return nil, err
	}
	return portfolio, nil
}
