package services

import (
	"context"
	"errors"
	"time"

	"github.com/seonhu82/Dollar-Invest/src/models"
	"github.com/seonhu82/Dollar-Invest/src/repositories"
	"github.com/seonhu82/Dollar-Invest/src/schemas"
	"github.com/seonhu82/Dollar-Invest/src/utils"

	"github.com/jackc/pgx/v5/pgxpool"
)

type TransactionServiceI interface {
	CreateTransaction(ctx context.Context, userID string, req *schemas.CreateTransactionRequest) (*schemas.TransactionResponse, error)
	ListTransactions(ctx context.Context, userID string, filter repositories.TransactionFilter) (*schemas.ListTransactionsResponse, error)
	DeleteTransaction(ctx context.Context, userID, id string) error
}

// TransactionService owns every write path that touches the ledger columns.
// Each write runs the transaction insert (or delete) and the portfolio
// position update inside a single database transaction.
type TransactionService struct {
	db              *pgxpool.Pool
	transactionRepo repositories.TransactionRepository
	portfolioRepo   repositories.PortfolioRepository
}

func NewTransactionService(
	db *pgxpool.Pool,
	transactionRepo repositories.TransactionRepository,
	portfolioRepo repositories.PortfolioRepository,
) *TransactionService {
	return &TransactionService{
		db:              db,
		transactionRepo: transactionRepo,
		portfolioRepo:   portfolioRepo,
	}
}

func (s *TransactionService) CreateTransaction(ctx context.Context, userID string, req *schemas.CreateTransactionRequest) (*schemas.TransactionResponse, error) {
	if req.Type != models.TransactionTypeBuy && req.Type != models.TransactionTypeSell {
		return nil, utils.BadRequest("transaction type must be BUY or SELL")
	}
	if req.Amount <= 0 {
		return nil, utils.BadRequest("amount must be positive")
	}
	if req.Rate <= 0 {
		return nil, utils.BadRequest("rate must be positive")
	}
	if req.Fee < 0 {
		return nil, utils.BadRequest("fee cannot be negative")
	}

	portfolio, err := s.portfolioRepo.GetByIDAndUser(ctx, req.PortfolioID, userID)
	if err != nil {
		return nil, err
	}
	if portfolio == nil {
		return nil, utils.NotFound("portfolio not found")
	}

	tradedAt := time.Now()
	if req.TradedAt != nil {
		tradedAt = *req.TradedAt
	}

	transaction := &models.Transaction{
		UserID:      userID,
		PortfolioID: portfolio.ID,
		Type:        req.Type,
		Currency:    portfolio.Currency,
		Amount:      req.Amount,
		Rate:        req.Rate,
		KrwAmount:   req.Amount*req.Rate + req.Fee,
		Fee:         req.Fee,
		Memo:        req.Memo,
		IsManual:    true,
		TradedAt:    tradedAt,
	}

	state := NewLedgerState(portfolio.CurrentBalance, portfolio.AvgBuyRate, portfolio.TotalInvested)
	next, err := state.Apply(transaction)
	if err != nil {
		if errors.Is(err, ErrInsufficientBalance) {
			return nil, utils.BadRequest("sell amount exceeds portfolio balance")
		}
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := s.transactionRepo.Create(ctx, transaction, tx); err != nil {
		return nil, err
	}
	balance, avgRate, invested := next.Floats()
	if err := s.portfolioRepo.UpdateLedger(ctx, portfolio.ID, balance, avgRate, invested, tx); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	response := toTransactionResponse(transaction, portfolio.Name)
	return &response, nil
}

func (s *TransactionService) ListTransactions(ctx context.Context, userID string, filter repositories.TransactionFilter) (*schemas.ListTransactionsResponse, error) {
	rows, total, err := s.transactionRepo.List(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	response := &schemas.ListTransactionsResponse{
		Transactions: make([]schemas.TransactionResponse, 0, len(rows)),
		Total:        total,
		HasMore:      filter.Offset+len(rows) < total,
	}
	for i := range rows {
		response.Transactions = append(response.Transactions, toTransactionResponse(&rows[i].Transaction, rows[i].PortfolioName))
	}
	return response, nil
}

// DeleteTransaction removes a manual transaction and rebuilds the owning
// portfolio's position from the remaining history. Broker-synced rows are
// immutable; the next sync would only reinsert them.
func (s *TransactionService) DeleteTransaction(ctx context.Context, userID, id string) error {
	transaction, err := s.transactionRepo.GetByIDAndUser(ctx, id, userID)
	if err != nil {
		return err
	}
	if transaction == nil {
		return utils.NotFound("transaction not found")
	}
	if !transaction.IsManual {
		return utils.BadRequest("broker-synced transactions cannot be deleted")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := s.transactionRepo.Delete(ctx, id, tx); err != nil {
		return err
	}

	remaining, err := s.transactionRepo.GetByPortfolioID(ctx, transaction.PortfolioID)
	if err != nil {
		return err
	}
	// The deleted row is not yet visible as gone outside the transaction;
	// filter it from the replay input.
	history := make([]models.Transaction, 0, len(remaining))
	for _, t := range remaining {
		if t.ID != id {
			history = append(history, t)
		}
	}

	state, err := ReplayLedger(history)
	if err != nil {
		return err
	}
	balance, avgRate, invested := state.Floats()
	if err := s.portfolioRepo.UpdateLedger(ctx, transaction.PortfolioID, balance, avgRate, invested, tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
