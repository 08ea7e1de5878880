package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/seonhu82/Dollar-Invest/src/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TransactionFilter struct {
	PortfolioID string
	Type        string
	Limit       int
	Offset      int
}

type TransactionRepository interface {
	Create(ctx context.Context, t *models.Transaction, tx pgx.Tx) error
	CreateSynced(ctx context.Context, t *models.Transaction, tx pgx.Tx) (bool, error)
	GetByIDAndUser(ctx context.Context, id, userID string) (*models.Transaction, error)
	GetByPortfolioID(ctx context.Context, portfolioID string) ([]models.Transaction, error)
	List(ctx context.Context, userID string, filter TransactionFilter) ([]models.TransactionWithPortfolio, int, error)
	CountByPortfolioID(ctx context.Context, portfolioID string) (int, error)
	Delete(ctx context.Context, id string, tx pgx.Tx) error
}

type transactionRepo struct {
	db *pgxpool.Pool
}

func NewTransactionRepository(db *pgxpool.Pool) TransactionRepository {
	return &transactionRepo{db: db}
}

const transactionColumns = `id, user_id, portfolio_id, broker_account_id, type, currency, amount, rate, krw_amount, fee, memo, order_id, is_manual, synced_at, traded_at, created_at`

func (r *transactionRepo) Create(ctx context.Context, t *models.Transaction, tx pgx.Tx) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	query := `
		INSERT INTO transactions (id, user_id, portfolio_id, broker_account_id, type, currency, amount, rate, krw_amount, fee, memo, order_id, is_manual, synced_at, traded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at`

	args := []interface{}{
		t.ID, t.UserID, t.PortfolioID, t.BrokerAccountID, t.Type, t.Currency,
		t.Amount, t.Rate, t.KrwAmount, t.Fee, t.Memo, t.OrderID, t.IsManual, t.SyncedAt, t.TradedAt,
	}

	if tx == nil {
		return r.db.QueryRow(ctx, query, args...).Scan(&t.CreatedAt)
	}
	return tx.QueryRow(ctx, query, args...).Scan(&t.CreatedAt)
}

// CreateSynced inserts a broker-synced transaction, relying on the unique
// (broker_account_id, order_id) constraint for dedup. A conflicting row is
// treated as "already synced" and reported by the returned bool; this is
// safe under concurrent syncs of the same account, unlike check-then-insert.
func (r *transactionRepo) CreateSynced(ctx context.Context, t *models.Transaction, tx pgx.Tx) (bool, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	query := `
		INSERT INTO transactions (id, user_id, portfolio_id, broker_account_id, type, currency, amount, rate, krw_amount, fee, memo, order_id, is_manual, synced_at, traded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (broker_account_id, order_id) DO NOTHING
		RETURNING created_at`

	args := []interface{}{
		t.ID, t.UserID, t.PortfolioID, t.BrokerAccountID, t.Type, t.Currency,
		t.Amount, t.Rate, t.KrwAmount, t.Fee, t.Memo, t.OrderID, t.IsManual, t.SyncedAt, t.TradedAt,
	}

	var err error
	if tx == nil {
		err = r.db.QueryRow(ctx, query, args...).Scan(&t.CreatedAt)
	} else {
		err = tx.QueryRow(ctx, query, args...).Scan(&t.CreatedAt)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *transactionRepo) GetByIDAndUser(ctx context.Context, id, userID string) (*models.Transaction, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE id = $1 AND user_id = $2
	`, id, userID)

	var t models.Transaction
	err := scanTransaction(row, &t)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// GetByPortfolioID returns every transaction of the portfolio in ascending
// trade-time order, the order the ledger replay requires.
func (r *transactionRepo) GetByPortfolioID(ctx context.Context, portfolioID string) ([]models.Transaction, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE portfolio_id = $1
		ORDER BY traded_at ASC, created_at ASC
	`, portfolioID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := scanTransaction(rows, &t); err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

func (r *transactionRepo) List(ctx context.Context, userID string, filter TransactionFilter) ([]models.TransactionWithPortfolio, int, error) {
	where := `WHERE t.user_id = $1`
	args := []interface{}{userID}

	if filter.PortfolioID != "" {
		args = append(args, filter.PortfolioID)
		where += fmt.Sprintf(" AND t.portfolio_id = $%d", len(args))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		where += fmt.Sprintf(" AND t.type = $%d", len(args))
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM transactions t ` + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, filter.Offset)

	rows, err := r.db.Query(ctx, `
		SELECT t.`+transactionColumnsPrefixed+`, p.name
		FROM transactions t
		JOIN portfolios p ON p.id = t.portfolio_id
		`+where+`
		ORDER BY t.traded_at DESC
		LIMIT $`+fmt.Sprint(len(args)-1)+` OFFSET $`+fmt.Sprint(len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var transactions []models.TransactionWithPortfolio
	for rows.Next() {
		var t models.TransactionWithPortfolio
		if err := rows.Scan(&t.ID, &t.UserID, &t.PortfolioID, &t.BrokerAccountID, &t.Type, &t.Currency,
			&t.Amount, &t.Rate, &t.KrwAmount, &t.Fee, &t.Memo, &t.OrderID, &t.IsManual,
			&t.SyncedAt, &t.TradedAt, &t.CreatedAt, &t.PortfolioName); err != nil {
			return nil, 0, err
		}
		transactions = append(transactions, t)
	}
	return transactions, total, rows.Err()
}

func (r *transactionRepo) CountByPortfolioID(ctx context.Context, portfolioID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM transactions WHERE portfolio_id = $1`, portfolioID).Scan(&count)
	return count, err
}

func (r *transactionRepo) Delete(ctx context.Context, id string, tx pgx.Tx) error {
	query := `DELETE FROM transactions WHERE id = $1`

	var err error
	if tx == nil {
		_, err = r.db.Exec(ctx, query, id)
	} else {
		_, err = tx.Exec(ctx, query, id)
	}
	return err
}

const transactionColumnsPrefixed = `id, t.user_id, t.portfolio_id, t.broker_account_id, t.type, t.currency, t.amount, t.rate, t.krw_amount, t.fee, t.memo, t.order_id, t.is_manual, t.synced_at, t.traded_at, t.created_at`

func scanTransaction(row pgx.Row, t *models.Transaction) error {
	return row.Scan(&t.ID, &t.UserID, &t.PortfolioID, &t.BrokerAccountID, &t.Type, &t.Currency,
		&t.Amount, &t.Rate, &t.KrwAmount, &t.Fee, &t.Memo, &t.OrderID, &t.IsManual,
		&t.SyncedAt, &t.TradedAt, &t.CreatedAt)
}
