package repositories

import (
	"context"
	"errors"

	"github.com/seonhu82/Dollar-Invest/src/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PortfolioRepository interface {
	Create(ctx context.Context, p *models.Portfolio) error
	GetByID(ctx context.Context, id string) (*models.Portfolio, error)
	GetByIDAndUser(ctx context.Context, id, userID string) (*models.Portfolio, error)
	GetByUserID(ctx context.Context, userID string) ([]models.Portfolio, error)
	GetByBrokerAccountID(ctx context.Context, brokerAccountID string) ([]models.Portfolio, error)
	CountByUserID(ctx context.Context, userID string) (int, error)
	UpdateLedger(ctx context.Context, id string, balance, avgRate, invested float64, tx pgx.Tx) error
	UpdateDetails(ctx context.Context, p *models.Portfolio) error
	ClearDefaultForUser(ctx context.Context, userID, exceptID string) error
	Delete(ctx context.Context, id string) error
}

type portfolioRepo struct {
	db *pgxpool.Pool
}

func NewPortfolioRepository(db *pgxpool.Pool) PortfolioRepository {
	return &portfolioRepo{db: db}
}

const portfolioColumns = `id, user_id, broker_account_id, name, currency, description, current_balance, avg_buy_rate, total_invested, is_default, created_at, updated_at`

func scanPortfolio(row pgx.Row) (*models.Portfolio, error) {
	var p models.Portfolio
	err := row.Scan(&p.ID, &p.UserID, &p.BrokerAccountID, &p.Name, &p.Currency, &p.Description,
		&p.CurrentBalance, &p.AvgBuyRate, &p.TotalInvested, &p.IsDefault, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *portfolioRepo) Create(ctx context.Context, p *models.Portfolio) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return r.db.QueryRow(ctx, `
		INSERT INTO portfolios (id, user_id, broker_account_id, name, currency, description, is_default)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`, p.ID, p.UserID, p.BrokerAccountID, p.Name, p.Currency, p.Description, p.IsDefault).
		Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *portfolioRepo) GetByID(ctx context.Context, id string) (*models.Portfolio, error) {
	row := r.db.QueryRow(ctx, `SELECT `+portfolioColumns+` FROM portfolios WHERE id = $1`, id)
	return scanPortfolio(row)
}

func (r *portfolioRepo) GetByIDAndUser(ctx context.Context, id, userID string) (*models.Portfolio, error) {
	row := r.db.QueryRow(ctx, `SELECT `+portfolioColumns+` FROM portfolios WHERE id = $1 AND user_id = $2`, id, userID)
	return scanPortfolio(row)
}

func (r *portfolioRepo) GetByUserID(ctx context.Context, userID string) ([]models.Portfolio, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+portfolioColumns+`
		FROM portfolios
		WHERE user_id = $1
		ORDER BY is_default DESC, created_at ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectPortfolios(rows)
}

func (r *portfolioRepo) GetByBrokerAccountID(ctx context.Context, brokerAccountID string) ([]models.Portfolio, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+portfolioColumns+`
		FROM portfolios
		WHERE broker_account_id = $1
		ORDER BY created_at ASC
	`, brokerAccountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectPortfolios(rows)
}

func collectPortfolios(rows pgx.Rows) ([]models.Portfolio, error) {
	var portfolios []models.Portfolio
	for rows.Next() {
		var p models.Portfolio
		if err := rows.Scan(&p.ID, &p.UserID, &p.BrokerAccountID, &p.Name, &p.Currency, &p.Description,
			&p.CurrentBalance, &p.AvgBuyRate, &p.TotalInvested, &p.IsDefault, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		portfolios = append(portfolios, p)
	}
	return portfolios, rows.Err()
}

func (r *portfolioRepo) CountByUserID(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM portfolios WHERE user_id = $1`, userID).Scan(&count)
	return count, err
}

// UpdateLedger writes the recomputed position. It participates in the
// caller's transaction so the ledger row and the transaction row commit or
// roll back together.
func (r *portfolioRepo) UpdateLedger(ctx context.Context, id string, balance, avgRate, invested float64, tx pgx.Tx) error {
	query := `
		UPDATE portfolios
		SET current_balance = $2, avg_buy_rate = $3, total_invested = $4, updated_at = NOW()
		WHERE id = $1`

	var err error
	if tx == nil {
		_, err = r.db.Exec(ctx, query, id, balance, avgRate, invested)
	} else {
		_, err = tx.Exec(ctx, query, id, balance, avgRate, invested)
	}
	return err
}

func (r *portfolioRepo) UpdateDetails(ctx context.Context, p *models.Portfolio) error {
	_, err := r.db.Exec(ctx, `
		UPDATE portfolios
		SET name = $2, description = $3, is_default = $4, updated_at = NOW()
		WHERE id = $1
	`, p.ID, p.Name, p.Description, p.IsDefault)
	return err
}

func (r *portfolioRepo) ClearDefaultForUser(ctx context.Context, userID, exceptID string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE portfolios
		SET is_default = FALSE, updated_at = NOW()
		WHERE user_id = $1 AND id <> $2
	`, userID, exceptID)
	return err
}

func (r *portfolioRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM portfolios WHERE id = $1`, id)
	return err
}
