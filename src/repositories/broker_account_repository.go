package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/seonhu82/Dollar-Invest/src/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BrokerAccountRepository interface {
	Create(ctx context.Context, a *models.BrokerAccount) error
	GetByIDAndUser(ctx context.Context, id, userID string) (*models.BrokerAccount, error)
	GetActiveByUserID(ctx context.Context, userID string) ([]models.BrokerAccount, error)
	Exists(ctx context.Context, userID, broker, accountNo string) (bool, error)
	UpdateLastSync(ctx context.Context, id string, syncedAt time.Time) error
	Deactivate(ctx context.Context, id string) error
}

type brokerAccountRepo struct {
	db *pgxpool.Pool
}

func NewBrokerAccountRepository(db *pgxpool.Pool) BrokerAccountRepository {
	return &brokerAccountRepo{db: db}
}

const brokerAccountColumns = `id, user_id, broker, hana_account_no, kis_app_key, kis_app_secret, kis_account_no, account_alias, last_sync_at, is_active, created_at`

func (r *brokerAccountRepo) Create(ctx context.Context, a *models.BrokerAccount) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return r.db.QueryRow(ctx, `
		INSERT INTO broker_accounts (id, user_id, broker, hana_account_no, kis_app_key, kis_app_secret, kis_account_no, account_alias, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE)
		RETURNING created_at
	`, a.ID, a.UserID, a.Broker, a.HanaAccountNo, a.KISAppKey, a.KISAppSecret, a.KISAccountNo, a.AccountAlias).
		Scan(&a.CreatedAt)
}

func (r *brokerAccountRepo) GetByIDAndUser(ctx context.Context, id, userID string) (*models.BrokerAccount, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+brokerAccountColumns+`
		FROM broker_accounts
		WHERE id = $1 AND user_id = $2
	`, id, userID)

	var a models.BrokerAccount
	err := row.Scan(&a.ID, &a.UserID, &a.Broker, &a.HanaAccountNo, &a.KISAppKey, &a.KISAppSecret,
		&a.KISAccountNo, &a.AccountAlias, &a.LastSyncAt, &a.IsActive, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *brokerAccountRepo) GetActiveByUserID(ctx context.Context, userID string) ([]models.BrokerAccount, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+brokerAccountColumns+`
		FROM broker_accounts
		WHERE user_id = $1 AND is_active = TRUE
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []models.BrokerAccount
	for rows.Next() {
		var a models.BrokerAccount
		if err := rows.Scan(&a.ID, &a.UserID, &a.Broker, &a.HanaAccountNo, &a.KISAppKey, &a.KISAppSecret,
			&a.KISAccountNo, &a.AccountAlias, &a.LastSyncAt, &a.IsActive, &a.CreatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// Exists reports whether the user already linked the given broker account
// number, matching whichever column the broker uses.
func (r *brokerAccountRepo) Exists(ctx context.Context, userID, broker, accountNo string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM broker_accounts
			WHERE user_id = $1 AND broker = $2 AND is_active = TRUE
			AND (hana_account_no = $3 OR kis_account_no = $3)
		)
	`, userID, broker, accountNo).Scan(&exists)
	return exists, err
}

func (r *brokerAccountRepo) UpdateLastSync(ctx context.Context, id string, syncedAt time.Time) error {
	_, err := r.db.Exec(ctx, `UPDATE broker_accounts SET last_sync_at = $2 WHERE id = $1`, id, syncedAt)
	return err
}

// Deactivate soft-deletes the linkage; portfolios and transactions are kept.
func (r *brokerAccountRepo) Deactivate(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `UPDATE broker_accounts SET is_active = FALSE WHERE id = $1`, id)
	return err
}
