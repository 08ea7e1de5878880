package repositories

import (
	"context"
	"time"

	"github.com/seonhu82/Dollar-Invest/src/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ExchangeRateRepository interface {
	CreateBatch(ctx context.Context, rates []models.ExchangeRate) error
	GetLatestPerCurrency(ctx context.Context) ([]models.ExchangeRate, error)
	GetRatesForDate(ctx context.Context, day time.Time) (map[string]float64, error)
	HasRowSince(ctx context.Context, since time.Time) (bool, error)
	GetHistory(ctx context.Context, currency string, since time.Time) ([]models.ExchangeRate, error)
}

type exchangeRateRepo struct {
	db *pgxpool.Pool
}

func NewExchangeRateRepository(db *pgxpool.Pool) ExchangeRateRepository {
	return &exchangeRateRepo{db: db}
}

// CreateBatch inserts one snapshot row per currency atomically. Rows are
// append-only; nothing ever updates or deletes them.
func (r *exchangeRateRepo) CreateBatch(ctx context.Context, rates []models.ExchangeRate) error {
	if len(rates) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO exchange_rates (id, currency, rate, change, change_percent, high, low, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	for _, rate := range rates {
		id := rate.ID
		if id == "" {
			id = uuid.NewString()
		}
		_, err = tx.Exec(ctx, query,
			id, rate.Currency, rate.Rate, rate.Change, rate.ChangePercent, rate.High, rate.Low, rate.Timestamp,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// GetLatestPerCurrency returns the most recent row for each currency,
// regardless of age.
func (r *exchangeRateRepo) GetLatestPerCurrency(ctx context.Context) ([]models.ExchangeRate, error) {
	rows, err := r.db.Query(ctx, `
		SELECT DISTINCT ON (currency)
			id, currency, rate, change, change_percent, high, low, timestamp
		FROM exchange_rates
		ORDER BY currency, timestamp DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rates []models.ExchangeRate
	for rows.Next() {
		var rate models.ExchangeRate
		if err := rows.Scan(&rate.ID, &rate.Currency, &rate.Rate, &rate.Change, &rate.ChangePercent, &rate.High, &rate.Low, &rate.Timestamp); err != nil {
			return nil, err
		}
		rates = append(rates, rate)
	}
	return rates, rows.Err()
}

// GetRatesForDate returns the latest rate per currency recorded on the
// calendar day that contains the given time. Used for day-over-day change.
func (r *exchangeRateRepo) GetRatesForDate(ctx context.Context, day time.Time) (map[string]float64, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)

	rows, err := r.db.Query(ctx, `
		SELECT DISTINCT ON (currency) currency, rate
		FROM exchange_rates
		WHERE timestamp >= $1 AND timestamp < $2
		ORDER BY currency, timestamp DESC
	`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]float64)
	for rows.Next() {
		var currency string
		var rate float64
		if err := rows.Scan(&currency, &rate); err != nil {
			return nil, err
		}
		result[currency] = rate
	}
	return result, rows.Err()
}

// HasRowSince reports whether any snapshot row exists with a timestamp at
// or after the given time. The write-back path uses it to rate-limit
// persistence to one batch per hour.
func (r *exchangeRateRepo) HasRowSince(ctx context.Context, since time.Time) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM exchange_rates WHERE timestamp >= $1
		)
	`, since).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// GetHistory returns every snapshot for the currency since the given time,
// ascending by timestamp.
func (r *exchangeRateRepo) GetHistory(ctx context.Context, currency string, since time.Time) ([]models.ExchangeRate, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, currency, rate, change, change_percent, high, low, timestamp
		FROM exchange_rates
		WHERE currency = $1 AND timestamp >= $2
		ORDER BY timestamp ASC
	`, currency, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rates []models.ExchangeRate
	for rows.Next() {
		var rate models.ExchangeRate
		if err := rows.Scan(&rate.ID, &rate.Currency, &rate.Rate, &rate.Change, &rate.ChangePercent, &rate.High, &rate.Low, &rate.Timestamp); err != nil {
			return nil, err
		}
		rates = append(rates, rate)
	}
	return rates, rows.Err()
}
