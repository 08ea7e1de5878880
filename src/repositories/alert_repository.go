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

type AlertRepository interface {
	Create(ctx context.Context, a *models.Alert) error
	GetByIDAndUser(ctx context.Context, id, userID string) (*models.Alert, error)
	GetByUserID(ctx context.Context, userID string) ([]models.Alert, error)
	GetActive(ctx context.Context) ([]models.Alert, error)
	SetActive(ctx context.Context, id string, active bool) error
	MarkTriggered(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error

	CreateLog(ctx context.Context, l *models.AlertLog) error
	GetLogsByUserID(ctx context.Context, userID string, limit int) ([]models.AlertLog, error)
}

type alertRepo struct {
	db *pgxpool.Pool
}

func NewAlertRepository(db *pgxpool.Pool) AlertRepository {
	return &alertRepo{db: db}
}

const alertColumns = `id, user_id, currency, type, target_rate, direction, change_rate, daily_time, is_active, last_triggered_at, created_at`

func scanAlert(row pgx.Row) (*models.Alert, error) {
	var a models.Alert
	err := row.Scan(&a.ID, &a.UserID, &a.Currency, &a.Type, &a.TargetRate, &a.Direction,
		&a.ChangeRate, &a.DailyTime, &a.IsActive, &a.LastTriggeredAt, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *alertRepo) Create(ctx context.Context, a *models.Alert) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return r.db.QueryRow(ctx, `
		INSERT INTO alerts (id, user_id, currency, type, target_rate, direction, change_rate, daily_time, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE)
		RETURNING created_at
	`, a.ID, a.UserID, a.Currency, a.Type, a.TargetRate, a.Direction, a.ChangeRate, a.DailyTime).
		Scan(&a.CreatedAt)
}

func (r *alertRepo) GetByIDAndUser(ctx context.Context, id, userID string) (*models.Alert, error) {
	a, err := scanAlert(r.db.QueryRow(ctx, `
		SELECT `+alertColumns+`
		FROM alerts
		WHERE id = $1 AND user_id = $2
	`, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

func (r *alertRepo) GetByUserID(ctx context.Context, userID string) ([]models.Alert, error) {
	return r.collect(ctx, `
		SELECT `+alertColumns+`
		FROM alerts
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
}

// GetActive returns every enabled alert across users, for evaluation sweeps.
func (r *alertRepo) GetActive(ctx context.Context) ([]models.Alert, error) {
	return r.collect(ctx, `
		SELECT `+alertColumns+`
		FROM alerts
		WHERE is_active = TRUE
		ORDER BY created_at ASC
	`)
}

func (r *alertRepo) collect(ctx context.Context, query string, args ...any) ([]models.Alert, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []models.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, *a)
	}
	return alerts, rows.Err()
}

func (r *alertRepo) SetActive(ctx context.Context, id string, active bool) error {
	_, err := r.db.Exec(ctx, `UPDATE alerts SET is_active = $2 WHERE id = $1`, id, active)
	return err
}

func (r *alertRepo) MarkTriggered(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.Exec(ctx, `UPDATE alerts SET last_triggered_at = $2 WHERE id = $1`, id, at)
	return err
}

func (r *alertRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM alerts WHERE id = $1`, id)
	return err
}

func (r *alertRepo) CreateLog(ctx context.Context, l *models.AlertLog) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return r.db.QueryRow(ctx, `
		INSERT INTO alert_logs (id, alert_id, user_id, currency, rate, message)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, l.ID, l.AlertID, l.UserID, l.Currency, l.Rate, l.Message).Scan(&l.CreatedAt)
}

func (r *alertRepo) GetLogsByUserID(ctx context.Context, userID string, limit int) ([]models.AlertLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, alert_id, user_id, currency, rate, message, created_at
		FROM alert_logs
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.AlertLog
	for rows.Next() {
		var l models.AlertLog
		if err := rows.Scan(&l.ID, &l.AlertID, &l.UserID, &l.Currency, &l.Rate, &l.Message, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
