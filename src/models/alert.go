package models

import "time"

const (
	AlertTypeTargetRate = "TARGET_RATE"
	AlertTypeChangeRate = "CHANGE_RATE"
	AlertTypeDaily      = "DAILY"

	AlertDirectionUp   = "UP"
	AlertDirectionDown = "DOWN"
)

type Alert struct {
	ID              string     `db:"id"`
	UserID          string     `db:"user_id"`
	Currency        string     `db:"currency"`
	Type            string     `db:"type"`
	TargetRate      *float64   `db:"target_rate"`
	Direction       *string    `db:"direction"`
	ChangeRate      *float64   `db:"change_rate"`
	DailyTime       *string    `db:"daily_time"`
	IsActive        bool       `db:"is_active"`
	LastTriggeredAt *time.Time `db:"last_triggered_at"`
	CreatedAt       time.Time  `db:"created_at"`
}

type AlertLog struct {
	ID        string    `db:"id"`
	AlertID   string    `db:"alert_id"`
	UserID    string    `db:"user_id"`
	Currency  string    `db:"currency"`
	Rate      float64   `db:"rate"`
	Message   string    `db:"message"`
	CreatedAt time.Time `db:"created_at"`
}
