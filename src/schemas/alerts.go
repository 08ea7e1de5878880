package schemas

import "time"

type CreateAlertRequest struct {
	Currency   string   `json:"currency"`
	Type       string   `json:"type"`
	TargetRate *float64 `json:"targetRate,omitempty"`
	Direction  *string  `json:"direction,omitempty"`
	ChangeRate *float64 `json:"changeRate,omitempty"`
	DailyTime  *string  `json:"dailyTime,omitempty"`
}

type AlertResponse struct {
	ID              string     `json:"id"`
	Currency        string     `json:"currency"`
	Type            string     `json:"type"`
	TargetRate      *float64   `json:"targetRate,omitempty"`
	Direction       *string    `json:"direction,omitempty"`
	ChangeRate      *float64   `json:"changeRate,omitempty"`
	DailyTime       *string    `json:"dailyTime,omitempty"`
	IsActive        bool       `json:"isActive"`
	LastTriggeredAt *time.Time `json:"lastTriggeredAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

type AlertLogResponse struct {
	ID        string    `json:"id"`
	AlertID   string    `json:"alertId"`
	Currency  string    `json:"currency"`
	Rate      float64   `json:"rate"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

type CheckAlertsResponse struct {
	Triggered int `json:"triggered"`
}
