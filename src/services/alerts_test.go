package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/seonhu82/Dollar-Invest/src/models"
	"github.com/seonhu82/Dollar-Invest/src/schemas"
	"github.com/seonhu82/Dollar-Invest/src/services"
	"github.com/seonhu82/Dollar-Invest/src/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type alertRepoMock struct {
	alerts []models.Alert
	logs   []models.AlertLog

	triggered map[string]time.Time
}

func (m *alertRepoMock) Create(_ context.Context, a *models.Alert) error {
	if a.ID == "" {
		a.ID = "alert-1"
	}
	a.CreatedAt = time.Now()
	m.alerts = append(m.alerts, *a)
	return nil
}

func (m *alertRepoMock) GetByIDAndUser(_ context.Context, id, userID string) (*models.Alert, error) {
	for i := range m.alerts {
		if m.alerts[i].ID == id && m.alerts[i].UserID == userID {
			return &m.alerts[i], nil
		}
	}
	return nil, nil
}

func (m *alertRepoMock) GetByUserID(_ context.Context, userID string) ([]models.Alert, error) {
	var out []models.Alert
	for _, a := range m.alerts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *alertRepoMock) GetActive(_ context.Context) ([]models.Alert, error) {
	var out []models.Alert
	for _, a := range m.alerts {
		if a.IsActive {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *alertRepoMock) SetActive(_ context.Context, id string, active bool) error {
	for i := range m.alerts {
		if m.alerts[i].ID == id {
			m.alerts[i].IsActive = active
		}
	}
	return nil
}

func (m *alertRepoMock) MarkTriggered(_ context.Context, id string, at time.Time) error {
	if m.triggered == nil {
		m.triggered = map[string]time.Time{}
	}
	m.triggered[id] = at
	return nil
}

func (m *alertRepoMock) Delete(_ context.Context, id string) error {
	for i := range m.alerts {
		if m.alerts[i].ID == id {
			m.alerts = append(m.alerts[:i], m.alerts[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *alertRepoMock) CreateLog(_ context.Context, l *models.AlertLog) error {
	l.ID = "log-1"
	l.CreatedAt = time.Now()
	m.logs = append(m.logs, *l)
	return nil
}

func (m *alertRepoMock) GetLogsByUserID(_ context.Context, userID string, _ int) ([]models.AlertLog, error) {
	var out []models.AlertLog
	for _, l := range m.logs {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	return out, nil
}

type rateServiceStub struct {
	rates []schemas.RateQuote
}

func (s *rateServiceStub) GetRates(_ context.Context) (*schemas.GetRatesResponse, error) {
	return &schemas.GetRatesResponse{Rates: s.rates, UpdatedAt: time.Now()}, nil
}

func (s *rateServiceStub) GetRate(_ context.Context, currency string) (*schemas.RateQuote, error) {
	for i := range s.rates {
		if s.rates[i].Currency == currency {
			return &s.rates[i], nil
		}
	}
	return nil, services.ErrUnsupportedCurrency
}

func (s *rateServiceStub) GetRateHistory(_ context.Context, currency string, days int) (*schemas.GetRateHistoryResponse, error) {
	return &schemas.GetRateHistoryResponse{Currency: currency, Days: days}, nil
}

func float64Ptr(v float64) *float64 { return &v }
func stringPtr(v string) *string    { return &v }

func TestCreateAlertValidation(t *testing.T) {
	service := services.NewAlertService(&alertRepoMock{}, &rateServiceStub{})
	ctx := context.Background()

	tests := []struct {
		name    string
		request schemas.CreateAlertRequest
		wantErr string
	}{
		{
			name:    "unsupported currency",
			request: schemas.CreateAlertRequest{Currency: "XYZ", Type: models.AlertTypeTargetRate},
			wantErr: "unsupported currency",
		},
		{
			name:    "target rate without direction",
			request: schemas.CreateAlertRequest{Currency: "USD", Type: models.AlertTypeTargetRate, TargetRate: float64Ptr(1400)},
			wantErr: "direction",
		},
		{
			name:    "change rate without threshold",
			request: schemas.CreateAlertRequest{Currency: "USD", Type: models.AlertTypeChangeRate},
			wantErr: "changeRate",
		},
		{
			name:    "daily with malformed time",
			request: schemas.CreateAlertRequest{Currency: "USD", Type: models.AlertTypeDaily, DailyTime: stringPtr("25:99")},
			wantErr: "HH:MM",
		},
		{
			name:    "unknown type",
			request: schemas.CreateAlertRequest{Currency: "USD", Type: "WEEKLY"},
			wantErr: "alert type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.CreateAlert(ctx, "user-1", &tt.request)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCreateAlertSuccess(t *testing.T) {
	repo := &alertRepoMock{}
	service := services.NewAlertService(repo, &rateServiceStub{})

	alert, err := service.CreateAlert(context.Background(), "user-1", &schemas.CreateAlertRequest{
		Currency:   "USD",
		Type:       models.AlertTypeTargetRate,
		TargetRate: float64Ptr(1400),
		Direction:  stringPtr(models.AlertDirectionUp),
	})
	require.NoError(t, err)
	assert.True(t, alert.IsActive)
	assert.Len(t, repo.alerts, 1)
}

func TestCheckAlertsTargetRate(t *testing.T) {
	repo := &alertRepoMock{alerts: []models.Alert{
		{
			ID: "up", UserID: "user-1", Currency: "USD", Type: models.AlertTypeTargetRate,
			TargetRate: float64Ptr(1400), Direction: stringPtr(models.AlertDirectionUp), IsActive: true,
		},
		{
			ID: "down", UserID: "user-1", Currency: "USD", Type: models.AlertTypeTargetRate,
			TargetRate: float64Ptr(1300), Direction: stringPtr(models.AlertDirectionDown), IsActive: true,
		},
		{
			ID: "disabled", UserID: "user-1", Currency: "USD", Type: models.AlertTypeTargetRate,
			TargetRate: float64Ptr(1400), Direction: stringPtr(models.AlertDirectionUp), IsActive: false,
		},
	}}
	rates := &rateServiceStub{rates: []schemas.RateQuote{{Currency: "USD", Rate: 1410}}}
	service := services.NewAlertService(repo, rates)

	result, err := service.CheckAlerts(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Triggered, "only the upward alert should fire at 1410")
	require.Len(t, repo.logs, 1)
	assert.Equal(t, "up", repo.logs[0].AlertID)
	assert.Equal(t, 1410.0, repo.logs[0].Rate)
	assert.Contains(t, repo.triggered, "up")
}

func TestCheckAlertsChangeRate(t *testing.T) {
	repo := &alertRepoMock{alerts: []models.Alert{
		{
			ID: "swing", UserID: "user-1", Currency: "USD", Type: models.AlertTypeChangeRate,
			ChangeRate: float64Ptr(1.0), IsActive: true,
		},
	}}
	rates := &rateServiceStub{rates: []schemas.RateQuote{{Currency: "USD", Rate: 1330, ChangePercent: -1.5}}}
	service := services.NewAlertService(repo, rates)

	result, err := service.CheckAlerts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Triggered, "threshold applies to the absolute move")
}

func TestCheckAlertsRetriggerGuard(t *testing.T) {
	recent := time.Now().Add(-time.Hour)
	stale := time.Now().Add(-25 * time.Hour)
	repo := &alertRepoMock{alerts: []models.Alert{
		{
			ID: "recent", UserID: "user-1", Currency: "USD", Type: models.AlertTypeTargetRate,
			TargetRate: float64Ptr(1400), Direction: stringPtr(models.AlertDirectionUp),
			IsActive: true, LastTriggeredAt: &recent,
		},
		{
			ID: "stale", UserID: "user-1", Currency: "USD", Type: models.AlertTypeTargetRate,
			TargetRate: float64Ptr(1400), Direction: stringPtr(models.AlertDirectionUp),
			IsActive: true, LastTriggeredAt: &stale,
		},
	}}
	rates := &rateServiceStub{rates: []schemas.RateQuote{{Currency: "USD", Rate: 1410}}}
	service := services.NewAlertService(repo, rates)

	result, err := service.CheckAlerts(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Triggered)
	require.Len(t, repo.logs, 1)
	assert.Equal(t, "stale", repo.logs[0].AlertID)
}

func TestSetAlertActive(t *testing.T) {
	repo := &alertRepoMock{alerts: []models.Alert{
		{ID: "a1", UserID: "user-1", Currency: "USD", Type: models.AlertTypeDaily, DailyTime: stringPtr("09:00"), IsActive: true},
	}}
	service := services.NewAlertService(repo, &rateServiceStub{})

	alert, err := service.SetAlertActive(context.Background(), "user-1", "a1", false)
	require.NoError(t, err)
	assert.False(t, alert.IsActive)

	_, err = service.SetAlertActive(context.Background(), "user-2", "a1", false)
	require.Error(t, err)
	var httpErr *utils.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, 404, httpErr.Code)
}
