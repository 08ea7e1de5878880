package services

import (
	"context"
	"fmt"
	"time"

	"github.com/seonhu82/Dollar-Invest/src/models"
	"github.com/seonhu82/Dollar-Invest/src/repositories"
	"github.com/seonhu82/Dollar-Invest/src/schemas"
	"github.com/seonhu82/Dollar-Invest/src/utils"
)

// alertRetriggerGuard keeps a satisfied condition from firing on every
// evaluation sweep while it stays satisfied.
const alertRetriggerGuard = 24 * time.Hour

type AlertServiceI interface {
	CreateAlert(ctx context.Context, userID string, req *schemas.CreateAlertRequest) (*schemas.AlertResponse, error)
	GetAlerts(ctx context.Context, userID string) ([]schemas.AlertResponse, error)
	SetAlertActive(ctx context.Context, userID, id string, active bool) (*schemas.AlertResponse, error)
	DeleteAlert(ctx context.Context, userID, id string) error
	GetAlertLogs(ctx context.Context, userID string, limit int) ([]schemas.AlertLogResponse, error)
	CheckAlerts(ctx context.Context) (*schemas.CheckAlertsResponse, error)
}

type AlertService struct {
	alertRepo   repositories.AlertRepository
	rateService RateServiceI
	now         func() time.Time
}

func NewAlertService(alertRepo repositories.AlertRepository, rateService RateServiceI) *AlertService {
	return &AlertService{
		alertRepo:   alertRepo,
		rateService: rateService,
		now:         time.Now,
	}
}

func (s *AlertService) CreateAlert(ctx context.Context, userID string, req *schemas.CreateAlertRequest) (*schemas.AlertResponse, error) {
	if !utils.IsSupportedCurrency(req.Currency) {
		return nil, utils.BadRequest("unsupported currency: " + req.Currency)
	}

	switch req.Type {
	case models.AlertTypeTargetRate:
		if req.TargetRate == nil || *req.TargetRate <= 0 {
			return nil, utils.BadRequest("target rate alerts require a positive targetRate")
		}
		if req.Direction == nil || (*req.Direction != models.AlertDirectionUp && *req.Direction != models.AlertDirectionDown) {
			return nil, utils.BadRequest("target rate alerts require direction UP or DOWN")
		}
	case models.AlertTypeChangeRate:
		if req.ChangeRate == nil || *req.ChangeRate <= 0 {
			return nil, utils.BadRequest("change rate alerts require a positive changeRate percentage")
		}
	case models.AlertTypeDaily:
		if req.DailyTime == nil {
			return nil, utils.BadRequest("daily alerts require a dailyTime")
		}
		if _, err := time.Parse("15:04", *req.DailyTime); err != nil {
			return nil, utils.BadRequest("dailyTime must be HH:MM")
		}
	default:
		return nil, utils.BadRequest("alert type must be TARGET_RATE, CHANGE_RATE or DAILY")
	}

	alert := &models.Alert{
		UserID:     userID,
		Currency:   req.Currency,
		Type:       req.Type,
		TargetRate: req.TargetRate,
		Direction:  req.Direction,
		ChangeRate: req.ChangeRate,
		DailyTime:  req.DailyTime,
		IsActive:   true,
	}
	if err := s.alertRepo.Create(ctx, alert); err != nil {
		return nil, err
	}
	response := toAlertResponse(alert)
	return &response, nil
}

func (s *AlertService) GetAlerts(ctx context.Context, userID string) ([]schemas.AlertResponse, error) {
	alerts, err := s.alertRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	responses := make([]schemas.AlertResponse, 0, len(alerts))
	for i := range alerts {
		responses = append(responses, toAlertResponse(&alerts[i]))
	}
	return responses, nil
}

func (s *AlertService) SetAlertActive(ctx context.Context, userID, id string, active bool) (*schemas.AlertResponse, error) {
	alert, err := s.alertRepo.GetByIDAndUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if alert == nil {
		return nil, utils.NotFound("alert not found")
	}
	if err := s.alertRepo.SetActive(ctx, id, active); err != nil {
		return nil, err
	}
	alert.IsActive = active
	response := toAlertResponse(alert)
	return &response, nil
}

func (s *AlertService) DeleteAlert(ctx context.Context, userID, id string) error {
	alert, err := s.alertRepo.GetByIDAndUser(ctx, id, userID)
	if err != nil {
		return err
	}
	if alert == nil {
		return utils.NotFound("alert not found")
	}
	return s.alertRepo.Delete(ctx, id)
}

func (s *AlertService) GetAlertLogs(ctx context.Context, userID string, limit int) ([]schemas.AlertLogResponse, error) {
	logs, err := s.alertRepo.GetLogsByUserID(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	responses := make([]schemas.AlertLogResponse, 0, len(logs))
	for _, l := range logs {
		responses = append(responses, schemas.AlertLogResponse{
			ID:        l.ID,
			AlertID:   l.AlertID,
			Currency:  l.Currency,
			Rate:      l.Rate,
			Message:   l.Message,
			CreatedAt: l.CreatedAt,
		})
	}
	return responses, nil
}

// CheckAlerts evaluates every active alert against current rates and fires
// those whose condition holds. One failing alert never aborts the sweep.
func (s *AlertService) CheckAlerts(ctx context.Context) (*schemas.CheckAlertsResponse, error) {
	logger := utils.LoggerFromContext(ctx)

	alerts, err := s.alertRepo.GetActive(ctx)
	if err != nil {
		return nil, err
	}
	rates, err := s.rateService.GetRates(ctx)
	if err != nil {
		return nil, err
	}

	quotes := make(map[string]schemas.RateQuote, len(rates.Rates))
	for _, quote := range rates.Rates {
		quotes[quote.Currency] = quote
	}

	triggered := 0
	now := s.now()
	for i := range alerts {
		alert := &alerts[i]
		quote, ok := quotes[alert.Currency]
		if !ok {
			continue
		}
		if alert.LastTriggeredAt != nil && now.Sub(*alert.LastTriggeredAt) < alertRetriggerGuard {
			continue
		}

		message, fire := evaluateAlert(alert, &quote, now)
		if !fire {
			continue
		}

		log := &models.AlertLog{
			AlertID:  alert.ID,
			UserID:   alert.UserID,
			Currency: alert.Currency,
			Rate:     quote.Rate,
			Message:  message,
		}
		if err := s.alertRepo.CreateLog(ctx, log); err != nil {
			logger.WithError(err).WithField("alert_id", alert.ID).Warn("failed to record alert trigger")
			continue
		}
		if err := s.alertRepo.MarkTriggered(ctx, alert.ID, now); err != nil {
			logger.WithError(err).WithField("alert_id", alert.ID).Warn("failed to mark alert as triggered")
		}
		triggered++
	}

	return &schemas.CheckAlertsResponse{Triggered: triggered}, nil
}

func evaluateAlert(alert *models.Alert, quote *schemas.RateQuote, now time.Time) (string, bool) {
	switch alert.Type {
	case models.AlertTypeTargetRate:
		if alert.TargetRate == nil || alert.Direction == nil {
			return "", false
		}
		if *alert.Direction == models.AlertDirectionUp && quote.Rate >= *alert.TargetRate {
			return fmt.Sprintf("%s rose to %.2f (target %.2f)", alert.Currency, quote.Rate, *alert.TargetRate), true
		}
		if *alert.Direction == models.AlertDirectionDown && quote.Rate <= *alert.TargetRate {
			return fmt.Sprintf("%s fell to %.2f (target %.2f)", alert.Currency, quote.Rate, *alert.TargetRate), true
		}
	case models.AlertTypeChangeRate:
		if alert.ChangeRate == nil {
			return "", false
		}
		change := quote.ChangePercent
		if change < 0 {
			change = -change
		}
		if change >= *alert.ChangeRate {
			return fmt.Sprintf("%s moved %.2f%% in a day (threshold %.2f%%)", alert.Currency, quote.ChangePercent, *alert.ChangeRate), true
		}
	case models.AlertTypeDaily:
		if alert.DailyTime == nil {
			return "", false
		}
		scheduled, err := time.Parse("15:04", *alert.DailyTime)
		if err != nil {
			return "", false
		}
		due := time.Date(now.Year(), now.Month(), now.Day(), scheduled.Hour(), scheduled.Minute(), 0, 0, now.Location())
		if !now.Before(due) {
			return fmt.Sprintf("%s daily rate: %.2f KRW", alert.Currency, quote.Rate), true
		}
	}
	return "", false
}

func toAlertResponse(a *models.Alert) schemas.AlertResponse {
	return schemas.AlertResponse{
		ID:              a.ID,
		Currency:        a.Currency,
		Type:            a.Type,
		TargetRate:      a.TargetRate,
		Direction:       a.Direction,
		ChangeRate:      a.ChangeRate,
		DailyTime:       a.DailyTime,
		IsActive:        a.IsActive,
		LastTriggeredAt: a.LastTriggeredAt,
		CreatedAt:       a.CreatedAt,
	}
}
