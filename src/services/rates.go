package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/seonhu82/Dollar-Invest/src/clients/erapi"
	"github.com/seonhu82/Dollar-Invest/src/clients/koreaexim"
	"github.com/seonhu82/Dollar-Invest/src/models"
	"github.com/seonhu82/Dollar-Invest/src/repositories"
	"github.com/seonhu82/Dollar-Invest/src/schemas"
	"github.com/seonhu82/Dollar-Invest/src/utils"
)

const (
	ratesCacheKey      = "rates:latest"
	ratesCacheTTL      = 5 * time.Minute
	ratesWriteBackSkip = time.Hour
)

var ErrUnsupportedCurrency = errors.New("currency is not supported")

type RateServiceI interface {
	GetRates(ctx context.Context) (*schemas.GetRatesResponse, error)
	GetRate(ctx context.Context, currency string) (*schemas.RateQuote, error)
	GetRateHistory(ctx context.Context, currency string, days int) (*schemas.GetRateHistoryResponse, error)
}

// RateService resolves KRW exchange rates through a chain of sources:
// cache, Korea Exim, er-api, previously stored rates, then the static
// default table. A successful live fetch is written back to the database
// at most once per hour.
type RateService struct {
	koreaEximClient koreaexim.KoreaEximServiceClientI
	erapiClient     erapi.ERAPIServiceClientI
	rateRepo        repositories.ExchangeRateRepository
	cache           utils.CacheHandlerI
	now             func() time.Time
}

func NewRateService(
	koreaEximClient koreaexim.KoreaEximServiceClientI,
	erapiClient erapi.ERAPIServiceClientI,
	rateRepo repositories.ExchangeRateRepository,
	cache utils.CacheHandlerI,
) *RateService {
	return &RateService{
		koreaEximClient: koreaEximClient,
		erapiClient:     erapiClient,
		rateRepo:        rateRepo,
		cache:           cache,
		now:             time.Now,
	}
}

func (s *RateService) GetRates(ctx context.Context) (*schemas.GetRatesResponse, error) {
	logger := utils.LoggerFromContext(ctx)

	if s.cache != nil {
		var cached schemas.GetRatesResponse
		if err := s.cache.Get(ratesCacheKey, &cached); err == nil && len(cached.Rates) > 0 {
			return &cached, nil
		}
	}

	quotes, live := s.fetchLive(ctx)
	if !live {
		stored, err := s.fromDatabase(ctx)
		if err != nil {
			logger.WithError(err).Warn("failed to load stored exchange rates")
		}
		if len(stored) > 0 {
			quotes = stored
		} else {
			quotes = s.defaults()
		}
	}

	sort.Slice(quotes, func(i, j int) bool { return quotes[i].Currency < quotes[j].Currency })

	response := &schemas.GetRatesResponse{
		Rates:     quotes,
		UpdatedAt: s.now(),
	}

	if s.cache != nil {
		if err := s.cache.Set(ratesCacheKey, response, ratesCacheTTL); err != nil {
			logger.WithError(err).Warn("failed to cache exchange rates")
		}
	}
	if live {
		s.writeBack(ctx, quotes)
	}

	return response, nil
}

func (s *RateService) GetRate(ctx context.Context, currency string) (*schemas.RateQuote, error) {
	if !utils.IsSupportedCurrency(currency) {
		return nil, ErrUnsupportedCurrency
	}
	response, err := s.GetRates(ctx)
	if err != nil {
		return nil, err
	}
	for i := range response.Rates {
		if response.Rates[i].Currency == currency {
			return &response.Rates[i], nil
		}
	}
	return nil, fmt.Errorf("no rate available for %s", currency)
}

func (s *RateService) GetRateHistory(ctx context.Context, currency string, days int) (*schemas.GetRateHistoryResponse, error) {
	if !utils.IsSupportedCurrency(currency) {
		return nil, ErrUnsupportedCurrency
	}
	if days <= 0 {
		days = 30
	}

	since := s.now().AddDate(0, 0, -days)
	rows, err := s.rateRepo.GetHistory(ctx, currency, since)
	if err != nil {
		return nil, err
	}

	// Collapse to one point per day, keeping the latest snapshot.
	points := make([]schemas.RateHistoryPoint, 0, len(rows))
	for _, row := range rows {
		date := row.Timestamp.Format(utils.ShortDashDateLayout)
		if n := len(points); n > 0 && points[n-1].Date == date {
			points[n-1].Rate = row.Rate
			continue
		}
		points = append(points, schemas.RateHistoryPoint{Date: date, Rate: row.Rate})
	}

	return &schemas.GetRateHistoryResponse{
		Currency: currency,
		Days:     days,
		History:  points,
	}, nil
}

// fetchLive tries the live sources in order and reports whether any of them
// produced quotes.
func (s *RateService) fetchLive(ctx context.Context) ([]schemas.RateQuote, bool) {
	logger := utils.LoggerFromContext(ctx)

	quotes, err := s.fromKoreaExim(ctx)
	if err != nil {
		logger.WithError(err).Warn("korea exim rate fetch failed")
	} else if len(quotes) > 0 {
		return quotes, true
	}

	quotes, err = s.fromERAPI(ctx)
	if err != nil {
		logger.WithError(err).Warn("er-api rate fetch failed")
	} else if len(quotes) > 0 {
		return quotes, true
	}

	return nil, false
}

func (s *RateService) fromKoreaExim(ctx context.Context) ([]schemas.RateQuote, error) {
	rows, err := s.koreaEximClient.GetDailyRates(ctx, s.now())
	if err != nil {
		return nil, err
	}

	now := s.now()
	yesterday := s.yesterdayRates(ctx)

	var quotes []schemas.RateQuote
	for _, row := range rows {
		currency, divisor := parseCurrencyUnit(row.CurUnit)
		if !utils.IsSupportedCurrency(currency) {
			continue
		}
		rate, err := parseEximNumber(row.DealBasR)
		if err != nil {
			continue
		}
		quotes = append(quotes, s.buildQuote(currency, rate/divisor, yesterday, now))
	}
	return quotes, nil
}

func (s *RateService) fromERAPI(ctx context.Context) ([]schemas.RateQuote, error) {
	latest, err := s.erapiClient.GetLatest(ctx, "USD")
	if err != nil {
		return nil, err
	}
	krw, ok := latest.Rates["KRW"]
	if !ok || krw <= 0 {
		return nil, errors.New("er-api response missing KRW rate")
	}

	now := s.now()
	yesterday := s.yesterdayRates(ctx)

	var quotes []schemas.RateQuote
	for _, currency := range utils.SupportedCurrencies {
		unit, ok := latest.Rates[currency]
		if !ok || unit <= 0 {
			continue
		}
		quotes = append(quotes, s.buildQuote(currency, krw/unit, yesterday, now))
	}
	return quotes, nil
}

func (s *RateService) fromDatabase(ctx context.Context) ([]schemas.RateQuote, error) {
	rows, err := s.rateRepo.GetLatestPerCurrency(ctx)
	if err != nil {
		return nil, err
	}
	quotes := make([]schemas.RateQuote, 0, len(rows))
	for _, row := range rows {
		if !utils.IsSupportedCurrency(row.Currency) {
			continue
		}
		quotes = append(quotes, schemas.RateQuote{
			Currency:      row.Currency,
			Rate:          row.Rate,
			Change:        row.Change,
			ChangePercent: row.ChangePercent,
			High:          row.High,
			Low:           row.Low,
			Timestamp:     row.Timestamp,
		})
	}
	return quotes, nil
}

func (s *RateService) defaults() []schemas.RateQuote {
	now := s.now()
	quotes := make([]schemas.RateQuote, 0, len(utils.SupportedCurrencies))
	for _, currency := range utils.SupportedCurrencies {
		rate := utils.DefaultRates[currency]
		quotes = append(quotes, schemas.RateQuote{
			Currency:  currency,
			Rate:      rate,
			High:      rate,
			Low:       rate,
			Timestamp: now,
		})
	}
	return quotes
}

// buildQuote computes the day-over-day delta against yesterday's stored
// rate. Intraday high/low tracking is not available from either source, so
// both mirror the current rate.
func (s *RateService) buildQuote(currency string, rate float64, yesterday map[string]float64, now time.Time) schemas.RateQuote {
	quote := schemas.RateQuote{
		Currency:  currency,
		Rate:      rate,
		High:      rate,
		Low:       rate,
		Timestamp: now,
	}
	if prev, ok := yesterday[currency]; ok && prev > 0 {
		quote.Change = rate - prev
		quote.ChangePercent = (rate - prev) / prev * 100
	}
	return quote
}

func (s *RateService) yesterdayRates(ctx context.Context) map[string]float64 {
	rates, err := s.rateRepo.GetRatesForDate(ctx, s.now().AddDate(0, 0, -1))
	if err != nil {
		utils.LoggerFromContext(ctx).WithError(err).Warn("failed to load yesterday's rates")
		return nil
	}
	return rates
}

// writeBack persists live quotes, rate limited to one snapshot per hour.
// Persistence failures are logged and never surfaced to the caller.
func (s *RateService) writeBack(ctx context.Context, quotes []schemas.RateQuote) {
	logger := utils.LoggerFromContext(ctx)

	recent, err := s.rateRepo.HasRowSince(ctx, s.now().Add(-ratesWriteBackSkip))
	if err != nil {
		logger.WithError(err).Warn("failed to check last stored rate snapshot")
		return
	}
	if recent {
		return
	}

	rates := make([]models.ExchangeRate, 0, len(quotes))
	for _, quote := range quotes {
		rates = append(rates, models.ExchangeRate{
			Currency:      quote.Currency,
			Rate:          quote.Rate,
			Change:        quote.Change,
			ChangePercent: quote.ChangePercent,
			High:          quote.High,
			Low:           quote.Low,
			Timestamp:     quote.Timestamp,
		})
	}
	if err := s.rateRepo.CreateBatch(ctx, rates); err != nil {
		logger.WithError(err).Warn("failed to persist exchange rate snapshot")
	}
}

// parseCurrencyUnit splits Korea Exim's cur_unit values. "JPY(100)" means
// the quoted price covers 100 yen, so the per-unit divisor is 100.
func parseCurrencyUnit(unit string) (currency string, divisor float64) {
	divisor = 1
	currency = unit
	if idx := strings.Index(unit, "("); idx >= 0 {
		currency = unit[:idx]
		qty := strings.TrimSuffix(unit[idx+1:], ")")
		if parsed, err := strconv.ParseFloat(qty, 64); err == nil && parsed > 0 {
			divisor = parsed
		}
	}
	return currency, divisor
}

// parseEximNumber parses Korea Exim's textual numbers, e.g. "1,234.56".
func parseEximNumber(value string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(value, ",", ""), 64)
}
