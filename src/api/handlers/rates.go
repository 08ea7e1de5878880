package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/seonhu82/Dollar-Invest/src/services"
	"github.com/seonhu82/Dollar-Invest/src/utils"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) GetRates(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	rates, err := h.RateService.GetRates(ctx)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, rates, http.StatusOK)
}

func (h *Handler) GetRate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	currency := chi.URLParam(r, "currency")
	rate, err := h.RateService.GetRate(ctx, currency)
	if err != nil {
		if err == services.ErrUnsupportedCurrency {
			h.HandleErrors(w, utils.BadRequest("unsupported currency: "+currency))
			return
		}
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, rate, http.StatusOK)
}

func (h *Handler) GetRateHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	currency := chi.URLParam(r, "currency")
	days := 30
	if daysStr := r.URL.Query().Get("days"); daysStr != "" {
		parsed, err := strconv.Atoi(daysStr)
		if err != nil || parsed <= 0 || parsed > 365 {
			h.HandleErrors(w, utils.BadRequest("days must be between 1 and 365"))
			return
		}
		days = parsed
	}

	history, err := h.RateService.GetRateHistory(ctx, currency, days)
	if err != nil {
		if err == services.ErrUnsupportedCurrency {
			h.HandleErrors(w, utils.BadRequest("unsupported currency: "+currency))
			return
		}
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, history, http.StatusOK)
}
