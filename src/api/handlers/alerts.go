package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/seonhu82/Dollar-Invest/src/schemas"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) CreateAlert(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req schemas.CreateAlertRequest
	if err := decodeJSON(r, &req); err != nil {
		h.HandleErrors(w, err)
		return
	}

	alert, err := h.AlertService.CreateAlert(ctx, userID, &req)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, alert, http.StatusCreated)
}

func (h *Handler) GetAlerts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	alerts, err := h.AlertService.GetAlerts(ctx, userID)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, alerts, http.StatusOK)
}

func (h *Handler) SetAlertActive(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req struct {
		IsActive bool `json:"isActive"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.HandleErrors(w, err)
		return
	}

	alert, err := h.AlertService.SetAlertActive(ctx, userID, chi.URLParam(r, "id"), req.IsActive)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, alert, http.StatusOK)
}

func (h *Handler) DeleteAlert(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	if err := h.AlertService.DeleteAlert(ctx, userID, chi.URLParam(r, "id")); err != nil {
		h.HandleErrors(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetAlertLogs(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	limit, err := parseQueryInt(r, "limit", 50)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	logs, err := h.AlertService.GetAlertLogs(ctx, userID, limit)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, logs, http.StatusOK)
}

// CheckAlerts runs one evaluation sweep over every active alert. Exposed as
// an endpoint so an external scheduler can drive the cadence.
func (h *Handler) CheckAlerts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	result, err := h.AlertService.CheckAlerts(ctx)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, result, http.StatusOK)
}
