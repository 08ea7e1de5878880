package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/seonhu82/Dollar-Invest/src/schemas"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) RegisterBrokerAccount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req schemas.CreateBrokerAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		h.HandleErrors(w, err)
		return
	}

	account, err := h.BrokerAccountService.RegisterAccount(ctx, userID, &req)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, account, http.StatusCreated)
}

func (h *Handler) GetBrokerAccounts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	accounts, err := h.BrokerAccountService.GetAccounts(ctx, userID)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, accounts, http.StatusOK)
}

func (h *Handler) DeleteBrokerAccount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	if err := h.BrokerAccountService.DeactivateAccount(ctx, userID, chi.URLParam(r, "id")); err != nil {
		h.HandleErrors(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SyncBrokerAccount pulls orders and balances from the broker. Sync can take
// a while against the local bridge, hence the generous timeout.
func (h *Handler) SyncBrokerAccount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 120*time.Second)
	defer cancel()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	result, err := h.SyncService.SyncAccount(ctx, userID, chi.URLParam(r, "id"))
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, result, http.StatusOK)
}

func (h *Handler) GetBrokerOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	days, err := parseQueryInt(r, "days", 30)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	orders, err := h.BrokerAccountService.GetRecentOrders(ctx, userID, chi.URLParam(r, "id"), days)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, orders, http.StatusOK)
}

func (h *Handler) PlaceBrokerOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req schemas.PlaceOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		h.HandleErrors(w, err)
		return
	}

	result, err := h.BrokerAccountService.PlaceOrder(ctx, userID, chi.URLParam(r, "id"), &req)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, result, http.StatusCreated)
}
