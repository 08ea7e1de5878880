package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/seonhu82/Dollar-Invest/src/repositories"
	"github.com/seonhu82/Dollar-Invest/src/schemas"
	"github.com/seonhu82/Dollar-Invest/src/utils"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req schemas.CreateTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.HandleErrors(w, err)
		return
	}

	transaction, err := h.TransactionService.CreateTransaction(ctx, userID, &req)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, transaction, http.StatusCreated)
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	filter := repositories.TransactionFilter{
		PortfolioID: r.URL.Query().Get("portfolioId"),
		Type:        r.URL.Query().Get("type"),
	}
	var err error
	if filter.Limit, err = parseQueryInt(r, "limit", 50); err != nil {
		h.HandleErrors(w, err)
		return
	}
	if filter.Offset, err = parseQueryInt(r, "offset", 0); err != nil {
		h.HandleErrors(w, err)
		return
	}

	transactions, err := h.TransactionService.ListTransactions(ctx, userID, filter)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, transactions, http.StatusOK)
}

func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	if err := h.TransactionService.DeleteTransaction(ctx, userID, chi.URLParam(r, "id")); err != nil {
		h.HandleErrors(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseQueryInt(r *http.Request, name string, fallback int) (int, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return 0, utils.BadRequest(name + " must be a non-negative integer")
	}
	return parsed, nil
}
