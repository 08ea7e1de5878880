package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/seonhu82/Dollar-Invest/src/schemas"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) CreatePortfolio(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req schemas.CreatePortfolioRequest
	if err := decodeJSON(r, &req); err != nil {
		h.HandleErrors(w, err)
		return
	}

	portfolio, err := h.PortfolioService.CreatePortfolio(ctx, userID, &req)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, portfolio, http.StatusCreated)
}

func (h *Handler) GetPortfolios(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	portfolios, err := h.PortfolioService.GetPortfolios(ctx, userID)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, portfolios, http.StatusOK)
}

func (h *Handler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	portfolio, err := h.PortfolioService.GetPortfolio(ctx, userID, chi.URLParam(r, "id"))
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, portfolio, http.StatusOK)
}

func (h *Handler) UpdatePortfolio(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req schemas.UpdatePortfolioRequest
	if err := decodeJSON(r, &req); err != nil {
		h.HandleErrors(w, err)
		return
	}

	portfolio, err := h.PortfolioService.UpdatePortfolio(ctx, userID, chi.URLParam(r, "id"), &req)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, portfolio, http.StatusOK)
}

func (h *Handler) DeletePortfolio(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	if err := h.PortfolioService.DeletePortfolio(ctx, userID, chi.URLParam(r, "id")); err != nil {
		h.HandleErrors(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
