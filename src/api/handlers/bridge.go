package handlers

import (
	"context"
	"net/http"
	"time"
)

// GetBridgeStatus reports whether the local bridge process is reachable and
// logged in. It always answers 200; outage is data, not an error.
func (h *Handler) GetBridgeStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	h.respond(w, r, h.BridgeClient.GetStatus(ctx), http.StatusOK)
}
