package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/seonhu82/Dollar-Invest/src/clients/bridge"
	"github.com/seonhu82/Dollar-Invest/src/services"
	"github.com/seonhu82/Dollar-Invest/src/utils"
)

// userIDHeader carries the caller's identity. Authentication happens
// upstream; this service trusts the header as-is.
const userIDHeader = "X-User-ID"

type Handler struct {
	RateService          services.RateServiceI
	PortfolioService     services.PortfolioServiceI
	TransactionService   services.TransactionServiceI
	BrokerAccountService services.BrokerAccountServiceI
	SyncService          services.SyncServiceI
	AlertService         services.AlertServiceI
	BridgeClient         bridge.BridgeServiceClientI
}

func NewHandler(
	rateService services.RateServiceI,
	portfolioService services.PortfolioServiceI,
	transactionService services.TransactionServiceI,
	brokerAccountService services.BrokerAccountServiceI,
	syncService services.SyncServiceI,
	alertService services.AlertServiceI,
	bridgeClient bridge.BridgeServiceClientI,
) *Handler {
	return &Handler{
		RateService:          rateService,
		PortfolioService:     portfolioService,
		TransactionService:   transactionService,
		BrokerAccountService: brokerAccountService,
		SyncService:          syncService,
		AlertService:         alertService,
		BridgeClient:         bridgeClient,
	}
}

func (h *Handler) respond(w http.ResponseWriter, _ *http.Request, data interface{}, status int) {
	res, err := json.Marshal(data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write(res)
}

func (h *Handler) HandleErrors(w http.ResponseWriter, err error, statusCodes ...int) {
	var httpErr *utils.HTTPError
	if errors.As(err, &httpErr) {
		utils.WriteError(w, httpErr)
		return
	}
	status := http.StatusInternalServerError
	if len(statusCodes) > 0 {
		status = statusCodes[0]
	}
	utils.WriteError(w, utils.NewHTTPError(status, err.Error()))
}

// userID extracts the caller identity, failing the request when absent.
func (h *Handler) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := r.Header.Get(userIDHeader)
	if userID == "" {
		h.HandleErrors(w, utils.Unauthorized("missing "+userIDHeader+" header"))
		return "", false
	}
	return userID, true
}

// Healthcheck returns a 200 whenever the process accepts requests.
func Healthcheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return utils.BadRequest("invalid request body")
	}
	return nil
}
