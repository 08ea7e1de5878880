package api

import (
	"net/http"
	"time"

	handlers "github.com/seonhu82/Dollar-Invest/src/api/handlers"
	"github.com/seonhu82/Dollar-Invest/src/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

type Server struct {
	Router  *chi.Mux
	Handler *handlers.Handler
}

func NewServer(handler *handlers.Handler, logger *logrus.Logger) *Server {
	server := &Server{
		Router:  chi.NewRouter(),
		Handler: handler,
	}
	server.initMiddleware(logger)
	server.InitRoutes()
	return server
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

func (s *Server) initMiddleware(logger *logrus.Logger) {
	s.Router.Use(middleware.RequestID)
	s.Router.Use(middleware.Recoverer)
	s.Router.Use(cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-User-ID"},
	}).Handler)
	s.Router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(utils.WithLogger(r.Context(), logger)))
		})
	})
}

func (s *Server) InitRoutes() {
	s.Router.Get("/alive", handlers.Healthcheck)

	s.Router.Route("/api/rates", func(r chi.Router) {
		r.Get("/", s.Handler.GetRates)
		r.Get("/{currency}", s.Handler.GetRate)
		r.Get("/{currency}/history", s.Handler.GetRateHistory)
	})

	s.Router.Route("/api/portfolios", func(r chi.Router) {
		r.Get("/", s.Handler.GetPortfolios)
		r.Post("/", s.Handler.CreatePortfolio)
		r.Get("/{id}", s.Handler.GetPortfolio)
		r.Put("/{id}", s.Handler.UpdatePortfolio)
		r.Delete("/{id}", s.Handler.DeletePortfolio)
	})

	s.Router.Route("/api/transactions", func(r chi.Router) {
		r.Get("/", s.Handler.ListTransactions)
		r.Post("/", s.Handler.CreateTransaction)
		r.Delete("/{id}", s.Handler.DeleteTransaction)
	})

	s.Router.Route("/api/broker-accounts", func(r chi.Router) {
		r.Get("/", s.Handler.GetBrokerAccounts)
		r.Post("/", s.Handler.RegisterBrokerAccount)
		r.Delete("/{id}", s.Handler.DeleteBrokerAccount)
		r.Post("/{id}/sync", s.Handler.SyncBrokerAccount)
		r.Get("/{id}/orders", s.Handler.GetBrokerOrders)
		r.Post("/{id}/orders", s.Handler.PlaceBrokerOrder)
	})

	s.Router.Route("/api/alerts", func(r chi.Router) {
		r.Get("/", s.Handler.GetAlerts)
		r.Post("/", s.Handler.CreateAlert)
		r.Patch("/{id}", s.Handler.SetAlertActive)
		r.Delete("/{id}", s.Handler.DeleteAlert)
		r.Get("/logs", s.Handler.GetAlertLogs)
		r.Post("/check", s.Handler.CheckAlerts)
	})

	s.Router.Get("/api/bridge/status", s.Handler.GetBridgeStatus)
}

func NewHTTPServer(server *Server, port string) *http.Server {
	return &http.Server{
		Addr:         ":" + port,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 150 * time.Second,
		Handler:      server,
	}
}
