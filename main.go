package main

import (
	"errors"
	"log"
	"net/http"

	"github.com/seonhu82/Dollar-Invest/src/api"
	handlers "github.com/seonhu82/Dollar-Invest/src/api/handlers"
	"github.com/seonhu82/Dollar-Invest/src/clients/bridge"
	"github.com/seonhu82/Dollar-Invest/src/clients/erapi"
	"github.com/seonhu82/Dollar-Invest/src/clients/kis"
	"github.com/seonhu82/Dollar-Invest/src/clients/koreaexim"
	"github.com/seonhu82/Dollar-Invest/src/config"
	"github.com/seonhu82/Dollar-Invest/src/database"
	"github.com/seonhu82/Dollar-Invest/src/repositories"
	"github.com/seonhu82/Dollar-Invest/src/services"
	"github.com/seonhu82/Dollar-Invest/src/utils"
	redis_handler "github.com/seonhu82/Dollar-Invest/src/utils/redis"
)

func main() {
	cfg, err := config.LoadConfig("./settings")
	if err != nil {
		log.Println(err, "Error while loading config")
		return
	}
	errC, err := run(cfg)
	if err != nil {
		log.Println(err, "Couldn't run")
		return
	}

	if err := <-errC; err != nil {
		log.Println(err, "Error while running")
	}
}

func run(cfg *config.Config) (<-chan error, error) {
	errC := make(chan error, 1)

	logger := utils.NewLogger(utils.ParseLogLevel(cfg.Service.LogLevel))

	db, err := database.SetupDB(cfg)
	if err != nil {
		return nil, err
	}

	var cache utils.CacheHandlerI
	if cfg.Databases.Redis.Enabled {
		redisHandler, err := redis_handler.NewRedisHandler(cfg)
		if err != nil {
			return nil, err
		}
		cache = redisHandler
	} else {
		cache = utils.NewMemoryCacheHandler()
	}

	koreaEximClient := koreaexim.NewClient(cfg)
	erapiClient := erapi.NewClient(cfg)
	kisClient := kis.NewClient(cfg)
	bridgeClient := bridge.NewClient(cfg)

	rateRepo := repositories.NewExchangeRateRepository(db)
	portfolioRepo := repositories.NewPortfolioRepository(db)
	transactionRepo := repositories.NewTransactionRepository(db)
	brokerAccountRepo := repositories.NewBrokerAccountRepository(db)
	alertRepo := repositories.NewAlertRepository(db)

	rateService := services.NewRateService(koreaEximClient, erapiClient, rateRepo, cache)
	portfolioService := services.NewPortfolioService(portfolioRepo, transactionRepo, brokerAccountRepo)
	transactionService := services.NewTransactionService(db, transactionRepo, portfolioRepo)
	brokerFactory := services.NewBrokerClientFactory(bridgeClient, kisClient)
	brokerAccountService := services.NewBrokerAccountService(brokerFactory, brokerAccountRepo, portfolioRepo)
	syncService := services.NewSyncService(db, brokerFactory, brokerAccountRepo, portfolioRepo, transactionRepo)
	alertService := services.NewAlertService(alertRepo, rateService)

	handler := handlers.NewHandler(
		rateService,
		portfolioService,
		transactionService,
		brokerAccountService,
		syncService,
		alertService,
		bridgeClient,
	)

	server := api.NewServer(handler, logger)
	httpServer := api.NewHTTPServer(server, cfg.Service.Port)

	go func() {
		logger.WithField("port", cfg.Service.Port).Info("starting server")

		// "ListenAndServe always returns a non-nil error. After Shutdown or Close, the returned error is
		// ErrServerClosed."
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("an error raised while setting up server")
			errC <- err
		}
	}()
	return errC, nil
}
