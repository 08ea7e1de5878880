package services_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/seonhu82/Dollar-Invest/src/models"
	"github.com/seonhu82/Dollar-Invest/src/repositories"
	"github.com/seonhu82/Dollar-Invest/src/schemas"
	"github.com/seonhu82/Dollar-Invest/src/services"
	"github.com/seonhu82/Dollar-Invest/tests/init_test"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestPortfolio(t *testing.T, repo repositories.PortfolioRepository, userID string) *models.Portfolio {
	t.Helper()
	portfolio := &models.Portfolio{
		UserID:   userID,
		Name:     "Main",
		Currency: "USD",
	}
	require.NoError(t, repo.Create(context.Background(), portfolio))
	return portfolio
}

func TestCreateTransaction(t *testing.T) {
	db := init_test.SetupTestDB(t)

	transactionRepo := repositories.NewTransactionRepository(db)
	portfolioRepo := repositories.NewPortfolioRepository(db)
	service := services.NewTransactionService(db, transactionRepo, portfolioRepo)

	ctx := context.Background()

	t.Run("buy stores fee-inclusive krw amount and updates the position", func(t *testing.T) {
		userID := fmt.Sprintf("test-user-buy-%d", time.Now().UnixNano())
		portfolio := createTestPortfolio(t, portfolioRepo, userID)

		response, err := service.CreateTransaction(ctx, userID, &schemas.CreateTransactionRequest{
			PortfolioID: portfolio.ID,
			Type:        models.TransactionTypeBuy,
			Amount:      100,
			Rate:        1300,
			Fee:         500,
		})
		require.NoError(t, err)
		assert.Equal(t, float64(130500), response.KrwAmount)

		stored, err := transactionRepo.GetByPortfolioID(ctx, portfolio.ID)
		require.NoError(t, err)
		require.Len(t, stored, 1)
		assert.Equal(t, float64(130500), stored[0].KrwAmount)

		updated, err := portfolioRepo.GetByID(ctx, portfolio.ID)
		require.NoError(t, err)
		assert.Equal(t, float64(100), updated.CurrentBalance)
		assert.Equal(t, float64(1300), updated.AvgBuyRate)
		assert.Equal(t, float64(130500), updated.TotalInvested)
	})

	t.Run("oversell is a 400 and leaves nothing behind", func(t *testing.T) {
		userID := fmt.Sprintf("test-user-oversell-%d", time.Now().UnixNano())
		portfolio := createTestPortfolio(t, portfolioRepo, userID)

		_, err := service.CreateTransaction(ctx, userID, &schemas.CreateTransactionRequest{
			PortfolioID: portfolio.ID,
			Type:        models.TransactionTypeBuy,
			Amount:      10,
			Rate:        1300,
		})
		require.NoError(t, err)

		_, err = service.CreateTransaction(ctx, userID, &schemas.CreateTransactionRequest{
			PortfolioID: portfolio.ID,
			Type:        models.TransactionTypeSell,
			Amount:      100,
			Rate:        1350,
		})
		assert.Equal(t, http.StatusBadRequest, httpStatus(t, err))

		stored, err := transactionRepo.GetByPortfolioID(ctx, portfolio.ID)
		require.NoError(t, err)
		assert.Len(t, stored, 1)

		updated, err := portfolioRepo.GetByID(ctx, portfolio.ID)
		require.NoError(t, err)
		assert.Equal(t, float64(10), updated.CurrentBalance)
	})

	t.Run("foreign portfolio is not found", func(t *testing.T) {
		userID := fmt.Sprintf("test-user-foreign-%d", time.Now().UnixNano())
		portfolio := createTestPortfolio(t, portfolioRepo, userID)

		_, err := service.CreateTransaction(ctx, "someone-else", &schemas.CreateTransactionRequest{
			PortfolioID: portfolio.ID,
			Type:        models.TransactionTypeBuy,
			Amount:      100,
			Rate:        1300,
		})
		assert.Equal(t, http.StatusNotFound, httpStatus(t, err))
	})
}

func TestDeleteTransactionReplaysHistory(t *testing.T) {
	db := init_test.SetupTestDB(t)

	transactionRepo := repositories.NewTransactionRepository(db)
	portfolioRepo := repositories.NewPortfolioRepository(db)
	service := services.NewTransactionService(db, transactionRepo, portfolioRepo)

	ctx := context.Background()
	userID := fmt.Sprintf("test-user-replay-%d", time.Now().UnixNano())
	portfolio := createTestPortfolio(t, portfolioRepo, userID)

	tradedAt := func(day int) *time.Time {
		ts := time.Date(2025, 3, day, 10, 0, 0, 0, time.UTC)
		return &ts
	}

	_, err := service.CreateTransaction(ctx, userID, &schemas.CreateTransactionRequest{
		PortfolioID: portfolio.ID,
		Type:        models.TransactionTypeBuy,
		Amount:      100,
		Rate:        1300,
		TradedAt:    tradedAt(1),
	})
	require.NoError(t, err)

	second, err := service.CreateTransaction(ctx, userID, &schemas.CreateTransactionRequest{
		PortfolioID: portfolio.ID,
		Type:        models.TransactionTypeBuy,
		Amount:      100,
		Rate:        1400,
		TradedAt:    tradedAt(2),
	})
	require.NoError(t, err)

	_, err = service.CreateTransaction(ctx, userID, &schemas.CreateTransactionRequest{
		PortfolioID: portfolio.ID,
		Type:        models.TransactionTypeSell,
		Amount:      50,
		Rate:        1450,
		TradedAt:    tradedAt(3),
	})
	require.NoError(t, err)

	require.NoError(t, service.DeleteTransaction(ctx, userID, second.ID))

	// The remaining history is buy 100 @ 1300, sell 50: the position must
	// read as if the deleted buy never happened.
	updated, err := portfolioRepo.GetByID(ctx, portfolio.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(50), updated.CurrentBalance)
	assert.Equal(t, float64(1300), updated.AvgBuyRate)
	assert.Equal(t, float64(65000), updated.TotalInvested)

	stored, err := transactionRepo.GetByPortfolioID(ctx, portfolio.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}
