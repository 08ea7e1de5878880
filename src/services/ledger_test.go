package services_test

import (
	"testing"
	"time"

	"github.com/seonhu82/Dollar-Invest/src/models"
	"github.com/seonhu82/Dollar-Invest/src/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyBuy(t *testing.T) {
	t.Run("first buy sets the average to the purchase rate", func(t *testing.T) {
		state := services.NewLedgerState(0, 0, 0)
		next := state.ApplyBuy(decimal.NewFromInt(100), decimal.NewFromInt(1300), decimal.Zero)

		balance, avgRate, invested := next.Floats()
		assert.Equal(t, 100.0, balance)
		assert.Equal(t, 1300.0, avgRate)
		assert.Equal(t, 130000.0, invested)
	})

	t.Run("second buy computes the weighted average", func(t *testing.T) {
		state := services.NewLedgerState(100, 1300, 130000)
		next := state.ApplyBuy(decimal.NewFromInt(100), decimal.NewFromInt(1400), decimal.Zero)

		balance, avgRate, invested := next.Floats()
		assert.Equal(t, 200.0, balance)
		assert.Equal(t, 1350.0, avgRate)
		assert.Equal(t, 270000.0, invested)
	})

	t.Run("fee increases invested but not the average", func(t *testing.T) {
		state := services.NewLedgerState(0, 0, 0)
		next := state.ApplyBuy(decimal.NewFromInt(100), decimal.NewFromInt(1300), decimal.NewFromInt(500))

		balance, avgRate, invested := next.Floats()
		assert.Equal(t, 100.0, balance)
		assert.Equal(t, 1300.0, avgRate)
		assert.Equal(t, 130500.0, invested)
	})
}

func TestApplySell(t *testing.T) {
	t.Run("sell keeps the average and shrinks invested proportionally", func(t *testing.T) {
		state := services.NewLedgerState(200, 1350, 270000)
		next, err := state.ApplySell(decimal.NewFromInt(50))
		require.NoError(t, err)

		balance, avgRate, invested := next.Floats()
		assert.Equal(t, 150.0, balance)
		assert.Equal(t, 1350.0, avgRate)
		assert.Equal(t, 202500.0, invested)
	})

	t.Run("selling the full balance zeroes invested", func(t *testing.T) {
		state := services.NewLedgerState(200, 1350, 270000)
		next, err := state.ApplySell(decimal.NewFromInt(200))
		require.NoError(t, err)

		balance, avgRate, invested := next.Floats()
		assert.Equal(t, 0.0, balance)
		assert.Equal(t, 1350.0, avgRate)
		assert.Equal(t, 0.0, invested)
	})

	t.Run("overselling is rejected", func(t *testing.T) {
		state := services.NewLedgerState(100, 1300, 130000)
		_, err := state.ApplySell(decimal.NewFromInt(101))
		assert.ErrorIs(t, err, services.ErrInsufficientBalance)
	})
}

func TestReplayLedger(t *testing.T) {
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	history := []models.Transaction{
		{Type: models.TransactionTypeBuy, Amount: 100, Rate: 1300, TradedAt: base},
		{Type: models.TransactionTypeBuy, Amount: 100, Rate: 1400, TradedAt: base.Add(24 * time.Hour)},
		{Type: models.TransactionTypeSell, Amount: 50, TradedAt: base.Add(48 * time.Hour)},
	}

	state, err := services.ReplayLedger(history)
	require.NoError(t, err)

	balance, avgRate, invested := state.Floats()
	assert.Equal(t, 150.0, balance)
	assert.Equal(t, 1350.0, avgRate)
	assert.Equal(t, 202500.0, invested)
}

func TestReplayLedgerEmptyHistory(t *testing.T) {
	state, err := services.ReplayLedger(nil)
	require.NoError(t, err)

	balance, avgRate, invested := state.Floats()
	assert.Zero(t, balance)
	assert.Zero(t, avgRate)
	assert.Zero(t, invested)
}

func TestReplayLedgerRejectsOversell(t *testing.T) {
	history := []models.Transaction{
		{Type: models.TransactionTypeBuy, Amount: 50, Rate: 1300},
		{Type: models.TransactionTypeSell, Amount: 100},
	}

	_, err := services.ReplayLedger(history)
	assert.ErrorIs(t, err, services.ErrInsufficientBalance)
}
