package services

import (
	"errors"

	"github.com/seonhu82/Dollar-Invest/src/models"

	"github.com/shopspring/decimal"
)

// ErrInsufficientBalance is returned when a sell exceeds the portfolio's
// foreign-currency balance.
var ErrInsufficientBalance = errors.New("sell amount exceeds portfolio balance")

// LedgerState is the running weighted-average-cost position of a portfolio.
// All arithmetic runs on decimals; callers convert to float64 only at the
// storage and HTTP boundaries.
type LedgerState struct {
	Balance       decimal.Decimal
	AvgBuyRate    decimal.Decimal
	TotalInvested decimal.Decimal
}

func NewLedgerState(balance, avgBuyRate, totalInvested float64) LedgerState {
	return LedgerState{
		Balance:       decimal.NewFromFloat(balance),
		AvgBuyRate:    decimal.NewFromFloat(avgBuyRate),
		TotalInvested: decimal.NewFromFloat(totalInvested),
	}
}

// ApplyBuy folds a buy into the position. The new average rate is the
// amount-weighted mean of the old position and the purchase; fees increase
// invested principal but not the average rate.
func (s LedgerState) ApplyBuy(amount, rate, fee decimal.Decimal) LedgerState {
	newBalance := s.Balance.Add(amount)

	var newAvg decimal.Decimal
	if newBalance.IsZero() {
		newAvg = rate
	} else {
		newAvg = s.Balance.Mul(s.AvgBuyRate).Add(amount.Mul(rate)).Div(newBalance)
	}

	return LedgerState{
		Balance:       newBalance,
		AvgBuyRate:    newAvg,
		TotalInvested: s.TotalInvested.Add(amount.Mul(rate)).Add(fee),
	}
}

// ApplySell reduces the position. The average rate never changes on a sell;
// invested principal shrinks proportionally to the balance sold so that the
// remaining principal still reflects the remaining position's cost basis.
func (s LedgerState) ApplySell(amount decimal.Decimal) (LedgerState, error) {
	if amount.GreaterThan(s.Balance) {
		return LedgerState{}, ErrInsufficientBalance
	}

	newBalance := s.Balance.Sub(amount)

	var newInvested decimal.Decimal
	if newBalance.IsZero() {
		newInvested = decimal.Zero
	} else {
		newInvested = s.TotalInvested.Mul(newBalance).Div(s.Balance)
	}

	return LedgerState{
		Balance:       newBalance,
		AvgBuyRate:    s.AvgBuyRate,
		TotalInvested: newInvested,
	}, nil
}

// Apply dispatches a single transaction against the state.
func (s LedgerState) Apply(t *models.Transaction) (LedgerState, error) {
	amount := decimal.NewFromFloat(t.Amount)
	switch t.Type {
	case models.TransactionTypeBuy:
		return s.ApplyBuy(amount, decimal.NewFromFloat(t.Rate), decimal.NewFromFloat(t.Fee)), nil
	case models.TransactionTypeSell:
		return s.ApplySell(amount)
	default:
		return LedgerState{}, errors.New("unknown transaction type: " + t.Type)
	}
}

// ReplayLedger rebuilds a position from scratch by folding transactions in
// trade order. Used after deletions, where incremental updates cannot unwind
// the weighted average.
func ReplayLedger(transactions []models.Transaction) (LedgerState, error) {
	state := LedgerState{
		Balance:       decimal.Zero,
		AvgBuyRate:    decimal.Zero,
		TotalInvested: decimal.Zero,
	}
	for i := range transactions {
		next, err := state.Apply(&transactions[i])
		if err != nil {
			return LedgerState{}, err
		}
		state = next
	}
	return state, nil
}

// Floats returns the position rounded for storage as double precision.
func (s LedgerState) Floats() (balance, avgBuyRate, totalInvested float64) {
	balance, _ = s.Balance.Float64()
	avgBuyRate, _ = s.AvgBuyRate.Float64()
	totalInvested, _ = s.TotalInvested.Float64()
	return balance, avgBuyRate, totalInvested
}
