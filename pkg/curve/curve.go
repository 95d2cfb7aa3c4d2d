// Package curve implements the constant-product bonding-curve price model
// used to quote buy and sell amounts before a bundle is built.
//
// All functions are pure: they take a reserve snapshot and a trade size and
// return fresh values, so they are safe to call concurrently without
// synchronization. State is fetched fresh per quote and never mutated here.
package curve

import (
	"github.com/ninja0404/pump-swap-bot/pkg/types"
)

// State is a point-in-time snapshot of a token's bonding curve.
type State struct {
	TokenAddress string  `json:"token_address"`
	CurrentPrice float64 `json:"current_price"`
	TotalSupply  uint64  `json:"total_supply"`
	SolReserve   float64 `json:"sol_reserve"`
	TokenReserve float64 `json:"token_reserve"`
}

// Quote is the result of pricing one leg of a trade against a State.
type Quote struct {
	// AmountOut is the counter-leg amount after the trading fee.
	AmountOut float64
	// RawAmount is the counter-leg amount before the fee.
	RawAmount float64
	// Fee is the absolute fee taken (or added, on the sell side).
	Fee float64
}

// Model prices trades against reserve snapshots with a flat trading fee.
// The fee rate is fixed for the process lifetime.
type Model struct {
	tradingFee float64
}

// NewModel constructs a model with the given fractional fee rate
// (e.g. 0.005 for 0.5%).
func NewModel(tradingFee float64) (*Model, error) {
	if tradingFee < 0 || tradingFee >= 1 {
		return nil, types.NewValidationError("tradingFee", "must be in [0, 1)")
	}
	return &Model{tradingFee: tradingFee}, nil
}

// TradingFee returns the configured fractional fee rate.
func (m *Model) TradingFee() float64 {
	return m.tradingFee
}

// TokensForSol quotes the token amount received for spending solIn SOL.
//
// The constant product k = solReserve * tokenReserve is conserved across
// the swap; the flat trading fee is then subtracted from the token leg.
func (m *Model) TokensForSol(solIn float64, state State) (Quote, error) {
	if solIn <= 0 {
		return Quote{}, types.NewValidationError("solIn", "must be greater than 0")
	}
	if err := checkReserves(state); err != nil {
		return Quote{}, err
	}

	k := state.SolReserve * state.TokenReserve
	newSolReserve := state.SolReserve + solIn
	newTokenReserve := k / newSolReserve

	rawTokens := state.TokenReserve - newTokenReserve
	fee := rawTokens * m.tradingFee
	return Quote{
		AmountOut: rawTokens - fee,
		RawAmount: rawTokens,
		Fee:       fee,
	}, nil
}

// SolForTokens quotes the SOL amount for selling tokensIn tokens.
//
// The fee convention is asymmetric on purpose: selling adds the fee to the
// SOL leg instead of subtracting it from proceeds. Callers display the fee
// via FeeBreakdown so the convention is visible.
func (m *Model) SolForTokens(tokensIn float64, state State) (Quote, error) {
	if tokensIn <= 0 {
		return Quote{}, types.NewValidationError("tokensIn", "must be greater than 0")
	}
	if err := checkReserves(state); err != nil {
		return Quote{}, err
	}
	newTokenReserve := state.TokenReserve - tokensIn
	if newTokenReserve <= 0 {
		return Quote{}, types.ErrInsufficientLiquidity
	}

	k := state.SolReserve * state.TokenReserve
	newSolReserve := k / newTokenReserve

	rawSol := newSolReserve - state.SolReserve
	fee := rawSol * m.tradingFee
	return Quote{
		AmountOut: rawSol + fee,
		RawAmount: rawSol,
		Fee:       fee,
	}, nil
}

// SpotPrice returns the instantaneous SOL-per-token price of the curve.
func SpotPrice(state State) float64 {
	if state.TokenReserve == 0 {
		return 0
	}
	return state.SolReserve / state.TokenReserve
}

// FeeBreakdown expands a quoted amount into the display form used by the
// command layer.
func (m *Model) FeeBreakdown(q Quote) types.FeeCalculation {
	return types.FeeCalculation{
		BaseAmount:    q.RawAmount,
		FeeAmount:     q.Fee,
		TotalAmount:   q.AmountOut,
		FeePercentage: m.tradingFee * 100,
	}
}

func checkReserves(state State) error {
	if state.SolReserve <= 0 {
		return types.NewValidationError("solReserve", "must be greater than 0")
	}
	if state.TokenReserve <= 0 {
		return types.NewValidationError("tokenReserve", "must be greater than 0")
	}
	return nil
}
