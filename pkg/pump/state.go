package pump

import (
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/ninja0404/pump-swap-bot/pkg/constants"
	"github.com/ninja0404/pump-swap-bot/pkg/curve"
)

// BondingCurveAccount is the on-chain bonding curve state. Account data
// carries an 8-byte anchor discriminator before these fields.
type BondingCurveAccount struct {
	VirtualTokenReserves uint64
	VirtualSolReserves   uint64
	RealTokenReserves    uint64
	RealSolReserves      uint64
	TokenTotalSupply     uint64
	Complete             bool
	Creator              solana.PublicKey
}

const bondingCurveDiscriminatorLen = 8

// DecodeBondingCurveAccount parses raw account data into the curve state.
func DecodeBondingCurveAccount(data []byte) (*BondingCurveAccount, error) {
	if len(data) < bondingCurveDiscriminatorLen {
		return nil, fmt.Errorf("bonding curve account too short: %d bytes", len(data))
	}
	var acc BondingCurveAccount
	dec := bin.NewBorshDecoder(data[bondingCurveDiscriminatorLen:])
	if err := dec.Decode(&acc); err != nil {
		return nil, fmt.Errorf("decode bonding curve account: %w", err)
	}
	return &acc, nil
}

// ToCurveState converts on-chain reserves into the float snapshot the
// price model quotes against. Virtual reserves drive pricing.
func (a *BondingCurveAccount) ToCurveState(mint solana.PublicKey) curve.State {
	solReserve := float64(a.VirtualSolReserves) / constants.LamportsPerSOL
	tokenReserve := float64(a.VirtualTokenReserves) / tokenUnitsPerWhole

	state := curve.State{
		TokenAddress: mint.String(),
		TotalSupply:  a.TokenTotalSupply,
		SolReserve:   solReserve,
		TokenReserve: tokenReserve,
	}
	state.CurrentPrice = curve.SpotPrice(state)
	return state
}

// tokenUnitsPerWhole converts base units to whole tokens for the
// configured launch decimals.
const tokenUnitsPerWhole = 1e6 // 10^TokenDecimals
