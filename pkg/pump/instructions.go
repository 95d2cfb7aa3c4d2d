package pump

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/ninja0404/pump-swap-bot/pkg/constants"
)

// Anchor instruction discriminators for the launch program.
var (
	createDiscriminator = [8]byte{24, 30, 200, 40, 5, 28, 7, 119}
	buyDiscriminator    = [8]byte{102, 6, 61, 18, 1, 218, 235, 234}
	sellDiscriminator   = [8]byte{51, 230, 133, 164, 1, 127, 131, 173}
)

// CreateArgs are the borsh-encoded arguments of the create instruction.
type CreateArgs struct {
	Name    string
	Symbol  string
	URI     string
	Creator solana.PublicKey
}

// BuyArgs are the borsh-encoded arguments of the buy instruction.
type BuyArgs struct {
	Amount     uint64
	MaxSolCost uint64
}

// SellArgs are the borsh-encoded arguments of the sell instruction.
type SellArgs struct {
	Amount       uint64
	MinSolOutput uint64
}

// DeriveBondingCurve returns the bonding curve PDA for a mint.
func DeriveBondingCurve(programID, mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte(constants.SeedBondingCurve), mint.Bytes()},
		programID,
	)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive bonding curve: %w", err)
	}
	return addr, nil
}

// DeriveGlobal returns the program's global state PDA.
func DeriveGlobal(programID solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte(constants.SeedGlobal)},
		programID,
	)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive global: %w", err)
	}
	return addr, nil
}

// DeriveMintAuthority returns the program's mint authority PDA.
func DeriveMintAuthority(programID solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte(constants.SeedMintAuthority)},
		programID,
	)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive mint authority: %w", err)
	}
	return addr, nil
}

// DeriveEventAuthority returns the program's event authority PDA.
func DeriveEventAuthority(programID solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte(constants.SeedEventAuthority)},
		programID,
	)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive event authority: %w", err)
	}
	return addr, nil
}

// encodeArgs serializes a discriminator plus borsh-encoded args into
// instruction data.
func encodeArgs(discriminator [8]byte, args interface{}) ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Write(discriminator[:])
	if err := bin.NewBorshEncoder(buf).Encode(args); err != nil {
		return nil, fmt.Errorf("encode args: %w", err)
	}
	return buf.Bytes(), nil
}

// BuildCreate assembles the create instruction that initializes the mint
// metadata and bonding curve for a new launch.
func BuildCreate(programID, mint, mintAuthority, bondingCurve, associatedBondingCurve, global, user solana.PublicKey, args CreateArgs) (solana.Instruction, error) {
	data, err := encodeArgs(createDiscriminator, args)
	if err != nil {
		return nil, err
	}

	eventAuthority, err := DeriveEventAuthority(programID)
	if err != nil {
		return nil, err
	}

	metadata, _, err := solana.FindTokenMetadataAddress(mint)
	if err != nil {
		return nil, fmt.Errorf("derive metadata: %w", err)
	}

	accounts := solana.AccountMetaSlice{
		solana.Meta(mint).WRITE().SIGNER(),
		solana.Meta(mintAuthority),
		solana.Meta(bondingCurve).WRITE(),
		solana.Meta(associatedBondingCurve).WRITE(),
		solana.Meta(global),
		solana.Meta(constants.MetadataProgramID),
		solana.Meta(metadata).WRITE(),
		solana.Meta(user).WRITE().SIGNER(),
		solana.Meta(constants.SystemProgramID),
		solana.Meta(constants.TokenProgramID),
		solana.Meta(constants.AssociatedTokenProgramID),
		solana.Meta(constants.SysvarRentProgramID),
		solana.Meta(eventAuthority),
		solana.Meta(programID),
	}
	return solana.NewInstruction(programID, accounts, data), nil
}

// BuildBuy assembles the buy instruction: amount tokens out for at most
// MaxSolCost lamports in.
func BuildBuy(programID, feeRecipient, mint, bondingCurve, associatedBondingCurve, associatedUser, user, creatorVault solana.PublicKey, args BuyArgs) (solana.Instruction, error) {
	data, err := encodeArgs(buyDiscriminator, args)
	if err != nil {
		return nil, err
	}

	global, err := DeriveGlobal(programID)
	if err != nil {
		return nil, err
	}
	eventAuthority, err := DeriveEventAuthority(programID)
	if err != nil {
		return nil, err
	}

	accounts := solana.AccountMetaSlice{
		solana.Meta(global),
		solana.Meta(feeRecipient).WRITE(),
		solana.Meta(mint),
		solana.Meta(bondingCurve).WRITE(),
		solana.Meta(associatedBondingCurve).WRITE(),
		solana.Meta(associatedUser).WRITE(),
		solana.Meta(user).WRITE().SIGNER(),
		solana.Meta(constants.SystemProgramID),
		solana.Meta(constants.TokenProgramID),
		solana.Meta(creatorVault).WRITE(),
		solana.Meta(eventAuthority),
		solana.Meta(programID),
	}
	return solana.NewInstruction(programID, accounts, data), nil
}

// BuildSell assembles the sell instruction: Amount tokens in for at least
// MinSolOutput lamports out.
func BuildSell(programID, feeRecipient, mint, bondingCurve, associatedBondingCurve, associatedUser, user, creatorVault solana.PublicKey, args SellArgs) (solana.Instruction, error) {
	data, err := encodeArgs(sellDiscriminator, args)
	if err != nil {
		return nil, err
	}

	global, err := DeriveGlobal(programID)
	if err != nil {
		return nil, err
	}
	eventAuthority, err := DeriveEventAuthority(programID)
	if err != nil {
		return nil, err
	}

	accounts := solana.AccountMetaSlice{
		solana.Meta(global),
		solana.Meta(feeRecipient).WRITE(),
		solana.Meta(mint),
		solana.Meta(bondingCurve).WRITE(),
		solana.Meta(associatedBondingCurve).WRITE(),
		solana.Meta(associatedUser).WRITE(),
		solana.Meta(user).WRITE().SIGNER(),
		solana.Meta(constants.SystemProgramID),
		solana.Meta(creatorVault).WRITE(),
		solana.Meta(constants.TokenProgramID),
		solana.Meta(eventAuthority),
		solana.Meta(programID),
	}
	return solana.NewInstruction(programID, accounts, data), nil
}
