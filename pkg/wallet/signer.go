// Package wallet manages per-user trading wallets: key generation and
// import, encryption at rest, and signer handout for transaction building.
//
// Private keys only ever exist in plaintext inside a Signer; everything
// that touches storage carries the encrypted form.
package wallet

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/ninja0404/pump-swap-bot/pkg/types"
)

// Signer performs detached signatures for transaction messages.
type Signer interface {
	PublicKey() solana.PublicKey
	SignMessage(ctx context.Context, message []byte) (solana.Signature, error)
}

// Local wraps an in-memory private key.
type Local struct {
	key solana.PrivateKey
}

// NewLocalFromBase58 constructs a local signer from a base58-encoded
// 64-byte keypair, the format wallets are imported in.
func NewLocalFromBase58(privateKey string) (Local, error) {
	key, err := decodeKeypair(privateKey)
	if err != nil {
		return Local{}, err
	}
	return Local{key: key}, nil
}

// NewLocalFromKeygen loads a solana-keygen JSON file.
func NewLocalFromKeygen(path string) (Local, error) {
	key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return Local{}, fmt.Errorf("load keypair: %w", err)
	}
	return Local{key: key}, nil
}

// NewLocalFromPrivateKey constructs a local signer from an existing key.
func NewLocalFromPrivateKey(key solana.PrivateKey) Local {
	return Local{key: key}
}

// PublicKey returns the associated public key.
func (l Local) PublicKey() solana.PublicKey {
	return l.key.PublicKey()
}

// SignMessage signs the provided message bytes.
func (l Local) SignMessage(ctx context.Context, message []byte) (solana.Signature, error) {
	select {
	case <-ctx.Done():
		return solana.Signature{}, ctx.Err()
	default:
		sig, err := l.key.Sign(message)
		if err != nil {
			return solana.Signature{}, fmt.Errorf("sign message: %w", err)
		}
		return sig, nil
	}
}

// decodeKeypair parses a base58 private key and enforces the ed25519
// keypair length before accepting it.
func decodeKeypair(privateKey string) (solana.PrivateKey, error) {
	key, err := solana.PrivateKeyFromBase58(privateKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidPrivateKey, err)
	}
	if len(key) != 64 {
		return nil, fmt.Errorf("%w: expected 64 bytes, got %d", types.ErrInvalidPrivateKey, len(key))
	}
	return key, nil
}
