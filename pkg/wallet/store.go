package wallet

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"

	"github.com/ninja0404/pump-swap-bot/pkg/types"
)

// Wallet is a user-owned trading wallet. The private key is stored only
// in encrypted form.
type Wallet struct {
	ID           string    `json:"id"`
	UserID       int64     `json:"user_id"`
	Label        string    `json:"label"`
	PublicKey    string    `json:"public_key"`
	EncryptedKey string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Store manages wallets per user. All lookups are scoped to the owning
// user, so one user can never reach another user's keys.
type Store interface {
	// Create generates a fresh keypair for the user.
	Create(ctx context.Context, userID int64, label string) (Wallet, error)
	// Import registers an existing base58-encoded private key.
	Import(ctx context.Context, userID int64, label, privateKey string) (Wallet, error)
	// Get fetches one wallet owned by userID.
	Get(ctx context.Context, userID int64, walletID string) (Wallet, error)
	// List returns all wallets owned by userID, oldest first.
	List(ctx context.Context, userID int64) ([]Wallet, error)
	// Delete removes one wallet owned by userID.
	Delete(ctx context.Context, userID int64, walletID string) error
	// Signer decrypts the wallet's key and returns a signer over it.
	Signer(ctx context.Context, userID int64, walletID string) (Signer, error)
}

// newWallet builds the stored form of a keypair: id assigned, key sealed.
func newWallet(cipher *Cipher, userID int64, label string, key solana.PrivateKey) (Wallet, error) {
	encrypted, err := cipher.Encrypt(key.String())
	if err != nil {
		return Wallet{}, err
	}
	return Wallet{
		ID:           uuid.NewString(),
		UserID:       userID,
		Label:        label,
		PublicKey:    key.PublicKey().String(),
		EncryptedKey: encrypted,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// generateWallet creates a brand-new keypair for Create.
func generateWallet(cipher *Cipher, userID int64, label string) (Wallet, error) {
	account := solana.NewWallet()
	return newWallet(cipher, userID, label, account.PrivateKey)
}

// importWallet validates and seals an externally supplied key.
func importWallet(cipher *Cipher, userID int64, label, privateKey string) (Wallet, error) {
	key, err := decodeKeypair(privateKey)
	if err != nil {
		return Wallet{}, err
	}
	return newWallet(cipher, userID, label, key)
}

// signerFor decrypts a stored wallet back into a usable signer.
func signerFor(cipher *Cipher, w Wallet) (Signer, error) {
	plaintext, err := cipher.Decrypt(w.EncryptedKey)
	if err != nil {
		return nil, err
	}
	signer, err := NewLocalFromBase58(plaintext)
	if err != nil {
		return nil, err
	}
	if signer.PublicKey().String() != w.PublicKey {
		// Storage and key disagree; refuse to sign with the wrong key.
		return nil, types.ErrInvalidPrivateKey
	}
	return signer, nil
}
