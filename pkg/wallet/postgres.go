package wallet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/ninja0404/pump-swap-bot/pkg/types"
)

// PostgresStore persists wallets in Postgres.
type PostgresStore struct {
	db     *sql.DB
	cipher *Cipher
}

// NewPostgresStore connects to the database and ensures the schema
// exists.
func NewPostgresStore(connStr string, cipher *Cipher) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &PostgresStore{db: db, cipher: cipher}
	if err := s.initTables(); err != nil {
		return nil, fmt.Errorf("failed to initialize tables: %w", err)
	}
	return s, nil
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Create implements Store.
func (s *PostgresStore) Create(ctx context.Context, userID int64, label string) (Wallet, error) {
	w, err := generateWallet(s.cipher, userID, label)
	if err != nil {
		return Wallet{}, err
	}
	return w, s.insert(ctx, w)
}

// Import implements Store.
func (s *PostgresStore) Import(ctx context.Context, userID int64, label, privateKey string) (Wallet, error) {
	w, err := importWallet(s.cipher, userID, label, privateKey)
	if err != nil {
		return Wallet{}, err
	}
	return w, s.insert(ctx, w)
}

// Get implements Store.
func (s *PostgresStore) Get(ctx context.Context, userID int64, walletID string) (Wallet, error) {
	query := `
        SELECT id, user_id, label, public_key, encrypted_key, created_at
        FROM wallets
        WHERE user_id = $1 AND id = $2
    `
	var w Wallet
	err := s.db.QueryRowContext(ctx, query, userID, walletID).Scan(
		&w.ID, &w.UserID, &w.Label, &w.PublicKey, &w.EncryptedKey, &w.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Wallet{}, types.ErrWalletNotFound
	}
	if err != nil {
		return Wallet{}, fmt.Errorf("failed to get wallet: %w", err)
	}
	return w, nil
}

// List implements Store.
func (s *PostgresStore) List(ctx context.Context, userID int64) ([]Wallet, error) {
	query := `
        SELECT id, user_id, label, public_key, encrypted_key, created_at
        FROM wallets
        WHERE user_id = $1
        ORDER BY created_at ASC
    `
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query wallets: %w", err)
	}
	defer rows.Close()

	var wallets []Wallet
	for rows.Next() {
		var w Wallet
		if err := rows.Scan(&w.ID, &w.UserID, &w.Label, &w.PublicKey, &w.EncryptedKey, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan wallet: %w", err)
		}
		wallets = append(wallets, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wallet rows: %w", err)
	}
	return wallets, nil
}

// Delete implements Store.
func (s *PostgresStore) Delete(ctx context.Context, userID int64, walletID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM wallets WHERE user_id = $1 AND id = $2`, userID, walletID)
	if err != nil {
		return fmt.Errorf("failed to delete wallet: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete wallet: %w", err)
	}
	if affected == 0 {
		return types.ErrWalletNotFound
	}
	return nil
}

// Signer implements Store.
func (s *PostgresStore) Signer(ctx context.Context, userID int64, walletID string) (Signer, error) {
	w, err := s.Get(ctx, userID, walletID)
	if err != nil {
		return nil, err
	}
	return signerFor(s.cipher, w)
}

func (s *PostgresStore) insert(ctx context.Context, w Wallet) error {
	query := `
        INSERT INTO wallets (id, user_id, label, public_key, encrypted_key, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `
	_, err := s.db.ExecContext(ctx, query,
		w.ID, w.UserID, w.Label, w.PublicKey, w.EncryptedKey, w.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save wallet: %w", err)
	}
	return nil
}

func (s *PostgresStore) initTables() error {
	query := `
        CREATE TABLE IF NOT EXISTS wallets (
            id VARCHAR(36) PRIMARY KEY,
            user_id BIGINT NOT NULL,
            label VARCHAR(100),
            public_key VARCHAR(64) NOT NULL,
            encrypted_key TEXT NOT NULL,
            created_at TIMESTAMP NOT NULL DEFAULT NOW(),
            UNIQUE (user_id, public_key)
        )
    `
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to execute query: %w", err)
	}
	if _, err := s.db.Exec(`CREATE INDEX IF NOT EXISTS wallets_user_idx ON wallets (user_id)`); err != nil {
		return fmt.Errorf("failed to execute query: %w", err)
	}
	return nil
}
