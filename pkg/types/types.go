// Package types holds the domain types shared across the bot: token
// metadata, trade requests, transaction results, and the closed error
// taxonomy used at every boundary.
package types

// TokenMetadata describes a token to be created on the launch platform.
// Immutable once validated.
type TokenMetadata struct {
	Name         string `json:"name"`
	Symbol       string `json:"symbol"`
	Description  string `json:"description"`
	ImageURL     string `json:"image_url"`
	TelegramLink string `json:"telegram_link,omitempty"`
	TwitterLink  string `json:"twitter_link,omitempty"`
}

// CreateTokenRequest is the inbound token-creation contract.
type CreateTokenRequest struct {
	Metadata TokenMetadata `json:"metadata"`
	UserID   int64         `json:"user_id"`
	WalletID string        `json:"wallet_id"`
}

// BuyRequest bundles one buy transaction per wallet.
type BuyRequest struct {
	TokenAddress string    `json:"tokenAddress"`
	SolAmounts   []float64 `json:"solAmounts"`
	WalletIDs    []string  `json:"walletIds"`
	UserID       int64     `json:"userId"`
}

// SellRequest bundles one sell transaction per wallet.
type SellRequest struct {
	TokenAddress string    `json:"tokenAddress"`
	TokenAmounts []uint64  `json:"tokenAmounts"`
	WalletIDs    []string  `json:"walletIds"`
	UserID       int64     `json:"userId"`
}

// TransactionResult is the uniform outcome of create/buy/sell operations.
type TransactionResult struct {
	Success      bool    `json:"success"`
	Signature    string  `json:"signature,omitempty"`
	BundleID     string  `json:"bundle_id,omitempty"`
	TokenAddress string  `json:"token_address,omitempty"`
	Error        string  `json:"error,omitempty"`
	FeePaid      float64 `json:"fee_paid,omitempty"`
}

// FeeCalculation breaks a trade amount down for user-facing display.
type FeeCalculation struct {
	BaseAmount    float64 `json:"base_amount"`
	FeeAmount     float64 `json:"fee_amount"`
	TotalAmount   float64 `json:"total_amount"`
	FeePercentage float64 `json:"fee_percentage"`
}

// ValidationResult collects all rule violations instead of stopping at
// the first one.
type ValidationResult struct {
	IsValid  bool     `json:"is_valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// NewValidationResult returns an empty, valid result.
func NewValidationResult() *ValidationResult {
	return &ValidationResult{IsValid: true}
}

// AddError records a violation and marks the result invalid.
func (v *ValidationResult) AddError(msg string) {
	v.IsValid = false
	v.Errors = append(v.Errors, msg)
}

// AddWarning records a non-fatal finding.
func (v *ValidationResult) AddWarning(msg string) {
	v.Warnings = append(v.Warnings, msg)
}
