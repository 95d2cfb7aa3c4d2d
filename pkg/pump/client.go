// Package pump orchestrates launches and bundled trades against the
// pump.fun bonding curve program: token creation, multi-wallet buy and
// sell bundles, and on-chain curve state reads.
package pump

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/rs/zerolog"

	"github.com/ninja0404/pump-swap-bot/pkg/bundle"
	"github.com/ninja0404/pump-swap-bot/pkg/config"
	"github.com/ninja0404/pump-swap-bot/pkg/constants"
	"github.com/ninja0404/pump-swap-bot/pkg/curve"
	"github.com/ninja0404/pump-swap-bot/pkg/rpc"
	"github.com/ninja0404/pump-swap-bot/pkg/txbuilder"
	"github.com/ninja0404/pump-swap-bot/pkg/types"
	"github.com/ninja0404/pump-swap-bot/pkg/vanity"
	"github.com/ninja0404/pump-swap-bot/pkg/wallet"
)

// defaultSlippage pads the on-chain limit legs so quotes survive small
// reserve drift between quoting and landing.
const defaultSlippage = 0.01

// Client executes launch-platform operations on behalf of users.
type Client struct {
	cfg        config.App
	programID  solana.PublicKey
	feeAddress solana.PublicKey

	rpc     *rpc.Client
	builder *txbuilder.Builder
	bundles *bundle.Client
	wallets wallet.Store
	model   *curve.Model
	policy  types.MetadataPolicy

	vanitySuffix  string
	vanityTimeout time.Duration
	submitRetries int
	log           zerolog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithLogger attaches a logger. The default is a no-op logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithVanitySuffix makes CreateToken grind mint addresses ending in the
// given suffix, falling back to a random keypair when the search times
// out.
func WithVanitySuffix(suffix string, timeout time.Duration) Option {
	return func(c *Client) {
		c.vanitySuffix = suffix
		if timeout > 0 {
			c.vanityTimeout = timeout
		}
	}
}

// WithSubmitRetries sets how many bundle submission attempts are made
// before giving up.
func WithSubmitRetries(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.submitRetries = n
		}
	}
}

// NewClient wires the launch client from its dependencies.
func NewClient(cfg config.App, rpcClient *rpc.Client, bundles *bundle.Client, wallets wallet.Store, opts ...Option) (*Client, error) {
	if rpcClient == nil {
		return nil, types.ErrNilRPC
	}
	if bundles == nil {
		return nil, types.ErrNilRelay
	}

	programID, err := solana.PublicKeyFromBase58(cfg.PumpFunProgramID)
	if err != nil {
		return nil, fmt.Errorf("%w: program id %q", types.ErrInvalidPublicKey, cfg.PumpFunProgramID)
	}
	feeAddress, err := solana.PublicKeyFromBase58(cfg.FeeAddress)
	if err != nil {
		return nil, fmt.Errorf("%w: fee address %q", types.ErrInvalidPublicKey, cfg.FeeAddress)
	}

	model, err := curve.NewModel(cfg.TradingFee)
	if err != nil {
		return nil, err
	}

	c := &Client{
		cfg:           cfg,
		programID:     programID,
		feeAddress:    feeAddress,
		rpc:           rpcClient,
		builder:       txbuilder.NewBuilder(rpcClient, rpcClient.Commitment()),
		bundles:       bundles,
		wallets:       wallets,
		model:         model,
		policy:        types.MetadataPolicy{RequireSocialLinks: cfg.RequireSocialLinks},
		vanityTimeout: 30 * time.Second,
		submitRetries: 3,
		log:           zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Model exposes the price model for quote rendering.
func (c *Client) Model() *curve.Model {
	return c.model
}

// ValidateTokenMetadata checks metadata against the configured policy.
func (c *Client) ValidateTokenMetadata(md types.TokenMetadata) *types.ValidationResult {
	return types.ValidateMetadata(md, c.policy)
}

// CreateToken validates metadata, checks the creator wallet's balance,
// and submits the launch transaction. The platform creation fee is
// transferred in the same transaction as the curve initialization, so a
// failed launch never collects a fee.
func (c *Client) CreateToken(ctx context.Context, req types.CreateTokenRequest) (*types.TransactionResult, error) {
	if vr := c.ValidateTokenMetadata(req.Metadata); !vr.IsValid {
		return nil, types.NewValidationError("metadata", strings.Join(vr.Errors, "; "))
	}

	creator, err := c.wallets.Signer(ctx, req.UserID, req.WalletID)
	if err != nil {
		return nil, err
	}

	balance, err := c.rpc.GetBalance(ctx, creator.PublicKey())
	if err != nil {
		return nil, fmt.Errorf("check balance: %w", err)
	}
	required := solToLamports(c.cfg.CreationFee + c.cfg.MinSolAmount)
	if balance < required {
		return nil, fmt.Errorf("%w: need %d lamports, have %d", types.ErrInsufficientBalance, required, balance)
	}

	mintKey, err := c.newMintKeypair(ctx)
	if err != nil {
		return nil, err
	}
	mintSigner := wallet.NewLocalFromPrivateKey(mintKey)
	mint := mintSigner.PublicKey()

	global, err := DeriveGlobal(c.programID)
	if err != nil {
		return nil, err
	}
	mintAuthority, err := DeriveMintAuthority(c.programID)
	if err != nil {
		return nil, err
	}
	bondingCurve, err := DeriveBondingCurve(c.programID, mint)
	if err != nil {
		return nil, err
	}
	associatedBondingCurve, _, err := solana.FindAssociatedTokenAddress(bondingCurve, mint)
	if err != nil {
		return nil, fmt.Errorf("derive curve token account: %w", err)
	}

	createIx, err := BuildCreate(c.programID, mint, mintAuthority, bondingCurve, associatedBondingCurve, global, creator.PublicKey(), CreateArgs{
		Name:    req.Metadata.Name,
		Symbol:  req.Metadata.Symbol,
		URI:     req.Metadata.ImageURL,
		Creator: creator.PublicKey(),
	})
	if err != nil {
		return nil, err
	}
	feeIx := txbuilder.TransferInstruction(creator.PublicKey(), c.feeAddress, solToLamports(c.cfg.CreationFee))

	tx, err := c.builder.BuildSigned(ctx, creator, []wallet.Signer{mintSigner}, createIx, feeIx)
	if err != nil {
		return nil, err
	}

	sig, err := c.builder.SendAndConfirm(ctx, tx, txbuilder.ConfirmationConfirmed)
	if err != nil {
		return nil, fmt.Errorf("launch transaction: %w", err)
	}

	c.log.Info().
		Str("mint", mint.String()).
		Str("signature", sig.String()).
		Int64("user_id", req.UserID).
		Msg("token created")

	return &types.TransactionResult{
		Success:      true,
		Signature:    sig.String(),
		TokenAddress: mint.String(),
		FeePaid:      c.cfg.CreationFee,
	}, nil
}

// BuyTokens builds one buy transaction per wallet and submits them as a
// single atomic bundle. The relay tip rides in the first transaction.
func (c *Client) BuyTokens(ctx context.Context, req types.BuyRequest) (*types.TransactionResult, error) {
	if err := c.validateBatch(len(req.SolAmounts), len(req.WalletIDs)); err != nil {
		return nil, err
	}
	for i, amount := range req.SolAmounts {
		if amount < c.cfg.MinSolAmount {
			return nil, types.NewValidationError("solAmounts",
				fmt.Sprintf("amount %d is below the minimum of %g SOL", i, c.cfg.MinSolAmount))
		}
	}

	mint, err := solana.PublicKeyFromBase58(req.TokenAddress)
	if err != nil {
		return nil, fmt.Errorf("%w: token address %q", types.ErrInvalidPublicKey, req.TokenAddress)
	}

	acc, state, err := c.curveAccount(ctx, mint)
	if err != nil {
		return nil, err
	}
	bondingCurve, err := DeriveBondingCurve(c.programID, mint)
	if err != nil {
		return nil, err
	}
	associatedBondingCurve, _, err := solana.FindAssociatedTokenAddress(bondingCurve, mint)
	if err != nil {
		return nil, fmt.Errorf("derive curve token account: %w", err)
	}
	creatorVault, err := c.deriveCreatorVault(acc.Creator)
	if err != nil {
		return nil, err
	}

	var (
		txs         []string
		platformFee float64
	)
	for i, walletID := range req.WalletIDs {
		signer, err := c.wallets.Signer(ctx, req.UserID, walletID)
		if err != nil {
			return nil, fmt.Errorf("wallet %s: %w", walletID, err)
		}
		user := signer.PublicKey()
		solAmount := req.SolAmounts[i]

		quote, err := c.model.TokensForSol(solAmount, state)
		if err != nil {
			return nil, err
		}

		associatedUser, _, err := solana.FindAssociatedTokenAddress(user, mint)
		if err != nil {
			return nil, fmt.Errorf("derive user token account: %w", err)
		}

		var instrs []solana.Instruction
		exists, err := c.accountExists(ctx, associatedUser)
		if err != nil {
			return nil, err
		}
		if !exists {
			instrs = append(instrs, associatedtokenaccount.NewCreateInstruction(user, user, mint).Build())
		}

		buyIx, err := BuildBuy(c.programID, c.feeAddress, mint, bondingCurve, associatedBondingCurve, associatedUser, user, creatorVault, BuyArgs{
			Amount:     tokensToUnits(quote.AmountOut),
			MaxSolCost: solToLamports(solAmount * (1 + defaultSlippage)),
		})
		if err != nil {
			return nil, err
		}
		instrs = append(instrs, buyIx)

		feeLamports := solToLamports(solAmount * c.cfg.FeePercentage)
		if feeLamports > 0 {
			instrs = append(instrs, txbuilder.TransferInstruction(user, c.feeAddress, feeLamports))
			platformFee += solAmount * c.cfg.FeePercentage
		}
		if i == 0 {
			instrs = append(instrs, c.tipInstruction(user))
		}

		tx, err := c.builder.BuildSigned(ctx, signer, nil, instrs...)
		if err != nil {
			return nil, err
		}
		encoded, err := txbuilder.EncodeBase64(tx)
		if err != nil {
			return nil, err
		}
		txs = append(txs, encoded)
	}

	return c.submitBundle(ctx, txs, platformFee, "buy")
}

// SellTokens builds one sell transaction per wallet and submits them as
// a single atomic bundle. Token amounts are in base units.
func (c *Client) SellTokens(ctx context.Context, req types.SellRequest) (*types.TransactionResult, error) {
	if err := c.validateBatch(len(req.TokenAmounts), len(req.WalletIDs)); err != nil {
		return nil, err
	}
	for i, amount := range req.TokenAmounts {
		if amount == 0 {
			return nil, types.NewValidationError("tokenAmounts",
				fmt.Sprintf("amount %d must be greater than 0", i))
		}
	}

	mint, err := solana.PublicKeyFromBase58(req.TokenAddress)
	if err != nil {
		return nil, fmt.Errorf("%w: token address %q", types.ErrInvalidPublicKey, req.TokenAddress)
	}

	acc, state, err := c.curveAccount(ctx, mint)
	if err != nil {
		return nil, err
	}
	bondingCurve, err := DeriveBondingCurve(c.programID, mint)
	if err != nil {
		return nil, err
	}
	associatedBondingCurve, _, err := solana.FindAssociatedTokenAddress(bondingCurve, mint)
	if err != nil {
		return nil, fmt.Errorf("derive curve token account: %w", err)
	}
	creatorVault, err := c.deriveCreatorVault(acc.Creator)
	if err != nil {
		return nil, err
	}

	var txs []string
	for i, walletID := range req.WalletIDs {
		signer, err := c.wallets.Signer(ctx, req.UserID, walletID)
		if err != nil {
			return nil, fmt.Errorf("wallet %s: %w", walletID, err)
		}
		user := signer.PublicKey()
		tokenUnits := req.TokenAmounts[i]

		quote, err := c.model.SolForTokens(unitsToTokens(tokenUnits), state)
		if err != nil {
			return nil, err
		}

		associatedUser, _, err := solana.FindAssociatedTokenAddress(user, mint)
		if err != nil {
			return nil, fmt.Errorf("derive user token account: %w", err)
		}

		sellIx, err := BuildSell(c.programID, c.feeAddress, mint, bondingCurve, associatedBondingCurve, associatedUser, user, creatorVault, SellArgs{
			Amount:       tokenUnits,
			MinSolOutput: solToLamports(quote.RawAmount * (1 - defaultSlippage)),
		})
		if err != nil {
			return nil, err
		}
		instrs := []solana.Instruction{sellIx}
		if i == 0 {
			instrs = append(instrs, c.tipInstruction(user))
		}

		tx, err := c.builder.BuildSigned(ctx, signer, nil, instrs...)
		if err != nil {
			return nil, err
		}
		encoded, err := txbuilder.EncodeBase64(tx)
		if err != nil {
			return nil, err
		}
		txs = append(txs, encoded)
	}

	return c.submitBundle(ctx, txs, 0, "sell")
}

// BondingCurveState fetches and decodes a token's curve reserves.
func (c *Client) BondingCurveState(ctx context.Context, tokenAddress string) (curve.State, error) {
	mint, err := solana.PublicKeyFromBase58(tokenAddress)
	if err != nil {
		return curve.State{}, fmt.Errorf("%w: token address %q", types.ErrInvalidPublicKey, tokenAddress)
	}
	_, state, err := c.curveAccount(ctx, mint)
	return state, err
}

// QuoteBuy prices a buy of solAmount SOL against the live curve.
func (c *Client) QuoteBuy(ctx context.Context, tokenAddress string, solAmount float64) (curve.Quote, types.FeeCalculation, error) {
	state, err := c.BondingCurveState(ctx, tokenAddress)
	if err != nil {
		return curve.Quote{}, types.FeeCalculation{}, err
	}
	q, err := c.model.TokensForSol(solAmount, state)
	if err != nil {
		return curve.Quote{}, types.FeeCalculation{}, err
	}
	return q, c.model.FeeBreakdown(q), nil
}

// QuoteSell prices a sale of tokenAmount whole tokens against the live
// curve.
func (c *Client) QuoteSell(ctx context.Context, tokenAddress string, tokenAmount float64) (curve.Quote, types.FeeCalculation, error) {
	state, err := c.BondingCurveState(ctx, tokenAddress)
	if err != nil {
		return curve.Quote{}, types.FeeCalculation{}, err
	}
	q, err := c.model.SolForTokens(tokenAmount, state)
	if err != nil {
		return curve.Quote{}, types.FeeCalculation{}, err
	}
	return q, c.model.FeeBreakdown(q), nil
}

// BundleStatus polls the relay for a bundle's lifecycle state.
func (c *Client) BundleStatus(ctx context.Context, bundleID string) (*bundle.Bundle, error) {
	return c.bundles.GetBundleStatus(ctx, bundleID)
}

func (c *Client) validateBatch(amounts, walletIDs int) error {
	if amounts == 0 {
		return types.NewValidationError("amounts", "at least one amount is required")
	}
	if amounts != walletIDs {
		return types.NewValidationError("walletIds",
			fmt.Sprintf("got %d amounts for %d wallets", amounts, walletIDs))
	}
	if amounts > c.cfg.MaxWalletsPerBundle {
		return types.NewValidationError("walletIds",
			fmt.Sprintf("maximum %d wallets allowed per bundle", c.cfg.MaxWalletsPerBundle))
	}
	return nil
}

func (c *Client) submitBundle(ctx context.Context, txs []string, platformFee float64, op string) (*types.TransactionResult, error) {
	b, err := c.bundles.SubmitBundleWithRetry(ctx, txs, c.submitRetries)
	if err != nil {
		result := &types.TransactionResult{Success: false, Error: err.Error()}
		if b != nil {
			result.BundleID = b.ID
		}
		return result, err
	}

	c.log.Info().
		Str("op", op).
		Str("bundle_id", b.ID).
		Int("txs", len(txs)).
		Msg("bundle submitted")

	return &types.TransactionResult{
		Success:  true,
		BundleID: b.ID,
		FeePaid:  platformFee + c.bundles.CalculateBundleFee(len(txs)),
	}, nil
}

func (c *Client) curveAccount(ctx context.Context, mint solana.PublicKey) (*BondingCurveAccount, curve.State, error) {
	pda, err := DeriveBondingCurve(c.programID, mint)
	if err != nil {
		return nil, curve.State{}, err
	}
	info, err := c.rpc.GetAccountInfo(ctx, pda)
	if err != nil {
		return nil, curve.State{}, fmt.Errorf("fetch bonding curve: %w", err)
	}
	if info == nil || info.Value == nil || info.Value.Data == nil {
		return nil, curve.State{}, types.ErrBondingCurveNotFound
	}
	acc, err := DecodeBondingCurveAccount(info.Value.Data.GetBinary())
	if err != nil {
		return nil, curve.State{}, err
	}
	return acc, acc.ToCurveState(mint), nil
}

func (c *Client) deriveCreatorVault(creator solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte(constants.SeedCreatorVault), creator.Bytes()},
		c.programID,
	)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive creator vault: %w", err)
	}
	return addr, nil
}

func (c *Client) accountExists(ctx context.Context, account solana.PublicKey) (bool, error) {
	info, err := c.rpc.GetAccountInfo(ctx, account)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return false, err
		}
		// Missing accounts surface as errors from the RPC layer.
		return false, nil
	}
	return info != nil && info.Value != nil, nil
}

func (c *Client) tipInstruction(from solana.PublicKey) solana.Instruction {
	tipAccount := bundle.RandomTipAccount()
	if c.cfg.JitoTipAccount != "" {
		if pk, err := solana.PublicKeyFromBase58(c.cfg.JitoTipAccount); err == nil {
			tipAccount = pk
		}
	}
	return txbuilder.TransferInstruction(from, tipAccount, solToLamports(c.cfg.JitoTipAmount))
}

// newMintKeypair picks the launch mint: a vanity grind when configured,
// otherwise a random keypair.
func (c *Client) newMintKeypair(ctx context.Context) (solana.PrivateKey, error) {
	if c.vanitySuffix == "" {
		return solana.NewWallet().PrivateKey, nil
	}

	result, err := vanity.Generate(ctx, vanity.Options{
		Suffix:          c.vanitySuffix,
		Timeout:         c.vanityTimeout,
		CaseInsensitive: true,
	})
	if err != nil {
		c.log.Warn().Err(err).Str("suffix", c.vanitySuffix).Msg("vanity search failed, using random mint")
		return solana.NewWallet().PrivateKey, nil
	}
	c.log.Debug().
		Str("mint", result.PublicKey.String()).
		Uint64("attempts", result.Attempts).
		Dur("took", result.Duration).
		Msg("vanity mint found")
	return result.PrivateKey, nil
}

func solToLamports(sol float64) uint64 {
	if sol <= 0 {
		return 0
	}
	return uint64(sol * constants.LamportsPerSOL)
}

func tokensToUnits(tokens float64) uint64 {
	if tokens <= 0 {
		return 0
	}
	return uint64(tokens * tokenUnitsPerWhole)
}

func unitsToTokens(units uint64) float64 {
	return float64(units) / tokenUnitsPerWhole
}
