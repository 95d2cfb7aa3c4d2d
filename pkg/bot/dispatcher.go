package bot

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/ninja0404/pump-swap-bot/pkg/bundle"
	"github.com/ninja0404/pump-swap-bot/pkg/curve"
	"github.com/ninja0404/pump-swap-bot/pkg/session"
	"github.com/ninja0404/pump-swap-bot/pkg/types"
	"github.com/ninja0404/pump-swap-bot/pkg/wallet"
)

// Trader is the trading surface the dispatcher drives. *pump.Client
// satisfies it.
type Trader interface {
	CreateToken(ctx context.Context, req types.CreateTokenRequest) (*types.TransactionResult, error)
	BuyTokens(ctx context.Context, req types.BuyRequest) (*types.TransactionResult, error)
	SellTokens(ctx context.Context, req types.SellRequest) (*types.TransactionResult, error)
	QuoteBuy(ctx context.Context, tokenAddress string, solAmount float64) (curve.Quote, types.FeeCalculation, error)
	QuoteSell(ctx context.Context, tokenAddress string, tokenAmount float64) (curve.Quote, types.FeeCalculation, error)
	BundleStatus(ctx context.Context, bundleID string) (*bundle.Bundle, error)
	ValidateTokenMetadata(md types.TokenMetadata) *types.ValidationResult
}

// Dispatcher routes parsed commands and drives in-progress flows.
type Dispatcher struct {
	trader   Trader
	wallets  wallet.Store
	sessions session.Store
	log      zerolog.Logger
}

// NewDispatcher wires the command layer.
func NewDispatcher(trader Trader, wallets wallet.Store, sessions session.Store, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		trader:   trader,
		wallets:  wallets,
		sessions: sessions,
		log:      log,
	}
}

// HandleMessage processes one inbound message and returns the plain-text
// reply. An active flow consumes non-command input; "cancel" always
// aborts.
func (d *Dispatcher) HandleMessage(ctx context.Context, userID int64, text string) string {
	cmd, ok := ParseCommand(text)
	if !ok {
		return usageText
	}

	if cmd.Name == "cancel" {
		if state, ok := d.sessions.Get(userID); ok && state.Active() {
			d.sessions.Delete(userID)
			return "Token creation cancelled."
		}
		return "Nothing to cancel."
	}

	if state, ok := d.sessions.Get(userID); ok && state.Active() {
		return d.continueCreateFlow(ctx, userID, state, text)
	}

	switch cmd.Name {
	case "create":
		return d.startCreateFlow(userID)
	case "buy":
		return d.handleBuy(ctx, userID, cmd.Args)
	case "sell":
		return d.handleSell(ctx, userID, cmd.Args)
	case "wallets":
		return d.handleWallets(ctx, userID, cmd.Args)
	case "quote":
		return d.handleQuote(ctx, cmd.Args)
	case "status":
		return d.handleStatus(ctx, cmd.Args)
	case "help", "start":
		return usageText
	default:
		return fmt.Sprintf("Unknown command %q.\n\n%s", cmd.Name, usageText)
	}
}

func (d *Dispatcher) handleBuy(ctx context.Context, userID int64, args []string) string {
	if len(args) < 3 {
		return "Usage: buy <token_address> <sol_amount> <wallet_id> [wallet_id ...]"
	}
	solAmount, err := strconv.ParseFloat(args[1], 64)
	if err != nil || solAmount <= 0 {
		return fmt.Sprintf("Invalid SOL amount %q.", args[1])
	}

	walletIDs := args[2:]
	amounts := make([]float64, len(walletIDs))
	for i := range amounts {
		amounts[i] = solAmount
	}

	result, err := d.trader.BuyTokens(ctx, types.BuyRequest{
		TokenAddress: args[0],
		SolAmounts:   amounts,
		WalletIDs:    walletIDs,
		UserID:       userID,
	})
	if err != nil {
		d.log.Warn().Err(err).Int64("user_id", userID).Msg("buy failed")
		return renderError(err)
	}
	return renderResult("Buy bundle", result)
}

func (d *Dispatcher) handleSell(ctx context.Context, userID int64, args []string) string {
	if len(args) < 3 {
		return "Usage: sell <token_address> <token_amount> <wallet_id> [wallet_id ...]"
	}
	tokenAmount, err := strconv.ParseFloat(args[1], 64)
	if err != nil || tokenAmount <= 0 {
		return fmt.Sprintf("Invalid token amount %q.", args[1])
	}

	walletIDs := args[2:]
	amounts := make([]uint64, len(walletIDs))
	for i := range amounts {
		amounts[i] = uint64(tokenAmount * tokenBaseUnits)
	}

	result, err := d.trader.SellTokens(ctx, types.SellRequest{
		TokenAddress: args[0],
		TokenAmounts: amounts,
		WalletIDs:    walletIDs,
		UserID:       userID,
	})
	if err != nil {
		d.log.Warn().Err(err).Int64("user_id", userID).Msg("sell failed")
		return renderError(err)
	}
	return renderResult("Sell bundle", result)
}

func (d *Dispatcher) handleWallets(ctx context.Context, userID int64, args []string) string {
	if len(args) == 0 {
		args = []string{"list"}
	}
	switch args[0] {
	case "list":
		wallets, err := d.wallets.List(ctx, userID)
		if err != nil {
			return renderError(err)
		}
		return renderWallets(wallets)
	case "new":
		label := ""
		if len(args) > 1 {
			label = args[1]
		}
		w, err := d.wallets.Create(ctx, userID, label)
		if err != nil {
			return renderError(err)
		}
		return fmt.Sprintf("Wallet created.\nID: %s\nAddress: %s", w.ID, w.PublicKey)
	case "import":
		if len(args) < 2 {
			return "Usage: wallets import <base58_private_key> [label]"
		}
		label := ""
		if len(args) > 2 {
			label = args[2]
		}
		w, err := d.wallets.Import(ctx, userID, label, args[1])
		if err != nil {
			return renderError(err)
		}
		return fmt.Sprintf("Wallet imported.\nID: %s\nAddress: %s", w.ID, w.PublicKey)
	case "delete":
		if len(args) < 2 {
			return "Usage: wallets delete <wallet_id>"
		}
		if err := d.wallets.Delete(ctx, userID, args[1]); err != nil {
			return renderError(err)
		}
		return "Wallet deleted."
	default:
		return "Usage: wallets [list|new|import|delete]"
	}
}

func (d *Dispatcher) handleQuote(ctx context.Context, args []string) string {
	if len(args) < 3 {
		return "Usage: quote <buy|sell> <token_address> <amount>"
	}
	amount, err := strconv.ParseFloat(args[2], 64)
	if err != nil || amount <= 0 {
		return fmt.Sprintf("Invalid amount %q.", args[2])
	}

	switch args[0] {
	case "buy":
		q, fees, err := d.trader.QuoteBuy(ctx, args[1], amount)
		if err != nil {
			return renderError(err)
		}
		return renderBuyQuote(amount, q, fees)
	case "sell":
		q, fees, err := d.trader.QuoteSell(ctx, args[1], amount)
		if err != nil {
			return renderError(err)
		}
		return renderSellQuote(amount, q, fees)
	default:
		return "Usage: quote <buy|sell> <token_address> <amount>"
	}
}

func (d *Dispatcher) handleStatus(ctx context.Context, args []string) string {
	if len(args) < 1 {
		return "Usage: status <bundle_id>"
	}
	b, err := d.trader.BundleStatus(ctx, args[0])
	if err != nil {
		return renderError(err)
	}
	return renderBundle(b)
}
