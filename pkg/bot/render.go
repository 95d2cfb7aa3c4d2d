package bot

import (
	"fmt"
	"strings"

	"github.com/ninja0404/pump-swap-bot/pkg/bundle"
	"github.com/ninja0404/pump-swap-bot/pkg/curve"
	"github.com/ninja0404/pump-swap-bot/pkg/types"
	"github.com/ninja0404/pump-swap-bot/pkg/wallet"
)

// tokenBaseUnits converts whole tokens to base units for sell amounts.
const tokenBaseUnits = 1e6

const usageText = `Commands:
  create - create a new token (guided)
  buy <token> <sol_amount> <wallet_id ...> - bundled buy
  sell <token> <token_amount> <wallet_id ...> - bundled sell
  quote <buy|sell> <token> <amount> - price a trade
  status <bundle_id> - check a bundle
  wallets [list|new|import|delete] - manage wallets
  cancel - abort the current flow`

func renderError(err error) string {
	return "Error: " + err.Error()
}

func renderResult(title string, r *types.TransactionResult) string {
	if r == nil {
		return title + ": no result"
	}
	var b strings.Builder
	b.WriteString(title)
	if r.Success {
		b.WriteString(" submitted.")
	} else {
		b.WriteString(" failed.")
	}
	if r.TokenAddress != "" {
		fmt.Fprintf(&b, "\nToken: %s", r.TokenAddress)
	}
	if r.Signature != "" {
		fmt.Fprintf(&b, "\nSignature: %s", r.Signature)
	}
	if r.BundleID != "" {
		fmt.Fprintf(&b, "\nBundle: %s\nCheck progress with: status %s", r.BundleID, r.BundleID)
	}
	if r.FeePaid > 0 {
		fmt.Fprintf(&b, "\nFees: %.6f SOL", r.FeePaid)
	}
	if r.Error != "" {
		fmt.Fprintf(&b, "\nReason: %s", r.Error)
	}
	return b.String()
}

func renderBundle(b *bundle.Bundle) string {
	if b == nil {
		return "Bundle not found."
	}
	out := fmt.Sprintf("Bundle %s\nStatus: %s", b.ID, b.Status)
	if b.Err != "" {
		out += "\nError: " + b.Err
	}
	if !b.Status.Terminal() {
		out += "\nStill pending, check again shortly."
	}
	return out
}

func renderBuyQuote(solIn float64, q curve.Quote, fees types.FeeCalculation) string {
	return fmt.Sprintf(
		"Buy quote for %.4f SOL:\nTokens out: %.2f\nBefore fees: %.2f\nTrading fee: %.2f tokens (%.2f%%)",
		solIn, q.AmountOut, q.RawAmount, q.Fee, fees.FeePercentage,
	)
}

func renderSellQuote(tokensIn float64, q curve.Quote, fees types.FeeCalculation) string {
	return fmt.Sprintf(
		"Sell quote for %.2f tokens:\nSOL out: %.6f\nBefore fees: %.6f\nTrading fee: %.6f SOL (%.2f%%)",
		tokensIn, q.AmountOut, q.RawAmount, q.Fee, fees.FeePercentage,
	)
}

func renderDraft(md types.TokenMetadata) string {
	var b strings.Builder
	b.WriteString("Review:\n")
	fmt.Fprintf(&b, "Name: %s\n", md.Name)
	fmt.Fprintf(&b, "Symbol: %s\n", md.Symbol)
	fmt.Fprintf(&b, "Description: %s\n", md.Description)
	fmt.Fprintf(&b, "Image: %s", md.ImageURL)
	if md.TelegramLink != "" {
		fmt.Fprintf(&b, "\nTelegram: %s", md.TelegramLink)
	}
	if md.TwitterLink != "" {
		fmt.Fprintf(&b, "\nTwitter: %s", md.TwitterLink)
	}
	return b.String()
}

func renderWallets(wallets []wallet.Wallet) string {
	if len(wallets) == 0 {
		return "No wallets yet. Create one with \"wallets new\"."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "You have %d wallet(s):\n", len(wallets))
	for i, w := range wallets {
		label := w.Label
		if label == "" {
			label = "unnamed"
		}
		fmt.Fprintf(&b, "%d. %s (%s)\n   ID: %s\n", i+1, w.PublicKey, label, w.ID)
	}
	return strings.TrimRight(b.String(), "\n")
}
