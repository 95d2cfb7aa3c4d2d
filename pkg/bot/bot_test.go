package bot

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ninja0404/pump-swap-bot/pkg/bundle"
	"github.com/ninja0404/pump-swap-bot/pkg/curve"
	"github.com/ninja0404/pump-swap-bot/pkg/session"
	"github.com/ninja0404/pump-swap-bot/pkg/types"
	"github.com/ninja0404/pump-swap-bot/pkg/wallet"
)

type fakeTrader struct {
	createReq *types.CreateTokenRequest
	buyReq    *types.BuyRequest
	sellReq   *types.SellRequest
	policy    types.MetadataPolicy
}

func (f *fakeTrader) CreateToken(_ context.Context, req types.CreateTokenRequest) (*types.TransactionResult, error) {
	f.createReq = &req
	return &types.TransactionResult{
		Success:      true,
		Signature:    "sig111",
		TokenAddress: "Mint111",
		FeePaid:      0.05,
	}, nil
}

func (f *fakeTrader) BuyTokens(_ context.Context, req types.BuyRequest) (*types.TransactionResult, error) {
	f.buyReq = &req
	return &types.TransactionResult{Success: true, BundleID: "bundle-buy"}, nil
}

func (f *fakeTrader) SellTokens(_ context.Context, req types.SellRequest) (*types.TransactionResult, error) {
	f.sellReq = &req
	return &types.TransactionResult{Success: true, BundleID: "bundle-sell"}, nil
}

func (f *fakeTrader) QuoteBuy(context.Context, string, float64) (curve.Quote, types.FeeCalculation, error) {
	return curve.Quote{AmountOut: 995, RawAmount: 1000, Fee: 5},
		types.FeeCalculation{BaseAmount: 1000, FeeAmount: 5, TotalAmount: 995, FeePercentage: 0.5}, nil
}

func (f *fakeTrader) QuoteSell(context.Context, string, float64) (curve.Quote, types.FeeCalculation, error) {
	return curve.Quote{AmountOut: 1.005, RawAmount: 1.0, Fee: 0.005},
		types.FeeCalculation{BaseAmount: 1.0, FeeAmount: 0.005, TotalAmount: 1.005, FeePercentage: 0.5}, nil
}

func (f *fakeTrader) BundleStatus(_ context.Context, id string) (*bundle.Bundle, error) {
	return &bundle.Bundle{ID: id, Status: bundle.StatusAccepted}, nil
}

func (f *fakeTrader) ValidateTokenMetadata(md types.TokenMetadata) *types.ValidationResult {
	return types.ValidateMetadata(md, f.policy)
}

func testDispatcher(t *testing.T) (*Dispatcher, *fakeTrader, wallet.Store) {
	t.Helper()
	cipher, err := wallet.NewCipher("bot-test-key")
	require.NoError(t, err)
	trader := &fakeTrader{policy: types.DefaultMetadataPolicy()}
	wallets := wallet.NewMemoryStore(cipher)
	d := NewDispatcher(trader, wallets, session.NewMemoryStore(), zerolog.Nop())
	return d, trader, wallets
}

func TestParseCommand(t *testing.T) {
	cmd, ok := ParseCommand("  BUY  MintAddr 0.5 w1  ")
	require.True(t, ok)
	assert.Equal(t, "buy", cmd.Name)
	assert.Equal(t, []string{"MintAddr", "0.5", "w1"}, cmd.Args)

	cmd, ok = ParseCommand("/create")
	require.True(t, ok)
	assert.Equal(t, "create", cmd.Name)
	assert.Empty(t, cmd.Args)

	_, ok = ParseCommand("   ")
	assert.False(t, ok)

	_, ok = ParseCommand("/")
	assert.False(t, ok)
}

func TestUnknownCommandShowsUsage(t *testing.T) {
	d, _, _ := testDispatcher(t)
	reply := d.HandleMessage(context.Background(), 1, "dance")
	assert.Contains(t, reply, "Unknown command")
	assert.Contains(t, reply, "create")
}

func TestCreateFlowHappyPath(t *testing.T) {
	d, trader, wallets := testDispatcher(t)
	ctx := context.Background()

	w, err := wallets.Create(ctx, 7, "main")
	require.NoError(t, err)

	steps := []struct {
		send string
		want string
	}{
		{"create", "token name"},
		{"My Token", "symbol"},
		{"MTK", "Description"},
		{"The best token", "Image URL"},
		{"https://example.com/img.png", "Telegram link"},
		{"https://t.me/mytoken", "Twitter link"},
		{"https://x.com/mytoken", "wallet ID"},
		{w.ID, "yes/no"},
	}
	for _, step := range steps {
		reply := d.HandleMessage(ctx, 7, step.send)
		assert.Contains(t, reply, step.want, "after sending %q", step.send)
	}

	reply := d.HandleMessage(ctx, 7, "yes")
	assert.Contains(t, reply, "Token created")
	assert.Contains(t, reply, "Mint111")

	require.NotNil(t, trader.createReq)
	assert.Equal(t, "My Token", trader.createReq.Metadata.Name)
	assert.Equal(t, "MTK", trader.createReq.Metadata.Symbol)
	assert.Equal(t, w.ID, trader.createReq.WalletID)
	assert.Equal(t, int64(7), trader.createReq.UserID)
}

func TestCreateFlowRejectsInvalidDraft(t *testing.T) {
	d, _, _ := testDispatcher(t)
	ctx := context.Background()

	for _, msg := range []string{"create", "Name", "TOOLONGSYMBOL", "desc", "not-a-url", "skip"} {
		d.HandleMessage(ctx, 3, msg)
	}
	// The last social answer triggers validation of the whole draft.
	reply := d.HandleMessage(ctx, 3, "skip")
	assert.Contains(t, reply, "invalid")
	assert.Contains(t, reply, "symbol")

	// The flow is gone; the next message is treated as a command again.
	reply = d.HandleMessage(ctx, 3, "help")
	assert.Contains(t, reply, "Commands:")
}

func TestCancelAbortsFlow(t *testing.T) {
	d, _, _ := testDispatcher(t)
	ctx := context.Background()

	d.HandleMessage(ctx, 5, "create")
	reply := d.HandleMessage(ctx, 5, "cancel")
	assert.Contains(t, reply, "cancelled")

	reply = d.HandleMessage(ctx, 5, "cancel")
	assert.Equal(t, "Nothing to cancel.", reply)
}

func TestBuyCommand(t *testing.T) {
	d, trader, _ := testDispatcher(t)
	ctx := context.Background()

	reply := d.HandleMessage(ctx, 9, "buy Mint111 0.5 w1 w2 w3")
	assert.Contains(t, reply, "bundle-buy")
	assert.Contains(t, reply, "status bundle-buy")

	require.NotNil(t, trader.buyReq)
	assert.Equal(t, "Mint111", trader.buyReq.TokenAddress)
	assert.Equal(t, []string{"w1", "w2", "w3"}, trader.buyReq.WalletIDs)
	assert.Equal(t, []float64{0.5, 0.5, 0.5}, trader.buyReq.SolAmounts)
	assert.Equal(t, int64(9), trader.buyReq.UserID)

	assert.Contains(t, d.HandleMessage(ctx, 9, "buy Mint111"), "Usage:")
	assert.Contains(t, d.HandleMessage(ctx, 9, "buy Mint111 zero w1"), "Invalid SOL amount")
}

func TestSellCommandConvertsToBaseUnits(t *testing.T) {
	d, trader, _ := testDispatcher(t)

	reply := d.HandleMessage(context.Background(), 9, "sell Mint111 2.5 w1")
	assert.Contains(t, reply, "bundle-sell")

	require.NotNil(t, trader.sellReq)
	assert.Equal(t, []uint64{2_500_000}, trader.sellReq.TokenAmounts)
}

func TestWalletsCommands(t *testing.T) {
	d, _, _ := testDispatcher(t)
	ctx := context.Background()

	assert.Contains(t, d.HandleMessage(ctx, 11, "wallets"), "No wallets yet")

	reply := d.HandleMessage(ctx, 11, "wallets new sniper")
	assert.Contains(t, reply, "Wallet created")

	reply = d.HandleMessage(ctx, 11, "wallets list")
	assert.Contains(t, reply, "1 wallet(s)")
	assert.Contains(t, reply, "sniper")
}

func TestQuoteCommand(t *testing.T) {
	d, _, _ := testDispatcher(t)
	ctx := context.Background()

	reply := d.HandleMessage(ctx, 1, "quote buy Mint111 0.5")
	assert.Contains(t, reply, "Tokens out: 995.00")

	reply = d.HandleMessage(ctx, 1, "quote sell Mint111 1000")
	assert.Contains(t, reply, "SOL out: 1.005000")

	assert.Contains(t, d.HandleMessage(ctx, 1, "quote hold Mint111 1"), "Usage:")
}

func TestStatusCommand(t *testing.T) {
	d, _, _ := testDispatcher(t)

	reply := d.HandleMessage(context.Background(), 1, "status bundle-x")
	assert.Contains(t, reply, "bundle-x")
	assert.Contains(t, reply, "accepted")
}
