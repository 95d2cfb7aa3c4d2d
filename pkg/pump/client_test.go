package pump

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ninja0404/pump-swap-bot/pkg/bundle"
	"github.com/ninja0404/pump-swap-bot/pkg/config"
	"github.com/ninja0404/pump-swap-bot/pkg/rpc"
	"github.com/ninja0404/pump-swap-bot/pkg/types"
	"github.com/ninja0404/pump-swap-bot/pkg/wallet"
)

// stubRelay satisfies bundle.Relay; these tests only exercise paths that
// fail before any submission happens.
type stubRelay struct{}

func (stubRelay) Submit(context.Context, bundle.SubmitRequest) (bundle.SubmitResponse, error) {
	return bundle.SubmitResponse{BundleID: "stub"}, nil
}

func (stubRelay) Status(_ context.Context, id string) (bundle.StatusResponse, error) {
	return bundle.StatusResponse{BundleID: id, Status: "pending"}, nil
}

func testClient(t *testing.T) (*Client, wallet.Store) {
	t.Helper()

	cfg := config.DefaultApp()
	cfg.EncryptionKey = "test-key"

	cipher, err := wallet.NewCipher(cfg.EncryptionKey)
	require.NoError(t, err)
	store := wallet.NewMemoryStore(cipher)

	bundles, err := bundle.NewClient(stubRelay{})
	require.NoError(t, err)

	c, err := NewClient(cfg, rpc.NewClient(cfg.RPC()), bundles, store)
	require.NoError(t, err)
	return c, store
}

func validMetadata() types.TokenMetadata {
	return types.TokenMetadata{
		Name:         "Test Token",
		Symbol:       "TEST",
		Description:  "A token for testing",
		ImageURL:     "https://example.com/image.png",
		TelegramLink: "https://t.me/test",
		TwitterLink:  "https://x.com/test",
	}
}

func TestNewClientRejectsBadConfig(t *testing.T) {
	cfg := config.DefaultApp()
	cfg.PumpFunProgramID = "not a pubkey"

	bundles, err := bundle.NewClient(stubRelay{})
	require.NoError(t, err)

	_, err = NewClient(cfg, rpc.NewClient(cfg.RPC()), bundles, nil)
	assert.ErrorIs(t, err, types.ErrInvalidPublicKey)
}

func TestCreateTokenRejectsInvalidMetadata(t *testing.T) {
	c, _ := testClient(t)

	md := validMetadata()
	md.Name = ""
	md.Symbol = "WAYTOOLONGSYM"

	_, err := c.CreateToken(context.Background(), types.CreateTokenRequest{
		Metadata: md,
		UserID:   1,
		WalletID: "w1",
	})
	require.Error(t, err)
	assert.True(t, types.IsValidationError(err))
	assert.Contains(t, err.Error(), "name")
}

func TestCreateTokenRejectsUnknownWallet(t *testing.T) {
	c, _ := testClient(t)

	_, err := c.CreateToken(context.Background(), types.CreateTokenRequest{
		Metadata: validMetadata(),
		UserID:   1,
		WalletID: "missing",
	})
	assert.ErrorIs(t, err, types.ErrWalletNotFound)
}

func TestBuyTokensValidatesBatchShape(t *testing.T) {
	c, _ := testClient(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  types.BuyRequest
	}{
		{"no amounts", types.BuyRequest{TokenAddress: "x", UserID: 1}},
		{"length mismatch", types.BuyRequest{
			TokenAddress: "x",
			SolAmounts:   []float64{0.1, 0.2},
			WalletIDs:    []string{"w1"},
			UserID:       1,
		}},
		{"too many wallets", types.BuyRequest{
			TokenAddress: "x",
			SolAmounts:   make([]float64, 17),
			WalletIDs:    make([]string, 17),
			UserID:       1,
		}},
		{"below minimum", types.BuyRequest{
			TokenAddress: "x",
			SolAmounts:   []float64{0.001},
			WalletIDs:    []string{"w1"},
			UserID:       1,
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := c.BuyTokens(ctx, tc.req)
			assert.True(t, types.IsValidationError(err), "got %v", err)
		})
	}
}

func TestBuyTokensRejectsInvalidMint(t *testing.T) {
	c, _ := testClient(t)

	_, err := c.BuyTokens(context.Background(), types.BuyRequest{
		TokenAddress: "definitely-not-base58!",
		SolAmounts:   []float64{0.05},
		WalletIDs:    []string{"w1"},
		UserID:       1,
	})
	assert.ErrorIs(t, err, types.ErrInvalidPublicKey)
}

func TestSellTokensValidatesAmounts(t *testing.T) {
	c, _ := testClient(t)

	_, err := c.SellTokens(context.Background(), types.SellRequest{
		TokenAddress: "x",
		TokenAmounts: []uint64{0},
		WalletIDs:    []string{"w1"},
		UserID:       1,
	})
	assert.True(t, types.IsValidationError(err))
}

func TestValidateTokenMetadataFollowsPolicy(t *testing.T) {
	c, _ := testClient(t)

	md := validMetadata()
	md.TelegramLink = ""
	md.TwitterLink = ""

	// Default config requires social links.
	vr := c.ValidateTokenMetadata(md)
	assert.False(t, vr.IsValid)
	assert.Len(t, vr.Errors, 2)
}
