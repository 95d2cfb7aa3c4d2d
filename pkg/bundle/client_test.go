package bundle

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ninja0404/pump-swap-bot/pkg/types"
)

// fakeRelay scripts relay behavior per call.
type fakeRelay struct {
	submits  atomic.Int32
	statuses atomic.Int32

	submitFn func(call int, req SubmitRequest) (SubmitResponse, error)
	statusFn func(call int, bundleID string) (StatusResponse, error)
}

func (f *fakeRelay) Submit(_ context.Context, req SubmitRequest) (SubmitResponse, error) {
	call := int(f.submits.Add(1))
	if f.submitFn == nil {
		return SubmitResponse{BundleID: "bundle-1", Status: "pending"}, nil
	}
	return f.submitFn(call, req)
}

func (f *fakeRelay) Status(_ context.Context, bundleID string) (StatusResponse, error) {
	call := int(f.statuses.Add(1))
	if f.statusFn == nil {
		return StatusResponse{BundleID: bundleID, Status: "pending"}, nil
	}
	return f.statusFn(call, bundleID)
}

func encodeTx(payload string) string {
	return base64.StdEncoding.EncodeToString([]byte(payload))
}

func testTxs(n int) []string {
	txs := make([]string, n)
	for i := range txs {
		txs[i] = encodeTx(fmt.Sprintf("signed-tx-%d", i))
	}
	return txs
}

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.True(t, StatusAccepted.Terminal())
	assert.True(t, StatusRejected.Terminal())
	assert.True(t, StatusFailed.Terminal())
}

func TestNewClientRequiresRelay(t *testing.T) {
	_, err := NewClient(nil)
	assert.ErrorIs(t, err, types.ErrNilRelay)
}

func TestValidateTransactionsRejectsBadBatches(t *testing.T) {
	relay := &fakeRelay{}
	c, err := NewClient(relay)
	require.NoError(t, err)

	cases := []struct {
		name string
		txs  []string
	}{
		{"empty batch", nil},
		{"over the cap", testTxs(17)},
		{"empty transaction", []string{encodeTx("ok"), ""}},
		{"not base64", []string{"this is !!! not base64"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := c.SubmitBundle(context.Background(), tc.txs)
			assert.Nil(t, b)
			assert.True(t, types.IsValidationError(err))
		})
	}

	// Fail-fast invariant: nothing ever reached the relay.
	assert.Zero(t, relay.submits.Load())
}

func TestValidateTransactionsAcceptsFullBundle(t *testing.T) {
	c, err := NewClient(&fakeRelay{})
	require.NoError(t, err)
	assert.NoError(t, c.ValidateTransactions(testTxs(16)))
}

func TestSubmitBundleSuccess(t *testing.T) {
	relay := &fakeRelay{
		submitFn: func(_ int, req SubmitRequest) (SubmitResponse, error) {
			if req.TipAccount != "tip-acct" || req.TipAmount != 10_000 {
				return SubmitResponse{}, errors.New("tip not forwarded")
			}
			return SubmitResponse{BundleID: "bundle-42", Status: "pending"}, nil
		},
	}
	c, err := NewClient(relay, WithTip("tip-acct", 10_000))
	require.NoError(t, err)

	b, err := c.SubmitBundle(context.Background(), testTxs(3))
	require.NoError(t, err)
	assert.Equal(t, "bundle-42", b.ID)
	assert.Equal(t, StatusPending, b.Status)
	assert.Nil(t, b.ProcessedAt)
	assert.False(t, b.SubmittedAt.IsZero())
	assert.Len(t, b.Transactions, 3)
}

func TestSubmitBundleTransportFailure(t *testing.T) {
	relay := &fakeRelay{
		submitFn: func(int, SubmitRequest) (SubmitResponse, error) {
			return SubmitResponse{}, errors.New("connection refused")
		},
	}
	c, err := NewClient(relay)
	require.NoError(t, err)

	b, err := c.SubmitBundle(context.Background(), testTxs(1))
	require.Error(t, err)

	var relayErr types.RelayError
	require.True(t, errors.As(err, &relayErr))
	assert.Equal(t, "submit", relayErr.Op)

	require.NotNil(t, b)
	assert.Equal(t, StatusFailed, b.Status)
	assert.Contains(t, b.Err, "connection refused")
	assert.NotNil(t, b.ProcessedAt)
}

func TestSubmitBundleWithRetryEventuallySucceeds(t *testing.T) {
	relay := &fakeRelay{
		submitFn: func(call int, _ SubmitRequest) (SubmitResponse, error) {
			if call < 3 {
				return SubmitResponse{}, errors.New("relay unavailable")
			}
			return SubmitResponse{BundleID: "bundle-retry", Status: "pending"}, nil
		},
	}
	c, err := NewClient(relay, WithRetryInterval(10*time.Millisecond))
	require.NoError(t, err)

	start := time.Now()
	b, err := c.SubmitBundleWithRetry(context.Background(), testTxs(2), 5)
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, "bundle-retry", b.ID)
	assert.Equal(t, int32(3), relay.submits.Load())
	// Two backoffs at 10ms and 20ms.
	assert.GreaterOrEqual(t, elapsed, 30*time.Millisecond)
}

func TestSubmitBundleWithRetryExhaustsAttempts(t *testing.T) {
	relay := &fakeRelay{
		submitFn: func(int, SubmitRequest) (SubmitResponse, error) {
			return SubmitResponse{}, errors.New("relay unavailable")
		},
	}
	c, err := NewClient(relay, WithRetryInterval(time.Millisecond))
	require.NoError(t, err)

	b, err := c.SubmitBundleWithRetry(context.Background(), testTxs(1), 3)
	require.Error(t, err)

	var relayErr types.RelayError
	require.True(t, errors.As(err, &relayErr))
	assert.Equal(t, 3, relayErr.Attempts)
	assert.Equal(t, int32(3), relay.submits.Load())

	require.NotNil(t, b)
	assert.Equal(t, StatusFailed, b.Status)
}

func TestSubmitBundleWithRetryNeverRetriesValidation(t *testing.T) {
	relay := &fakeRelay{}
	c, err := NewClient(relay, WithRetryInterval(time.Millisecond))
	require.NoError(t, err)

	b, err := c.SubmitBundleWithRetry(context.Background(), nil, 5)
	assert.Nil(t, b)
	assert.True(t, types.IsValidationError(err))
	assert.Zero(t, relay.submits.Load())
}

func TestGetBundleStatusMapsTransportFailureToFailed(t *testing.T) {
	relay := &fakeRelay{
		statusFn: func(int, string) (StatusResponse, error) {
			return StatusResponse{}, errors.New("dns failure")
		},
	}
	c, err := NewClient(relay)
	require.NoError(t, err)

	b, err := c.GetBundleStatus(context.Background(), "bundle-7")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, b.Status)
	assert.Contains(t, b.Err, "dns failure")
	assert.NotNil(t, b.ProcessedAt)
}

func TestGetBundleStatusMapsRelayStates(t *testing.T) {
	for relayStatus, want := range map[string]Status{
		"pending":   StatusPending,
		"landed":    StatusAccepted,
		"accepted":  StatusAccepted,
		"rejected":  StatusRejected,
		"failed":    StatusFailed,
		"who-knows": StatusPending,
	} {
		relay := &fakeRelay{
			statusFn: func(_ int, id string) (StatusResponse, error) {
				return StatusResponse{BundleID: id, Status: relayStatus}, nil
			},
		}
		c, err := NewClient(relay)
		require.NoError(t, err)

		b, err := c.GetBundleStatus(context.Background(), "bundle-x")
		require.NoError(t, err)
		assert.Equal(t, want, b.Status, "relay status %q", relayStatus)
		assert.Equal(t, want.Terminal(), b.ProcessedAt != nil, "relay status %q", relayStatus)
	}
}

func TestWaitForBundleConfirmation(t *testing.T) {
	relay := &fakeRelay{
		statusFn: func(call int, id string) (StatusResponse, error) {
			switch {
			case call == 1:
				return StatusResponse{}, errors.New("transient poll failure")
			case call < 4:
				return StatusResponse{BundleID: id, Status: "pending"}, nil
			default:
				return StatusResponse{BundleID: id, Status: "accepted"}, nil
			}
		},
	}
	c, err := NewClient(relay, WithPollInterval(5*time.Millisecond))
	require.NoError(t, err)

	b, err := c.WaitForBundleConfirmation(context.Background(), "bundle-9", time.Second)
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, b.Status)
	assert.NotNil(t, b.ProcessedAt)
	assert.GreaterOrEqual(t, relay.statuses.Load(), int32(4))
}

func TestWaitForBundleConfirmationTimesOut(t *testing.T) {
	relay := &fakeRelay{} // always pending
	c, err := NewClient(relay, WithPollInterval(5*time.Millisecond))
	require.NoError(t, err)

	start := time.Now()
	b, err := c.WaitForBundleConfirmation(context.Background(), "bundle-slow", 30*time.Millisecond)
	elapsed := time.Since(start)

	require.Error(t, err)
	var terr types.TimeoutError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, "bundle confirmation", terr.Op)

	require.NotNil(t, b)
	assert.Equal(t, StatusFailed, b.Status)
	assert.Contains(t, b.Err, "timed out")

	assert.GreaterOrEqual(t, elapsed, 30*time.Millisecond)
	assert.Less(t, elapsed, time.Second)
}

func TestWaitForBundleConfirmationHonorsContext(t *testing.T) {
	relay := &fakeRelay{}
	c, err := NewClient(relay, WithPollInterval(5*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b, err := c.WaitForBundleConfirmation(ctx, "bundle-cancelled", time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, b)
	assert.Equal(t, StatusFailed, b.Status)
}

func TestCalculateBundleFee(t *testing.T) {
	c, err := NewClient(&fakeRelay{})
	require.NoError(t, err)

	assert.InEpsilon(t, 0.00001+5*0.000001, c.CalculateBundleFee(5), 1e-12)
	assert.InEpsilon(t, 0.00001, c.CalculateBundleFee(0), 1e-12)

	custom, err := NewClient(&fakeRelay{}, WithFeeSchedule(0.001, 0.0001))
	require.NoError(t, err)
	assert.InEpsilon(t, 0.001+16*0.0001, custom.CalculateBundleFee(16), 1e-12)
}

func TestWithMaxTransactionsLowersCap(t *testing.T) {
	c, err := NewClient(&fakeRelay{}, WithMaxTransactions(4))
	require.NoError(t, err)

	assert.NoError(t, c.ValidateTransactions(testTxs(4)))
	assert.True(t, types.IsValidationError(c.ValidateTransactions(testTxs(5))))
}
