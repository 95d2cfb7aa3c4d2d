package bundle

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapEngineStatus(t *testing.T) {
	cases := []struct {
		name         string
		confirmation string
		ok           bool
		want         Status
	}{
		{"confirmed is accepted", "confirmed", true, StatusAccepted},
		{"finalized is accepted", "finalized", true, StatusAccepted},
		{"processed stays pending", "processed", true, StatusPending},
		{"no confirmation stays pending", "", true, StatusPending},
		{"landed with error is failed", "processed", false, StatusFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := mapEngineStatus("bundle-1", tc.confirmation, tc.ok, "bundle failed: custom program error")
			assert.Equal(t, "bundle-1", resp.BundleID)
			assert.Equal(t, string(tc.want), resp.Status)
			if tc.want == StatusFailed {
				assert.Contains(t, resp.Error, "custom program error")
			} else {
				assert.Empty(t, resp.Error)
			}
		})
	}
}

func TestNewBlockEngineRelayDefaults(t *testing.T) {
	relay := NewBlockEngineRelay(nil, "")
	assert.Equal(t, MainnetBlockEngines, relay.endpoints)
	assert.Equal(t, len(MainnetBlockEngines)+2, relay.maxRetries)

	custom := NewBlockEngineRelay([]string{"https://relay.example.com/api/v1"}, "uuid-1")
	assert.Len(t, custom.endpoints, 1)
	assert.Equal(t, 3, custom.maxRetries)
}

func TestRandomTipAccountIsFromKnownSet(t *testing.T) {
	for i := 0; i < 20; i++ {
		account := RandomTipAccount()
		require.Contains(t, MainnetTipAccounts, account)
	}
}

func TestIsRateLimitError(t *testing.T) {
	assert.False(t, isRateLimitError(nil))
	assert.False(t, isRateLimitError(assert.AnError))
	assert.True(t, isRateLimitError(errors.New("429 Too Many Requests")))
	assert.True(t, isRateLimitError(errors.New("endpoint rate limit exceeded")))
}
