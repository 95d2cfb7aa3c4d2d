package vanity

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRequiresPattern(t *testing.T) {
	_, err := Generate(context.Background(), Options{})
	assert.Error(t, err)
}

func TestGenerateSingleCharSuffix(t *testing.T) {
	// One base58 character is found in ~58 attempts.
	result, err := Generate(context.Background(), Options{
		Suffix:          "a",
		CaseInsensitive: true,
		Timeout:         30 * time.Second,
	})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(strings.ToLower(result.PublicKey.String()), "a"))
	assert.Greater(t, result.Attempts, uint64(0))
	assert.Equal(t, result.PrivateKey.PublicKey(), result.PublicKey)
}

func TestGenerateHonorsTimeout(t *testing.T) {
	// An impossible pattern must stop at the timeout, not spin forever.
	start := time.Now()
	_, err := Generate(context.Background(), Options{
		Suffix:  "0000000000", // 0 is not in the base58 alphabet
		Timeout: 50 * time.Millisecond,
	})
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGenerateHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Generate(ctx, Options{Suffix: "zzzzzzzz"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
