package bundle

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/ninja0404/pump-swap-bot/pkg/types"
)

// MaxTransactionsPerBundle is the hard relay limit on bundle size.
const MaxTransactionsPerBundle = 16

// Default tuning. Retry and poll intervals are overridable so tests can
// run at millisecond scale.
const (
	DefaultBaseFee       = 0.00001
	DefaultPerTxFee      = 0.000001
	DefaultRetryInterval = 2 * time.Second
	DefaultPollInterval  = 2 * time.Second
)

// Client drives a Relay: it validates batches before they touch the
// network, retries transient submission failures, and polls for terminal
// status.
type Client struct {
	relay        Relay
	tipAccount   string
	tipAmount    uint64
	baseFee      float64
	perTxFee     float64
	maxTx        int
	retryBase    time.Duration
	pollInterval time.Duration
	limiter      *rate.Limiter
	log          zerolog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithTip sets the tip account and tip amount in lamports attached to
// every submission.
func WithTip(account string, lamports uint64) Option {
	return func(c *Client) {
		c.tipAccount = account
		c.tipAmount = lamports
	}
}

// WithLogger attaches a logger. The default is a no-op logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// WithRetryInterval sets the base delay for submission retries. The n-th
// retry waits base * 2^(n-1).
func WithRetryInterval(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.retryBase = d
		}
	}
}

// WithPollInterval sets the delay between confirmation status polls.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// WithMaxTransactions lowers the per-bundle transaction cap below the
// relay limit.
func WithMaxTransactions(n int) Option {
	return func(c *Client) {
		if n > 0 && n <= MaxTransactionsPerBundle {
			c.maxTx = n
		}
	}
}

// WithFeeSchedule overrides the base and per-transaction fee used by
// CalculateBundleFee.
func WithFeeSchedule(base, perTx float64) Option {
	return func(c *Client) {
		c.baseFee = base
		c.perTxFee = perTx
	}
}

// WithRateLimit throttles submissions to rps requests per second.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			return
		}
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// NewClient builds a bundle client over the given relay.
func NewClient(relay Relay, opts ...Option) (*Client, error) {
	if relay == nil {
		return nil, types.ErrNilRelay
	}
	c := &Client{
		relay:        relay,
		baseFee:      DefaultBaseFee,
		perTxFee:     DefaultPerTxFee,
		maxTx:        MaxTransactionsPerBundle,
		retryBase:    DefaultRetryInterval,
		pollInterval: DefaultPollInterval,
		log:          zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ValidateTransactions checks a batch against the relay's constraints:
// 1..maxTx transactions, each a non-empty valid base64 string. It never
// touches the network.
func (c *Client) ValidateTransactions(txs []string) error {
	if len(txs) == 0 {
		return types.NewValidationError("transactions", "bundle requires at least one transaction")
	}
	if len(txs) > c.maxTx {
		return types.NewValidationError("transactions",
			fmt.Sprintf("bundle holds at most %d transactions, got %d", c.maxTx, len(txs)))
	}
	for i, tx := range txs {
		if tx == "" {
			return types.NewValidationError("transactions", fmt.Sprintf("transaction %d is empty", i))
		}
		if _, err := base64.StdEncoding.DecodeString(tx); err != nil {
			return types.NewValidationError("transactions", fmt.Sprintf("transaction %d is not valid base64", i))
		}
	}
	return nil
}

// SubmitBundle submits one batch. Validation failures return a nil bundle
// and a ValidationError before anything is sent. Transport failures
// return a failed bundle with the error captured, plus a RelayError.
func (c *Client) SubmitBundle(ctx context.Context, txs []string) (*Bundle, error) {
	if err := c.ValidateTransactions(txs); err != nil {
		return nil, err
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	b := &Bundle{
		Status:       StatusPending,
		Transactions: txs,
		TipAccount:   c.tipAccount,
		TipAmount:    c.tipAmount,
		SubmittedAt:  time.Now(),
	}

	resp, err := c.relay.Submit(ctx, SubmitRequest{
		Transactions: txs,
		TipAccount:   c.tipAccount,
		TipAmount:    c.tipAmount,
	})
	if err != nil {
		b.Status = StatusFailed
		b.Err = err.Error()
		b.markProcessed(time.Now())
		c.log.Error().Err(err).Int("txs", len(txs)).Msg("bundle submission failed")
		return b, types.NewRelayError("submit", err)
	}

	b.ID = resp.BundleID
	if s := parseStatus(resp.Status); s != StatusPending {
		b.Status = s
		if s.Terminal() {
			b.markProcessed(time.Now())
		}
	}
	c.log.Info().
		Str("bundle_id", b.ID).
		Int("txs", len(txs)).
		Uint64("tip_lamports", c.tipAmount).
		Msg("bundle submitted")
	return b, nil
}

// SubmitBundleWithRetry submits with exponential backoff on transient
// failures: the n-th retry waits retryBase * 2^(n-1). Validation failures
// are deterministic and never retried. After maxAttempts the last error
// is wrapped in a RelayError alongside a failed bundle.
func (c *Client) SubmitBundleWithRetry(ctx context.Context, txs []string, maxAttempts int) (*Bundle, error) {
	if err := c.ValidateTransactions(txs); err != nil {
		return nil, err
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.retryBase
	policy.Multiplier = 2
	policy.RandomizationFactor = 0

	attempt := 0
	operation := func() (*Bundle, error) {
		attempt++
		b, err := c.SubmitBundle(ctx, txs)
		if err != nil {
			if !types.IsRetryableError(err) {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		return b, nil
	}

	b, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(maxAttempts)),
		backoff.WithNotify(func(err error, next time.Duration) {
			c.log.Warn().
				Err(err).
				Int("attempt", attempt).
				Dur("next_retry_in", next).
				Msg("bundle submission retry")
		}),
	)
	if err != nil {
		now := time.Now()
		failed := &Bundle{
			Status:       StatusFailed,
			Transactions: txs,
			TipAccount:   c.tipAccount,
			TipAmount:    c.tipAmount,
			SubmittedAt:  now,
			Err:          err.Error(),
		}
		failed.markProcessed(now)
		return failed, types.RelayError{Op: "submit", Attempts: attempt, Err: err}
	}
	return b, nil
}

// GetBundleStatus polls the relay once. A transport failure comes back as
// a failed-status bundle rather than an error, so callers render it the
// same way as a relay rejection.
func (c *Client) GetBundleStatus(ctx context.Context, bundleID string) (*Bundle, error) {
	if bundleID == "" {
		return nil, types.NewValidationError("bundleID", "must not be empty")
	}

	resp, err := c.relay.Status(ctx, bundleID)
	if err != nil {
		c.log.Warn().Err(err).Str("bundle_id", bundleID).Msg("bundle status check failed")
		b := &Bundle{ID: bundleID, Status: StatusFailed, Err: err.Error()}
		b.markProcessed(time.Now())
		return b, nil
	}

	b := &Bundle{
		ID:     bundleID,
		Status: parseStatus(resp.Status),
		Err:    resp.Error,
	}
	if b.Status.Terminal() {
		b.markProcessed(time.Now())
	}
	return b, nil
}

// WaitForBundleConfirmation polls until the bundle reaches a terminal
// status or maxWait elapses. Poll transport errors keep the wait alive.
// On timeout it returns a synthetic failed bundle together with a
// TimeoutError so nothing upstream ever hangs on a stuck bundle.
func (c *Client) WaitForBundleConfirmation(ctx context.Context, bundleID string, maxWait time.Duration) (*Bundle, error) {
	if bundleID == "" {
		return nil, types.NewValidationError("bundleID", "must not be empty")
	}

	started := time.Now()
	deadline := time.NewTimer(maxWait)
	defer deadline.Stop()
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			b := &Bundle{ID: bundleID, Status: StatusFailed, Err: ctx.Err().Error()}
			b.markProcessed(time.Now())
			return b, ctx.Err()

		case <-deadline.C:
			elapsed := time.Since(started)
			terr := types.TimeoutError{Op: "bundle confirmation", Elapsed: elapsed}
			b := &Bundle{ID: bundleID, Status: StatusFailed, Err: terr.Error()}
			b.markProcessed(time.Now())
			c.log.Warn().
				Str("bundle_id", bundleID).
				Dur("elapsed", elapsed).
				Msg("bundle confirmation timed out")
			return b, terr

		case <-ticker.C:
			resp, err := c.relay.Status(ctx, bundleID)
			if err != nil {
				c.log.Debug().Err(err).Str("bundle_id", bundleID).Msg("status poll failed, retrying")
				continue
			}
			status := parseStatus(resp.Status)
			if !status.Terminal() {
				continue
			}
			b := &Bundle{ID: bundleID, Status: status, Err: resp.Error}
			b.markProcessed(time.Now())
			c.log.Info().
				Str("bundle_id", bundleID).
				Str("status", string(status)).
				Dur("elapsed", time.Since(started)).
				Msg("bundle reached terminal status")
			return b, nil
		}
	}
}

// CalculateBundleFee returns the relay fee in SOL for a bundle of
// numTransactions transactions: a flat base plus a per-transaction charge.
func (c *Client) CalculateBundleFee(numTransactions int) float64 {
	if numTransactions < 0 {
		numTransactions = 0
	}
	return c.baseFee + c.perTxFee*float64(numTransactions)
}
