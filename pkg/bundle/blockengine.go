package bundle

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gagliardetto/solana-go"
	jitorpc "github.com/jito-labs/jito-go-rpc"
)

// Default Jito Block Engine endpoints.
const (
	MainnetBlockEngine = "https://mainnet.block-engine.jito.wtf/api/v1"
	TestnetBlockEngine = "https://testnet.block-engine.jito.wtf/api/v1"
)

// MainnetBlockEngines lists the regional mainnet endpoints. Rotating
// through them spreads load and dodges per-endpoint rate limits.
var MainnetBlockEngines = []string{
	"https://mainnet.block-engine.jito.wtf/api/v1",
	"https://amsterdam.mainnet.block-engine.jito.wtf/api/v1",
	"https://frankfurt.mainnet.block-engine.jito.wtf/api/v1",
	"https://ny.mainnet.block-engine.jito.wtf/api/v1",
	"https://tokyo.mainnet.block-engine.jito.wtf/api/v1",
}

// MainnetTipAccounts are the official Jito tip accounts. They rarely
// change, so keeping them local avoids an RPC round trip per bundle.
var MainnetTipAccounts = []solana.PublicKey{
	solana.MustPublicKeyFromBase58("96gYZGLnJYVFmbjzopPSU6QiEV5fGqZNyN9nmNhvrZU5"),
	solana.MustPublicKeyFromBase58("HFqU5x63VTqvQss8hp11i4wVV8bD44PvwucfZ2bU7gRe"),
	solana.MustPublicKeyFromBase58("Cw8CFyM9FkoMi7K7Crf6HNQqf4uEMzpKw6QNghXLvLkY"),
	solana.MustPublicKeyFromBase58("ADaUMid9yfUytqMBgopwjb2DTLSokTSzL1zt6iGPaS49"),
	solana.MustPublicKeyFromBase58("DfXygSm4jCyNCybVYYK6DwvWqjKee8pbDmJGcLWNDXjh"),
	solana.MustPublicKeyFromBase58("ADuUkR4vqLUMWXxW9gh6D6L8pMSawimctcNZ5pGwDcEt"),
	solana.MustPublicKeyFromBase58("DttWaMuVvTiduZRnguLF7jNxTgiMBZ1hyAumKUiL2KRL"),
	solana.MustPublicKeyFromBase58("3AVi9Tg9Uo68tJfuvoKvqKNWKkC5wPdSSdeBnizKZ6jT"),
}

// RandomTipAccount returns a random tip account from the local list.
func RandomTipAccount() solana.PublicKey {
	return MainnetTipAccounts[rand.Intn(len(MainnetTipAccounts))]
}

// BlockEngineRelay submits bundles straight to the Jito block engine with
// round-robin endpoint rotation and retry on rate limiting.
//
// The block engine takes tips as an instruction inside one of the bundle's
// transactions, so SubmitRequest's tip fields are informational here; the
// transaction builder is responsible for including the tip transfer.
type BlockEngineRelay struct {
	endpoints    []string
	uuid         string
	currentIndex uint32
	maxRetries   int
	retryDelay   time.Duration
}

// NewBlockEngineRelay builds a relay for the given endpoints. With no
// endpoints it falls back to the full mainnet set. uuid is the optional
// Jito auth UUID, empty for anonymous access.
func NewBlockEngineRelay(endpoints []string, uuid string) *BlockEngineRelay {
	if len(endpoints) == 0 {
		endpoints = MainnetBlockEngines
	}
	return &BlockEngineRelay{
		endpoints:  endpoints,
		uuid:       uuid,
		maxRetries: len(endpoints) + 2,
		retryDelay: 100 * time.Millisecond,
	}
}

func (r *BlockEngineRelay) nextClient() *jitorpc.JitoJsonRpcClient {
	idx := atomic.AddUint32(&r.currentIndex, 1)
	endpoint := r.endpoints[int(idx)%len(r.endpoints)]
	return jitorpc.NewJitoJsonRpcClient(endpoint, r.uuid)
}

func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "Rate limit") ||
		strings.Contains(errStr, "congested") ||
		strings.Contains(errStr, "429")
}

// Submit implements Relay.
func (r *BlockEngineRelay) Submit(ctx context.Context, req SubmitRequest) (SubmitResponse, error) {
	var lastErr error
	for i := 0; i < r.maxRetries; i++ {
		if err := ctx.Err(); err != nil {
			return SubmitResponse{}, err
		}
		client := r.nextClient()

		rawResp, err := client.SendBundle([][]string{req.Transactions})
		if err != nil {
			lastErr = err
			if isRateLimitError(err) {
				time.Sleep(r.retryDelay)
				continue
			}
			return SubmitResponse{}, fmt.Errorf("jito send bundle: %w", err)
		}

		var bundleID string
		if err := json.Unmarshal(rawResp, &bundleID); err != nil {
			return SubmitResponse{}, fmt.Errorf("unmarshal bundle response: %w", err)
		}
		return SubmitResponse{BundleID: bundleID, Status: string(StatusPending)}, nil
	}
	return SubmitResponse{}, fmt.Errorf("jito send bundle failed after %d retries: %w", r.maxRetries, lastErr)
}

// Status implements Relay.
func (r *BlockEngineRelay) Status(ctx context.Context, bundleID string) (StatusResponse, error) {
	var lastErr error
	for i := 0; i < r.maxRetries; i++ {
		if err := ctx.Err(); err != nil {
			return StatusResponse{}, err
		}
		client := r.nextClient()

		statuses, err := client.GetBundleStatuses([]string{bundleID})
		if err != nil {
			lastErr = err
			if isRateLimitError(err) {
				time.Sleep(r.retryDelay)
				continue
			}
			return StatusResponse{}, fmt.Errorf("get bundle statuses: %w", err)
		}
		if statuses == nil || len(statuses.Value) == 0 {
			// Not yet visible to the block engine.
			return StatusResponse{BundleID: bundleID, Status: string(StatusPending)}, nil
		}

		status := statuses.Value[0]
		return mapEngineStatus(
			bundleID,
			string(status.ConfirmationStatus),
			status.Err.Ok != nil,
			fmt.Sprintf("bundle failed: %v", status.Err),
		), nil
	}
	return StatusResponse{}, fmt.Errorf("get bundle statuses failed after %d retries: %w", r.maxRetries, lastErr)
}

// mapEngineStatus normalizes one block-engine status entry. ok mirrors the
// engine's Err.Ok field: a nil Ok means the bundle landed but its
// transactions failed.
func mapEngineStatus(bundleID, confirmationStatus string, ok bool, failure string) StatusResponse {
	switch confirmationStatus {
	case "confirmed", "finalized":
		return StatusResponse{BundleID: bundleID, Status: string(StatusAccepted)}
	}
	if !ok {
		return StatusResponse{
			BundleID: bundleID,
			Status:   string(StatusFailed),
			Error:    failure,
		}
	}
	return StatusResponse{BundleID: bundleID, Status: string(StatusPending)}
}
