// Package vanity grinds keypairs whose base58 address matches a prefix
// or suffix. The launch flow uses it to mint token addresses ending in a
// recognizable tag.
package vanity

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gagliardetto/solana-go"
)

// Result is a successful search.
type Result struct {
	PrivateKey solana.PrivateKey
	PublicKey  solana.PublicKey
	Attempts   uint64
	Duration   time.Duration
}

// Options configures the search.
type Options struct {
	Prefix          string        // Required prefix
	Suffix          string        // Required suffix
	Workers         int           // Parallel workers (default: NumCPU)
	Timeout         time.Duration // Max search time (0 = no timeout)
	CaseInsensitive bool          // Case-insensitive matching
}

// Generate searches for a keypair matching the given pattern. Each added
// pattern character multiplies the expected attempts by 58, so keep
// suffixes short and set a Timeout.
func Generate(ctx context.Context, opts Options) (*Result, error) {
	if opts.Prefix == "" && opts.Suffix == "" {
		return nil, fmt.Errorf("prefix or suffix is required")
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	prefix := opts.Prefix
	suffix := opts.Suffix
	if opts.CaseInsensitive {
		prefix = strings.ToLower(prefix)
		suffix = strings.ToLower(suffix)
	}

	searchCtx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		searchCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	var (
		found    atomic.Bool
		attempts atomic.Uint64
		result   *Result
		resultMu sync.Mutex
		wg       sync.WaitGroup
	)

	startTime := time.Now()

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for !found.Load() {
				select {
				case <-searchCtx.Done():
					return
				default:
				}

				key, err := solana.NewRandomPrivateKey()
				if err != nil {
					continue
				}

				attempts.Add(1)
				addr := key.PublicKey().String()
				if opts.CaseInsensitive {
					addr = strings.ToLower(addr)
				}

				if (prefix == "" || strings.HasPrefix(addr, prefix)) &&
					(suffix == "" || strings.HasSuffix(addr, suffix)) {
					if found.CompareAndSwap(false, true) {
						resultMu.Lock()
						result = &Result{
							PrivateKey: key,
							PublicKey:  key.PublicKey(),
							Attempts:   attempts.Load(),
							Duration:   time.Since(startTime),
						}
						resultMu.Unlock()
					}
					return
				}
			}
		}()
	}

	wg.Wait()

	if result != nil {
		return result, nil
	}
	if searchCtx.Err() != nil {
		return nil, fmt.Errorf("search cancelled after %d attempts: %w", attempts.Load(), searchCtx.Err())
	}
	return nil, fmt.Errorf("search failed after %d attempts", attempts.Load())
}
