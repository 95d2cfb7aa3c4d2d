// Package bundle submits batches of pre-signed transactions as atomic
// bundles to a relay, tracks their lifecycle, and retries submission
// failures with exponential backoff.
//
// A bundle moves through exactly one transition:
//
//	pending -> accepted | rejected | failed
//
// all three right-hand states are terminal. A submission that fails in
// transport starts out in failed and never transitions further.
package bundle

import "time"

// Status is the lifecycle state of a bundle.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
	StatusFailed   Status = "failed"
)

// Terminal reports whether no further status transitions are possible.
func (s Status) Terminal() bool {
	switch s {
	case StatusAccepted, StatusRejected, StatusFailed:
		return true
	}
	return false
}

// Bundle is a submitted (or failed-to-submit) batch of transactions.
// Created on submission and mutated only by status polls.
type Bundle struct {
	ID           string     `json:"bundle_id"`
	Status       Status     `json:"status"`
	Transactions []string   `json:"transactions"`
	TipAccount   string     `json:"tip_account"`
	TipAmount    uint64     `json:"tip_amount"`
	SubmittedAt  time.Time  `json:"submitted_at"`
	ProcessedAt  *time.Time `json:"processed_at,omitempty"`
	Err          string     `json:"error,omitempty"`
}

// markProcessed stamps the terminal transition time.
func (b *Bundle) markProcessed(at time.Time) {
	b.ProcessedAt = &at
}
