package bundle

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Relay is the transport behind the bundle client. Implementations are a
// plain REST relay and the Jito block engine.
type Relay interface {
	// Submit sends the batch and returns the relay-assigned bundle ID.
	Submit(ctx context.Context, req SubmitRequest) (SubmitResponse, error)
	// Status fetches the current lifecycle state of a submitted bundle.
	Status(ctx context.Context, bundleID string) (StatusResponse, error)
}

// SubmitRequest is the wire payload for bundle submission.
type SubmitRequest struct {
	Transactions []string `json:"transactions"`
	TipAccount   string   `json:"tip_account"`
	TipAmount    uint64   `json:"tip_amount"`
}

// SubmitResponse is the relay's acknowledgment of a submission.
type SubmitResponse struct {
	BundleID string `json:"bundle_id"`
	Status   string `json:"status"`
}

// StatusResponse is the relay's view of a bundle's lifecycle state.
type StatusResponse struct {
	BundleID string `json:"bundle_id"`
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
}

// parseStatus normalizes the status strings different relays report into
// the four lifecycle states. Unknown strings stay pending so polling
// continues rather than terminating on a relay quirk.
func parseStatus(s string) Status {
	switch s {
	case "accepted", "landed", "confirmed", "finalized", "success":
		return StatusAccepted
	case "rejected":
		return StatusRejected
	case "failed", "dropped", "invalid":
		return StatusFailed
	default:
		return StatusPending
	}
}

// RESTRelay talks to a bundle relay over its JSON HTTP API.
// Submission POSTs to the configured bundle URL; status is a GET on
// <bundleURL>/<bundleID>.
type RESTRelay struct {
	http      *resty.Client
	bundleURL string
}

// NewRESTRelay builds a relay for the given bundle endpoint URL.
func NewRESTRelay(bundleURL string) *RESTRelay {
	client := resty.New().
		SetTimeout(15 * time.Second).
		SetHeader("Content-Type", "application/json")
	return &RESTRelay{
		http:      client,
		bundleURL: bundleURL,
	}
}

// Submit implements Relay.
func (r *RESTRelay) Submit(ctx context.Context, req SubmitRequest) (SubmitResponse, error) {
	var out SubmitResponse
	resp, err := r.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post(r.bundleURL)
	if err != nil {
		return SubmitResponse{}, fmt.Errorf("submit bundle: %w", err)
	}
	if resp.IsError() {
		return SubmitResponse{}, fmt.Errorf("submit bundle: relay returned %s: %s", resp.Status(), resp.String())
	}
	return out, nil
}

// Status implements Relay.
func (r *RESTRelay) Status(ctx context.Context, bundleID string) (StatusResponse, error) {
	var out StatusResponse
	resp, err := r.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get(r.bundleURL + "/" + bundleID)
	if err != nil {
		return StatusResponse{}, fmt.Errorf("bundle status: %w", err)
	}
	if resp.IsError() {
		return StatusResponse{}, fmt.Errorf("bundle status: relay returned %s: %s", resp.Status(), resp.String())
	}
	if out.BundleID == "" {
		out.BundleID = bundleID
	}
	return out, nil
}
