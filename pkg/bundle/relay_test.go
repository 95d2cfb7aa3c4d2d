package bundle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRESTRelaySubmit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/bundles", r.URL.Path)

		var req SubmitRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"dHgtMQ==", "dHgtMg=="}, req.Transactions)
		assert.Equal(t, "tip-acct", req.TipAccount)
		assert.Equal(t, uint64(12345), req.TipAmount)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(SubmitResponse{BundleID: "bundle-abc", Status: "pending"})
	}))
	defer srv.Close()

	relay := NewRESTRelay(srv.URL + "/bundles")
	resp, err := relay.Submit(context.Background(), SubmitRequest{
		Transactions: []string{"dHgtMQ==", "dHgtMg=="},
		TipAccount:   "tip-acct",
		TipAmount:    12345,
	})
	require.NoError(t, err)
	assert.Equal(t, "bundle-abc", resp.BundleID)
	assert.Equal(t, "pending", resp.Status)
}

func TestRESTRelaySubmitServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "relay overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	relay := NewRESTRelay(srv.URL + "/bundles")
	_, err := relay.Submit(context.Background(), SubmitRequest{Transactions: []string{"dHg="}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestRESTRelayStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/bundles/bundle-abc", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(StatusResponse{Status: "accepted"})
	}))
	defer srv.Close()

	relay := NewRESTRelay(srv.URL + "/bundles")
	resp, err := relay.Status(context.Background(), "bundle-abc")
	require.NoError(t, err)
	// The relay omits the ID in its body; it is filled in from the request.
	assert.Equal(t, "bundle-abc", resp.BundleID)
	assert.Equal(t, "accepted", resp.Status)
}

func TestParseStatus(t *testing.T) {
	assert.Equal(t, StatusAccepted, parseStatus("landed"))
	assert.Equal(t, StatusAccepted, parseStatus("finalized"))
	assert.Equal(t, StatusRejected, parseStatus("rejected"))
	assert.Equal(t, StatusFailed, parseStatus("dropped"))
	assert.Equal(t, StatusPending, parseStatus(""))
	assert.Equal(t, StatusPending, parseStatus("anything else"))
}
