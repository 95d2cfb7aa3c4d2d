// Package api exposes the trading core over HTTP for the bot front end:
// token creation, bundled buys and sells, and bundle status polling.
// Every response uses the same {success, data, error} envelope.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/ninja0404/pump-swap-bot/pkg/bundle"
	"github.com/ninja0404/pump-swap-bot/pkg/types"
)

// Service is the trading surface the API fronts. *pump.Client satisfies
// it.
type Service interface {
	CreateToken(ctx context.Context, req types.CreateTokenRequest) (*types.TransactionResult, error)
	BuyTokens(ctx context.Context, req types.BuyRequest) (*types.TransactionResult, error)
	SellTokens(ctx context.Context, req types.SellRequest) (*types.TransactionResult, error)
	BundleStatus(ctx context.Context, bundleID string) (*bundle.Bundle, error)
}

// envelope is the uniform response shape.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Error   *string     `json:"error"`
}

// tokenCreationData is the create endpoint's success payload.
type tokenCreationData struct {
	TokenAddress  string              `json:"token_address"`
	TransactionID string              `json:"transaction_id"`
	Metadata      types.TokenMetadata `json:"metadata"`
	FeePaid       float64             `json:"fee_paid"`
}

// bundleData is the buy/sell endpoints' success payload.
type bundleData struct {
	BundleID string  `json:"bundle_id"`
	Status   string  `json:"status"`
	FeePaid  float64 `json:"fee_paid"`
}

// Server serves the HTTP API.
type Server struct {
	svc Service
	log zerolog.Logger
}

// NewServer builds a server over the trading service.
func NewServer(svc Service, log zerolog.Logger) *Server {
	return &Server{svc: svc, log: log}
}

// Handler returns the fully routed handler with CORS and request logging
// applied.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/token/create", s.handleCreateToken).Methods(http.MethodPost)
	r.HandleFunc("/api/bundle/buy", s.handleBuy).Methods(http.MethodPost)
	r.HandleFunc("/api/bundle/sell", s.handleSell).Methods(http.MethodPost)
	r.HandleFunc("/api/bundle/status/{bundle_id}", s.handleBundleStatus).Methods(http.MethodGet)

	return cors.Default().Handler(s.logRequests(r))
}

// ListenAndServe runs the API until ctx is cancelled, then drains
// in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("api server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, http.StatusOK, "API is running")
}

func (s *Server) handleCreateToken(w http.ResponseWriter, r *http.Request) {
	var req types.CreateTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := s.svc.CreateToken(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, tokenCreationData{
		TokenAddress:  result.TokenAddress,
		TransactionID: result.Signature,
		Metadata:      req.Metadata,
		FeePaid:       result.FeePaid,
	})
}

func (s *Server) handleBuy(w http.ResponseWriter, r *http.Request) {
	var req types.BuyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := s.svc.BuyTokens(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, bundleData{
		BundleID: result.BundleID,
		Status:   string(bundle.StatusPending),
		FeePaid:  result.FeePaid,
	})
}

func (s *Server) handleSell(w http.ResponseWriter, r *http.Request) {
	var req types.SellRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := s.svc.SellTokens(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, bundleData{
		BundleID: result.BundleID,
		Status:   string(bundle.StatusPending),
		FeePaid:  result.FeePaid,
	})
}

func (s *Server) handleBundleStatus(w http.ResponseWriter, r *http.Request) {
	bundleID := mux.Vars(r)["bundle_id"]

	b, err := s.svc.BundleStatus(r.Context(), bundleID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, b)
}

// writeServiceError maps the error taxonomy onto status codes: caller
// mistakes are 400, everything else 500.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if types.IsValidationError(err) ||
		errors.Is(err, types.ErrWalletNotFound) ||
		errors.Is(err, types.ErrInvalidPublicKey) ||
		errors.Is(err, types.ErrInvalidPrivateKey) ||
		errors.Is(err, types.ErrInsufficientBalance) ||
		errors.Is(err, types.ErrInsufficientLiquidity) ||
		errors.Is(err, types.ErrBondingCurveNotFound) {
		status = http.StatusBadRequest
	}
	s.log.Warn().Err(err).Int("status", status).Msg("request failed")
	writeError(w, status, err.Error())
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}

func writeSuccess(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{Success: false, Error: &msg})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
