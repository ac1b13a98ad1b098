// Package httpapi exposes the Ledger over HTTP.
//
// The hosting environment authenticates callers and presents the signer
// identity in the X-Signer header; handlers attach it to the request
// context and let the engine enforce ownership. Amounts travel as
// decimal strings on the wire and are validated once, at this boundary.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/xraph/streampay"
	"github.com/xraph/streampay/id"
	"github.com/xraph/streampay/journal"
	"github.com/xraph/streampay/types"
)

// Server wires Ledger operations to HTTP routes.
type Server struct {
	ledger *streampay.Ledger
	logger *slog.Logger
	router *mux.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New creates a Server over the given Ledger.
func New(l *streampay.Ledger, opts ...Option) *Server {
	s := &Server{
		ledger: l,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.signerMiddleware)

	// Account ledger
	r.HandleFunc("/v1/supply", s.handleTotalSupply).Methods(http.MethodGet)
	r.HandleFunc("/v1/accounts/{owner}/balance", s.handleBalance).Methods(http.MethodGet)
	r.HandleFunc("/v1/transfers", s.handleTransfer).Methods(http.MethodPost)
	r.HandleFunc("/v1/bonus/claim", s.handleClaimBonus).Methods(http.MethodPost)

	// Stream ledger
	r.HandleFunc("/v1/streams", s.handleCreateStream).Methods(http.MethodPost)
	r.HandleFunc("/v1/streams", s.handleListStreams).Methods(http.MethodGet)
	r.HandleFunc("/v1/streams/{id}", s.handleGetStream).Methods(http.MethodGet)
	r.HandleFunc("/v1/streams/{id}/earned", s.handleEarned).Methods(http.MethodGet)
	r.HandleFunc("/v1/streams/{id}/pause", s.handlePauseStream).Methods(http.MethodPost)
	r.HandleFunc("/v1/streams/{id}/resume", s.handleResumeStream).Methods(http.MethodPost)
	r.HandleFunc("/v1/streams/{id}/stop", s.handleStopStream).Methods(http.MethodPost)
	r.HandleFunc("/v1/streams/{id}/withdraw", s.handleWithdraw).Methods(http.MethodPost)
	r.HandleFunc("/v1/streams/{id}/topup", s.handleTopUp).Methods(http.MethodPost)
	r.HandleFunc("/v1/accounts/{owner}/streams/sent", s.handleStreamsBySender).Methods(http.MethodGet)
	r.HandleFunc("/v1/accounts/{owner}/streams/received", s.handleStreamsByRecipient).Methods(http.MethodGet)

	// Journal
	r.HandleFunc("/v1/journal", s.handleJournal).Methods(http.MethodGet)

	return r
}

// signerMiddleware resolves the X-Signer header into the operation's
// authenticated identity. Requests without the header pass through
// unauthenticated; mutating operations then fail in the engine.
func (s *Server) signerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("X-Signer")
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}
		signer, err := id.ParseAccountID(raw)
		if err != nil {
			s.writeError(w, r, streampay.ErrInvalidInput)
			return
		}
		next.ServeHTTP(w, r.WithContext(streampay.WithSigner(r.Context(), signer)))
	})
}

// ──────────────────────────────────────────────────
// Account handlers
// ──────────────────────────────────────────────────

func (s *Server) handleTotalSupply(w http.ResponseWriter, r *http.Request) {
	supply, err := s.ledger.TotalSupply(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"total_supply": supply})
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	owner, err := pathAccount(r, "owner")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	balance, err := s.ledger.Balance(r.Context(), owner)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"owner": owner, "balance": balance})
}

type transferRequest struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, streampay.ErrInvalidInput)
		return
	}
	from, err := id.ParseAccountID(req.From)
	if err != nil {
		s.writeError(w, r, streampay.ErrInvalidInput)
		return
	}
	to, err := id.ParseAccountID(req.To)
	if err != nil {
		s.writeError(w, r, streampay.ErrInvalidInput)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.ledger.Transfer(r.Context(), from, to, amount); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"from": from, "to": to, "amount": amount})
}

func (s *Server) handleClaimBonus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Owner string `json:"owner"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, streampay.ErrInvalidInput)
		return
	}
	owner, err := id.ParseAccountID(req.Owner)
	if err != nil {
		s.writeError(w, r, streampay.ErrInvalidInput)
		return
	}
	claimed, err := s.ledger.ClaimBonus(r.Context(), owner)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"owner": owner, "claimed": claimed})
}

// ──────────────────────────────────────────────────
// Stream handlers
// ──────────────────────────────────────────────────

type createStreamRequest struct {
	Recipient       string  `json:"recipient"`
	RatePerSecond   string  `json:"rate_per_second"`
	DurationSeconds *uint64 `json:"duration_seconds,omitempty"`
}

func (s *Server) handleCreateStream(w http.ResponseWriter, r *http.Request) {
	var req createStreamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, streampay.ErrInvalidInput)
		return
	}
	recipient, err := id.ParseAccountID(req.Recipient)
	if err != nil {
		s.writeError(w, r, streampay.ErrInvalidInput)
		return
	}
	rate, err := parseAmount(req.RatePerSecond)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	streamID, err := s.ledger.CreateStream(r.Context(), recipient, rate, req.DurationSeconds)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]any{"stream_id": streamID})
}

func (s *Server) handleListStreams(w http.ResponseWriter, r *http.Request) {
	streams, err := s.ledger.AllStreams(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"streams": streams})
}

func (s *Server) handleGetStream(w http.ResponseWriter, r *http.Request) {
	streamID, err := pathStreamID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	st, err := s.ledger.GetStream(r.Context(), streamID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleEarned(w http.ResponseWriter, r *http.Request) {
	streamID, err := pathStreamID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	earned, err := s.ledger.EarnedAmount(r.Context(), streamID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"stream_id": streamID, "earned": earned})
}

func (s *Server) handlePauseStream(w http.ResponseWriter, r *http.Request) {
	s.handleStreamAction(w, r, s.ledger.PauseStream)
}

func (s *Server) handleResumeStream(w http.ResponseWriter, r *http.Request) {
	s.handleStreamAction(w, r, s.ledger.ResumeStream)
}

func (s *Server) handleStopStream(w http.ResponseWriter, r *http.Request) {
	s.handleStreamAction(w, r, s.ledger.StopStream)
}

func (s *Server) handleStreamAction(w http.ResponseWriter, r *http.Request, action func(ctx context.Context, streamID uint64) error) {
	streamID, err := pathStreamID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := action(r.Context(), streamID); err != nil {
		s.writeError(w, r, err)
		return
	}
	st, err := s.ledger.GetStream(r.Context(), streamID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, st)
}

type withdrawRequest struct {
	Amount *string `json:"amount,omitempty"` // nil withdraws everything available
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	streamID, err := pathStreamID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	// An empty body withdraws everything available.
	var req withdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, r, streampay.ErrInvalidInput)
		return
	}
	var amount *types.Amount
	if req.Amount != nil {
		a, err := parseAmount(*req.Amount)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		amount = &a
	}
	withdrawn, err := s.ledger.Withdraw(r.Context(), streamID, amount)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"stream_id": streamID, "withdrawn": withdrawn})
}

func (s *Server) handleTopUp(w http.ResponseWriter, r *http.Request) {
	streamID, err := pathStreamID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req struct {
		Amount string `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, streampay.ErrInvalidInput)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.ledger.TopUp(r.Context(), streamID, amount); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"stream_id": streamID, "amount": amount})
}

func (s *Server) handleStreamsBySender(w http.ResponseWriter, r *http.Request) {
	owner, err := pathAccount(r, "owner")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	streams, err := s.ledger.StreamsBySender(r.Context(), owner)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"streams": streams})
}

func (s *Server) handleStreamsByRecipient(w http.ResponseWriter, r *http.Request) {
	owner, err := pathAccount(r, "owner")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	streams, err := s.ledger.StreamsByRecipient(r.Context(), owner)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"streams": streams})
}

// ──────────────────────────────────────────────────
// Journal handlers
// ──────────────────────────────────────────────────

func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	var opts journal.QueryOpts

	q := r.URL.Query()
	if kind := q.Get("kind"); kind != "" {
		opts.Kind = journal.Kind(kind)
	}
	if owner := q.Get("owner"); owner != "" {
		parsed, err := id.ParseAccountID(owner)
		if err != nil {
			s.writeError(w, r, streampay.ErrInvalidInput)
			return
		}
		opts.Owner = parsed
	}
	if raw := q.Get("stream_id"); raw != "" {
		streamID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			s.writeError(w, r, streampay.ErrInvalidInput)
			return
		}
		opts.StreamID = streamID
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			s.writeError(w, r, streampay.ErrInvalidInput)
			return
		}
		opts.Limit = limit
	}

	entries, err := s.ledger.Journal(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

// ──────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────

func pathAccount(r *http.Request, name string) (id.AccountID, error) {
	parsed, err := id.ParseAccountID(mux.Vars(r)[name])
	if err != nil {
		return id.Nil, streampay.ErrInvalidInput
	}
	return parsed, nil
}

func pathStreamID(r *http.Request) (uint64, error) {
	streamID, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, streampay.ErrInvalidInput
	}
	return streamID, nil
}

// parseAmount validates a wire amount once, at the boundary. Engine
// operations receive already-valid Amounts.
func parseAmount(raw string) (types.Amount, error) {
	a, err := types.ParseAmount(raw)
	if err != nil {
		return types.ZeroAmount, streampay.ErrInvalidAmount
	}
	return a, nil
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, streampay.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, streampay.ErrNotSender), errors.Is(err, streampay.ErrNotRecipient):
		return http.StatusForbidden
	case streampay.IsNotFound(err):
		return http.StatusNotFound
	case streampay.IsCallerError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
