package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/peagah10/fechadura/internal/dispatch"
	"github.com/peagah10/fechadura/internal/event"
	"github.com/peagah10/fechadura/internal/ledger"
	"github.com/peagah10/fechadura/internal/lock"
	"github.com/peagah10/fechadura/internal/logger"
	"github.com/peagah10/fechadura/internal/metrics"
	"github.com/peagah10/fechadura/pkg/httpx"
	"github.com/peagah10/fechadura/pkg/webhooks"
)

const maxWebhookBodyBytes = 1 << 20 // 1MB

type Handler struct {
	secret     string
	verifier   webhooks.Verifier
	dispatcher *dispatch.Dispatcher
	ledger     ledger.Ledger
	board      *lock.StatusBoard
	simulation bool
	lockID     string

	wg sync.WaitGroup
}

func NewHandler(secret string, dispatcher *dispatch.Dispatcher, led ledger.Ledger, board *lock.StatusBoard, simulation bool, lockID string) *Handler {
	return &Handler{
		secret:     secret,
		verifier:   webhooks.NewHMACVerifier("pagbank"),
		dispatcher: dispatcher,
		ledger:     led,
		board:      board,
		simulation: simulation,
		lockID:     lockID,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.handleHome)
	r.Get("/health", h.handleHealth)
	r.Get("/status", h.handleStatus)
	r.Post("/webhook/pagamento", h.handleWebhook)
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/admin/transactions/{transaction_id}", func(api chi.Router) {
		api.Get("/", h.handleTransaction)
		api.Post("/clear", h.handleClear)
	})
}

// Wait blocks until every in-flight dispatch reaches its terminal outcome.
// Used by graceful shutdown and by tests.
func (h *Handler) Wait() {
	h.wg.Wait()
}

func (h *Handler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	metrics.WebhookRequestsTotal.Inc()

	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes)
	rawBody, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			httpx.WriteError(w, 413, "PAYLOAD_TOO_LARGE", "payload exceeds 1MB limit", nil)
			return
		}
		httpx.WriteError(w, 400, "BAD_BODY", err.Error(), nil)
		return
	}

	result, err := h.verifier.Verify(r.Header, rawBody, time.Now().UTC(), h.secret)
	if err != nil {
		httpx.WriteError(w, 500, "VERIFIER_ERROR", err.Error(), nil)
		return
	}
	if !result.Valid {
		metrics.SignatureRejectionsTotal.Inc()
		logger.Warn("webhook rejected: invalid signature", map[string]any{
			"provider_event_id": result.ProviderEventID,
			"details":           result.Details,
		})
		httpx.WriteError(w, 401, "INVALID_SIGNATURE", "authenticity tag did not verify", nil)
		return
	}

	ev, err := event.Normalize(rawBody)
	if err != nil {
		metrics.PayloadRejectionsTotal.Inc()
		logger.Warn("webhook rejected: bad payload", map[string]any{
			"provider_event_id": result.ProviderEventID,
			"error":             err.Error(),
		})
		switch {
		case errors.Is(err, event.ErrMissingField):
			httpx.WriteError(w, 400, "MISSING_FIELD", err.Error(), nil)
		default:
			httpx.WriteError(w, 400, "MALFORMED_PAYLOAD", err.Error(), nil)
		}
		return
	}

	// Verified and normalized: acknowledge now so the vendor stops
	// redelivering, then let the dispatch outlive this request. Actuation
	// failures surface through the ledger, logs and metrics, never through
	// the webhook response.
	h.wg.Add(1)
	go func(ctx context.Context) {
		defer h.wg.Done()
		h.dispatcher.Dispatch(ctx, ev)
	}(context.WithoutCancel(r.Context()))

	httpx.WriteAccepted(w, map[string]any{
		"transaction_id": ev.TransactionID,
	})
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, 200, h.board.Snapshot())
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, 200, map[string]any{
		"status":          "ok",
		"simulation_mode": h.simulation,
		"lock_id":         h.lockID,
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) handleHome(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, 200, map[string]any{
		"message":         "Sistema PagBank + TTLock funcionando!",
		"status":          "online",
		"simulation_mode": h.simulation,
		"lock_id":         h.lockID,
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) handleTransaction(w http.ResponseWriter, r *http.Request) {
	txID := chi.URLParam(r, "transaction_id")
	entry, err := h.ledger.Outcome(r.Context(), txID)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			httpx.WriteError(w, 404, "NOT_FOUND", "transaction not in ledger", nil)
			return
		}
		httpx.WriteError(w, 500, "LEDGER_ERROR", err.Error(), nil)
		return
	}
	httpx.WriteJSON(w, 200, entry)
}

// handleClear removes a transaction's ledger entry, re-authorizing one fresh
// automatic window. Manual replay of a FAILED unlock goes through here and
// nowhere else.
func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	txID := chi.URLParam(r, "transaction_id")
	if err := h.ledger.Clear(r.Context(), txID); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			httpx.WriteError(w, 404, "NOT_FOUND", "transaction not in ledger", nil)
			return
		}
		httpx.WriteError(w, 500, "LEDGER_ERROR", err.Error(), nil)
		return
	}
	logger.Info("transaction cleared for replay", map[string]any{"transaction_id": txID})
	httpx.WriteJSON(w, 200, map[string]any{
		"request_id":     httpx.NewRequestID(),
		"transaction_id": txID,
		"cleared":        true,
	})
}
