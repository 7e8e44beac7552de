package dispatch

import (
	"context"
	"time"

	"github.com/peagah10/fechadura/internal/event"
	"github.com/peagah10/fechadura/internal/ledger"
	"github.com/peagah10/fechadura/internal/lock"
	"github.com/peagah10/fechadura/internal/logger"
	"github.com/peagah10/fechadura/internal/metrics"
)

type Outcome string

const (
	OutcomeActuated Outcome = "ACTUATED"
	OutcomeSkipped  Outcome = "SKIPPED"
	OutcomeFailed   Outcome = "FAILED"
)

type Config struct {
	LockID      string
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// Dispatcher decides whether a payment event opens the lock and drives the
// unlock command to a terminal outcome. The ledger's Reserve is the only
// coordination between concurrent dispatches; no lock is held across the
// vendor call.
type Dispatcher struct {
	ledger ledger.Ledger
	lock   lock.Client
	cfg    Config

	// sleep is replaced in tests so retries run without real delays.
	sleep func(ctx context.Context, d time.Duration) error

	// onUnlocked fires once per successful actuation (status board hook).
	onUnlocked func()
}

func New(l ledger.Ledger, c lock.Client, cfg Config, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		ledger: l,
		lock:   c,
		cfg:    cfg,
		sleep:  sleepCtx,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type Option func(*Dispatcher)

func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(d *Dispatcher) { d.sleep = sleep }
}

func WithUnlockedHook(fn func()) Option {
	return func(d *Dispatcher) { d.onUnlocked = fn }
}

// Dispatch runs one event through the state machine: status gate, atomic
// reservation, bounded retry. Exactly one unlock command reaches the lock
// client per transaction id that terminates in ACTUATED.
func (d *Dispatcher) Dispatch(ctx context.Context, ev event.PaymentEvent) Outcome {
	start := time.Now()
	out := d.run(ctx, ev)
	metrics.DispatchOutcomesTotal.WithLabelValues(string(out)).Inc()
	metrics.DispatchDuration.Observe(time.Since(start).Seconds())
	logger.Info("dispatch finished", map[string]any{
		"transaction_id": ev.TransactionID,
		"status":         string(ev.Status),
		"outcome":        string(out),
	})
	return out
}

func (d *Dispatcher) run(ctx context.Context, ev event.PaymentEvent) Outcome {
	if ev.Status != event.StatusApproved {
		return OutcomeSkipped
	}

	reserved, err := d.ledger.Reserve(ctx, ev.TransactionID)
	if err != nil {
		// Without a reservation the duplicate-unlock guarantee is gone, so
		// the lock is never commanded.
		logger.Error("ledger reserve failed", map[string]any{
			"transaction_id": ev.TransactionID,
			"error":          err.Error(),
		})
		return OutcomeFailed
	}
	if !reserved {
		return OutcomeSkipped
	}

	for attempt := 1; attempt <= d.cfg.MaxAttempts; attempt++ {
		metrics.UnlockAttemptsTotal.Inc()
		err = d.lock.Unlock(ctx, d.cfg.LockID)
		if err == nil {
			d.record(ctx, ev.TransactionID, ledger.OutcomeActuated)
			if d.onUnlocked != nil {
				d.onUnlocked()
			}
			return OutcomeActuated
		}

		logger.Warn("unlock attempt failed", map[string]any{
			"transaction_id": ev.TransactionID,
			"attempt":        attempt,
			"error":          err.Error(),
		})
		if !lock.IsTransient(err) {
			break
		}
		if attempt < d.cfg.MaxAttempts {
			if sleepErr := d.sleep(ctx, backoffFor(attempt, d.cfg.BaseDelay, d.cfg.MaxDelay)); sleepErr != nil {
				break
			}
		}
	}

	d.record(ctx, ev.TransactionID, ledger.OutcomeFailed)
	return OutcomeFailed
}

func (d *Dispatcher) record(ctx context.Context, transactionID string, out ledger.Outcome) {
	if err := d.ledger.Record(ctx, transactionID, out); err != nil {
		logger.Error("ledger record failed", map[string]any{
			"transaction_id": transactionID,
			"outcome":        string(out),
			"error":          err.Error(),
		})
	}
}

// backoffFor doubles the base delay per attempt, capped at max.
func backoffFor(attempt int, base, max time.Duration) time.Duration {
	d := base << (attempt - 1)
	if d > max || d <= 0 {
		return max
	}
	return d
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
