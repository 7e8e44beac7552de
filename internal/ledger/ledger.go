package ledger

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("transaction not in ledger")

type Outcome string

const (
	OutcomePending  Outcome = "PENDING"
	OutcomeActuated Outcome = "ACTUATED"
	OutcomeFailed   Outcome = "FAILED"
)

// Entry is the ledger's durable record of one transaction's fate.
type Entry struct {
	TransactionID string    `json:"transaction_id"`
	FirstSeenAt   time.Time `json:"first_seen_at"`
	Outcome       Outcome   `json:"outcome"`
}

// Ledger is the sole serialization point between concurrent webhook
// deliveries. Reserve is a single atomic check-and-set: of all concurrent
// callers for one transaction id, exactly one observes true. A reservation is
// never released implicitly — a FAILED transaction stays blocked until an
// operator calls Clear.
type Ledger interface {
	Reserve(ctx context.Context, transactionID string) (bool, error)
	Record(ctx context.Context, transactionID string, outcome Outcome) error
	Outcome(ctx context.Context, transactionID string) (Entry, error)
	Clear(ctx context.Context, transactionID string) error
}
