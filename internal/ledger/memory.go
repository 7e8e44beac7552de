package ledger

import (
	"context"
	"sync"
	"time"
)

// Memory is a process-local Ledger. Suitable for a single-instance
// deployment or tests; the durable backends carry the same contract.
type Memory struct {
	mu      sync.Mutex
	entries map[string]*Entry
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]*Entry)}
}

func (m *Memory) Reserve(_ context.Context, transactionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[transactionID]; ok {
		return false, nil
	}
	m.entries[transactionID] = &Entry{
		TransactionID: transactionID,
		FirstSeenAt:   time.Now().UTC(),
		Outcome:       OutcomePending,
	}
	return true, nil
}

func (m *Memory) Record(_ context.Context, transactionID string, outcome Outcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[transactionID]
	if !ok {
		return ErrNotFound
	}
	e.Outcome = outcome
	return nil
}

func (m *Memory) Outcome(_ context.Context, transactionID string) (Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[transactionID]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return *e, nil
}

func (m *Memory) Clear(_ context.Context, transactionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[transactionID]; !ok {
		return ErrNotFound
	}
	delete(m.entries, transactionID)
	return nil
}
