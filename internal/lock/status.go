package lock

import (
	"sync"
	"time"
)

const (
	StateOpen   = "aberta"
	StateClosed = "fechada"
)

// Snapshot is what the card terminal polls on GET /status.
type Snapshot struct {
	State           string `json:"state"`
	LastPaymentTime string `json:"last_payment_time,omitempty"`
	Message         string `json:"message"`
}

// StatusBoard tracks the human-visible lock state. A momentary unlock latches
// again on its own after openFor; the board mirrors that with a timer rather
// than polling the device.
type StatusBoard struct {
	openFor time.Duration

	mu      sync.Mutex
	state   string
	lastPay time.Time
	message string
	timer   *time.Timer
}

func NewStatusBoard(openFor time.Duration) *StatusBoard {
	return &StatusBoard{
		openFor: openFor,
		state:   StateClosed,
		message: "Aguardando pagamento...",
	}
}

// Opened records a successful unlock and schedules the re-close.
func (b *StatusBoard) Opened() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateOpen
	b.lastPay = time.Now().UTC()
	b.message = "Pagamento confirmado, fechadura aberta"
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.openFor, b.closed)
}

func (b *StatusBoard) closed() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	b.message = "Fechadura fechada"
}

func (b *StatusBoard) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := Snapshot{State: b.state, Message: b.message}
	if !b.lastPay.IsZero() {
		s.LastPaymentTime = b.lastPay.Format(time.RFC3339)
	}
	return s
}
