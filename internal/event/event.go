package event

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

var (
	ErrMalformedPayload = errors.New("malformed payload")
	ErrMissingField     = errors.New("missing required field")
)

type Status string

const (
	StatusApproved Status = "APPROVED"
	StatusDeclined Status = "DECLINED"
	StatusOther    Status = "OTHER"
)

// PaymentEvent is the canonical form of one vendor notification. Immutable
// after Normalize; the amount is informational and never validated.
type PaymentEvent struct {
	TransactionID string
	Status        Status
	OccurredAt    time.Time
	Amount        *decimal.Decimal
}

// ParseStatus maps a vendor status to the closed domain enum. PagBank sends
// both names and numeric codes: 3 (paid) and 4 (available) mean approved,
// 7 means cancelled. Anything unrecognized is Other, never an error, so new
// vendor statuses flow through as events the dispatcher does not act on.
func ParseStatus(raw string) Status {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "APPROVED", "PAID", "CONFIRMED", "3", "4":
		return StatusApproved
	case "DECLINED", "REFUSED", "CANCELLED", "7":
		return StatusDeclined
	default:
		return StatusOther
	}
}

type rawNotification struct {
	TransactionID string           `json:"transactionId"`
	Status        json.RawMessage  `json:"status"`
	OccurredAt    string           `json:"occurredAt"`
	Amount        *decimal.Decimal `json:"amount"`
}

// Normalize parses a verified payload into a PaymentEvent. It is pure and
// deterministic for identical payload bytes, except that a payload without a
// usable occurredAt is stamped with the current time.
func Normalize(payload []byte) (PaymentEvent, error) {
	var raw rawNotification
	if err := json.Unmarshal(payload, &raw); err != nil {
		return PaymentEvent{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	txID := strings.TrimSpace(raw.TransactionID)
	if txID == "" {
		return PaymentEvent{}, fmt.Errorf("%w: transactionId", ErrMissingField)
	}
	statusText, ok := decodeStatusText(raw.Status)
	if !ok {
		return PaymentEvent{}, fmt.Errorf("%w: status", ErrMissingField)
	}

	occurredAt := time.Now().UTC()
	if raw.OccurredAt != "" {
		if t, err := time.Parse(time.RFC3339, raw.OccurredAt); err == nil {
			occurredAt = t.UTC()
		}
	}

	return PaymentEvent{
		TransactionID: txID,
		Status:        ParseStatus(statusText),
		OccurredAt:    occurredAt,
		Amount:        raw.Amount,
	}, nil
}

// decodeStatusText accepts the status as either a JSON string or a bare
// number (PagBank's numeric codes).
func decodeStatusText(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(s)
		return s, s != ""
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), n.String() != ""
	}
	return "", false
}
