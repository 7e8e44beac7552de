package event

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseStatus(t *testing.T) {
	cases := []struct {
		raw  string
		want Status
	}{
		{"APPROVED", StatusApproved},
		{"approved", StatusApproved},
		{" Paid ", StatusApproved},
		{"CONFIRMED", StatusApproved},
		{"3", StatusApproved},
		{"4", StatusApproved},
		{"DECLINED", StatusDeclined},
		{"refused", StatusDeclined},
		{"CANCELLED", StatusDeclined},
		{"7", StatusDeclined},
		{"CHARGEBACK_REQUESTED", StatusOther},
		{"banana", StatusOther},
		{"", StatusOther},
	}
	for _, c := range cases {
		if got := ParseStatus(c.raw); got != c.want {
			t.Errorf("ParseStatus(%q) = %s, want %s", c.raw, got, c.want)
		}
	}
}

func TestNormalize_Approved(t *testing.T) {
	ev, err := Normalize([]byte(`{"transactionId":"abc123","status":"APPROVED","occurredAt":"2024-05-01T12:00:00Z","amount":"49.90"}`))
	if err != nil {
		t.Fatalf("Normalize error: %v", err)
	}
	if ev.TransactionID != "abc123" {
		t.Fatalf("unexpected transaction id %q", ev.TransactionID)
	}
	if ev.Status != StatusApproved {
		t.Fatalf("unexpected status %s", ev.Status)
	}
	if !ev.OccurredAt.Equal(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected occurredAt %v", ev.OccurredAt)
	}
	if ev.Amount == nil || !ev.Amount.Equal(decimal.RequireFromString("49.90")) {
		t.Fatalf("unexpected amount %v", ev.Amount)
	}
}

func TestNormalize_NumericStatus(t *testing.T) {
	ev, err := Normalize([]byte(`{"transactionId":"tx_9","status":3}`))
	if err != nil {
		t.Fatalf("Normalize error: %v", err)
	}
	if ev.Status != StatusApproved {
		t.Fatalf("expected numeric status 3 to map to APPROVED, got %s", ev.Status)
	}
}

func TestNormalize_MissingOccurredAtGetsStamped(t *testing.T) {
	before := time.Now().UTC()
	ev, err := Normalize([]byte(`{"transactionId":"tx_1","status":"DECLINED"}`))
	if err != nil {
		t.Fatalf("Normalize error: %v", err)
	}
	if ev.OccurredAt.Before(before.Add(-time.Second)) {
		t.Fatalf("expected occurredAt near now, got %v", ev.OccurredAt)
	}
	if ev.Amount != nil {
		t.Fatalf("expected nil amount")
	}
}

func TestNormalize_Malformed(t *testing.T) {
	_, err := Normalize([]byte(`not json`))
	if !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("expected ErrMalformedPayload, got %v", err)
	}
}

func TestNormalize_MissingFields(t *testing.T) {
	cases := []string{
		`{}`,
		`{"status":"APPROVED"}`,
		`{"transactionId":"  ","status":"APPROVED"}`,
		`{"transactionId":"tx_1"}`,
		`{"transactionId":"tx_1","status":""}`,
	}
	for _, payload := range cases {
		if _, err := Normalize([]byte(payload)); !errors.Is(err, ErrMissingField) {
			t.Errorf("Normalize(%s): expected ErrMissingField, got %v", payload, err)
		}
	}
}

func TestNormalize_UnknownStatusIsOtherNotError(t *testing.T) {
	ev, err := Normalize([]byte(`{"transactionId":"tx_1","status":"SOME_NEW_VENDOR_STATUS"}`))
	if err != nil {
		t.Fatalf("Normalize error: %v", err)
	}
	if ev.Status != StatusOther {
		t.Fatalf("expected OTHER, got %s", ev.Status)
	}
}
