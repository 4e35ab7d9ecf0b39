package request

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidPaymentDate = errors.New("invalid payment date")
)

// RecordPaymentRequest is an admin ledger entry.
//
// `amount` may be sent as a JSON number or a decimal string. `mpPayload` is only
// used for card payments and is forwarded to Mercado Pago as-is.
type RecordPaymentRequest struct {
	AppointmentID string          `json:"appointmentId"`
	Amount        json.RawMessage `json:"amount" swaggertype:"number"`
	PaymentMethod string          `json:"paymentMethod"`
	Notes         string          `json:"notes"`
	PaymentDate   string          `json:"paymentDate"`
	MPPayload     json.RawMessage `json:"mpPayload" swaggertype:"object"`
}

// ResolveAmount parses the amount exactly. A missing amount resolves to zero so the
// use case reports it together with the other invalid fields.
func (r RecordPaymentRequest) ResolveAmount() (decimal.Decimal, error) {
	raw := strings.TrimSpace(string(r.Amount))
	if raw == "" || raw == "null" {
		return decimal.Zero, nil
	}
	raw = strings.Trim(raw, `"`)
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ResolvePaymentDate accepts RFC 3339 timestamps or plain dates. Empty means "now".
func (r RecordPaymentRequest) ResolvePaymentDate() (*time.Time, error) {
	raw := strings.TrimSpace(r.PaymentDate)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, ErrInvalidPaymentDate
}

func (r RecordPaymentRequest) ResolveCardPayload() json.RawMessage {
	raw := strings.TrimSpace(string(r.MPPayload))
	if raw == "" || raw == "null" {
		return nil
	}
	return r.MPPayload
}

type UpdateFinanceStatusRequest struct {
	Status string  `json:"status" binding:"required"`
	Notes  *string `json:"notes"`
}
