package entities

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FinanceStatus represents the settlement state of a ledger entry.
//
// It is changed by an administrator only and is never derived from the
// status of the referenced appointment.

type FinanceStatus string

const (
	FinanceStatusPending   FinanceStatus = "pending"
	FinanceStatusCompleted FinanceStatus = "completed"
	FinanceStatusRefunded  FinanceStatus = "refunded"
)

var FinanceStatuses = []FinanceStatus{FinanceStatusPending, FinanceStatusCompleted, FinanceStatusRefunded}

func ParseFinanceStatus(raw string) (FinanceStatus, bool) {
	s := FinanceStatus(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range FinanceStatuses {
		if s == known {
			return s, true
		}
	}
	return "", false
}

type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
)

var PaymentMethods = []PaymentMethod{PaymentMethodCash, PaymentMethodCard, PaymentMethodBankTransfer}

func ParsePaymentMethod(raw string) (PaymentMethod, bool) {
	m := PaymentMethod(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range PaymentMethods {
		if m == known {
			return m, true
		}
	}
	return "", false
}

// FinanceRecord is a ledger entry linked to an appointment.
//
// Storage model (DynamoDB):
//   - PK: id
//   - GSI1 (appointment_id-index): appointment_id
//
// PatientName is copied from the appointment when the record is created so the
// ledger stays readable if the appointment changes later.
//
// ProviderPaymentID/ProviderStatus are only set for card payments processed
// through the payment gateway.
type FinanceRecord struct {
	ID                string          `json:"id"`
	AppointmentID     string          `json:"appointment_id"`
	PatientName       string          `json:"patient_name"`
	Amount            decimal.Decimal `json:"amount"`
	PaymentMethod     PaymentMethod   `json:"payment_method"`
	Status            FinanceStatus   `json:"status"`
	PaymentDate       time.Time       `json:"payment_date"`
	Notes             string          `json:"notes,omitempty"`
	ProviderPaymentID string          `json:"provider_payment_id,omitempty"`
	ProviderStatus    string          `json:"provider_status,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// FinanceFilter narrows ledger listings. From/To bound PaymentDate and are inclusive.
type FinanceFilter struct {
	Status FinanceStatus
	Method PaymentMethod
	From   time.Time
	To     time.Time
}

func (f FinanceFilter) Matches(r FinanceRecord) bool {
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.Method != "" && r.PaymentMethod != f.Method {
		return false
	}
	if !f.From.IsZero() && r.PaymentDate.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && r.PaymentDate.After(f.To) {
		return false
	}
	return true
}

// FinanceSummary aggregates ledger amounts. Every status and method key is always present.
type FinanceSummary struct {
	Total    decimal.Decimal                   `json:"total"`
	ByStatus map[FinanceStatus]decimal.Decimal `json:"by_status"`
	ByMethod map[PaymentMethod]decimal.Decimal `json:"by_method"`
	Count    int                               `json:"count"`
}

// Ledger is a filtered set of finance records together with their aggregate view.
type Ledger struct {
	Records []FinanceRecord `json:"records"`
	Summary FinanceSummary  `json:"summary"`
}

// Summarize sums amounts over records grouped by status and by payment method.
func Summarize(records []FinanceRecord) FinanceSummary {
	s := FinanceSummary{
		Total:    decimal.Zero,
		ByStatus: make(map[FinanceStatus]decimal.Decimal, len(FinanceStatuses)),
		ByMethod: make(map[PaymentMethod]decimal.Decimal, len(PaymentMethods)),
	}
	for _, st := range FinanceStatuses {
		s.ByStatus[st] = decimal.Zero
	}
	for _, m := range PaymentMethods {
		s.ByMethod[m] = decimal.Zero
	}
	for _, r := range records {
		s.Total = s.Total.Add(r.Amount)
		s.ByStatus[r.Status] = s.ByStatus[r.Status].Add(r.Amount)
		s.ByMethod[r.PaymentMethod] = s.ByMethod[r.PaymentMethod].Add(r.Amount)
		s.Count++
	}
	return s
}
