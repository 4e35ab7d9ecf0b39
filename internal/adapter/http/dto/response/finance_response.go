package response

import (
	"time"

	"clinic_api/internal/domain/entities"
)

// Amounts are rendered as fixed two-decimal strings so no float rounding reaches the client.
type FinanceRecordResponse struct {
	ID                string    `json:"id"`
	AppointmentID     string    `json:"appointmentId"`
	PatientName       string    `json:"patientName"`
	Amount            string    `json:"amount" example:"150.00"`
	PaymentMethod     string    `json:"paymentMethod" example:"cash"`
	Status            string    `json:"status" example:"pending"`
	PaymentDate       time.Time `json:"paymentDate"`
	Notes             string    `json:"notes,omitempty"`
	ProviderPaymentID string    `json:"providerPaymentId,omitempty"`
	ProviderStatus    string    `json:"providerStatus,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func FromFinanceRecord(r entities.FinanceRecord) FinanceRecordResponse {
	return FinanceRecordResponse{
		ID:                r.ID,
		AppointmentID:     r.AppointmentID,
		PatientName:       r.PatientName,
		Amount:            r.Amount.StringFixed(2),
		PaymentMethod:     string(r.PaymentMethod),
		Status:            string(r.Status),
		PaymentDate:       r.PaymentDate,
		Notes:             r.Notes,
		ProviderPaymentID: r.ProviderPaymentID,
		ProviderStatus:    r.ProviderStatus,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

func FromFinanceRecords(items []entities.FinanceRecord) []FinanceRecordResponse {
	out := make([]FinanceRecordResponse, 0, len(items))
	for _, r := range items {
		out = append(out, FromFinanceRecord(r))
	}
	return out
}

type FinanceSummaryResponse struct {
	Total    string            `json:"total" example:"150.00"`
	ByStatus map[string]string `json:"byStatus"`
	ByMethod map[string]string `json:"byMethod"`
	Count    int               `json:"count"`
}

func FromFinanceSummary(s entities.FinanceSummary) FinanceSummaryResponse {
	out := FinanceSummaryResponse{
		Total:    s.Total.StringFixed(2),
		ByStatus: make(map[string]string, len(entities.FinanceStatuses)),
		ByMethod: make(map[string]string, len(entities.PaymentMethods)),
		Count:    s.Count,
	}
	for _, st := range entities.FinanceStatuses {
		out.ByStatus[string(st)] = s.ByStatus[st].StringFixed(2)
	}
	for _, m := range entities.PaymentMethods {
		out.ByMethod[string(m)] = s.ByMethod[m].StringFixed(2)
	}
	return out
}

type LedgerResponse struct {
	Records []FinanceRecordResponse `json:"records"`
	Summary FinanceSummaryResponse  `json:"summary"`
}

func FromLedger(l entities.Ledger) LedgerResponse {
	return LedgerResponse{
		Records: FromFinanceRecords(l.Records),
		Summary: FromFinanceSummary(l.Summary),
	}
}
