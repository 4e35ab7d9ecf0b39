package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"clinic_api/internal/domain/entities"
	"clinic_api/internal/usecase/interfaces"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=finance_usecase.go -destination=../adapter/http/handlers/mocks/finance_usecase_mock.go -package=mocks

var (
	ErrPaymentGatewayBadRequest   = errors.New("payment gateway bad request")
	ErrPaymentGatewayUnauthorized = errors.New("payment gateway unauthorized")
)

// RecordPaymentInput is an administrator's ledger entry for an appointment.
//
// CardPayload is only used for card payments: when present it is forwarded to the
// payment gateway and the provider reference is kept on the record.
type RecordPaymentInput struct {
	AppointmentID string
	Amount        decimal.Decimal
	Method        string
	Notes         string
	PaymentDate   *time.Time
	CardPayload   json.RawMessage
}

// IFinanceUseCase encapsulates the ledger linked to appointments.
//
//   - RecordPayment requires the appointment to exist
//   - UpdateStatus is the only way a record's status changes
//   - Summarize aggregates with exact decimal arithmetic

type IFinanceUseCase interface {
	RecordPayment(ctx context.Context, in RecordPaymentInput) (entities.FinanceRecord, error)
	UpdateStatus(ctx context.Context, id string, status string, notes *string) (entities.FinanceRecord, error)
	GetByID(ctx context.Context, id string) (entities.FinanceRecord, error)
	ListByAppointment(ctx context.Context, appointmentID string) ([]entities.FinanceRecord, error)
	Ledger(ctx context.Context, filter entities.FinanceFilter) (entities.Ledger, error)
	Summarize(ctx context.Context, startDate, endDate string) (entities.FinanceSummary, error)
}

type FinanceUseCase struct {
	repo            interfaces.IFinanceRepository
	appointmentRepo interfaces.IAppointmentRepository
	gateway         interfaces.IPaymentGateway
	now             func() time.Time
}

var _ IFinanceUseCase = (*FinanceUseCase)(nil)

func NewFinanceUseCase(repo interfaces.IFinanceRepository, appointmentRepo interfaces.IAppointmentRepository, gateway interfaces.IPaymentGateway) *FinanceUseCase {
	return &FinanceUseCase{repo: repo, appointmentRepo: appointmentRepo, gateway: gateway, now: time.Now}
}

func (u *FinanceUseCase) RecordPayment(ctx context.Context, in RecordPaymentInput) (entities.FinanceRecord, error) {
	log.Info().Str("appointment_id", in.AppointmentID).Str("method", in.Method).Msg("[finance][usecase] record-payment start")

	var bad fieldErrors
	appointmentID := strings.TrimSpace(in.AppointmentID)
	if appointmentID == "" {
		bad.add("appointment_id")
	}
	if !in.Amount.IsPositive() {
		bad.add("amount")
	}
	method, ok := entities.ParsePaymentMethod(in.Method)
	if !ok {
		bad.add("payment_method")
	}
	if len(in.CardPayload) > 0 && !json.Valid(in.CardPayload) {
		bad.add("card_payload")
	}
	if err := bad.err(); err != nil {
		log.Info().Err(err).Msg("[finance][usecase] record-payment rejected by validation")
		return entities.FinanceRecord{}, err
	}

	appt, err := u.appointmentRepo.GetByID(ctx, appointmentID)
	if err != nil {
		log.Error().Err(err).Str("appointment_id", appointmentID).Msg("[finance][usecase] failed loading appointment")
		return entities.FinanceRecord{}, storeError(err)
	}
	if appt.ID == "" {
		log.Info().Str("appointment_id", appointmentID).Msg("[finance][usecase] appointment not found")
		return entities.FinanceRecord{}, ErrAppointmentNotFound
	}

	now := u.now().UTC()
	rec := entities.FinanceRecord{
		ID:            uuid.NewString(),
		AppointmentID: appt.ID,
		PatientName:   appt.PatientName,
		Amount:        in.Amount,
		PaymentMethod: method,
		Status:        entities.FinanceStatusPending,
		PaymentDate:   now,
		Notes:         strings.TrimSpace(in.Notes),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if in.PaymentDate != nil && !in.PaymentDate.IsZero() {
		rec.PaymentDate = in.PaymentDate.UTC()
	}

	if method == entities.PaymentMethodCard && len(in.CardPayload) > 0 {
		if err := u.chargeCard(ctx, &rec, in.CardPayload); err != nil {
			return entities.FinanceRecord{}, err
		}
	}

	created, err := u.repo.Create(ctx, rec)
	if err != nil {
		log.Error().Err(err).Str("appointment_id", appt.ID).Msg("[finance][usecase] repository create failed")
		if rec.ProviderPaymentID != "" {
			u.reverseCharge(ctx, rec)
		}
		if errors.Is(err, interfaces.ErrAppointmentMissing) {
			return entities.FinanceRecord{}, ErrAppointmentNotFound
		}
		return entities.FinanceRecord{}, storeError(err)
	}
	log.Info().Str("finance_id", created.ID).Str("appointment_id", appt.ID).Str("amount", created.Amount.String()).Msg("[finance][usecase] record-payment success")
	return created, nil
}

func (u *FinanceUseCase) chargeCard(ctx context.Context, rec *entities.FinanceRecord, payload json.RawMessage) error {
	if u.gateway == nil {
		log.Warn().Str("appointment_id", rec.AppointmentID).Msg("[finance][usecase] gateway not configured")
		return fmt.Errorf("%w: payment gateway not configured", ErrDependencyUnavailable)
	}

	var reqMap map[string]any
	if err := json.Unmarshal(payload, &reqMap); err == nil && reqMap != nil {
		if _, ok := reqMap["external_reference"]; !ok {
			reqMap["external_reference"] = rec.AppointmentID
		}
		if _, ok := reqMap["description"]; !ok {
			reqMap["description"] = fmt.Sprintf("Appointment %s", rec.AppointmentID)
		}
		// The ledger amount is the source of truth for the charge.
		reqMap["transaction_amount"] = rec.Amount.InexactFloat64()
		if b, err := json.Marshal(reqMap); err == nil {
			payload = b
		}
	}

	providerID, providerStatus, _, err := u.gateway.CreatePayment(ctx, payload)
	if err != nil {
		log.Error().Err(err).Str("appointment_id", rec.AppointmentID).Msg("[finance][usecase] payment gateway failed")
		switch {
		case isGatewayUnauthorized(err):
			return ErrPaymentGatewayUnauthorized
		case isGatewayBadRequest(err):
			return ErrPaymentGatewayBadRequest
		default:
			return fmt.Errorf("%w: payment gateway: %w", ErrDependencyUnavailable, err)
		}
	}
	rec.ProviderPaymentID = providerID
	rec.ProviderStatus = providerStatus
	log.Info().Str("provider_payment_id", providerID).Str("provider_status", providerStatus).Msg("[finance][usecase] payment gateway success")
	return nil
}

// reverseCharge refunds a card charge whose ledger entry could not be stored.
func (u *FinanceUseCase) reverseCharge(ctx context.Context, rec entities.FinanceRecord) {
	status, err := u.gateway.RefundPayment(context.WithoutCancel(ctx), rec.ProviderPaymentID)
	if err != nil {
		log.Error().Err(err).
			Str("appointment_id", rec.AppointmentID).
			Str("provider_payment_id", rec.ProviderPaymentID).
			Str("amount", rec.Amount.String()).
			Msg("[finance][usecase] refund after failed record failed, manual refund required")
		return
	}
	log.Warn().
		Str("appointment_id", rec.AppointmentID).
		Str("provider_payment_id", rec.ProviderPaymentID).
		Str("refund_status", status).
		Msg("[finance][usecase] charge refunded after failed record")
}

func (u *FinanceUseCase) UpdateStatus(ctx context.Context, id string, status string, notes *string) (entities.FinanceRecord, error) {
	next, ok := entities.ParseFinanceStatus(status)
	if !ok {
		return entities.FinanceRecord{}, ErrInvalidStatus
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.FinanceRecord{}, ErrFinanceRecordNotFound
	}
	if notes != nil {
		trimmed := strings.TrimSpace(*notes)
		notes = &trimmed
	}

	updated, err := u.repo.UpdateStatus(ctx, id, next, notes)
	if err != nil {
		log.Error().Err(err).Str("finance_id", id).Msg("[finance][usecase] update status failed")
		return entities.FinanceRecord{}, storeError(err)
	}
	if updated.ID == "" {
		return entities.FinanceRecord{}, ErrFinanceRecordNotFound
	}
	log.Info().Str("finance_id", id).Str("status", string(next)).Msg("[finance][usecase] status updated")
	return updated, nil
}

func (u *FinanceUseCase) GetByID(ctx context.Context, id string) (entities.FinanceRecord, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.FinanceRecord{}, ErrFinanceRecordNotFound
	}
	r, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.FinanceRecord{}, storeError(err)
	}
	if r.ID == "" {
		return entities.FinanceRecord{}, ErrFinanceRecordNotFound
	}
	return r, nil
}

func (u *FinanceUseCase) ListByAppointment(ctx context.Context, appointmentID string) ([]entities.FinanceRecord, error) {
	appointmentID = strings.TrimSpace(appointmentID)
	if appointmentID == "" {
		return nil, &ValidationError{Fields: []string{"appointment_id"}}
	}
	items, err := u.repo.ListByAppointmentID(ctx, appointmentID)
	if err != nil {
		return nil, storeError(err)
	}
	sortByPaymentDateDesc(items)
	return items, nil
}

// Ledger returns the filtered records, newest payment first, with their summary.
func (u *FinanceUseCase) Ledger(ctx context.Context, filter entities.FinanceFilter) (entities.Ledger, error) {
	items, err := u.repo.List(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("[finance][usecase] list failed")
		return entities.Ledger{}, storeError(err)
	}
	sortByPaymentDateDesc(items)
	return entities.Ledger{Records: items, Summary: entities.Summarize(items)}, nil
}

// Summarize aggregates the ledger over an optional payment date range.
// Either bound may be omitted; a date-only endDate includes that whole day.
func (u *FinanceUseCase) Summarize(ctx context.Context, startDate, endDate string) (entities.FinanceSummary, error) {
	filter, err := FinanceRange(startDate, endDate)
	if err != nil {
		return entities.FinanceSummary{}, err
	}
	ledger, err := u.Ledger(ctx, filter)
	if err != nil {
		return entities.FinanceSummary{}, err
	}
	return ledger.Summary, nil
}

// FinanceRange parses optional startDate/endDate bounds into a filter.
func FinanceRange(startDate, endDate string) (entities.FinanceFilter, error) {
	var bad fieldErrors
	var f entities.FinanceFilter

	if s := strings.TrimSpace(startDate); s != "" {
		from, _, err := parseBound(s)
		if err != nil {
			bad.add("startDate")
		}
		f.From = from
	}
	if s := strings.TrimSpace(endDate); s != "" {
		to, dateOnly, err := parseBound(s)
		if err != nil {
			bad.add("endDate")
		}
		if dateOnly {
			to = to.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		f.To = to
	}
	if err := bad.err(); err != nil {
		return entities.FinanceFilter{}, err
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		return entities.FinanceFilter{}, &ValidationError{Fields: []string{"startDate", "endDate"}}
	}
	return f, nil
}

func parseBound(raw string) (time.Time, bool, error) {
	if t, err := time.Parse(entities.DateLayout, raw); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false, err
	}
	return t.UTC(), false, nil
}

func sortByPaymentDateDesc(items []entities.FinanceRecord) {
	slices.SortStableFunc(items, func(a, b entities.FinanceRecord) int {
		if c := b.PaymentDate.Compare(a.PaymentDate); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

func isGatewayBadRequest(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "\"error\":\"bad_request\"") || strings.Contains(msg, "\"status\":400")
}

func isGatewayUnauthorized(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "\"error\":\"unauthorized\"") || strings.Contains(msg, "\"status\":401")
}
