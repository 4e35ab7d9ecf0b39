package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"clinic_api/internal/domain/availability"
	"clinic_api/internal/domain/entities"
	"clinic_api/internal/usecase/interfaces"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

//go:generate mockgen -source=appointment_usecase.go -destination=../adapter/http/handlers/mocks/appointment_usecase_mock.go -package=mocks

// BookAppointmentInput is a public booking request as submitted by the website form.
type BookAppointmentInput struct {
	PatientName  string
	Contact      string
	Date         string
	Time         string
	Services     []string
	Message      string
	CaptchaToken string
	RemoteIP     string
}

// IAppointmentUseCase exposes the appointment lifecycle.
//
//   - Book: public intake, gated by human verification and slot capacity
//   - Availability: public per-slot remaining seats for a day
//   - Confirm / Cancel / UpdateStatus / Delete: administrator actions

type IAppointmentUseCase interface {
	Book(ctx context.Context, in BookAppointmentInput) (entities.Appointment, error)
	Availability(ctx context.Context, date string) (availability.Availability, error)
	GetByID(ctx context.Context, id string) (entities.Appointment, error)
	List(ctx context.Context, filter entities.AppointmentFilter) ([]entities.Appointment, error)
	Confirm(ctx context.Context, id string) (entities.Appointment, error)
	Cancel(ctx context.Context, id string) (entities.Appointment, error)
	UpdateStatus(ctx context.Context, id string, status string) (entities.Appointment, error)
	Delete(ctx context.Context, id string) error
}

type AppointmentUseCaseConfig struct {
	MaxSlotsPerTime int
	// CaptchaDisabled skips human verification entirely. Without it a missing
	// verifier fails every booking instead of silently accepting it.
	CaptchaDisabled bool
}

type AppointmentUseCase struct {
	repo        interfaces.IAppointmentRepository
	financeRepo interfaces.IFinanceRepository
	captcha     interfaces.ICaptchaVerifier
	cfg         AppointmentUseCaseConfig
	now         func() time.Time
}

var _ IAppointmentUseCase = (*AppointmentUseCase)(nil)

func NewAppointmentUseCase(
	repo interfaces.IAppointmentRepository,
	financeRepo interfaces.IFinanceRepository,
	captcha interfaces.ICaptchaVerifier,
	cfg AppointmentUseCaseConfig,
) *AppointmentUseCase {
	if cfg.MaxSlotsPerTime <= 0 {
		cfg.MaxSlotsPerTime = availability.DefaultMaxSlotsPerTime
	}
	return &AppointmentUseCase{
		repo:        repo,
		financeRepo: financeRepo,
		captcha:     captcha,
		cfg:         cfg,
		now:         time.Now,
	}
}

func (u *AppointmentUseCase) Book(ctx context.Context, in BookAppointmentInput) (entities.Appointment, error) {
	log.Info().Str("date", in.Date).Str("time", in.Time).Msg("[appointment][usecase] book start")

	a, err := u.newAppointment(in)
	if err != nil {
		log.Info().Err(err).Msg("[appointment][usecase] book rejected by validation")
		return entities.Appointment{}, err
	}

	if err := u.verifyHuman(ctx, in.CaptchaToken, in.RemoteIP); err != nil {
		log.Warn().Err(err).Str("slot", a.SlotKey()).Msg("[appointment][usecase] human verification failed")
		return entities.Appointment{}, err
	}

	created, err := u.repo.CreateIfAdmitted(ctx, a, u.admit(a))
	if err != nil {
		if errors.Is(err, ErrSlotUnavailable) {
			log.Info().Str("slot", a.SlotKey()).Msg("[appointment][usecase] slot full")
			return entities.Appointment{}, err
		}
		log.Error().Err(err).Str("slot", a.SlotKey()).Msg("[appointment][usecase] repository create failed")
		return entities.Appointment{}, storeError(err)
	}
	log.Info().Str("appointment_id", created.ID).Str("slot", created.SlotKey()).Msg("[appointment][usecase] book success")
	return created, nil
}

// admit runs the availability calculator against the day's bookings as seen by the store.
func (u *AppointmentUseCase) admit(a entities.Appointment) interfaces.AdmitFunc {
	return func(sameDay []entities.Appointment) error {
		av := availability.Calculate(a.Date, sameDay, u.cfg.MaxSlotsPerTime)
		if av.Remaining(a.Time) < 1 {
			return ErrSlotUnavailable
		}
		return nil
	}
}

func (u *AppointmentUseCase) newAppointment(in BookAppointmentInput) (entities.Appointment, error) {
	var bad fieldErrors

	name := strings.TrimSpace(in.PatientName)
	if name == "" {
		bad.add("name")
	}
	contact := strings.TrimSpace(in.Contact)
	if contact == "" {
		bad.add("contact")
	}
	date, err := entities.ParseDate(in.Date)
	if err != nil {
		bad.add("date")
	}
	slot := strings.TrimSpace(in.Time)
	if !entities.IsTimeSlot(slot) {
		bad.add("time")
	}
	services := entities.NormalizeServices(in.Services)
	if len(services) == 0 {
		bad.add("services")
	}
	for _, s := range services {
		if !entities.IsKnownService(s) {
			bad.add("services")
			break
		}
	}
	message := strings.TrimSpace(in.Message)
	if message == "" {
		bad.add("message")
	}
	if !u.cfg.CaptchaDisabled && strings.TrimSpace(in.CaptchaToken) == "" {
		bad.add("token")
	}
	if err := bad.err(); err != nil {
		return entities.Appointment{}, err
	}

	now := u.now().UTC()
	return entities.Appointment{
		ID:          uuid.NewString(),
		PatientName: name,
		Contact:     contact,
		Date:        date,
		Time:        slot,
		Services:    services,
		Message:     message,
		Status:      entities.AppointmentStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (u *AppointmentUseCase) verifyHuman(ctx context.Context, token, remoteIP string) error {
	if u.cfg.CaptchaDisabled {
		return nil
	}
	if u.captcha == nil {
		return fmt.Errorf("%w: captcha verifier not configured", ErrDependencyUnavailable)
	}
	ok, err := u.captcha.Verify(ctx, strings.TrimSpace(token), remoteIP)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDependencyUnavailable, err)
	}
	if !ok {
		return ErrCaptchaRejected
	}
	return nil
}

func (u *AppointmentUseCase) Availability(ctx context.Context, date string) (availability.Availability, error) {
	day, err := entities.ParseDate(date)
	if err != nil {
		return availability.Availability{}, &ValidationError{Fields: []string{"date"}}
	}
	sameDay, err := u.repo.ListByDate(ctx, day)
	if err != nil {
		log.Error().Err(err).Str("date", entities.FormatDate(day)).Msg("[appointment][usecase] list by date failed")
		return availability.Availability{}, storeError(err)
	}
	return availability.Calculate(day, sameDay, u.cfg.MaxSlotsPerTime), nil
}

func (u *AppointmentUseCase) GetByID(ctx context.Context, id string) (entities.Appointment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Appointment{}, ErrAppointmentNotFound
	}
	a, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.Appointment{}, storeError(err)
	}
	if a.ID == "" {
		return entities.Appointment{}, ErrAppointmentNotFound
	}
	return a, nil
}

func (u *AppointmentUseCase) List(ctx context.Context, filter entities.AppointmentFilter) ([]entities.Appointment, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	items, err := u.repo.List(ctx, filter)
	if err != nil {
		return nil, storeError(err)
	}
	return items, nil
}

func (u *AppointmentUseCase) Confirm(ctx context.Context, id string) (entities.Appointment, error) {
	return u.transition(ctx, id, entities.AppointmentStatusConfirmed)
}

func (u *AppointmentUseCase) Cancel(ctx context.Context, id string) (entities.Appointment, error) {
	return u.transition(ctx, id, entities.AppointmentStatusCancelled)
}

func (u *AppointmentUseCase) UpdateStatus(ctx context.Context, id string, status string) (entities.Appointment, error) {
	next, ok := entities.ParseAppointmentStatus(status)
	if !ok {
		log.Info().Str("appointment_id", id).Str("status", status).Msg("[appointment][usecase] invalid status")
		return entities.Appointment{}, ErrInvalidStatus
	}
	return u.transition(ctx, id, next)
}

// transition applies a status change. Capacity is enforced at booking time only:
// moving a cancelled appointment back to pending or confirmed retakes its seat
// without an admission check and is logged as a warning.
func (u *AppointmentUseCase) transition(ctx context.Context, id string, next entities.AppointmentStatus) (entities.Appointment, error) {
	current, err := u.GetByID(ctx, id)
	if err != nil {
		return entities.Appointment{}, err
	}
	if current.Status == next {
		return current, nil
	}
	if !current.Status.CanTransitionTo(next) {
		return entities.Appointment{}, ErrInvalidStatus
	}

	updated, err := u.repo.UpdateStatus(ctx, current.ID, next)
	if err != nil {
		log.Error().Err(err).Str("appointment_id", current.ID).Msg("[appointment][usecase] update status failed")
		return entities.Appointment{}, storeError(err)
	}
	if updated.ID == "" {
		return entities.Appointment{}, ErrAppointmentNotFound
	}
	if !current.Status.ConsumesCapacity() && updated.Status.ConsumesCapacity() {
		log.Warn().
			Str("appointment_id", updated.ID).
			Str("slot", updated.SlotKey()).
			Msg("[appointment][usecase] reinstated without admission check, slot may exceed capacity")
	}
	log.Info().
		Str("appointment_id", updated.ID).
		Str("from", string(current.Status)).
		Str("to", string(updated.Status)).
		Msg("[appointment][usecase] status changed")
	return updated, nil
}

// Delete removes an appointment. It is refused while ledger entries still reference it.
func (u *AppointmentUseCase) Delete(ctx context.Context, id string) error {
	current, err := u.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if u.financeRepo != nil {
		entries, err := u.financeRepo.ListByAppointmentID(ctx, current.ID)
		if err != nil {
			return storeError(err)
		}
		if len(entries) > 0 {
			log.Info().Str("appointment_id", current.ID).Int("entries", len(entries)).Msg("[appointment][usecase] delete refused, ledger entries exist")
			return ErrAppointmentHasLedgerEntries
		}
	}

	deleted, err := u.repo.Delete(ctx, current.ID)
	if errors.Is(err, interfaces.ErrLinkedEntries) {
		log.Info().Str("appointment_id", current.ID).Msg("[appointment][usecase] delete refused, ledger entry recorded concurrently")
		return ErrAppointmentHasLedgerEntries
	}
	if err != nil {
		return storeError(err)
	}
	if deleted.ID == "" {
		return ErrAppointmentNotFound
	}
	log.Info().Str("appointment_id", deleted.ID).Msg("[appointment][usecase] deleted")
	return nil
}

func storeError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: store: %w", ErrDependencyUnavailable, err)
}
