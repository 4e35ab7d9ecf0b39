package entities

import (
	"strings"
	"time"
)

// AppointmentStatus represents the lifecycle of a clinic appointment.
//
// Domain notes:
//   - A booking always starts as pending.
//   - Administrators may move an appointment between any of the three states;
//     confirmed and cancelled are only terminal for automated transitions.

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentStatusPending:   {AppointmentStatusConfirmed, AppointmentStatusCancelled},
	AppointmentStatusConfirmed: {AppointmentStatusCancelled, AppointmentStatusPending},
	AppointmentStatusCancelled: {AppointmentStatusConfirmed, AppointmentStatusPending},
}

// ParseAppointmentStatus returns the status for raw, or false when raw is not one of the known states.
func ParseAppointmentStatus(raw string) (AppointmentStatus, bool) {
	s := AppointmentStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", false
	}
	return s, true
}

func (s AppointmentStatus) Valid() bool {
	_, ok := appointmentTransitions[s]
	return ok
}

// CanTransitionTo reports whether an administrator may move an appointment from s to next.
// Staying in the same state is always allowed and treated as a no-op by callers.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	if s == next {
		return true
	}
	for _, allowed := range appointmentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ConsumesCapacity reports whether an appointment in this state occupies a seat in its slot.
func (s AppointmentStatus) ConsumesCapacity() bool {
	return s == AppointmentStatusPending || s == AppointmentStatusConfirmed
}

// Appointment is a booking persisted by the clinic API.
//
// Storage model (DynamoDB):
//   - PK: id
//   - GSI1 (date-index): date (YYYY-MM-DD)
//
// Date carries the calendar day only (UTC midnight); Time is one of TimeSlots.
type Appointment struct {
	ID          string            `json:"id"`
	PatientName string            `json:"name"`
	Contact     string            `json:"contact"`
	Date        time.Time         `json:"date"`
	Time        string            `json:"time"`
	Services    []string          `json:"services"`
	Message     string            `json:"message"`
	Status      AppointmentStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// SlotKey identifies the (date, time) slot the appointment occupies.
func (a Appointment) SlotKey() string {
	return SlotKey(a.Date, a.Time)
}

// AppointmentFilter narrows appointment listings. Zero values mean "no constraint".
type AppointmentFilter struct {
	Status AppointmentStatus
	From   time.Time
	To     time.Time
}

// Matches reports whether a satisfies every constraint of f. From and To are inclusive calendar days.
func (f AppointmentFilter) Matches(a Appointment) bool {
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	if !f.From.IsZero() && a.Date.Before(NormalizeDate(f.From)) {
		return false
	}
	if !f.To.IsZero() && a.Date.After(NormalizeDate(f.To)) {
		return false
	}
	return true
}

// LessAppointment orders appointments by date, time, creation and id.
func LessAppointment(a, b Appointment) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.Before(b.Date)
	}
	if a.Time != b.Time {
		return a.Time < b.Time
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}
