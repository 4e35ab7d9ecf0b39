package response

import (
	"time"

	"clinic_api/internal/domain/availability"
	"clinic_api/internal/domain/entities"
)

type AppointmentResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Contact   string    `json:"contact"`
	Date      string    `json:"date" example:"2025-03-10"`
	Time      string    `json:"time" example:"18:00"`
	Services  []string  `json:"services"`
	Message   string    `json:"message"`
	Status    string    `json:"status" example:"pending"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func FromAppointment(a entities.Appointment) AppointmentResponse {
	services := a.Services
	if services == nil {
		services = []string{}
	}
	return AppointmentResponse{
		ID:        a.ID,
		Name:      a.PatientName,
		Contact:   a.Contact,
		Date:      a.Date.Format(time.DateOnly),
		Time:      a.Time,
		Services:  services,
		Message:   a.Message,
		Status:    string(a.Status),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func FromAppointments(items []entities.Appointment) []AppointmentResponse {
	out := make([]AppointmentResponse, 0, len(items))
	for _, a := range items {
		out = append(out, FromAppointment(a))
	}
	return out
}

// AppointmentDetailResponse is an appointment together with its ledger entries.
type AppointmentDetailResponse struct {
	AppointmentResponse
	Finances []FinanceRecordResponse `json:"finances"`
}

func FromAppointmentDetail(a entities.Appointment, finances []entities.FinanceRecord) AppointmentDetailResponse {
	return AppointmentDetailResponse{
		AppointmentResponse: FromAppointment(a),
		Finances:            FromFinanceRecords(finances),
	}
}

type SlotResponse struct {
	Time      string `json:"time" example:"17:00"`
	Remaining int    `json:"remaining" example:"2"`
	Available bool   `json:"available" example:"true"`
}

// AvailabilityResponse lists every slot label of the day. Remaining is the same data keyed by label.
type AvailabilityResponse struct {
	Date      string         `json:"date" example:"2025-03-10"`
	Capacity  int            `json:"capacity" example:"2"`
	Slots     []SlotResponse `json:"slots"`
	Remaining map[string]int `json:"remaining"`
}

func FromAvailability(a availability.Availability) AvailabilityResponse {
	slots := make([]SlotResponse, 0, len(a.Slots))
	for _, s := range a.Slots {
		slots = append(slots, SlotResponse{Time: s.Time, Remaining: s.Remaining, Available: s.Available})
	}
	return AvailabilityResponse{
		Date:      a.Date.Format(time.DateOnly),
		Capacity:  a.Capacity,
		Slots:     slots,
		Remaining: a.RemainingByTime(),
	}
}
