package availability

import (
	"time"

	"clinic_api/internal/domain/entities"
)

// DefaultMaxSlotsPerTime is the number of non-cancelled bookings a single slot accepts.
const DefaultMaxSlotsPerTime = 2

type SlotAvailability struct {
	Time      string `json:"time"`
	Remaining int    `json:"remaining"`
	Available bool   `json:"available"`
}

// Availability is the per-slot remaining capacity of one calendar day.
type Availability struct {
	Date     time.Time          `json:"date"`
	Capacity int                `json:"capacity"`
	Slots    []SlotAvailability `json:"slots"`
}

// Remaining returns the free seats for label, or 0 when label is not a known slot.
func (a Availability) Remaining(label string) int {
	for _, s := range a.Slots {
		if s.Time == label {
			return s.Remaining
		}
	}
	return 0
}

// RemainingByTime returns the availability as a slot label -> remaining seats map.
func (a Availability) RemainingByTime() map[string]int {
	out := make(map[string]int, len(a.Slots))
	for _, s := range a.Slots {
		out[s.Time] = s.Remaining
	}
	return out
}

// Calculate returns, for every slot label of date, maxPerSlot minus the number of
// pending or confirmed appointments booked at that label, floored at 0.
//
// Appointments on other days or at unknown labels are ignored. The input slice is not modified.
func Calculate(date time.Time, appointments []entities.Appointment, maxPerSlot int) Availability {
	if maxPerSlot < 0 {
		maxPerSlot = 0
	}
	day := entities.NormalizeDate(date)

	taken := make(map[string]int, len(entities.TimeSlots))
	for _, a := range appointments {
		if !a.Status.ConsumesCapacity() {
			continue
		}
		if !entities.NormalizeDate(a.Date).Equal(day) {
			continue
		}
		taken[a.Time]++
	}

	slots := make([]SlotAvailability, 0, len(entities.TimeSlots))
	for _, label := range entities.TimeSlots {
		remaining := maxPerSlot - taken[label]
		if remaining < 0 {
			remaining = 0
		}
		slots = append(slots, SlotAvailability{
			Time:      label,
			Remaining: remaining,
			Available: remaining > 0,
		})
	}

	return Availability{Date: day, Capacity: maxPerSlot, Slots: slots}
}
