package entities

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the calendar-day representation used on the wire and in storage keys.
const DateLayout = "2006-01-02"

var ErrInvalidDate = errors.New("invalid date")

// TimeSlots lists the bookable slot labels of the daily window, in chronological order.
var TimeSlots = []string{"17:00", "17:30", "18:00", "18:30", "19:00", "19:30", "20:00"}

// ServiceCatalog maps the service codes a patient can book to their display label.
var ServiceCatalog = map[string]string{
	"consult":     "Consultation",
	"ecg":         "ECG",
	"echo":        "Echocardiography",
	"angiography": "Angiography",
}

func IsTimeSlot(label string) bool {
	for _, s := range TimeSlots {
		if s == label {
			return true
		}
	}
	return false
}

func IsKnownService(code string) bool {
	_, ok := ServiceCatalog[code]
	return ok
}

// NormalizeServices trims, lower-cases and de-duplicates service codes keeping the first occurrence order.
func NormalizeServices(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, s := range raw {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// NormalizeDate strips the time of day, keeping the calendar day t has in its own location.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate accepts a YYYY-MM-DD day or an RFC3339 timestamp and returns the normalized calendar day.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, ErrInvalidDate
	}
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return NormalizeDate(t), nil
}

func FormatDate(t time.Time) string {
	return NormalizeDate(t).Format(DateLayout)
}

// SlotKey is the storage key of a (date, time) slot, e.g. "2026-10-15#18:00".
func SlotKey(date time.Time, label string) string {
	return FormatDate(date) + "#" + label
}
