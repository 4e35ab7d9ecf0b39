package request

import "strings"

// BookAppointmentRequest is the public booking form. Required fields are checked
// by the use case so every missing field is reported at once.
type BookAppointmentRequest struct {
	Name           string   `json:"name"`
	Contact        string   `json:"contact"`
	Date           string   `json:"date"`
	Time           string   `json:"time"`
	Services       []string `json:"services"`
	Message        string   `json:"message"`
	Token          string   `json:"token"`
	RecaptchaToken string   `json:"recaptchaToken"`
}

// ResolveCaptchaToken accepts both names the website form has used for the challenge response.
func (r BookAppointmentRequest) ResolveCaptchaToken() string {
	if v := strings.TrimSpace(r.Token); v != "" {
		return v
	}
	return strings.TrimSpace(r.RecaptchaToken)
}

type UpdateAppointmentStatusRequest struct {
	Status string `json:"status" binding:"required"`
}
