package response

import (
	"time"

	"clinic_api/internal/domain/entities"
)

type SessionResponse struct {
	Token     string    `json:"token,omitempty"`
	Username  string    `json:"username" example:"admin"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func FromSession(s entities.Session) SessionResponse {
	return SessionResponse{Token: s.Token, Username: s.Principal.Username, ExpiresAt: s.Principal.ExpiresAt}
}

func FromPrincipal(p entities.Principal) SessionResponse {
	return SessionResponse{Username: p.Username, ExpiresAt: p.ExpiresAt}
}
