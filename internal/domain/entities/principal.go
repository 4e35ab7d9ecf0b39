package entities

import "time"

// Principal is the administrator identity attached to a verified session token.
type Principal struct {
	Username  string    `json:"username"`
	TokenID   string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Session is the result of a successful login.
type Session struct {
	Token     string    `json:"token"`
	Principal Principal `json:"principal"`
}
