package models

import "time"

type Member struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Hostel       string    `json:"hostel"`
	Year         int       `json:"year"`   // 1-5
	Domain       string    `json:"domain"` // photography, cinematography, editing, ...
	PasswordHash string    `json:"-"`      // Never expose in JSON
	IsAdmin      bool      `json:"is_admin"`
	TOTPSecret   string    `json:"-"`
	TOTPEnabled  bool      `json:"totp_enabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SignupRequest represents the request body for signup
type SignupRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Hostel   string `json:"hostel"`
	Year     int    `json:"year"`
	Domain   string `json:"domain"`
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse represents the response after successful authentication.
// When the account has 2FA enabled, Token is empty and TempToken carries
// a short-lived token for the TOTP verification step.
type AuthResponse struct {
	Token       string  `json:"token,omitempty"`
	TempToken   string  `json:"temp_token,omitempty"`
	Requires2FA bool    `json:"requires_2fa"`
	Member      *Member `json:"member,omitempty"`
}

// CreateMemberRequest represents the request body for creating a member (admin)
type CreateMemberRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Hostel   string `json:"hostel"`
	Year     int    `json:"year"`
	Domain   string `json:"domain"`
	IsAdmin  bool   `json:"is_admin"`
}

// UpdateMemberRequest represents the request body for updating a member
type UpdateMemberRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"` // Optional
	Hostel   string `json:"hostel"`
	Year     int    `json:"year"`
	Domain   string `json:"domain"`
}
