package models

import "time"

// User represents a user account in the system. The OTP fields hold at
// most one outstanding code per purpose; an empty string and zero expiry
// mean no code is pending.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose this to the client
	IsVerified   bool      `json:"isAccountVerified"`
	VerifyOTP    string    `json:"-"`
	VerifyOTPExp int64     `json:"-"` // unix seconds, 0 when unused
	ResetOTP     string    `json:"-"`
	ResetOTPExp  int64     `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
