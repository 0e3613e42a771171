package domain

import "time"

// PendingRegistration holds signup data until the emailed OTP confirms it.
// Keyed by normalized email in the signup pool; a newer signup overwrites it.
type PendingRegistration struct {
	OTP       string    `json:"otp" dynamodbav:"otp"`
	Name      string    `json:"name" dynamodbav:"name"`
	Email     string    `json:"email" dynamodbav:"email"`
	Password  string    `json:"password" dynamodbav:"password"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
}

// ResetOTP is a password-reset code keyed by email in the reset pool.
// ExpiresAt is checked lazily on verification, not by the store.
type ResetOTP struct {
	OTP       string    `json:"otp" dynamodbav:"otp"`
	ExpiresAt time.Time `json:"expires_at" dynamodbav:"expires_at"`
}

// Expired reports whether the code is past its deadline at now.
func (r ResetOTP) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}
