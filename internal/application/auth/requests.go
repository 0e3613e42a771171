package auth

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/go-auth-otp/internal/domain"
)

// OTPValue accepts the code as either a JSON string or a JSON number,
// since clients submit both forms.
type OTPValue string

func (o *OTPValue) UnmarshalJSON(b []byte) error {
	if bytes.HasPrefix(b, []byte(`"`)) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*o = OTPValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return errors.New("otp must be a string or a number")
	}
	*o = OTPValue(n.String())
	return nil
}

type SignupRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,maxbytes=72"`
}

type ConfirmSignupRequest struct {
	Email string   `json:"email" validate:"required,email"`
	OTP   OTPValue `json:"otp" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResult struct {
	Token string
	User  *domain.User
}

type ResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyResetRequest struct {
	Email string   `json:"email" validate:"required,email"`
	OTP   OTPValue `json:"otp" validate:"required"`
}

type CommitResetRequest struct {
	Email       string `json:"email" validate:"required,email"`
	NewPassword string `json:"newPassword" validate:"required,maxbytes=72"`
}
