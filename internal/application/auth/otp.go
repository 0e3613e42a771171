package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

const (
	otpMin = 100000
	otpMax = 999999
)

// GenerateOTP returns a uniformly random 6-digit code with no leading zero.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpMax-otpMin+1))
	if err != nil {
		return "", fmt.Errorf("generate OTP: %w", err)
	}
	return strconv.FormatInt(n.Int64()+otpMin, 10), nil
}

// matchString compares codes as trimmed strings.
func matchString(stored string, supplied OTPValue) bool {
	return strings.TrimSpace(stored) == strings.TrimSpace(string(supplied))
}

// matchNumeric compares codes as integers. Anything that does not parse never matches.
func matchNumeric(stored string, supplied OTPValue) bool {
	a, err := strconv.Atoi(strings.TrimSpace(stored))
	if err != nil {
		return false
	}
	b, err := strconv.Atoi(strings.TrimSpace(string(supplied)))
	if err != nil {
		return false
	}
	return a == b
}
