// Package otp generates short numeric codes for sign-up confirmation,
// MFA challenges, and password resets.
package otp

import (
	"crypto/rand"
	"math/big"
)

// Generator produces one-time codes.
type Generator interface {
	Generate() (string, error)
}

// SixDigit generates zero-padded six digit codes using crypto/rand, matching
// the format Cognito itself sends over SMS and email.
type SixDigit struct{}

func (SixDigit) Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmtSixDigit(n.Int64()), nil
}

func fmtSixDigit(n int64) string {
	digits := [6]byte{}
	for i := 5; i >= 0; i-- {
		digits[i] = byte('0' + n%10)
		n /= 10
	}
	return string(digits[:])
}
