package services

import (
	"crypto/rand"
	"math/big"
)

// OTPLength is the number of digits in a one-time code.
const OTPLength = 6

// GenerateOTP returns a random numeric one-time code. Leading zeros are
// allowed, so codes are compared as strings, never as numbers.
func GenerateOTP() (string, error) {
	max := big.NewInt(10)
	code := make([]byte, OTPLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = byte('0' + n.Int64())
	}
	return string(code), nil
}
