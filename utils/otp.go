// utils/otp.go
package utils

import (
	"crypto/rand"
	"io"
)

// OTPLength is the default number of digits in a one-time code.
const OTPLength = 6

// bytes at or above this bound are redrawn so every digit is equally likely
const digitBound = 250

// GenerateOTP returns length uniformly drawn decimal digits, leading zeros included.
func GenerateOTP(length int) (string, error) {
	return GenerateOTPFrom(rand.Reader, length)
}

// GenerateOTPFrom draws the digits from src.
func GenerateOTPFrom(src io.Reader, length int) (string, error) {
	if length <= 0 {
		length = OTPLength
	}
	code := make([]byte, 0, length)
	var b [1]byte
	for len(code) < length {
		if _, err := io.ReadFull(src, b[:]); err != nil {
			return "", err
		}
		if b[0] >= digitBound {
			continue
		}
		code = append(code, '0'+b[0]%10)
	}
	return string(code), nil
}

// IsOTP reports whether s is exactly OTPLength ASCII digits.
func IsOTP(s string) bool {
	if len(s) != OTPLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
