package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

var otpSpan = big.NewInt(900000)

// NewOTP returns a uniformly random six-digit code in [100000, 999999].
func NewOTP() (string, error) {
	n, err := rand.Int(rand.Reader, otpSpan)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
