package utils

import (
	"fmt"
	"math/rand"
)

// GenerateOTP returns a 4-digit one-time code as a zero-padded string.
func GenerateOTP() string {
	return fmt.Sprintf("%04d", rand.Intn(10000))
}
