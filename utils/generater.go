package utils

import (
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

func GenerateOTP() string {
	// Generate a 4-digit OTP
	var number [1]byte
	rand.Read(number[:])
	return fmt.Sprintf("%04d", int(number[0])%10000)
}

// GenerateBookingRef returns a short human-readable reference for an
// appointment, e.g. "APT-9F3A2C1B".
func GenerateBookingRef() string {
	id := uuid.New()
	return "APT-" + strings.ToUpper(id.String()[:8])
}
