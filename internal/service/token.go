package service

import (
	"crypto/rand"
	"encoding/hex"
)

// newConfirmationToken returns a cryptographically secure random token
// for the e-mail confirmation link.  32 bytes encode to 64 hex
// characters, which fits the bookings.confirmation_token column.
func newConfirmationToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
