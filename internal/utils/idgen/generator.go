package idgen

import (
	"crypto/rand"
	"fmt"
	"strings"
)

const charset = "0123456789abcdefghijklmnopqrstuvwxyz"

// GenerateSecureID generates a cryptographically secure ID with the given prefix and length.
// Uses only alphanumeric characters (0-9, a-z) - no dashes or special characters.
func GenerateSecureID(prefix string, length int) (string, error) {
	bytes := make([]byte, length*2)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	encoded := make([]byte, length)
	for i := 0; i < length; i++ {
		encoded[i] = charset[bytes[i]%byte(len(charset))]
	}

	return fmt.Sprintf("%s_%s", prefix, string(encoded)), nil
}

// ValidateIDFormat reports whether id has the shape produced by GenerateSecureID.
func ValidateIDFormat(id, prefix string, length int) bool {
	rest, ok := strings.CutPrefix(id, prefix+"_")
	if !ok || len(rest) != length {
		return false
	}
	for _, char := range rest {
		if !strings.ContainsRune(charset, char) {
			return false
		}
	}
	return true
}
