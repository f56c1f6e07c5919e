package auth

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Cost 8 keeps a login around 25ms on small nodes
const bcryptCost = 8

// HashPassword generates a bcrypt hash of the password
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword checks if the provided password matches the hash
func VerifyPassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}

// IsHash reports whether a stored value looks like a bcrypt hash, so a
// table written before hashing was turned on keeps working
func IsHash(stored string) bool {
	if len(stored) != 60 {
		return false
	}
	return strings.HasPrefix(stored, "$2a$") || strings.HasPrefix(stored, "$2b$") || strings.HasPrefix(stored, "$2y$")
}
