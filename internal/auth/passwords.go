package auth

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword derives a bcrypt hash for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether the password matches the stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// NormalizeAnswer canonicalizes a security answer for storage and
// comparison: answers match case-insensitively, ignoring surrounding
// whitespace.
func NormalizeAnswer(answer string) string {
	return strings.ToLower(strings.TrimSpace(answer))
}

// CheckAnswer compares a submitted security answer against the stored,
// already-normalized one.
func CheckAnswer(stored, submitted string) bool {
	return stored != "" && NormalizeAnswer(submitted) == NormalizeAnswer(stored)
}
