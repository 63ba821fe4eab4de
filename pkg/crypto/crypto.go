package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns a bcrypt hash of the supplied password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares the hashed password with the plaintext candidate.
func VerifyPassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}

// FingerprintHash derives a stable hex digest from client-identifying request
// metadata (typically the User-Agent header). Refresh tokens are bound to this
// digest so a token replayed from a different client is rejected.
func FingerprintHash(userAgent string) string {
	digest := sha256.Sum256([]byte(strings.TrimSpace(userAgent)))
	return hex.EncodeToString(digest[:])
}

// GenerateToken returns a hex encoding of length random bytes. The alphabet
// is [0-9a-f] only, so tokens embed safely in delimiter-separated formats.
func GenerateToken(length int) (string, error) {
	buffer := make([]byte, length)
	if _, err := rand.Read(buffer); err != nil {
		return "", err
	}
	return hex.EncodeToString(buffer), nil
}
