package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"sessiongate/internal/auth/domain/services"
)

// generateSessionToken возвращает непрозрачный токен из services.SessionTokenBytes случайных байт.
func generateSessionToken() (string, error) {
	buf := make([]byte, services.SessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("%w: %w", services.ErrTokenGenerationFailed, err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// HashSessionToken возвращает hex SHA-256 токена. В хранилище попадает только он.
func HashSessionToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
