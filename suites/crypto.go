package suites

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/chacha20poly1305"
)

// FieldKeySize is the key length for field-level encryption.
const FieldKeySize = chacha20poly1305.KeySize

const maxUsernameLength = 50

// usernameRejectChars are structural operator characters that must never
// appear in a plain username.
const usernameRejectChars = "${};"

// NewFieldKey generates a random field-encryption key.
func NewFieldKey() ([]byte, error) {
	key := make([]byte, FieldKeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, errors.Wrap(err, "generate field key")
	}
	return key, nil
}

// EncryptField seals plaintext with XChaCha20-Poly1305 under key. The random
// nonce is prepended to the ciphertext, so two encryptions of the same input
// produce different bytes while both decrypt to the original.
func EncryptField(key, plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, errors.Wrap(err, "field cipher")
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, errors.Wrap(err, "nonce")
	}
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// DecryptField reverses EncryptField, reproducing the original byte sequence
// exactly.
func DecryptField(key, sealed []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, errors.Wrap(err, "field cipher")
	}
	if len(sealed) < aead.NonceSize() {
		return nil, errors.New("ciphertext shorter than nonce")
	}
	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, errors.Wrap(err, "decrypt field")
	}
	return plaintext, nil
}

// HashPassword returns the hex SHA-256 digest of password.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// ValidateUsername is the allow-list input validator the injection checks
// exercise: only plain strings up to 50 characters with no structural
// operator characters are accepted. Non-string inputs are always rejected.
func ValidateUsername(input interface{}) bool {
	s, ok := input.(string)
	if !ok {
		return false
	}
	if len(s) == 0 || len(s) > maxUsernameLength {
		return false
	}
	return !strings.ContainsAny(s, usernameRejectChars)
}
