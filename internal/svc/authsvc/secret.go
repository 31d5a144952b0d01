package authsvc

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"
)

// ErrMalformedSecret is returned when a stored credential secret cannot be
// decoded. It never occurs in normal operation; a hit means corrupt storage
// and surfaces as an internal error, never as a login failure.
var ErrMalformedSecret = errors.New("malformed credential secret")

// Credential secrets are encoded as hex(scrypt(password, salt)) + "." +
// hex(salt). The dot cannot appear in either hex half, so splitting is
// unambiguous. Cost parameters are fixed; changing them invalidates every
// stored secret.
const (
	scryptN      = 16384
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 64

	saltLength      = 16
	secretSeparator = "."
)

// DeriveSecret derives a credential secret from a plaintext password using a
// fresh random salt. Each call produces a different secret for the same
// password.
func DeriveSecret(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return "", fmt.Errorf("derive key: %w", err)
	}

	return hex.EncodeToString(key) + secretSeparator + hex.EncodeToString(salt), nil
}

// VerifySecret reports whether the password matches the stored credential
// secret. The hash comparison runs in constant time. A mismatch is (false,
// nil); only an undecodable secret yields ErrMalformedSecret.
func VerifySecret(password, secret string) (bool, error) {
	hashHex, saltHex, ok := strings.Cut(secret, secretSeparator)
	if !ok || strings.Contains(saltHex, secretSeparator) {
		return false, ErrMalformedSecret
	}

	hash, err := hex.DecodeString(hashHex)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrMalformedSecret, err)
	}

	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrMalformedSecret, err)
	}

	if len(hash) != scryptKeyLen || len(salt) != saltLength {
		return false, ErrMalformedSecret
	}

	key, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return false, fmt.Errorf("derive key: %w", err)
	}

	return subtle.ConstantTimeCompare(key, hash) == 1, nil
}
