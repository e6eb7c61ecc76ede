package config

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	encPrefix    = "enc:"
	secretKeyEnv = "AULE_SECRET_KEY"
)

// ErrNoSecretKey is returned when an encrypted value must be read but no key
// is available.
var ErrNoSecretKey = errors.New("no secret key: set AULE_SECRET_KEY or run `aule-serve encrypt`")

// SecretKey encrypts configuration secrets (API keys, connection strings)
// with AES-256-GCM.
type SecretKey struct {
	key []byte
}

// DefaultKeyPath is where a generated key is persisted: ~/.aule/secret.key
func DefaultKeyPath() string {
	return filepath.Join(homeDir(), ".aule", "secret.key")
}

// LoadSecretKey derives the key from AULE_SECRET_KEY, or reads the key file
// at path. It never creates a key: decrypting with a fresh key cannot work.
func LoadSecretKey(path string) (*SecretKey, error) {
	if raw := os.Getenv(secretKeyEnv); raw != "" {
		h := sha256.Sum256([]byte(raw))
		return &SecretKey{key: h[:]}, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoSecretKey
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read secret key: %w", err)
	}
	if len(data) < 32 {
		return nil, fmt.Errorf("secret key at %s is too short", path)
	}
	return &SecretKey{key: data[:32]}, nil
}

// LoadOrCreateSecretKey is LoadSecretKey that generates and persists a
// random key at path on first use.
func LoadOrCreateSecretKey(path string) (*SecretKey, error) {
	sk, err := LoadSecretKey(path)
	if !errors.Is(err, ErrNoSecretKey) {
		return sk, err
	}

	key := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("failed to generate secret key: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create key directory: %w", err)
	}
	if err := os.WriteFile(path, key, 0600); err != nil {
		return nil, fmt.Errorf("failed to write secret key: %w", err)
	}
	return &SecretKey{key: key}, nil
}

func (s *SecretKey) aead() (cipher.AEAD, error) {
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return nil, fmt.Errorf("aes cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("gcm: %w", err)
	}
	return gcm, nil
}

// Encrypt seals plaintext and returns "enc:" + base64(nonce|ciphertext).
// Empty input stays empty.
func (s *SecretKey) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	gcm, err := s.aead()
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("nonce: %w", err)
	}

	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return encPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens an "enc:" value. Values without the prefix are returned
// unchanged.
func (s *SecretKey) Decrypt(value string) (string, error) {
	if !IsEncrypted(value) {
		return value, nil
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, encPrefix))
	if err != nil {
		return "", fmt.Errorf("base64 decode: %w", err)
	}

	gcm, err := s.aead()
	if err != nil {
		return "", err
	}
	if len(data) < gcm.NonceSize() {
		return "", fmt.Errorf("ciphertext too short")
	}

	nonce, sealed := data[:gcm.NonceSize()], data[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("decryption failed: %w", err)
	}
	return string(plaintext), nil
}

// IsEncrypted reports whether value carries the "enc:" prefix.
func IsEncrypted(value string) bool {
	return strings.HasPrefix(value, encPrefix)
}

// MaskSecret returns a masked version safe for logging: "****abcd"
func MaskSecret(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}

func homeDir() string {
	if h, err := os.UserHomeDir(); err == nil && h != "" {
		return h
	}
	return os.TempDir()
}
