package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSecretKey_EncryptDecrypt(t *testing.T) {
	t.Setenv(secretKeyEnv, "test-secret-key-for-unit-tests")

	sk, err := LoadSecretKey(filepath.Join(t.TempDir(), "unused.key"))
	if err != nil {
		t.Fatalf("LoadSecretKey: %v", err)
	}

	tests := []struct {
		name      string
		plaintext string
	}{
		{"connection_string", "Endpoint=sb://ns.servicebus.windows.net/;SharedAccessKeyName=send;SharedAccessKey=abc="},
		{"empty", ""},
		{"api_key", "token-abc123"},
		{"special_chars", "sk-+/=!@#$%^&*()"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encrypted, err := sk.Encrypt(tt.plaintext)
			if err != nil {
				t.Fatalf("Encrypt: %v", err)
			}

			if tt.plaintext == "" {
				if encrypted != "" {
					t.Fatal("expected empty encrypted for empty plaintext")
				}
				return
			}

			if !IsEncrypted(encrypted) {
				t.Fatalf("expected enc: prefix, got %s", encrypted)
			}
			if strings.Contains(encrypted, tt.plaintext) {
				t.Fatal("encrypted value leaks plaintext")
			}

			decrypted, err := sk.Decrypt(encrypted)
			if err != nil {
				t.Fatalf("Decrypt: %v", err)
			}
			if decrypted != tt.plaintext {
				t.Fatalf("expected %q, got %q", tt.plaintext, decrypted)
			}
		})
	}
}

func TestSecretKey_DecryptPlaintext(t *testing.T) {
	t.Setenv(secretKeyEnv, "test-key")

	sk, err := LoadSecretKey("")
	if err != nil {
		t.Fatalf("LoadSecretKey: %v", err)
	}

	// Non-encrypted string should pass through
	result, err := sk.Decrypt("plain-text-value")
	if err != nil {
		t.Fatalf("Decrypt plain: %v", err)
	}
	if result != "plain-text-value" {
		t.Fatalf("expected plain-text-value, got %s", result)
	}
}

func TestSecretKey_WrongKey(t *testing.T) {
	t.Setenv(secretKeyEnv, "key-one")
	one, _ := LoadSecretKey("")
	enc, err := one.Encrypt("secret")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	t.Setenv(secretKeyEnv, "key-two")
	two, _ := LoadSecretKey("")
	if _, err := two.Decrypt(enc); err == nil {
		t.Fatal("expected decryption with another key to fail")
	}
	if _, err := two.Decrypt("enc:!!!"); err == nil {
		t.Fatal("expected base64 error")
	}
}

func TestLoadOrCreateSecretKey(t *testing.T) {
	t.Setenv(secretKeyEnv, "")
	path := filepath.Join(t.TempDir(), "nested", "secret.key")

	if _, err := LoadSecretKey(path); !errors.Is(err, ErrNoSecretKey) {
		t.Fatalf("expected ErrNoSecretKey, got %v", err)
	}

	created, err := LoadOrCreateSecretKey(path)
	if err != nil {
		t.Fatalf("LoadOrCreateSecretKey: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("key file not written: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Fatalf("expected 0600, got %v", info.Mode().Perm())
	}

	enc, _ := created.Encrypt("value")
	loaded, err := LoadSecretKey(path)
	if err != nil {
		t.Fatalf("LoadSecretKey: %v", err)
	}
	if got, err := loaded.Decrypt(enc); err != nil || got != "value" {
		t.Fatalf("persisted key cannot decrypt: %q, %v", got, err)
	}
}

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"ab", "****"},
		{"abcd", "****"},
		{"sk-abc123def", "****3def"},
		{"token-abc123", "****c123"},
	}

	for _, tt := range tests {
		result := MaskSecret(tt.input)
		if result != tt.expected {
			t.Errorf("MaskSecret(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}
