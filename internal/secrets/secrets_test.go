package secrets

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

var testKey = []byte("thisis32byteslongsecretkey123456")

func TestEncryptDecrypt(t *testing.T) {
	plaintext := []byte("my secret data")

	encrypted, err := encrypt(plaintext, testKey)
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	if encrypted == string(plaintext) {
		t.Error("Ciphertext equals plaintext")
	}

	decrypted, err := decrypt(encrypted, testKey)
	if err != nil {
		t.Fatalf("decrypt failed: %v", err)
	}
	if !bytes.Equal(decrypted, plaintext) {
		t.Errorf("Expected %q, got %q", plaintext, decrypted)
	}
}

func TestDecryptWrongKey(t *testing.T) {
	encrypted, err := encrypt([]byte("data"), testKey)
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}

	wrongKey := []byte("another32byteslongsecretkey12345")
	if _, err := decrypt(encrypted, wrongKey); err == nil {
		t.Error("Decryption with wrong key should fail")
	}
}

func TestStoreSetGetDelete(t *testing.T) {
	s := NewStore(t.TempDir(), testKey)

	if err := s.Set("owner-password", "default", []byte("hash-bytes")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := s.Get("owner-password", "default")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != "hash-bytes" {
		t.Errorf("Expected hash-bytes, got %q", got)
	}

	if _, err := s.Get("owner-password", "other"); err != ErrNotFound {
		t.Errorf("Expected ErrNotFound for other account, got %v", err)
	}

	if !s.Delete("owner-password", "default") {
		t.Error("Delete should report an existing secret")
	}
	if s.Delete("owner-password", "default") {
		t.Error("Second delete should report nothing to remove")
	}
	if _, err := s.Get("owner-password", "default"); err != ErrNotFound {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
}

func TestStoreValuesEncryptedOnDisk(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir, testKey)
	if err := s.Set("federated-id", "default", []byte("user-12345")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "secrets.json"))
	if err != nil {
		t.Fatalf("Could not read secrets file: %v", err)
	}
	if bytes.Contains(raw, []byte("user-12345")) {
		t.Error("Secret stored in plaintext on disk")
	}
}
