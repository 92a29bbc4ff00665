// Package secrets is a small encrypted key-value store for credentials the
// attendance core treats as opaque: the owner password hash and the federated
// sign-in identifier.
package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"
)

// encrypt seals plaintext with a 32-byte key, returning a hex string with
// the nonce prepended.
func encrypt(plaintext []byte, key []byte) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	// GCM gives us authenticated encryption, so tampering is detected on read.
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ciphertext := gcm.Seal(nonce, nonce, plaintext, nil)
	return fmt.Sprintf("%x", ciphertext), nil
}

// decrypt reverses encrypt with the same key.
func decrypt(cipherHex string, key []byte) ([]byte, error) {
	var ciphertext []byte
	if _, err := fmt.Sscanf(cipherHex, "%x", &ciphertext); err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonceSize := gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, fmt.Errorf("ciphertext too short")
	}

	nonce, actual := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, actual, nil)
	if err != nil {
		return nil, fmt.Errorf("decryption failed (wrong key or tampered data)")
	}
	return plaintext, nil
}
