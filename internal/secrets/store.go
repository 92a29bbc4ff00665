package secrets

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"path/filepath"
	"sync"
)

const fileName = "secrets.json"

// ErrNotFound is returned when no secret exists for a service/account pair.
var ErrNotFound = errors.New("secret not found")

// Store keeps secrets in one JSON file, each value AES-GCM encrypted with a
// process-wide master key. Keys are "<service>/<account>".
type Store struct {
	path string
	key  []byte
	mu   sync.Mutex
}

// NewStore returns a secret store rooted in dataDir. masterKey must be
// 32 bytes.
func NewStore(dataDir string, masterKey []byte) *Store {
	return &Store{path: filepath.Join(dataDir, fileName), key: masterKey}
}

// Set stores a secret for a service/account pair, replacing any prior value.
func (s *Store) Set(service, account string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	enc, err := encrypt(value, s.key)
	if err != nil {
		return err
	}

	m := s.loadLocked()
	m[service+"/"+account] = enc
	return s.saveLocked(m)
}

// Get retrieves and decrypts a secret. Returns ErrNotFound when absent.
func (s *Store) Get(service, account string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.loadLocked()
	enc, ok := m[service+"/"+account]
	if !ok {
		return nil, ErrNotFound
	}
	return decrypt(enc, s.key)
}

// Delete removes a secret, reporting whether one existed.
func (s *Store) Delete(service, account string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.loadLocked()
	key := service + "/" + account
	if _, ok := m[key]; !ok {
		return false
	}
	delete(m, key)
	if err := s.saveLocked(m); err != nil {
		log.Printf("Warning: Could not persist secret deletion: %v", err)
	}
	return true
}

func (s *Store) loadLocked() map[string]string {
	m := map[string]string{}
	content, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Could not read secrets file: %v", err)
		}
		return m
	}
	if err := json.Unmarshal(content, &m); err != nil {
		log.Printf("Warning: Could not unmarshal secrets file: %v", err)
		return map[string]string{}
	}
	return m
}

func (s *Store) saveLocked(m map[string]string) error {
	bytes, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, bytes, 0600); err != nil {
		return err
	}
	return os.Rename(tempPath, s.path)
}
