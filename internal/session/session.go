// Package session persists the small app-wide state that lives outside any
// namespace: the signed-in account and the date of the last automatic backup.
// It replaces what would otherwise be ambient process-wide globals with an
// explicit object that has a load/save lifecycle.
package session

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/ayu214390/attendance-app/pkg/schema"
)

const fileName = "session.json"

// Session is the process's persisted ambient state.
type Session struct {
	path string

	CurrentAccount string `json:"current_account,omitempty"`
	LastAutoBackup string `json:"last_auto_backup,omitempty"` // yyyy-MM-dd
}

// Load reads the session file from the data directory, returning a fresh
// session when the file is missing or unreadable.
func Load(dataDir string) *Session {
	s := &Session{path: filepath.Join(dataDir, fileName)}

	content, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Could not read session file: %v", err)
		}
		return s
	}
	if err := json.Unmarshal(content, s); err != nil {
		log.Printf("Warning: Could not unmarshal session file: %v", err)
		return &Session{path: s.path}
	}
	return s
}

// Save writes the session file atomically.
func (s *Session) Save() error {
	bytes, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, bytes, 0644); err != nil {
		return err
	}
	return os.Rename(tempPath, s.path)
}

// AutoBackupDue reports whether an automatic backup should run: either none
// was ever recorded, or the recorded day is strictly before now's day.
func (s *Session) AutoBackupDue(now time.Time) bool {
	if s.LastAutoBackup == "" {
		return true
	}
	last, err := time.ParseInLocation(schema.DateKeyFormat, s.LastAutoBackup, now.Location())
	if err != nil {
		return true
	}
	return last.Before(schema.StartOfDay(now))
}

// MarkAutoBackup records now's calendar day as the last automatic backup.
func (s *Session) MarkAutoBackup(now time.Time) {
	s.LastAutoBackup = now.Format(schema.DateKeyFormat)
}
