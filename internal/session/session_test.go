package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSessionRoundtrip(t *testing.T) {
	dir := t.TempDir()

	s := Load(dir)
	s.CurrentAccount = "owner@example.com"
	s.MarkAutoBackup(time.Date(2026, 8, 26, 10, 0, 0, 0, time.Local))
	if err := s.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reloaded := Load(dir)
	if reloaded.CurrentAccount != "owner@example.com" {
		t.Errorf("CurrentAccount lost: %q", reloaded.CurrentAccount)
	}
	if reloaded.LastAutoBackup != "2026-08-26" {
		t.Errorf("LastAutoBackup lost: %q", reloaded.LastAutoBackup)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "session.json"), []byte("{nope"), 0644)

	s := Load(dir)
	if s.CurrentAccount != "" || s.LastAutoBackup != "" {
		t.Errorf("Corrupt session should load empty: %+v", s)
	}
	// And the session must still be savable.
	if err := s.Save(); err != nil {
		t.Errorf("Save after corrupt load failed: %v", err)
	}
}

func TestAutoBackupDue(t *testing.T) {
	s := &Session{}
	now := time.Date(2026, 8, 26, 9, 30, 0, 0, time.Local)

	if !s.AutoBackupDue(now) {
		t.Error("Fresh session should be due for a backup")
	}

	s.MarkAutoBackup(now)
	if s.AutoBackupDue(now.Add(2 * time.Hour)) {
		t.Error("Same calendar day should not be due again")
	}
	if !s.AutoBackupDue(now.AddDate(0, 0, 1)) {
		t.Error("Next day should be due")
	}

	s.LastAutoBackup = "garbage"
	if !s.AutoBackupDue(now) {
		t.Error("Unparseable date should count as due")
	}
}
