// Package backup snapshots the current namespace to dated JSON files and
// restores from the newest one.
package backup

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ayu214390/attendance-app/internal/engine"
	"github.com/ayu214390/attendance-app/internal/session"
	"github.com/ayu214390/attendance-app/pkg/schema"
)

const (
	filePrefix = "backup_"
	fileExt    = ".json"
)

// Manager reads and writes whole-namespace snapshots. Backup and restore
// never return errors to the caller; outcomes carry a human-readable message.
type Manager struct {
	Dir   string
	store *engine.Store
	now   func() time.Time
}

// NewManager returns a manager writing into dir.
func NewManager(dir string, store *engine.Store) *Manager {
	return &Manager{Dir: dir, store: store, now: time.Now}
}

// Result reports a backup or restore outcome.
type Result struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

func failure(format string, args ...any) Result {
	return Result{OK: false, Message: fmt.Sprintf(format, args...)}
}

// Backup serializes the current namespace's snapshot to backup_<date>.json,
// overwriting a same-day file when run twice in one day.
func (m *Manager) Backup() Result {
	staff, records := m.store.LoadAll()
	snap := schema.Snapshot{Staff: staff, Records: records}

	bytes, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return failure("backup failed: %v", err)
	}

	if err := os.MkdirAll(m.Dir, 0755); err != nil {
		return failure("backup failed: %v", err)
	}

	name := filePrefix + m.now().Format(schema.DateKeyFormat) + fileExt
	filePath := filepath.Join(m.Dir, name)
	tempPath := filePath + ".tmp"
	if err := os.WriteFile(tempPath, bytes, 0644); err != nil {
		return failure("backup failed: %v", err)
	}
	if err := os.Rename(tempPath, filePath); err != nil {
		return failure("backup failed: %v", err)
	}

	return Result{OK: true, Message: fmt.Sprintf("backup saved: %s", name)}
}

// RestoreLatest replaces the current namespace's data with the newest backup.
// With the fixed name format the lexicographically greatest file name is the
// most recent date.
func (m *Manager) RestoreLatest() Result {
	entries, err := os.ReadDir(m.Dir)
	if err != nil {
		return failure("restore failed: no backups available")
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, filePrefix) && strings.HasSuffix(name, fileExt) {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return failure("restore failed: no backups available")
	}
	sort.Strings(names)
	latest := names[len(names)-1]

	content, err := os.ReadFile(filepath.Join(m.Dir, latest))
	if err != nil {
		return failure("restore failed: could not read %s", latest)
	}

	var snap schema.Snapshot
	if err := json.Unmarshal(content, &snap); err != nil {
		return failure("restore failed: %s is not a valid backup", latest)
	}
	if snap.Records == nil {
		snap.Records = map[string]schema.AttendanceRecord{}
	}

	m.store.SaveAll(snap.Staff, snap.Records)
	return Result{OK: true, Message: fmt.Sprintf("restored from %s", latest)}
}

// CheckAndAutoBackup runs Backup at most once per calendar day, tracking the
// last run in the session (which lives outside any namespace). Returns true
// when a backup actually ran.
func (m *Manager) CheckAndAutoBackup(sess *session.Session, now time.Time) bool {
	if !sess.AutoBackupDue(now) {
		return false
	}
	res := m.Backup()
	if !res.OK {
		log.Printf("Warning: auto-backup failed: %s", res.Message)
		return false
	}
	sess.MarkAutoBackup(now)
	if err := sess.Save(); err != nil {
		log.Printf("Warning: could not persist auto-backup date: %v", err)
	}
	return true
}
