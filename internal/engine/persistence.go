// Package engine implements the namespaced attendance record store.
package engine

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ayu214390/attendance-app/pkg/schema"
)

// Persistence handles the disk I/O for namespace snapshots.
// Each namespace lives in its own JSON file under DataDir.
type Persistence struct {
	DataDir string
	mu      sync.Mutex // Protects concurrent writes to the filesystem
}

// NewPersistence initializes a persistence handler.
func NewPersistence(dir string) (*Persistence, error) {
	// Ensure the data directory exists
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &Persistence{DataDir: dir}, nil
}

// SaveNamespace writes a single namespace's snapshot to a JSON file atomically.
func (p *Persistence) SaveNamespace(ns string, snap schema.Snapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	filePath := filepath.Join(p.DataDir, fmt.Sprintf("%s.json", ns))
	tempPath := filePath + ".tmp"

	bytes, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}

	// Write to a temporary file first, then rename over the target. If the
	// power fails we have either the old file or the new one, never a torn one.
	if err := os.WriteFile(tempPath, bytes, 0644); err != nil {
		return err
	}
	return os.Rename(tempPath, filePath)
}

// LoadNamespace reads one namespace's snapshot from disk. A missing or
// malformed file loads as an empty snapshot: corrupt data must never take
// the app down, it only loses that namespace's view for the session.
func (p *Persistence) LoadNamespace(ns string) schema.Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	empty := schema.Snapshot{Records: map[string]schema.AttendanceRecord{}}

	content, err := os.ReadFile(filepath.Join(p.DataDir, fmt.Sprintf("%s.json", ns)))
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Could not read namespace file %s.json: %v", ns, err)
		}
		return empty
	}

	var snap schema.Snapshot
	if err := json.Unmarshal(content, &snap); err != nil {
		log.Printf("Warning: Could not unmarshal namespace data from %s.json: %v", ns, err)
		return empty
	}
	if snap.Records == nil {
		snap.Records = map[string]schema.AttendanceRecord{}
	}
	return snap
}

// Namespaces lists every namespace with a snapshot file on disk.
func (p *Persistence) Namespaces() ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	files, err := os.ReadDir(p.DataDir)
	if err != nil {
		return nil, err
	}

	var list []string
	for _, file := range files {
		name := file.Name()
		if filepath.Ext(name) == ".json" && !strings.HasSuffix(name, ".tmp") {
			list = append(list, name[:len(name)-5])
		}
	}
	return list, nil
}
