package engine

import (
	"log"
	"sync"
	"time"

	"github.com/ayu214390/attendance-app/pkg/schema"
)

// Store holds one namespace's staff list and day-keyed attendance records in
// memory and writes them through to the Persistence layer. All reads and
// writes go through the store's mutex so a read-modify-write transition is
// atomic with respect to other transitions on the same namespace.
type Store struct {
	mu        sync.Mutex
	persister *Persistence
	namespace string
	staff     []schema.Staff
	records   map[string]schema.AttendanceRecord
	wg        sync.WaitGroup
}

// NewStore loads the given namespace and returns a store pointed at it.
// An empty namespace that is not the default is first offered the default
// namespace's data (first-login migration), then seeded with demo staff.
func NewStore(p *Persistence, ns string) *Store {
	s := &Store{persister: p}
	s.mu.Lock()
	s.switchLocked(ns)
	s.mu.Unlock()
	return s
}

// Wait blocks until all background persistence tasks have completed.
func (s *Store) Wait() {
	s.wg.Wait()
}

// Namespace returns the namespace current load/save calls are scoped to.
func (s *Store) Namespace() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.namespace
}

// SwitchNamespace re-points the store at a namespace and runs a fresh load,
// even when the target is the current one. Pending background writes are
// flushed first so the reload observes them.
func (s *Store) SwitchNamespace(ns string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wg.Wait()
	s.switchLocked(ns)
}

func (s *Store) switchLocked(ns string) {
	s.namespace = ns

	snap := s.persister.LoadNamespace(ns)
	s.staff = snap.Staff
	s.records = snap.Records

	// Legacy keys are rewritten once per load; persist only if anything moved.
	if migrateLegacyKeys(s.records) {
		s.persistLocked()
	}

	if len(s.staff) == 0 && len(s.records) == 0 {
		// First-login migration runs before seeding so local pre-auth data is
		// not shadowed by fresh demo staff.
		s.migrateFromDefaultLocked()
	}
	if len(s.staff) == 0 {
		s.seedDemoStaffLocked()
	}
}

// LoadAll returns copies of the current namespace's collections.
func (s *Store) LoadAll() ([]schema.Staff, map[string]schema.AttendanceRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.copySnapshotLocked()
	return snap.Staff, snap.Records
}

// SaveAll replaces both collections for the current namespace and persists.
func (s *Store) SaveAll(staff []schema.Staff, records map[string]schema.AttendanceRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staff = append([]schema.Staff(nil), staff...)
	s.records = make(map[string]schema.AttendanceRecord, len(records))
	for k, v := range records {
		s.records[k] = v
	}
	s.persistLocked()
}

// StaffList returns a copy of the staff collection.
func (s *Store) StaffList() []schema.Staff {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]schema.Staff(nil), s.staff...)
}

// FindStaff looks up one staff member by ID.
func (s *Store) FindStaff(id string) (schema.Staff, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range s.staff {
		if st.ID == id {
			return st, true
		}
	}
	return schema.Staff{}, false
}

// AddStaff appends a staff member and persists.
func (s *Store) AddStaff(st schema.Staff) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staff = append(s.staff, st)
	s.persistLocked()
}

// UpdateStaff replaces the staff member with a matching ID.
func (s *Store) UpdateStaff(st schema.Staff) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.staff {
		if s.staff[i].ID == st.ID {
			s.staff[i] = st
			s.persistLocked()
			return nil
		}
	}
	return ErrStaffNotFound
}

// RemoveStaff deletes a staff member and cascades to all of their records
// within the namespace.
func (s *Store) RemoveStaff(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.staff[:0]
	for _, st := range s.staff {
		if st.ID != id {
			kept = append(kept, st)
		}
	}
	s.staff = kept
	for key, rec := range s.records {
		if rec.StaffID == id {
			delete(s.records, key)
		}
	}
	s.persistLocked()
}

// RecordFor returns the record for a staff-day pair, synthesizing an empty
// one when none exists yet. Synthesized records are not persisted until a
// transition writes them back through PutRecord.
func (s *Store) RecordFor(staffID string, day time.Time) schema.AttendanceRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.records[schema.RecordKey(day, staffID)]; ok {
		return rec
	}
	return schema.NewRecord(staffID, day)
}

// PutRecord stores a record under its canonical key and persists.
func (s *Store) PutRecord(rec schema.AttendanceRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[schema.RecordKey(rec.Date, rec.StaffID)] = rec
	s.persistLocked()
}

// Records returns a copy of the record map.
func (s *Store) Records() map[string]schema.AttendanceRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]schema.AttendanceRecord, len(s.records))
	for k, v := range s.records {
		out[k] = v
	}
	return out
}

// persistLocked snapshots the current state and saves it in the background.
// Persistence failures are logged, never surfaced: the store degrades to
// in-memory-only for the session. Must be called while holding s.mu.
func (s *Store) persistLocked() {
	snap := s.copySnapshotLocked()
	ns := s.namespace

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.persister.SaveNamespace(ns, snap); err != nil {
			log.Printf("Warning: Could not persist namespace %s: %v", ns, err)
		}
	}()
}

// copySnapshotLocked deep-copies the collections so background saves do not
// race with later mutations. Must be called while holding s.mu.
func (s *Store) copySnapshotLocked() schema.Snapshot {
	staff := append([]schema.Staff(nil), s.staff...)
	records := make(map[string]schema.AttendanceRecord, len(s.records))
	for k, v := range s.records {
		records[k] = v
	}
	return schema.Snapshot{Staff: staff, Records: records}
}

var demoStaffNames = []string{"Staff A", "Staff B", "Staff C"}

// seedDemoStaffLocked fills a namespace that has never held staff with three
// placeholder entries the owner can rename.
func (s *Store) seedDemoStaffLocked() {
	for _, name := range demoStaffNames {
		s.staff = append(s.staff, schema.NewStaff(name))
	}
	s.persistLocked()
}
