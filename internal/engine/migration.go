package engine

import (
	"strconv"
	"strings"
	"time"

	"github.com/ayu214390/attendance-app/internal/namespace"
	"github.com/ayu214390/attendance-app/pkg/schema"
)

// migrateLegacyKeys rewrites record keys from the old
// "<epoch-seconds>_<recordID>" scheme to the canonical
// "<yyyy-MM-dd>_<staffID>" form, deriving the day from the epoch timestamp
// in the local time zone. Canonical keys pass through untouched, so a second
// run over the same map is a no-op. Returns true when anything moved.
func migrateLegacyKeys(records map[string]schema.AttendanceRecord) bool {
	var legacy []string
	for key := range records {
		if _, ok := legacyKeyDay(key); ok {
			legacy = append(legacy, key)
		}
	}

	for _, key := range legacy {
		rec := records[key]
		day, _ := legacyKeyDay(key)
		delete(records, key)

		newKey := schema.RecordKey(day, rec.StaffID)
		if _, exists := records[newKey]; exists {
			// A canonical record for this staff-day already exists; keep it
			// rather than duplicating or overwriting.
			continue
		}
		rec.Date = schema.StartOfDay(day)
		records[newKey] = rec
	}

	return len(legacy) > 0
}

// legacyKeyDay parses the epoch-seconds prefix of a legacy record key.
// Canonical keys start with a "yyyy-MM-dd" date, which contains dashes and
// therefore never parses as a bare number.
func legacyKeyDay(key string) (time.Time, bool) {
	idx := strings.Index(key, "_")
	if idx <= 0 {
		return time.Time{}, false
	}
	prefix := key[:idx]
	if strings.Contains(prefix, "-") {
		return time.Time{}, false
	}
	epoch, err := strconv.ParseFloat(prefix, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(int64(epoch), 0), true
}

// MigrateFromDefaultIfNeeded copies the default namespace's snapshot into the
// current namespace once, supporting first-login migration of pre-auth local
// data into an account's namespace. It never runs when the current namespace
// already holds any staff or records, so it is idempotent. Returns true when
// data was copied.
func (s *Store) MigrateFromDefaultIfNeeded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.migrateFromDefaultLocked()
}

func (s *Store) migrateFromDefaultLocked() bool {
	if s.namespace == namespace.Default {
		return false
	}
	if len(s.staff) > 0 || len(s.records) > 0 {
		return false
	}

	src := s.persister.LoadNamespace(namespace.Default)
	if len(src.Staff) == 0 && len(src.Records) == 0 {
		// Nothing to migrate is not an error, it simply skips.
		return false
	}

	s.staff = append([]schema.Staff(nil), src.Staff...)
	s.records = make(map[string]schema.AttendanceRecord, len(src.Records))
	for k, v := range src.Records {
		s.records[k] = v
	}
	s.persistLocked()
	return true
}
