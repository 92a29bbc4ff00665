package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ayu214390/attendance-app/internal/attendance"
	"github.com/ayu214390/attendance-app/internal/auth"
	"github.com/ayu214390/attendance-app/internal/backup"
	"github.com/ayu214390/attendance-app/internal/engine"
	"github.com/ayu214390/attendance-app/internal/namespace"
	"github.com/ayu214390/attendance-app/internal/secrets"
	"github.com/ayu214390/attendance-app/internal/session"
	"github.com/ayu214390/attendance-app/pkg/schema"
)

const testJWTSecret = "test-signing-secret"

func setupTestRouter(t *testing.T) (*gin.Engine, *Handler) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dataDir := t.TempDir()
	p, err := engine.NewPersistence(dataDir)
	if err != nil {
		t.Fatalf("NewPersistence failed: %v", err)
	}
	store := engine.NewStore(p, namespace.Default)

	h := &Handler{
		Store:     store,
		Tracker:   attendance.NewTracker(store),
		Backups:   backup.NewManager(t.TempDir(), store),
		Owner:     auth.NewOwner(secrets.NewStore(dataDir, []byte("thisis32byteslongsecretkey123456"))),
		Session:   session.Load(dataDir),
		JWTSecret: testJWTSecret,
	}

	r := gin.New()
	h.Register(r)
	return r, h
}

func ownerToken(t *testing.T) string {
	t.Helper()
	token, err := auth.GenerateToken(auth.DefaultAccount, auth.RoleOwner, testJWTSecret, 5)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	return token
}

func doJSON(r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPunchClockInAndOut(t *testing.T) {
	r, h := setupTestRouter(t)
	staffID := h.Store.StaffList()[0].ID

	w := doJSON(r, "POST", "/api/punch/clockin", "", gin.H{"staff_id": staffID})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var rec schema.AttendanceRecord
	json.Unmarshal(w.Body.Bytes(), &rec)
	if rec.ClockIn == nil {
		t.Fatal("ClockIn not set in response")
	}

	// Clocking in again must not move the timestamp.
	w = doJSON(r, "POST", "/api/punch/clockin", "", gin.H{"staff_id": staffID})
	var rec2 schema.AttendanceRecord
	json.Unmarshal(w.Body.Bytes(), &rec2)
	if !rec2.ClockIn.Equal(*rec.ClockIn) {
		t.Error("Second clock-in moved the timestamp")
	}

	w = doJSON(r, "POST", "/api/punch/clockout", "", gin.H{"staff_id": staffID})
	var rec3 schema.AttendanceRecord
	json.Unmarshal(w.Body.Bytes(), &rec3)
	if rec3.ClockOut == nil {
		t.Error("ClockOut not set in response")
	}
}

func TestPunchUnknownStaff(t *testing.T) {
	r, _ := setupTestRouter(t)
	w := doJSON(r, "POST", "/api/punch/clockin", "", gin.H{"staff_id": "no-such-staff"})
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

func TestStaffCRUDRequiresToken(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := doJSON(r, "POST", "/api/staff", "", gin.H{"name": "Eve"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without token, got %d", w.Code)
	}
}

func TestStaffCRUD(t *testing.T) {
	r, h := setupTestRouter(t)
	token := ownerToken(t)

	w := doJSON(r, "POST", "/api/staff", token, gin.H{"name": "Dana", "hourly_wage": 1500})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created schema.Staff
	json.Unmarshal(w.Body.Bytes(), &created)
	if created.ID == "" || created.HourlyWage == nil || *created.HourlyWage != 1500 {
		t.Errorf("Unexpected created staff: %+v", created)
	}

	w = doJSON(r, "PUT", "/api/staff/"+created.ID, token, gin.H{"name": "Dana Q", "hourly_wage": 1600})
	if w.Code != http.StatusOK {
		t.Fatalf("Update failed: %d %s", w.Code, w.Body.String())
	}
	updated, _ := h.Store.FindStaff(created.ID)
	if updated.Name != "Dana Q" {
		t.Errorf("Update not applied: %+v", updated)
	}

	w = doJSON(r, "DELETE", "/api/staff/"+created.ID, token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Delete failed: %d", w.Code)
	}
	if _, ok := h.Store.FindStaff(created.ID); ok {
		t.Error("Staff survived delete")
	}
}

func TestUpdateRecordAndReport(t *testing.T) {
	r, h := setupTestRouter(t)
	token := ownerToken(t)

	wage, allowance := 1200, 500
	alice := schema.NewStaff("Alice")
	alice.HourlyWage = &wage
	alice.MealAllowance = &allowance
	h.Store.AddStaff(alice)

	w := doJSON(r, "PUT", "/api/records/"+alice.ID+"/2026-08-05", token, gin.H{
		"clock_in":      "09:00",
		"clock_out":     "18:00",
		"break_minutes": 60,
		"meal_count":    1,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("UpdateRecord failed: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(r, "GET", "/api/reports/2026/8", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Report failed: %d %s", w.Code, w.Body.String())
	}

	var report struct {
		Month     string `json:"month"`
		Summaries []struct {
			Staff      schema.Staff `json:"staff"`
			TotalHours float64      `json:"total_hours"`
			Pay        int          `json:"pay"`
		} `json:"summaries"`
	}
	json.Unmarshal(w.Body.Bytes(), &report)
	if report.Month != "2026-08" {
		t.Errorf("Unexpected report month %q", report.Month)
	}

	found := false
	for _, s := range report.Summaries {
		if s.Staff.ID == alice.ID {
			found = true
			if s.TotalHours != 8.0 {
				t.Errorf("Expected 8.0 hours, got %v", s.TotalHours)
			}
			if s.Pay != 9100 {
				t.Errorf("Expected pay 9100, got %d", s.Pay)
			}
		}
	}
	if !found {
		t.Error("Alice missing from report")
	}
}

func TestExportCSVHasBOM(t *testing.T) {
	r, _ := setupTestRouter(t)
	token := ownerToken(t)

	w := doJSON(r, "GET", "/api/exports/2026/8/csv", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Export failed: %d", w.Code)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte{0xEF, 0xBB, 0xBF}) {
		t.Error("CSV export missing UTF-8 BOM")
	}
}

// brokenWriter records every write attempt and fails them all, standing in
// for a client that disconnects while a download is streaming.
type brokenWriter struct {
	header   http.Header
	attempts [][]byte
}

func (w *brokenWriter) Header() http.Header { return w.header }
func (w *brokenWriter) WriteHeader(int)     {}
func (w *brokenWriter) Write(b []byte) (int, error) {
	w.attempts = append(w.attempts, append([]byte(nil), b...))
	return 0, errors.New("client went away")
}

func TestExportCSVWriteFailureEmitsNoJSON(t *testing.T) {
	r, _ := setupTestRouter(t)
	token := ownerToken(t)

	req, _ := http.NewRequest("GET", "/api/exports/2026/8/csv", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	w := &brokenWriter{header: http.Header{}}
	r.ServeHTTP(w, req)

	// Once streaming started, a failure must not append a JSON error body
	// into the half-written CSV.
	for _, attempt := range w.attempts {
		if bytes.Contains(attempt, []byte(`"error"`)) {
			t.Errorf("JSON error emitted into the CSV stream: %q", attempt)
		}
	}
}

func TestLoginFlow(t *testing.T) {
	r, _ := setupTestRouter(t)

	// First password set is open.
	w := doJSON(r, "POST", "/api/owner/password", "", gin.H{"new_password": "hunter2hunter2"})
	if w.Code != http.StatusOK {
		t.Fatalf("Initial password set failed: %d %s", w.Code, w.Body.String())
	}

	// Changing it now requires the current password.
	w = doJSON(r, "POST", "/api/owner/password", "", gin.H{"new_password": "other"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Password change without current password should fail, got %d", w.Code)
	}

	w = doJSON(r, "POST", "/api/login", "", gin.H{"password": "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for bad password, got %d", w.Code)
	}

	w = doJSON(r, "POST", "/api/login", "", gin.H{"password": "hunter2hunter2"})
	if w.Code != http.StatusOK {
		t.Fatalf("Login failed: %d %s", w.Code, w.Body.String())
	}
	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["token"] == "" {
		t.Fatal("Login returned no token")
	}

	// The issued token opens owner routes.
	w = doJSON(r, "POST", "/api/staff", resp["token"], gin.H{"name": "Via Login"})
	if w.Code != http.StatusCreated {
		t.Errorf("Token from login rejected: %d", w.Code)
	}
}

func TestSignInSwitchesNamespace(t *testing.T) {
	r, h := setupTestRouter(t)
	token := ownerToken(t)

	// Leave a mark in the default namespace.
	marker := schema.NewStaff("Default Only")
	h.Store.AddStaff(marker)
	h.Store.Wait()

	w := doJSON(r, "POST", "/api/accounts/signin", token, gin.H{"account_id": "owner@example.com"})
	if w.Code != http.StatusOK {
		t.Fatalf("SignIn failed: %d %s", w.Code, w.Body.String())
	}
	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	ns := resp["namespace"]
	if ns == "" || ns == namespace.Default {
		t.Fatalf("Unexpected namespace %q", ns)
	}
	if h.Store.Namespace() != ns {
		t.Errorf("Store not switched: %q", h.Store.Namespace())
	}

	// First login into an empty namespace inherits the default data.
	if _, ok := h.Store.FindStaff(marker.ID); !ok {
		t.Error("Default-namespace data not migrated on first sign-in")
	}

	w = doJSON(r, "POST", "/api/accounts/signout", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("SignOut failed: %d", w.Code)
	}
	if h.Store.Namespace() != namespace.Default {
		t.Errorf("Store not returned to default namespace: %q", h.Store.Namespace())
	}
}

func TestUpdateRecordBadDate(t *testing.T) {
	r, h := setupTestRouter(t)
	token := ownerToken(t)
	staffID := h.Store.StaffList()[0].ID

	w := doJSON(r, "PUT", fmt.Sprintf("/api/records/%s/not-a-date", staffID), token, gin.H{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad date, got %d", w.Code)
	}
}

func TestBackupAndRestoreEndpoints(t *testing.T) {
	r, h := setupTestRouter(t)
	token := ownerToken(t)

	staffID := h.Store.StaffList()[0].ID
	day := time.Date(2026, 8, 3, 0, 0, 0, 0, time.Local)
	rec := h.Store.RecordFor(staffID, day)
	rec.MealCount = 4
	h.Store.PutRecord(rec)

	w := doJSON(r, "POST", "/api/backup", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Backup endpoint failed: %d %s", w.Code, w.Body.String())
	}

	h.Store.SaveAll(nil, map[string]schema.AttendanceRecord{})

	w = doJSON(r, "POST", "/api/restore", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Restore endpoint failed: %d %s", w.Code, w.Body.String())
	}
	if got := h.Store.RecordFor(staffID, day); got.MealCount != 4 {
		t.Errorf("Restore did not bring the record back: %+v", got)
	}
}
