// Package api exposes the attendance core over HTTP for the owner UI and
// shop-floor clients.
package api

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ayu214390/attendance-app/internal/attendance"
	"github.com/ayu214390/attendance-app/internal/auth"
	"github.com/ayu214390/attendance-app/internal/backup"
	"github.com/ayu214390/attendance-app/internal/engine"
	"github.com/ayu214390/attendance-app/internal/export"
	"github.com/ayu214390/attendance-app/internal/namespace"
	"github.com/ayu214390/attendance-app/internal/payroll"
	"github.com/ayu214390/attendance-app/internal/session"
	"github.com/ayu214390/attendance-app/pkg/schema"
)

// Handler wires the HTTP surface to the core components.
type Handler struct {
	Store     *engine.Store
	Tracker   *attendance.Tracker
	Backups   *backup.Manager
	Owner     *auth.Owner
	Session   *session.Session
	JWTSecret string
}

// Register mounts all routes. Punch operations are open to the shop floor;
// everything touching wages, edits, accounts or backups requires an owner
// token.
func (h *Handler) Register(r *gin.Engine) {
	r.POST("/api/login", h.Login)
	r.POST("/api/owner/password", h.SetOwnerPassword)

	punch := r.Group("/api/punch")
	{
		punch.POST("/clockin", h.punchHandler(h.Tracker.ClockIn))
		punch.POST("/clockout", h.punchHandler(h.Tracker.ClockOut))
		punch.POST("/break/start", h.punchHandler(h.Tracker.StartBreak))
		punch.POST("/break/end", h.punchHandler(h.Tracker.EndBreak))
		punch.POST("/meal", h.punchHandler(h.Tracker.AddMeal))
	}
	r.GET("/api/staff", h.ListStaff)

	owner := r.Group("/api", AuthRequired(h.JWTSecret))
	{
		owner.POST("/staff", h.CreateStaff)
		owner.PUT("/staff/:id", h.UpdateStaff)
		owner.DELETE("/staff/:id", h.DeleteStaff)
		owner.PUT("/records/:staffId/:date", h.UpdateRecord)
		owner.GET("/reports/:year/:month", h.MonthlyReport)
		owner.GET("/reports/:year/:month/daily/:staffId", h.DailyRecords)
		owner.GET("/exports/:year/:month/csv", h.ExportCSV)
		owner.GET("/exports/:year/:month/xlsx", h.ExportXLSX)
		owner.POST("/backup", h.Backup)
		owner.POST("/restore", h.Restore)
		owner.POST("/accounts/signin", h.SignIn)
		owner.POST("/accounts/signout", h.SignOut)
	}
}

type loginRequest struct {
	Account  string `json:"account"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	account := req.Account
	if account == "" {
		account = auth.DefaultAccount
	}

	if !h.Owner.VerifyPassword(account, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := auth.GenerateToken(account, auth.RoleOwner, h.JWTSecret, 60)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

type setPasswordRequest struct {
	Account         string `json:"account"`
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// SetOwnerPassword sets the owner password. The first password can be set
// freely; changing an existing one requires the current password.
func (h *Handler) SetOwnerPassword(c *gin.Context) {
	var req setPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	account := req.Account
	if account == "" {
		account = auth.DefaultAccount
	}

	if h.Owner.HasPassword(account) && !h.Owner.VerifyPassword(account, req.CurrentPassword) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if err := h.Owner.SetPassword(account, req.NewPassword); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store password"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

type punchRequest struct {
	StaffID string `json:"staff_id" binding:"required"`
}

// punchHandler adapts one tracker transition into a POST endpoint. Guarded
// no-op transitions still return the (unchanged) record with 200.
func (h *Handler) punchHandler(transition func(string) schema.AttendanceRecord) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req punchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
			return
		}
		if _, ok := h.Store.FindStaff(req.StaffID); !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "staff not found"})
			return
		}
		c.JSON(http.StatusOK, transition(req.StaffID))
	}
}

func (h *Handler) ListStaff(c *gin.Context) {
	c.JSON(http.StatusOK, h.Store.StaffList())
}

type staffRequest struct {
	Name          string `json:"name" binding:"required"`
	HourlyWage    *int   `json:"hourly_wage"`
	MealAllowance *int   `json:"meal_allowance"`
}

func (h *Handler) CreateStaff(c *gin.Context) {
	var req staffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	st := schema.NewStaff(req.Name)
	st.HourlyWage = req.HourlyWage
	st.MealAllowance = req.MealAllowance
	h.Store.AddStaff(st)
	c.JSON(http.StatusCreated, st)
}

func (h *Handler) UpdateStaff(c *gin.Context) {
	var req staffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	st := schema.Staff{
		ID:            c.Param("id"),
		Name:          req.Name,
		HourlyWage:    req.HourlyWage,
		MealAllowance: req.MealAllowance,
	}
	if err := h.Store.UpdateStaff(st); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "staff not found"})
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *Handler) DeleteStaff(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.Store.FindStaff(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "staff not found"})
		return
	}
	h.Store.RemoveStaff(id)
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

type updateRecordRequest struct {
	ClockIn      string `json:"clock_in"`
	ClockOut     string `json:"clock_out"`
	BreakMinutes int    `json:"break_minutes"`
	MealCount    int    `json:"meal_count"`
}

// UpdateRecord is the owner's edit mode: it overwrites one staff-day record.
func (h *Handler) UpdateRecord(c *gin.Context) {
	staffID := c.Param("staffId")
	if _, ok := h.Store.FindStaff(staffID); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "staff not found"})
		return
	}

	day, err := time.ParseInLocation(schema.DateKeyFormat, c.Param("date"), time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
		return
	}

	var req updateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	clockIn, err := parseEditTime(req.ClockIn, day)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid clock_in"})
		return
	}
	clockOut, err := parseEditTime(req.ClockOut, day)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid clock_out"})
		return
	}

	rec := h.Tracker.UpdateRecord(staffID, day, clockIn, clockOut, req.BreakMinutes, req.MealCount)
	c.JSON(http.StatusOK, rec)
}

// parseEditTime accepts RFC3339 or a bare "HH:mm" applied to the edited day.
// Empty input clears the field.
func parseEditTime(value string, day time.Time) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return &parsed, nil
	}
	parsed, err := time.ParseInLocation("15:04", value, day.Location())
	if err != nil {
		return nil, err
	}
	t := time.Date(day.Year(), day.Month(), day.Day(), parsed.Hour(), parsed.Minute(), 0, 0, day.Location())
	return &t, nil
}

func monthParam(c *gin.Context) (time.Time, bool) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		return time.Time{}, false
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local), true
}

func (h *Handler) MonthlyReport(c *gin.Context) {
	month, ok := monthParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month"})
		return
	}
	mode := payroll.ParseMode(c.Query("mode"))

	records := h.Store.Records()
	var summaries []payroll.StaffSummary
	for _, st := range h.Store.StaffList() {
		summaries = append(summaries, payroll.Summarize(records, st, month, mode))
	}

	c.JSON(http.StatusOK, gin.H{
		"month":     month.Format("2006-01"),
		"mode":      mode,
		"summaries": summaries,
	})
}

func (h *Handler) DailyRecords(c *gin.Context) {
	month, ok := monthParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month"})
		return
	}
	staffID := c.Param("staffId")
	if _, found := h.Store.FindStaff(staffID); !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "staff not found"})
		return
	}
	c.JSON(http.StatusOK, payroll.MonthlyDailyRecords(h.Store.Records(), staffID, month))
}

func (h *Handler) ExportCSV(c *gin.Context) {
	month, ok := monthParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month"})
		return
	}
	mode := payroll.ParseMode(c.Query("mode"))
	rows := export.BuildMonthlySheet(h.Store.StaffList(), h.Store.Records(), month, mode)

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", "attachment; filename="+export.CSVFileName(month))
	// Streaming has begun once WriteCSV starts; a failure here can only be
	// logged, not turned into a JSON body mid-file.
	if err := export.WriteCSV(c.Writer, rows); err != nil {
		log.Printf("Warning: CSV export aborted mid-stream: %v", err)
	}
}

func (h *Handler) ExportXLSX(c *gin.Context) {
	month, ok := monthParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month"})
		return
	}
	mode := payroll.ParseMode(c.Query("mode"))
	rows := export.BuildMonthlySheet(h.Store.StaffList(), h.Store.Records(), month, mode)

	workbook, err := export.BuildWorkbook(rows)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}
	defer workbook.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename="+export.XLSXFileName(month))
	if err := workbook.Write(c.Writer); err != nil {
		log.Printf("Warning: XLSX export aborted mid-stream: %v", err)
	}
}

func (h *Handler) Backup(c *gin.Context) {
	res := h.Backups.Backup()
	status := http.StatusOK
	if !res.OK {
		status = http.StatusInternalServerError
	}
	c.JSON(status, res)
}

func (h *Handler) Restore(c *gin.Context) {
	res := h.Backups.RestoreLatest()
	status := http.StatusOK
	if !res.OK {
		status = http.StatusInternalServerError
	}
	c.JSON(status, res)
}

type signInRequest struct {
	AccountID string `json:"account_id" binding:"required"`
}

// SignIn switches the store to the account's namespace. The switch runs the
// one-time migration of pre-auth local data into an empty account namespace.
func (h *Handler) SignIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	ns := namespace.Resolve(req.AccountID)
	h.Store.SwitchNamespace(ns)

	if err := h.Owner.SaveFederatedID(auth.DefaultAccount, req.AccountID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store account"})
		return
	}
	h.Session.CurrentAccount = req.AccountID
	if err := h.Session.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not persist session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"namespace": ns})
}

// SignOut returns to the default namespace and forgets the account.
func (h *Handler) SignOut(c *gin.Context) {
	h.Store.SwitchNamespace(namespace.Default)
	h.Owner.ClearFederatedID(auth.DefaultAccount)
	h.Session.CurrentAccount = ""
	if err := h.Session.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not persist session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"namespace": namespace.Default})
}
