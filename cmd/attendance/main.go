package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ayu214390/attendance-app/internal/backup"
	"github.com/ayu214390/attendance-app/internal/config"
	"github.com/ayu214390/attendance-app/internal/engine"
	"github.com/ayu214390/attendance-app/internal/export"
	"github.com/ayu214390/attendance-app/internal/namespace"
	"github.com/ayu214390/attendance-app/internal/payroll"
	"github.com/ayu214390/attendance-app/internal/session"
	"github.com/ayu214390/attendance-app/pkg/punch"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		return
	}

	command := strings.ToUpper(os.Args[1])
	args := os.Args[2:]

	switch command {
	// Punch commands talk to a running daemon.
	case "CLOCKIN":
		runPunch(args, command, func(c *punch.Client, id string) (any, error) { return c.ClockIn(id) })

	case "CLOCKOUT":
		runPunch(args, command, func(c *punch.Client, id string) (any, error) { return c.ClockOut(id) })

	case "BREAK_START":
		runPunch(args, command, func(c *punch.Client, id string) (any, error) { return c.StartBreak(id) })

	case "BREAK_END":
		runPunch(args, command, func(c *punch.Client, id string) (any, error) { return c.EndBreak(id) })

	case "MEAL":
		runPunch(args, command, func(c *punch.Client, id string) (any, error) { return c.AddMeal(id) })

	case "STATUS":
		runPunch(args, command, func(c *punch.Client, id string) (any, error) { return c.Status(id) })

	case "STAFF":
		client := connect()
		defer client.Close()
		list, err := client.Staff()
		if err != nil {
			log.Fatal(err)
		}
		printJSON(list)

	case "PING":
		client := connect()
		defer client.Close()
		if err := client.Ping(); err != nil {
			log.Fatal(err)
		}
		fmt.Println("PONG")

	// Reporting and maintenance run directly against the data directory.
	case "REPORT":
		if len(args) < 2 {
			log.Fatal("Usage: attendance REPORT <year> <month> [minute1|quarter15]")
		}
		month := monthArg(args[0], args[1])
		mode := payroll.Minute1
		if len(args) > 2 {
			mode = payroll.ParseMode(args[2])
		}

		store := openStore()
		var summaries []payroll.StaffSummary
		records := store.Records()
		for _, st := range store.StaffList() {
			summaries = append(summaries, payroll.Summarize(records, st, month, mode))
		}
		printJSON(summaries)
		store.Wait()

	case "EXPORT":
		if len(args) < 3 {
			log.Fatal("Usage: attendance EXPORT <year> <month> <csv|xlsx> [minute1|quarter15]")
		}
		month := monthArg(args[0], args[1])
		mode := payroll.Minute1
		if len(args) > 3 {
			mode = payroll.ParseMode(args[3])
		}

		store := openStore()
		rows := export.BuildMonthlySheet(store.StaffList(), store.Records(), month, mode)
		store.Wait()

		switch strings.ToLower(args[2]) {
		case "csv":
			name := export.CSVFileName(month)
			f, err := os.Create(name)
			if err != nil {
				log.Fatal(err)
			}
			defer f.Close()
			if err := export.WriteCSV(f, rows); err != nil {
				log.Fatal(err)
			}
			fmt.Println("Wrote", name)

		case "xlsx":
			name := export.XLSXFileName(month)
			workbook, err := export.BuildWorkbook(rows)
			if err != nil {
				log.Fatal(err)
			}
			defer workbook.Close()
			if err := workbook.SaveAs(name); err != nil {
				log.Fatal(err)
			}
			fmt.Println("Wrote", name)

		default:
			log.Fatalf("Unknown export format: %s", args[2])
		}

	case "BACKUP":
		store := openStore()
		res := backup.NewManager(backupDir(), store).Backup()
		store.Wait()
		fmt.Println(res.Message)
		if !res.OK {
			os.Exit(1)
		}

	case "RESTORE":
		store := openStore()
		res := backup.NewManager(backupDir(), store).RestoreLatest()
		store.Wait()
		fmt.Println(res.Message)
		if !res.OK {
			os.Exit(1)
		}

	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
	}
}

func connect() *punch.Client {
	addr := os.Getenv("ATTEND_ADDR")
	if addr == "" {
		addr = "localhost:7101"
	}
	client, err := punch.Connect(addr)
	if err != nil {
		log.Fatalf("Failed to connect to %s: %v", addr, err)
	}
	return client
}

func runPunch(args []string, command string, op func(*punch.Client, string) (any, error)) {
	if len(args) < 1 {
		log.Fatalf("Usage: attendance %s <staffID>", command)
	}
	client := connect()
	defer client.Close()

	rec, err := op(client, args[0])
	if err != nil {
		log.Fatal(err)
	}
	printJSON(rec)
}

// openStore loads the store for the signed-in account's namespace, the same
// way the daemon does on startup.
func openStore() *engine.Store {
	cfg := config.Load()
	persister, err := engine.NewPersistence(cfg.DataDir)
	if err != nil {
		log.Fatalf("Failed to open data directory: %v", err)
	}
	sess := session.Load(cfg.DataDir)
	ns := namespace.Default
	if sess.CurrentAccount != "" {
		ns = namespace.Resolve(sess.CurrentAccount)
	}
	return engine.NewStore(persister, ns)
}

func backupDir() string {
	cfg := config.Load()
	if cfg.BackupDir != "" {
		return cfg.BackupDir
	}
	return filepath.Join(cfg.DataDir, "backups")
}

func monthArg(yearStr, monthStr string) time.Time {
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		log.Fatalf("Invalid year: %s", yearStr)
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil || month < 1 || month > 12 {
		log.Fatalf("Invalid month: %s", monthStr)
	}
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
}

func printUsage() {
	fmt.Println("Attendance CLI - punch clock and payroll reports")
	fmt.Println("\nUsage:")
	fmt.Println("  attendance CLOCKIN <staffID>")
	fmt.Println("  attendance CLOCKOUT <staffID>")
	fmt.Println("  attendance BREAK_START <staffID>")
	fmt.Println("  attendance BREAK_END <staffID>")
	fmt.Println("  attendance MEAL <staffID>")
	fmt.Println("  attendance STATUS <staffID>")
	fmt.Println("  attendance STAFF")
	fmt.Println("  attendance PING")
	fmt.Println("  attendance REPORT <year> <month> [minute1|quarter15]")
	fmt.Println("  attendance EXPORT <year> <month> <csv|xlsx> [minute1|quarter15]")
	fmt.Println("  attendance BACKUP")
	fmt.Println("  attendance RESTORE")
	fmt.Println("\nEnvironment Variables:")
	fmt.Println("  ATTEND_ADDR           Address of the daemon (default: localhost:7101)")
	fmt.Println("  ATTEND_DISABLE_TLS    Set to true to disable TLS")
	fmt.Println("  ATTEND_DATA_DIR       Data directory for local commands (default: ./data)")
}

func printJSON(v any) {
	bytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Println(v)
		return
	}
	fmt.Println(string(bytes))
}
