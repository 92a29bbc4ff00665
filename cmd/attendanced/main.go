package main

import (
	"crypto/tls"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ayu214390/attendance-app/internal/api"
	"github.com/ayu214390/attendance-app/internal/attendance"
	"github.com/ayu214390/attendance-app/internal/auth"
	"github.com/ayu214390/attendance-app/internal/backup"
	"github.com/ayu214390/attendance-app/internal/config"
	"github.com/ayu214390/attendance-app/internal/engine"
	"github.com/ayu214390/attendance-app/internal/namespace"
	"github.com/ayu214390/attendance-app/internal/secrets"
	"github.com/ayu214390/attendance-app/internal/server"
	"github.com/ayu214390/attendance-app/internal/session"
)

func main() {
	fmt.Println("Starting Attendance Daemon...")

	// 1. Load configuration
	cfg := config.Load()

	// 2. Initialize Persistence
	persister, err := engine.NewPersistence(cfg.DataDir)
	if err != nil {
		log.Fatalf("Failed to initialize persistence: %v", err)
	}

	// 3. Restore the session and open the right namespace
	sess := session.Load(cfg.DataDir)
	ns := namespace.Default
	if sess.CurrentAccount != "" {
		ns = namespace.Resolve(sess.CurrentAccount)
	}
	store := engine.NewStore(persister, ns)
	fmt.Printf("Engine started. Namespace %s, %d staff.\n", ns, len(store.StaffList()))

	// 4. Daily auto-backup
	backups := backup.NewManager(cfg.BackupDir, store)
	if backups.CheckAndAutoBackup(sess, time.Now()) {
		fmt.Println("Daily auto-backup written.")
	}

	// 5. Initialize the punch terminal (TCP)
	tracker := attendance.NewTracker(store)
	terminal := server.NewTerminal(store, tracker)

	// 6. Setup TLS
	if !cfg.DisableTLS {
		cert, err := tls.LoadX509KeyPair(cfg.TLSCertFile, cfg.TLSKeyFile)
		if err != nil {
			log.Fatalf("Failed to load TLS certificate: %v", err)
		}
		terminal.SetCertificate(cert)
		fmt.Println("TLS encryption enabled.")
	} else {
		fmt.Println("TLS encryption disabled (ATTEND_DISABLE_TLS=true).")
	}

	// 7. Initialize the HTTP API
	owner := auth.NewOwner(secrets.NewStore(cfg.DataDir, cfg.SecretsKey))
	h := &api.Handler{
		Store:     store,
		Tracker:   tracker,
		Backups:   backups,
		Owner:     owner,
		Session:   sess,
		JWTSecret: cfg.JwtSecret,
	}
	r := gin.Default()

	// CORS
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})
	h.Register(r)

	// 8. Start the HTTP server
	go func() {
		fmt.Printf("HTTP API listening on :%s\n", cfg.HTTPPort)
		if err := r.Run(":" + cfg.HTTPPort); err != nil {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// 9. Handle Graceful Shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutdown signal received. Finalizing disk writes...")
		terminal.Stop()
		store.Wait()
		fmt.Println("Persistence complete. Exiting.")
		os.Exit(0)
	}()

	// 10. Start the punch terminal
	fmt.Printf("Punch terminal listening on :%s (TCP)\n", cfg.TCPPort)
	if err := terminal.Listen(cfg.TCPPort); err != nil {
		select {
		case <-sigChan:
		default:
			log.Fatalf("TCP Server failed: %v", err)
		}
	}
}
