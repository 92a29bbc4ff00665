// Package server runs the shop-floor punch terminal: a line-oriented TCP
// protocol so punch clocks and kiosk hardware can record attendance without
// speaking HTTP.
package server

import (
	"bufio"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/ayu214390/attendance-app/internal/attendance"
	"github.com/ayu214390/attendance-app/internal/engine"
	"github.com/ayu214390/attendance-app/pkg/schema"
)

type Terminal struct {
	store   *engine.Store
	tracker *attendance.Tracker
	cert    *tls.Certificate

	mu       sync.Mutex
	listener net.Listener
}

func NewTerminal(store *engine.Store, tracker *attendance.Tracker) *Terminal {
	return &Terminal{store: store, tracker: tracker}
}

// SetCertificate enables TLS on the listener
func (t *Terminal) SetCertificate(cert tls.Certificate) {
	t.cert = &cert
}

// Addr returns the listener address once Listen has bound, or nil.
func (t *Terminal) Addr() net.Addr {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.listener == nil {
		return nil
	}
	return t.listener.Addr()
}

// Stop closes the listener, unblocking Listen.
func (t *Terminal) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.listener != nil {
		t.listener.Close()
	}
}

// Listen starts the TCP server
func (t *Terminal) Listen(port string) error {
	var listener net.Listener
	var err error

	if t.cert != nil {
		config := &tls.Config{Certificates: []tls.Certificate{*t.cert}}
		listener, err = tls.Listen("tcp", ":"+port, config)
	} else {
		listener, err = net.Listen("tcp", ":"+port)
	}
	if err != nil {
		return err
	}

	t.mu.Lock()
	t.listener = listener
	t.mu.Unlock()
	defer listener.Close()

	semaphore := make(chan struct{}, 100) // Max 100 concurrent connections

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			// Listener closed by Stop.
			return nil
		}

		// Punch terminals hold a connection open all shift; bound it anyway.
		conn.SetDeadline(time.Now().Add(5 * time.Minute))

		go func(c net.Conn) {
			semaphore <- struct{}{}
			defer func() {
				<-semaphore
				c.Close()
			}()
			t.HandleConnection(c)
		}(conn)
	}
}

func (t *Terminal) HandleConnection(conn net.Conn) {
	reader := bufio.NewReader(conn)

	for {
		// Set a deadline for the next command
		conn.SetReadDeadline(time.Now().Add(30 * time.Second))

		line, err := reader.ReadString('\n')
		if err != nil {
			return // Connection closed or timeout
		}

		line = strings.TrimSpace(line)
		parts := strings.Fields(line)
		if len(parts) < 1 {
			continue
		}

		command := strings.ToUpper(parts[0])

		switch command {
		case "CLOCKIN":
			t.punch(conn, parts, t.tracker.ClockIn)

		case "CLOCKOUT":
			t.punch(conn, parts, t.tracker.ClockOut)

		case "BREAK_START":
			t.punch(conn, parts, t.tracker.StartBreak)

		case "BREAK_END":
			t.punch(conn, parts, t.tracker.EndBreak)

		case "MEAL":
			t.punch(conn, parts, t.tracker.AddMeal)

		case "STATUS":
			if len(parts) < 2 {
				continue
			}
			if _, ok := t.store.FindStaff(parts[1]); !ok {
				fmt.Fprintln(conn, "ERR staff not found")
				continue
			}
			rec := t.store.RecordFor(parts[1], time.Now())
			writeRecord(conn, rec)

		case "STAFF":
			res, err := json.Marshal(t.store.StaffList())
			if err != nil {
				fmt.Fprintln(conn, "ERR internal error")
			} else {
				fmt.Fprintln(conn, "OK", string(res))
			}

		case "PING":
			fmt.Fprintln(conn, "PONG")

		case "QUIT":
			return
		}
	}
}

// punch applies one attendance transition and echoes the resulting record.
// Guarded no-op transitions still answer OK with the unchanged record.
func (t *Terminal) punch(conn net.Conn, parts []string, transition func(string) schema.AttendanceRecord) {
	if len(parts) < 2 {
		return
	}
	if _, ok := t.store.FindStaff(parts[1]); !ok {
		fmt.Fprintln(conn, "ERR staff not found")
		return
	}
	writeRecord(conn, transition(parts[1]))
}

func writeRecord(conn net.Conn, rec schema.AttendanceRecord) {
	res, err := json.Marshal(rec)
	if err != nil {
		fmt.Fprintln(conn, "ERR internal error")
		return
	}
	fmt.Fprintln(conn, "OK", string(res))
}
