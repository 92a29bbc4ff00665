// Package punch provides the client-side library for talking to the
// attendance daemon's punch terminal over TCP/TLS. It is what kiosk
// hardware and the CLI use to record punches.
package punch

import (
	"bufio"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/ayu214390/attendance-app/pkg/schema"
)

// Client is a remote client for the punch terminal.
type Client struct {
	addr   string
	conn   net.Conn
	reader *bufio.Reader
	mu     sync.Mutex // Protects concurrent access to the connection
}

// Connect establishes a TLS-encrypted connection to the attendance daemon.
// If ATTEND_DISABLE_TLS is set to "true", it falls back to plain TCP.
func Connect(addr string) (*Client, error) {
	c := &Client{addr: addr}
	if err := c.reconnect(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) reconnect() error {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}

	var conn net.Conn
	var err error

	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 60 * time.Second,
	}

	if os.Getenv("ATTEND_DISABLE_TLS") == "true" {
		conn, err = dialer.Dial("tcp", c.addr)
	} else {
		config := &tls.Config{
			InsecureSkipVerify: true, // We use self-signed certs for shop-local traffic
		}
		conn, err = tls.DialWithDialer(dialer, "tcp", c.addr, config)
	}

	if err != nil {
		return err
	}

	c.conn = conn
	c.reader = bufio.NewReader(conn)
	return nil
}

// Internal helper for TCP communication
func (c *Client) sendAndReceive(cmd string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var err error
	var resp string

	// Try up to 3 times with exponential backoff
	for i := 0; i < 3; i++ {
		if c.conn == nil {
			if reconnectErr := c.reconnect(); reconnectErr != nil {
				err = fmt.Errorf("reconnect failed: %w", reconnectErr)
				time.Sleep(time.Duration(i*100) * time.Millisecond)
				continue
			}
		}

		c.conn.SetDeadline(time.Now().Add(30 * time.Second))

		_, err = fmt.Fprint(c.conn, cmd+"\n")
		if err == nil {
			resp, err = c.reader.ReadString('\n')
			if err == nil {
				resp = strings.TrimSpace(resp)
				if strings.HasPrefix(resp, "ERR") {
					return "", fmt.Errorf("%s", strings.TrimPrefix(resp, "ERR "))
				}
				return resp, nil
			}
		}

		fmt.Fprintf(os.Stderr, "[punch] Attempt %d failed: %v. Reconnecting...\n", i+1, err)

		if closeErr := c.reconnect(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "[punch] Reconnect attempt failed: %v\n", closeErr)
		}

		// Wait before retrying (exponential backoff)
		time.Sleep(time.Duration((i+1)*200) * time.Millisecond)
	}

	return "", fmt.Errorf("failed after 3 attempts. last error: %v", err)
}

func (c *Client) record(cmd string) (schema.AttendanceRecord, error) {
	var rec schema.AttendanceRecord
	resp, err := c.sendAndReceive(cmd)
	if err != nil {
		return rec, err
	}
	err = json.Unmarshal([]byte(strings.TrimPrefix(resp, "OK ")), &rec)
	return rec, err
}

// ClockIn records the start of the working day for a staff member.
func (c *Client) ClockIn(staffID string) (schema.AttendanceRecord, error) {
	return c.record(fmt.Sprintf("CLOCKIN %s", staffID))
}

// ClockOut records the end of the working day.
func (c *Client) ClockOut(staffID string) (schema.AttendanceRecord, error) {
	return c.record(fmt.Sprintf("CLOCKOUT %s", staffID))
}

// StartBreak opens a break.
func (c *Client) StartBreak(staffID string) (schema.AttendanceRecord, error) {
	return c.record(fmt.Sprintf("BREAK_START %s", staffID))
}

// EndBreak closes the open break.
func (c *Client) EndBreak(staffID string) (schema.AttendanceRecord, error) {
	return c.record(fmt.Sprintf("BREAK_END %s", staffID))
}

// AddMeal logs one meal for today.
func (c *Client) AddMeal(staffID string) (schema.AttendanceRecord, error) {
	return c.record(fmt.Sprintf("MEAL %s", staffID))
}

// Status returns today's record without changing it.
func (c *Client) Status(staffID string) (schema.AttendanceRecord, error) {
	return c.record(fmt.Sprintf("STATUS %s", staffID))
}

// Staff lists the staff roster known to the daemon.
func (c *Client) Staff() ([]schema.Staff, error) {
	resp, err := c.sendAndReceive("STAFF")
	if err != nil {
		return nil, err
	}
	var list []schema.Staff
	err = json.Unmarshal([]byte(strings.TrimPrefix(resp, "OK ")), &list)
	return list, err
}

// Ping checks that the daemon is reachable.
func (c *Client) Ping() error {
	resp, err := c.sendAndReceive("PING")
	if err != nil {
		return err
	}
	if resp != "PONG" {
		return fmt.Errorf("unexpected response: %s", resp)
	}
	return nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	// The connection can be gone after a failed reconnect.
	if c.conn == nil {
		return nil
	}
	fmt.Fprintln(c.conn, "QUIT")
	return c.conn.Close()
}
