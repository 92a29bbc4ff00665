package punch

import "testing"

func TestCloseWithoutConnection(t *testing.T) {
	// A client whose dial or reconnect failed has no connection; Close must
	// be a harmless no-op rather than a panic.
	c := &Client{addr: "127.0.0.1:1"}
	if err := c.Close(); err != nil {
		t.Errorf("Close on a disconnected client should be a no-op, got %v", err)
	}
}
