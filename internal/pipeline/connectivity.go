package pipeline

import (
	"context"
	"net"
	"time"
)

// DefaultProbeTimeout bounds a single connectivity probe.
const DefaultProbeTimeout = 3 * time.Second

// DialChecker reports the network as online when a TCP connection to addr
// succeeds.
type DialChecker struct {
	addr   string
	dialer net.Dialer
}

// NewDialChecker creates a checker probing addr (host:port).
func NewDialChecker(addr string, timeout time.Duration) *DialChecker {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	return &DialChecker{addr: addr, dialer: net.Dialer{Timeout: timeout}}
}

// Online dials the probe address and closes the connection straight away.
func (d *DialChecker) Online(ctx context.Context) bool {
	conn, err := d.dialer.DialContext(ctx, "tcp", d.addr)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
