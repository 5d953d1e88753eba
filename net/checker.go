// Package net probes outbound network reachability.
package net

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/fwojciec/idmbatch"
)

// Ensure Checker implements idmbatch.ConnectivityChecker at compile time.
var _ idmbatch.ConnectivityChecker = (*Checker)(nil)

// Checker tests connectivity by opening a TCP connection.
type Checker struct{}

// NewChecker creates a new Checker.
func NewChecker() *Checker {
	return &Checker{}
}

// CheckConnectivity dials host:port and reports whether the connection succeeded
// within timeout. The connection is closed immediately.
func (c *Checker) CheckConnectivity(ctx context.Context, host string, port int, timeout time.Duration) bool {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
