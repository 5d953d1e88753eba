package idmbatch

import (
	"context"
	"time"
)

// Defaults for the connectivity probe: a well-known public DNS resolver.
const (
	DefaultProbeHost    = "8.8.8.8"
	DefaultProbePort    = 53
	DefaultProbeTimeout = 3 * time.Second
)

// ConnectivityChecker reports whether outbound network access works.
type ConnectivityChecker interface {
	// CheckConnectivity attempts a connection to host:port within timeout.
	// It is advisory only: any failure yields false.
	CheckConnectivity(ctx context.Context, host string, port int, timeout time.Duration) bool
}
