package mock

import (
	"context"
	"time"

	"github.com/fwojciec/idmbatch"
)

var _ idmbatch.ConnectivityChecker = (*ConnectivityChecker)(nil)

// ConnectivityChecker is a mock implementation of idmbatch.ConnectivityChecker.
type ConnectivityChecker struct {
	CheckConnectivityFn func(ctx context.Context, host string, port int, timeout time.Duration) bool
}

func (c *ConnectivityChecker) CheckConnectivity(ctx context.Context, host string, port int, timeout time.Duration) bool {
	return c.CheckConnectivityFn(ctx, host, port, timeout)
}
