package slog_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/fwojciec/idmbatch"
	"github.com/fwojciec/idmbatch/mock"
	idmslog "github.com/fwojciec/idmbatch/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingDispatcher_Dispatch(t *testing.T) {
	t.Parallel()

	t.Run("logs batch size and sent count", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.Dispatcher{
			DispatchFn: func(_ context.Context, urls []string, _ string, _ idmbatch.Sink, onCount idmbatch.CountFunc) (int, error) {
				onCount(1)
				return 1, nil
			},
		}
		var counts []int

		d := idmslog.NewLoggingDispatcher(inner, logger)
		sent, err := d.Dispatch(context.Background(), []string{"https://a", "https://b"}, "/opt/IDMan.exe", idmbatch.NopSink, func(n int) {
			counts = append(counts, n)
		})

		require.NoError(t, err)
		assert.Equal(t, 1, sent)
		assert.Equal(t, []int{1}, counts)
		output := buf.String()
		assert.Contains(t, output, "level=INFO")
		assert.Contains(t, output, "dispatch")
		assert.Contains(t, output, "exec=/opt/IDMan.exe")
		assert.Contains(t, output, "size=2")
		assert.Contains(t, output, "sent=1")
	})

	t.Run("logs error on failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.Dispatcher{
			DispatchFn: func(_ context.Context, _ []string, _ string, _ idmbatch.Sink, _ idmbatch.CountFunc) (int, error) {
				return 0, idmbatch.Errorf(idmbatch.ENOTFOUND, "IDM executable not found")
			},
		}

		_, err := idmslog.NewLoggingDispatcher(inner, logger).Dispatch(context.Background(), []string{"https://a"}, "x", idmbatch.NopSink, func(int) {})

		require.Error(t, err)
		assert.Contains(t, buf.String(), "err=")
	})
}

func TestLoggingProcessManager_EnsureRunning(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	inner := &mock.ProcessManager{
		EnsureRunningFn: func(_ context.Context, _ string) (bool, error) {
			return true, nil
		},
	}

	launched, err := idmslog.NewLoggingProcessManager(inner, logger).EnsureRunning(context.Background(), "/opt/IDMan.exe")

	require.NoError(t, err)
	assert.True(t, launched)
	output := buf.String()
	assert.Contains(t, output, "level=INFO")
	assert.Contains(t, output, "ensure running")
	assert.Contains(t, output, "launched=true")
}
