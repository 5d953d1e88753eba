package main_test

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/idmbatch"
	"github.com/fwojciec/idmbatch/batch"
	main "github.com/fwojciec/idmbatch/cmd/idmbatch"
	"github.com/fwojciec/idmbatch/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeIDM creates an empty file standing in for IDMan.exe.
func fakeIDM(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "IDMan.exe")
	require.NoError(t, os.WriteFile(path, nil, 0o755))
	return path
}

func testLinks(n int) []string {
	links := make([]string, n)
	for i := range links {
		links[i] = fmt.Sprintf("https://files.example.com/part%d.rar", i+1)
	}
	return links
}

// newTestController returns a controller over mocks plus the batches it dispatched.
func newTestController(links []string, sink idmbatch.Sink) (*batch.Controller, *[][]string) {
	var batches [][]string
	return &batch.Controller{
		Fetcher: &mock.Fetcher{
			FetchFn: func(_ context.Context, _ idmbatch.Source, _ idmbatch.Browser, _ idmbatch.Sink) (string, error) {
				return "<html></html>", nil
			},
		},
		Extractor: &mock.LinkExtractor{
			ExtractLinksFn: func(_ string, _ idmbatch.Sink) []string {
				return links
			},
		},
		Dispatcher: &mock.Dispatcher{
			DispatchFn: func(_ context.Context, urls []string, _ string, _ idmbatch.Sink, onCount idmbatch.CountFunc) (int, error) {
				batches = append(batches, urls)
				onCount(len(urls))
				return len(urls), nil
			},
		},
		Processes: &mock.ProcessManager{
			EnsureRunningFn: func(_ context.Context, _ string) (bool, error) {
				return false, nil
			},
		},
		Network: &mock.ConnectivityChecker{
			CheckConnectivityFn: func(_ context.Context, _ string, _ int, _ time.Duration) bool {
				return true
			},
		},
		Sink:         sink,
		LaunchSettle: -1,
	}, &batches
}

func newRunDeps(t *testing.T, ctrl *batch.Controller, stdin string) (*main.Dependencies, *bytes.Buffer, *bytes.Buffer, *idmbatch.Settings) {
	t.Helper()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	settings := idmbatch.DefaultSettings()
	settings.ExecPath = fakeIDM(t)
	deps := &main.Dependencies{
		Ctx:        context.Background(),
		Stdout:     stdout,
		Stderr:     stderr,
		Stdin:      strings.NewReader(stdin),
		Settings:   settings,
		Controller: ctrl,
	}
	return deps, stdout, stderr, settings
}

func TestRunCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("sends every batch with --yes", func(t *testing.T) {
		t.Parallel()

		ctrl, batches := newTestController(testLinks(7), &mock.RecordingSink{})
		deps, stdout, _, _ := newRunDeps(t, ctrl, "")

		cmd := &main.RunCmd{Source: "https://example.com/game", Batch: 3, Yes: true}
		err := cmd.Run(deps)

		require.NoError(t, err)
		require.Len(t, *batches, 3)
		assert.Len(t, (*batches)[2], 1)
		assert.NotContains(t, stdout.String(), "Send next batch")
		assert.Equal(t, idmbatch.PhaseIdle, ctrl.Phase())
	})

	t.Run("continues on enter and changes size on a number", func(t *testing.T) {
		t.Parallel()

		ctrl, batches := newTestController(testLinks(10), &mock.RecordingSink{})
		deps, stdout, _, _ := newRunDeps(t, ctrl, "\n5\n")

		cmd := &main.RunCmd{Source: "https://example.com/game", Batch: 2}
		err := cmd.Run(deps)

		require.NoError(t, err)
		require.Len(t, *batches, 3)
		assert.Len(t, (*batches)[0], 2)
		assert.Len(t, (*batches)[1], 2)
		assert.Len(t, (*batches)[2], 5)
		assert.Contains(t, stdout.String(), "Aborted.")
		assert.Contains(t, stdout.String(), "9 of 10 links sent")
	})

	t.Run("aborts on a", func(t *testing.T) {
		t.Parallel()

		sink := &mock.RecordingSink{}
		ctrl, batches := newTestController(testLinks(10), sink)
		deps, stdout, _, _ := newRunDeps(t, ctrl, "a\n")

		cmd := &main.RunCmd{Source: "https://example.com/game", Batch: 4}
		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Len(t, *batches, 1)
		assert.Contains(t, stdout.String(), "Aborted.")
		assert.Equal(t, 1, sink.Count("Batch process aborted by user."))
		assert.Equal(t, idmbatch.PhaseIdle, ctrl.Phase())
	})

	t.Run("re-prompts on an invalid size", func(t *testing.T) {
		t.Parallel()

		ctrl, batches := newTestController(testLinks(4), &mock.RecordingSink{})
		deps, _, stderr, _ := newRunDeps(t, ctrl, "lots\n\n")

		cmd := &main.RunCmd{Source: "https://example.com/game", Batch: 2}
		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Len(t, *batches, 2)
		assert.Contains(t, stderr.String(), "please enter a number")
	})

	t.Run("falls back to saved settings", func(t *testing.T) {
		t.Parallel()

		var gotBrowser idmbatch.Browser
		ctrl, batches := newTestController(testLinks(3), &mock.RecordingSink{})
		ctrl.Fetcher = &mock.Fetcher{
			FetchFn: func(_ context.Context, src idmbatch.Source, b idmbatch.Browser, _ idmbatch.Sink) (string, error) {
				gotBrowser = b
				assert.Equal(t, "https://example.com/saved", src.String())
				return "", nil
			},
		}
		deps, _, _, settings := newRunDeps(t, ctrl, "")
		settings.Source = "https://example.com/saved"
		settings.Browser = idmbatch.BrowserEdge
		settings.BatchSize = 16

		err := (&main.RunCmd{}).Run(deps)

		require.NoError(t, err)
		assert.Equal(t, idmbatch.BrowserEdge, gotBrowser)
		assert.Len(t, *batches, 1)
	})

	t.Run("saves the values used", func(t *testing.T) {
		t.Parallel()

		ctrl, _ := newTestController(testLinks(1), &mock.RecordingSink{})
		deps, _, _, _ := newRunDeps(t, ctrl, "")
		var saved *idmbatch.Settings
		deps.SettingsStore = &mock.SettingsStore{
			SaveFn: func(s *idmbatch.Settings) error {
				copied := *s
				saved = &copied
				return nil
			},
		}

		cmd := &main.RunCmd{Source: "https://example.com/new", Batch: 9, Browser: "edge"}
		require.NoError(t, cmd.Run(deps))

		require.NotNil(t, saved)
		assert.Equal(t, "https://example.com/new", saved.Source)
		assert.Equal(t, 9, saved.BatchSize)
		assert.Equal(t, idmbatch.BrowserEdge, saved.Browser)
	})

	t.Run("rejects an unknown browser", func(t *testing.T) {
		t.Parallel()

		ctrl, _ := newTestController(testLinks(1), &mock.RecordingSink{})
		deps, _, stderr, _ := newRunDeps(t, ctrl, "")

		err := (&main.RunCmd{Source: "https://example.com/game", Browser: "netscape"}).Run(deps)

		assert.Equal(t, idmbatch.EINVALID, idmbatch.ErrorCode(err))
		assert.Contains(t, stderr.String(), "error:")
	})

	t.Run("rejects a browser the fetcher cannot drive", func(t *testing.T) {
		t.Parallel()

		ctrl, batches := newTestController(testLinks(1), &mock.RecordingSink{})
		fetches := 0
		ctrl.Fetcher = &mock.Fetcher{
			FetchFn: func(_ context.Context, _ idmbatch.Source, _ idmbatch.Browser, _ idmbatch.Sink) (string, error) {
				fetches++
				return "", nil
			},
			SupportsFn: func(b idmbatch.Browser) error {
				if b == idmbatch.BrowserFirefox {
					return idmbatch.Errorf(idmbatch.EINVALID, "firefox is not supported; use chrome or edge")
				}
				return nil
			},
		}
		deps, _, stderr, _ := newRunDeps(t, ctrl, "")

		err := (&main.RunCmd{Source: "https://example.com/game", Browser: "firefox"}).Run(deps)

		assert.Equal(t, idmbatch.EINVALID, idmbatch.ErrorCode(err))
		assert.Contains(t, stderr.String(), "firefox is not supported")
		assert.Zero(t, fetches)
		assert.Empty(t, *batches)
	})

	t.Run("requires a source when none is saved", func(t *testing.T) {
		t.Parallel()

		ctrl, _ := newTestController(testLinks(1), &mock.RecordingSink{})
		deps, _, _, _ := newRunDeps(t, ctrl, "")

		err := (&main.RunCmd{}).Run(deps)

		assert.Equal(t, idmbatch.EINVALID, idmbatch.ErrorCode(err))
	})

	t.Run("reports a failed start", func(t *testing.T) {
		t.Parallel()

		ctrl, _ := newTestController(nil, &mock.RecordingSink{})
		deps, _, stderr, _ := newRunDeps(t, ctrl, "")

		err := (&main.RunCmd{Source: "https://example.com/game"}).Run(deps)

		assert.Equal(t, idmbatch.ENOTFOUND, idmbatch.ErrorCode(err))
		assert.Contains(t, stderr.String(), "no download links found")
	})

	t.Run("aborts on interrupt", func(t *testing.T) {
		t.Parallel()

		interrupts := make(chan os.Signal, 1)
		ctrl, _ := newTestController(testLinks(5), &mock.RecordingSink{})
		ctrl.Dispatcher = &mock.Dispatcher{
			DispatchFn: func(ctx context.Context, _ []string, _ string, _ idmbatch.Sink, _ idmbatch.CountFunc) (int, error) {
				interrupts <- os.Interrupt
				<-ctx.Done()
				return 0, ctx.Err()
			},
		}
		deps, stdout, _, _ := newRunDeps(t, ctrl, "")
		deps.Interrupts = interrupts

		err := (&main.RunCmd{Source: "https://example.com/game", Yes: true}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Aborted.")
		assert.Equal(t, idmbatch.PhaseIdle, ctrl.Phase())
	})
}
