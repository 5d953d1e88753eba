package main_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	main "github.com/fwojciec/idmbatch/cmd/idmbatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain_Run_EndToEnd(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "history.db")
	settingsPath := filepath.Join(dir, "settings.yaml")
	exe := fakeIDM(t)

	newMain := func() *main.Main {
		m := main.NewMain()
		m.DBPath = dbPath
		m.SettingsPath = settingsPath
		m.Stdin = strings.NewReader("")
		return m
	}

	// Given: a page with five links
	m := newMain()
	ctrl, batches := newTestController(testLinks(5), nil)
	m.Controller = ctrl

	// When: running with a batch size of 2 without prompts
	stdout := &bytes.Buffer{}
	err := m.Run(context.Background(), []string{"run", "https://example.com/game", "--batch", "2", "--exec", exe, "--yes"}, stdout, &bytes.Buffer{})

	// Then: all links are sent in three batches and logged to stdout
	require.NoError(t, err)
	assert.Len(t, *batches, 3)
	assert.Contains(t, stdout.String(), "--- Starting Download Process ---")
	assert.Contains(t, stdout.String(), "All download links have been sent to IDM.")
	assert.Contains(t, stdout.String(), "[100%]")

	// And: history lists every batch
	stdout.Reset()
	err = newMain().Run(context.Background(), []string{"history"}, stdout, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(stdout.String(), "https://example.com/game"))

	// And: the settings used are remembered
	stdout.Reset()
	err = newMain().Run(context.Background(), []string{"config"}, stdout, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "last_url:      https://example.com/game")
	assert.Contains(t, stdout.String(), "batch_size:    2")
	assert.Contains(t, stdout.String(), exe)
}

func TestMain_Run_Config(t *testing.T) {
	t.Parallel()

	t.Run("shows defaults without touching the database", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		m := main.NewMain()
		m.DBPath = filepath.Join(dir, "missing", "history.db")
		m.SettingsPath = filepath.Join(dir, "settings.yaml")

		stdout := &bytes.Buffer{}
		err := m.Run(context.Background(), []string{"config"}, stdout, &bytes.Buffer{})

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "browser:       chrome")
		assert.Contains(t, stdout.String(), "batch_size:    5")
		assert.NoFileExists(t, m.DBPath)
	})

	t.Run("reports a malformed settings file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "settings.yaml")
		require.NoError(t, os.WriteFile(path, []byte("batch_size: [\n"), 0644))
		m := main.NewMain()
		m.SettingsPath = path

		stderr := &bytes.Buffer{}
		err := m.Run(context.Background(), []string{"config"}, &bytes.Buffer{}, stderr)

		require.Error(t, err)
		assert.Contains(t, stderr.String(), "Hint:")
	})
}
