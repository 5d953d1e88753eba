package sqlite_test

import (
	"context"
	"testing"

	"github.com/fwojciec/idmbatch/sqlite"
	"github.com/stretchr/testify/require"
)

func TestDB_Open(t *testing.T) {
	t.Parallel()

	t.Run("creates schema on first open", func(t *testing.T) {
		t.Parallel()

		db := sqlite.NewDB(sqlite.MemoryPath)
		err := db.Open()
		require.NoError(t, err)
		defer db.Close()

		// Verify the table exists by querying it
		ctx := context.Background()

		var count int
		err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM batches").Scan(&count)
		require.NoError(t, err)
		require.Equal(t, 0, count)
	})

	t.Run("returns error for invalid path", func(t *testing.T) {
		t.Parallel()

		db := sqlite.NewDB("/nonexistent/path/db.sqlite")
		err := db.Open()
		require.Error(t, err)
	})

	t.Run("enables WAL mode for file-based databases", func(t *testing.T) {
		t.Parallel()

		dbPath := t.TempDir() + "/test.db"
		db := sqlite.NewDB(dbPath)
		err := db.Open()
		require.NoError(t, err)
		defer db.Close()

		ctx := context.Background()
		var journalMode string
		err = db.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&journalMode)
		require.NoError(t, err)
		require.Equal(t, "wal", journalMode)
	})

	t.Run("reopens an existing database", func(t *testing.T) {
		t.Parallel()

		dbPath := t.TempDir() + "/history.db"
		db := sqlite.NewDB(dbPath)
		require.NoError(t, db.Open())
		require.NoError(t, db.Close())

		db = sqlite.NewDB(dbPath)
		require.NoError(t, db.Open())
		require.NoError(t, db.Close())
	})

	t.Run("waits on a locked database", func(t *testing.T) {
		t.Parallel()

		db := sqlite.NewDB(sqlite.MemoryPath)
		require.NoError(t, db.Open())
		defer db.Close()

		var timeout int
		err := db.QueryRowContext(context.Background(), "PRAGMA busy_timeout").Scan(&timeout)
		require.NoError(t, err)
		require.Equal(t, 5000, timeout)
	})
}

func TestDB_Close(t *testing.T) {
	t.Parallel()

	require.NoError(t, sqlite.NewDB(sqlite.MemoryPath).Close())
}
