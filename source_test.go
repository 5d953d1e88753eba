package idmbatch_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/fwojciec/idmbatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSource(t *testing.T) {
	t.Parallel()

	t.Run("http URL is remote and unchanged", func(t *testing.T) {
		t.Parallel()

		src, err := idmbatch.ParseSource("http://new.circleftp.net/content/12345")

		require.NoError(t, err)
		assert.False(t, src.IsLocal())
		assert.Equal(t, "http://new.circleftp.net/content/12345", src.Location())
	})

	t.Run("https URL is remote", func(t *testing.T) {
		t.Parallel()

		src, err := idmbatch.ParseSource("  https://example.com/page  ")

		require.NoError(t, err)
		assert.False(t, src.IsLocal())
		assert.Equal(t, "https://example.com/page", src.Location())
		assert.Equal(t, "https://example.com/page", src.String())
	})

	t.Run("file URI is local and unchanged", func(t *testing.T) {
		t.Parallel()

		src, err := idmbatch.ParseSource("file:///tmp/page.html")

		require.NoError(t, err)
		assert.True(t, src.IsLocal())
		assert.Equal(t, "file:///tmp/page.html", src.Location())
	})

	t.Run("filesystem path becomes absolute file URI", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "saved page.html")

		src, err := idmbatch.ParseSource(path)

		require.NoError(t, err)
		assert.True(t, src.IsLocal())
		assert.True(t, strings.HasPrefix(src.Location(), "file:///"), src.Location())
		assert.Contains(t, src.Location(), "saved%20page.html")
		assert.Equal(t, path, src.String())
	})

	t.Run("empty source is invalid", func(t *testing.T) {
		t.Parallel()

		_, err := idmbatch.ParseSource("   ")

		require.Error(t, err)
		assert.Equal(t, idmbatch.EINVALID, idmbatch.ErrorCode(err))
	})
}
