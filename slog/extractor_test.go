package slog_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/fwojciec/idmbatch"
	"github.com/fwojciec/idmbatch/mock"
	idmslog "github.com/fwojciec/idmbatch/slog"
	"github.com/stretchr/testify/assert"
)

func TestLoggingExtractor_ExtractLinks(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	inner := &mock.LinkExtractor{
		ExtractLinksFn: func(_ string, _ idmbatch.Sink) []string {
			return []string{"https://a", "https://b", "https://c"}
		},
	}

	links := idmslog.NewLoggingExtractor(inner, logger).ExtractLinks("<html></html>", idmbatch.NopSink)

	assert.Len(t, links, 3)
	output := buf.String()
	assert.Contains(t, output, "level=INFO")
	assert.Contains(t, output, "extract links")
	assert.Contains(t, output, "bytes=13")
	assert.Contains(t, output, "count=3")
}
