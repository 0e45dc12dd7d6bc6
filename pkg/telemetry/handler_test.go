package telemetry

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphsets/pubmed-temporal/pkg/types"
)

func TestParquetHandlerRecordsErrors(t *testing.T) {
	dir := t.TempDir()

	h, err := NewParquetHandler(slog.DiscardHandler, dir)
	require.NoError(t, err)
	log := slog.New(h)

	ctx := context.WithValue(context.Background(), types.ContextKeyStage, "fetch")
	log.InfoContext(ctx, "not recorded")
	log.ErrorContext(ctx, "request failed", "pmid", "12345")

	require.NoError(t, h.Flush())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	records, err := parquet.ReadFile[LogRecord](filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "ERROR", r.Level)
	assert.Equal(t, "request failed", r.Message)
	assert.Equal(t, "fetch", r.Stage)
	assert.True(t, strings.Contains(r.Attributes, "12345"))
	assert.NotEmpty(t, r.ID)
}

func TestParquetHandlerFlushEmpty(t *testing.T) {
	dir := t.TempDir()

	h, err := NewParquetHandler(slog.DiscardHandler, dir)
	require.NoError(t, err)

	require.NoError(t, h.Flush())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
