package artifact

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/energyops/forecast-guard/internal/errors"
)

func newTestFSStore(t *testing.T) *FSStore {
	t.Helper()
	policy := errors.RetryPolicy{MaxAttempts: 2, InitialDelay: 1, MaxDelay: 1}
	return NewFSStore(t.TempDir(), policy, slog.Default())
}

func TestFSStore_WriteReadRoundtrip(t *testing.T) {
	ctx := context.Background()
	store := newTestFSStore(t)

	require.NoError(t, store.Write(ctx, "report.json", []byte(`{"ok":true}`)))

	data, err := store.Read(ctx, "report.json")
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, string(data))
}

func TestFSStore_ReadMissingKey(t *testing.T) {
	store := newTestFSStore(t)

	_, err := store.Read(context.Background(), "nope.json")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFSStore_WriteReplacesExisting(t *testing.T) {
	ctx := context.Background()
	store := newTestFSStore(t)

	require.NoError(t, store.Write(ctx, "flag.json", []byte("v1")))
	require.NoError(t, store.Write(ctx, "flag.json", []byte("v2")))

	data, err := store.Read(ctx, "flag.json")
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))
}

func TestFSStore_WriteLeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewFSStore(dir, errors.DefaultRetryPolicy(), slog.Default())

	require.NoError(t, store.Write(ctx, "flag.json", []byte("x")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "flag.json", entries[0].Name())
}

func TestFSStore_CreatesDirectoryOnWrite(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "nested", "artifacts")
	store := NewFSStore(dir, errors.DefaultRetryPolicy(), slog.Default())

	require.NoError(t, store.Write(ctx, "flag.json", []byte("x")))

	_, err := os.Stat(filepath.Join(dir, "flag.json"))
	assert.NoError(t, err)
}

func TestMemoryStore_Roundtrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Read(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Write(ctx, "k", []byte("v")))
	data, err := store.Read(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(data))

	// Mutating the returned slice must not touch the stored copy.
	data[0] = 'x'
	again, err := store.Read(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(again))
}
