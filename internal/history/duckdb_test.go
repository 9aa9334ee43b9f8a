package history

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDuckDBStore(t *testing.T) *DuckDBStore {
	t.Helper()
	store, err := NewDuckDBStore(context.Background(), ":memory:", slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestDuckDBStore_AppendAndLoad(t *testing.T) {
	ctx := context.Background()
	store := newTestDuckDBStore(t)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Append(ctx, record("run-1", base, 0.8)))
	require.NoError(t, store.Append(ctx, record("run-2", base.Add(24*time.Hour), 1.1)))

	records, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "run-1", records[0].RunID)
	assert.Equal(t, "seasonal_naive", records[0].ModelName)
	assert.Equal(t, 60, records[0].Metrics.WindowSize)
	assert.Equal(t, "naive_7_days", records[0].Metrics.Baseline)
	assert.Equal(t, 1.1, records[1].Metrics.MASEWindow)
	assert.Equal(t, base, records[0].RecordedAt)
}

func TestDuckDBStore_LoadEmpty(t *testing.T) {
	store := newTestDuckDBStore(t)

	records, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestDuckDBStore_OrdersByRecordingTime(t *testing.T) {
	ctx := context.Background()
	store := newTestDuckDBStore(t)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Append(ctx, record("late", base.Add(48*time.Hour), 1.0)))
	require.NoError(t, store.Append(ctx, record("early", base, 1.0)))

	records, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "early", records[0].RunID)
}

func TestDuckDBStore_DuplicateRunIDRejected(t *testing.T) {
	ctx := context.Background()
	store := newTestDuckDBStore(t)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Append(ctx, record("run-1", base, 0.8)))
	err := store.Append(ctx, record("run-1", base.Add(time.Hour), 0.9))
	assert.Error(t, err, "run_id is the primary key")
}

func TestDuckDBStore_HealthCheck(t *testing.T) {
	store := newTestDuckDBStore(t)
	assert.NoError(t, store.HealthCheck(context.Background()))
}
