package retrain

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/energyops/forecast-guard/internal/artifact"
	"github.com/energyops/forecast-guard/internal/models"
)

const flagKey = "retrain_flag.json"

func TestFlagStore_SaveLoadRoundtrip(t *testing.T) {
	ctx := context.Background()
	store := NewFlagStore(artifact.NewMemoryStore(), flagKey, slog.Default())

	flag := models.RetrainFlag{
		Date:          time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		ShouldRetrain: false,
	}
	require.NoError(t, store.Save(ctx, flag))

	result := store.Load(ctx)
	assert.Equal(t, OutcomeFound, result.Outcome)
	assert.Equal(t, flag, result.Flag)
	assert.False(t, result.ShouldRetrain())
}

func TestFlagStore_LoadNotFoundDefaultsToRetrain(t *testing.T) {
	store := NewFlagStore(artifact.NewMemoryStore(), flagKey, slog.Default())

	result := store.Load(context.Background())
	assert.Equal(t, OutcomeNotFound, result.Outcome)
	assert.True(t, result.ShouldRetrain())
}

func TestFlagStore_LoadUnreadableDefaultsToRetrain(t *testing.T) {
	backend := artifact.NewMemoryStore()
	backend.ReadErr = errors.New("disk on fire")
	store := NewFlagStore(backend, flagKey, slog.Default())

	result := store.Load(context.Background())
	assert.Equal(t, OutcomeUnreadable, result.Outcome)
	assert.True(t, result.ShouldRetrain())
	assert.Error(t, result.Err)
}

func TestFlagStore_LoadCorruptFlagDefaultsToRetrain(t *testing.T) {
	ctx := context.Background()
	backend := artifact.NewMemoryStore()
	require.NoError(t, backend.Write(ctx, flagKey, []byte("{not json")))
	store := NewFlagStore(backend, flagKey, slog.Default())

	result := store.Load(ctx)
	assert.Equal(t, OutcomeUnreadable, result.Outcome)
	assert.True(t, result.ShouldRetrain())
}

func TestFlagStore_SaveFailureIsFatal(t *testing.T) {
	backend := artifact.NewMemoryStore()
	backend.WriteErr = errors.New("disk full")
	store := NewFlagStore(backend, flagKey, slog.Default())

	err := store.Save(context.Background(), models.RetrainFlag{ShouldRetrain: true})
	require.Error(t, err)
}
