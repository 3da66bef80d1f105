package jobstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huddle-dev/huddle/internal/core"
	"github.com/huddle-dev/huddle/internal/domain"
)

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	job := domain.NewExecutionJob("print(1)", domain.LangPython)
	job.Token = "tok-1"
	job.Status = domain.JobSucceeded
	job.Stdout = "1\n"

	require.NoError(t, store.Save(ctx, job))

	got, err := store.Get(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)
	assert.Equal(t, "1\n", got.Stdout)
}

func TestMemoryNotFound(t *testing.T) {
	store := NewMemory()

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, core.ErrJobNotFound)
}

func TestMemoryOverwrite(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	job := domain.NewExecutionJob("x", domain.LangC)
	job.Token = "tok-1"
	job.Status = domain.JobRunning
	require.NoError(t, store.Save(ctx, job))

	job.Status = domain.JobFailed
	require.NoError(t, store.Save(ctx, job))

	got, err := store.Get(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, domain.JobFailed, got.Status)
}
