package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/swim-planner-api/internal/models"
)

func TestReaperFailsStaleProcessing(t *testing.T) {
	repo := newGenerationRepoStub()
	ctx := context.Background()
	old := &models.ClassGeneration{GroupID: 7}
	fresh := &models.ClassGeneration{GroupID: 7}
	require.NoError(t, repo.Create(ctx, old))
	require.NoError(t, repo.Create(ctx, fresh))
	_, _ = repo.Claim(ctx, old.ID, time.Now().Add(-time.Hour))
	_, _ = repo.Claim(ctx, fresh.ID, time.Now())

	metrics := NewMetricsService()
	reaper := NewGenerationReaper(repo, metrics, nil, GenerationReaperConfig{StaleAfter: 10 * time.Minute})
	n, err := reaper.Reap(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Equal(t, models.GenerationFailed, repo.get(old.ID).Status)
	assert.Equal(t, StaleGenerationMessage, *repo.get(old.ID).ErrorMessage)
	assert.Equal(t, models.GenerationProcessing, repo.get(fresh.ID).Status)
	assert.Equal(t, uint64(1), metrics.Snapshot().GenerationsReaped)
}

func TestReaperFailsLostPendingGenerations(t *testing.T) {
	repo := newGenerationRepoStub()
	ctx := context.Background()
	lost := &models.ClassGeneration{GroupID: 7, CreatedAt: time.Now().UTC().Add(-2 * time.Hour)}
	queued := &models.ClassGeneration{GroupID: 7}
	require.NoError(t, repo.Create(ctx, lost))
	require.NoError(t, repo.Create(ctx, queued))

	metrics := NewMetricsService()
	reaper := NewGenerationReaper(repo, metrics, nil, GenerationReaperConfig{StaleAfter: 10 * time.Minute, PendingStaleAfter: time.Hour})
	n, err := reaper.Reap(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	gen := repo.get(lost.ID)
	assert.Equal(t, models.GenerationFailed, gen.Status)
	require.NotNil(t, gen.ErrorMessage)
	assert.Equal(t, LostGenerationMessage, *gen.ErrorMessage)
	assert.True(t, gen.Content.IsNull())
	assert.Equal(t, models.GenerationPending, repo.get(queued.ID).Status)
	assert.Equal(t, uint64(1), metrics.Snapshot().GenerationsReaped)
}

func TestReaperSchedulerLifecycle(t *testing.T) {
	repo := newGenerationRepoStub()
	reaper := NewGenerationReaper(repo, nil, nil, GenerationReaperConfig{Interval: 20 * time.Millisecond})
	require.NoError(t, reaper.Start(context.Background()))
	time.Sleep(60 * time.Millisecond)
	assert.NoError(t, reaper.Stop())
}
