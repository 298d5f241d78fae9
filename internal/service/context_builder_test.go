package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/swim-planner-api/internal/models"
	appErrors "github.com/noah-isme/swim-planner-api/pkg/errors"
)

func TestContextBuilderSplitsSwimmersBySkill(t *testing.T) {
	builder := NewContextBuilder(sampleCurriculum(), nil)

	tc, err := builder.Build(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, "Infantil", tc.ProgramName)
	assert.Equal(t, "Niños de 4 a 8 años", tc.ProgramDescription)
	assert.Equal(t, "Nivel 2", tc.LevelName)
	assert.Equal(t, "Autonomía", tc.LevelObjective)

	require.Len(t, tc.SkillClusters, 2)
	first, second := tc.SkillClusters[0], tc.SkillClusters[1]
	assert.Equal(t, "Flotación", first.SkillName)
	assert.Equal(t, []string{"Ana", "Sofía"}, first.SwimmerNames)
	assert.Equal(t, "Ana, Sofía", first.Names())
	assert.Equal(t, "Miedo al agua", first.Observations)
	assert.Equal(t, "Estrella de mar", first.Drills)
	assert.Equal(t, "Patada", second.SkillName)
	assert.Equal(t, []string{"Luis"}, second.SwimmerNames)
	assert.Empty(t, second.Observations)

	assert.Equal(t, []string{"1. Flotación: Dorsal y ventral", "2. Patada: Patada de crol"}, tc.LevelProgression)
	assert.Equal(t, 3, tc.SwimmerCount())
}

func TestClusterSwimmersPartitionsEverySwimmerOnce(t *testing.T) {
	swimmers := []models.Swimmer{
		{ID: 1, Name: "A", SkillID: int64Ptr(1), CurrentSkill: &models.Skill{ID: 1, Name: "S1"}, Observations: strPtr("lenta")},
		{ID: 2, Name: "B"},
		{ID: 3, Name: "C", SkillID: int64Ptr(2), CurrentSkill: &models.Skill{ID: 2, Name: "S2"}},
		{ID: 4, Name: "D", Observations: strPtr("nueva")},
		{ID: 5, Name: "E", SkillID: int64Ptr(1), CurrentSkill: &models.Skill{ID: 1, Name: "S1"}, Observations: strPtr("  ")},
		{ID: 6, Name: "F", SkillID: int64Ptr(1), CurrentSkill: &models.Skill{ID: 1, Name: "S1"}, Observations: strPtr("zurda")},
	}

	clusters := ClusterSwimmers(swimmers)
	require.Len(t, clusters, 3)

	seen := map[string]int{}
	total := 0
	for _, c := range clusters {
		total += len(c.SwimmerNames)
		for _, n := range c.SwimmerNames {
			seen[n]++
		}
	}
	assert.Equal(t, len(swimmers), total)
	for _, sw := range swimmers {
		assert.Equal(t, 1, seen[sw.Name], sw.Name)
	}

	assert.Equal(t, "S1", clusters[0].SkillName)
	assert.Equal(t, "lenta; zurda", clusters[0].Observations)
	assert.True(t, clusters[1].Unassigned())
	assert.Equal(t, models.UnassignedSkillLabel, clusters[1].SkillName)
	assert.Equal(t, []string{"B", "D"}, clusters[1].SwimmerNames)
	assert.Equal(t, "nueva", clusters[1].Observations)
	assert.Equal(t, "S2", clusters[2].SkillName)

	assert.Equal(t, clusters, ClusterSwimmers(swimmers), "grouping must be reproducible")
}

func TestClusterSwimmersEmptyGroup(t *testing.T) {
	assert.Empty(t, ClusterSwimmers(nil))
}

func TestContextBuilderNotFound(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *curriculumStub)
		msg    string
	}{
		{name: "group", mutate: func(c *curriculumStub) { delete(c.groups, 7) }, msg: "Group not found"},
		{name: "level", mutate: func(c *curriculumStub) { delete(c.levels, 2) }, msg: "Level not found"},
		{name: "program", mutate: func(c *curriculumStub) { delete(c.programs, 1) }, msg: "Program not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := sampleCurriculum()
			tt.mutate(repo)
			_, err := NewContextBuilder(repo, nil).Build(context.Background(), 7)
			require.Error(t, err)
			assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound.Code))
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestContextBuilderStoreFailureIsInternal(t *testing.T) {
	repo := sampleCurriculum()
	repo.listErr = errBoom
	_, err := NewContextBuilder(repo, nil).Build(context.Background(), 7)
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInternal.Code))
}

func TestLevelProgressionWithoutDescription(t *testing.T) {
	lines := LevelProgression([]models.Skill{{Index: 3, Name: "Respiración"}})
	assert.Equal(t, []string{"3. Respiración: "}, lines)
}
