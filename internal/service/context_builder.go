package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/swim-planner-api/internal/models"
	appErrors "github.com/noah-isme/swim-planner-api/pkg/errors"
)

type curriculumReader interface {
	GetGroup(ctx context.Context, id int64) (*models.Group, error)
	GetLevel(ctx context.Context, id int64) (*models.Level, error)
	GetProgram(ctx context.Context, id int64) (*models.Program, error)
	ListSkillsByLevel(ctx context.Context, levelID int64) ([]models.Skill, error)
	ListSwimmersByGroup(ctx context.Context, groupID int64) ([]models.Swimmer, error)
}

// ContextBuilder derives the teaching context of a group from the curriculum.
type ContextBuilder struct {
	repo   curriculumReader
	logger *zap.Logger
}

// NewContextBuilder constructs a ContextBuilder.
func NewContextBuilder(repo curriculumReader, logger *zap.Logger) *ContextBuilder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContextBuilder{repo: repo, logger: logger}
}

// Build resolves group → level → program, the level's skills and the group's
// swimmers. A missing group, level or program is ErrNotFound.
func (b *ContextBuilder) Build(ctx context.Context, groupID int64) (*models.TeachingContext, error) {
	group, err := b.repo.GetGroup(ctx, groupID)
	if err != nil {
		return nil, notFoundOrInternal(err, "Group not found", "failed to load group")
	}
	level, err := b.repo.GetLevel(ctx, group.LevelID)
	if err != nil {
		return nil, notFoundOrInternal(err, "Level not found", "failed to load level")
	}
	program, err := b.repo.GetProgram(ctx, level.ProgramID)
	if err != nil {
		return nil, notFoundOrInternal(err, "Program not found", "failed to load program")
	}
	skills, err := b.repo.ListSkillsByLevel(ctx, level.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load level skills")
	}
	swimmers, err := b.repo.ListSwimmersByGroup(ctx, group.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load swimmers")
	}

	tc := &models.TeachingContext{
		GroupID:            group.ID,
		ProgramName:        program.Name,
		ProgramDescription: models.Deref(program.Description),
		LevelName:          level.Name,
		LevelObjective:     models.Deref(level.Objective),
		LevelDescription:   models.Deref(level.Description),
		SkillClusters:      ClusterSwimmers(swimmers),
		LevelProgression:   LevelProgression(skills),
	}
	b.logger.Debug("teaching context built",
		zap.Int64("group_id", group.ID),
		zap.Int("swimmers", len(swimmers)),
		zap.Int("clusters", len(tc.SkillClusters)),
		zap.Int("skills", len(skills)))
	return tc, nil
}

// ClusterSwimmers partitions swimmers by current skill. Clusters follow the
// order in which their skill first appears; swimmers without a skill share
// one unassigned cluster.
func ClusterSwimmers(swimmers []models.Swimmer) []models.SkillCluster {
	type bucket struct {
		cluster models.SkillCluster
		notes   []string
	}
	var (
		order      []*bucket
		bySkill    = make(map[int64]*bucket)
		unassigned *bucket
	)
	for _, sw := range swimmers {
		var b *bucket
		if sw.SkillID == nil {
			if unassigned == nil {
				unassigned = &bucket{cluster: models.SkillCluster{SkillName: models.UnassignedSkillLabel}}
				order = append(order, unassigned)
			}
			b = unassigned
		} else {
			b = bySkill[*sw.SkillID]
			if b == nil {
				id := *sw.SkillID
				b = &bucket{cluster: skillCluster(id, sw.CurrentSkill)}
				bySkill[id] = b
				order = append(order, b)
			}
		}
		b.cluster.SwimmerNames = append(b.cluster.SwimmerNames, sw.Name)
		if note := strings.TrimSpace(models.Deref(sw.Observations)); note != "" {
			b.notes = append(b.notes, note)
		}
	}

	clusters := make([]models.SkillCluster, 0, len(order))
	for _, b := range order {
		b.cluster.Observations = strings.Join(b.notes, "; ")
		clusters = append(clusters, b.cluster)
	}
	return clusters
}

func skillCluster(id int64, skill *models.Skill) models.SkillCluster {
	c := models.SkillCluster{SkillID: &id}
	if skill == nil {
		// skill_id points at a deleted row
		c.SkillName = fmt.Sprintf("Habilidad #%d", id)
		return c
	}
	c.SkillName = skill.Name
	c.Objective = models.Deref(skill.Objective)
	c.Description = models.Deref(skill.Description)
	c.Drills = models.Deref(skill.Drills)
	return c
}

// LevelProgression renders skills as "{index}. {name}: {description}". The
// input is expected in progression order.
func LevelProgression(skills []models.Skill) []string {
	lines := make([]string, 0, len(skills))
	for _, s := range skills {
		lines = append(lines, fmt.Sprintf("%d. %s: %s", s.Index, s.Name, models.Deref(s.Description)))
	}
	return lines
}

func notFoundOrInternal(err error, notFound, internal string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, notFound)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, internal)
}
