package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/swim-planner-api/internal/models"
)

// CurriculumRepository reads programs, levels, skills, groups and swimmers.
// Writes to these tables belong to the admin panel, not to this service.
type CurriculumRepository struct {
	db *sqlx.DB
}

// NewCurriculumRepository constructs the repository.
func NewCurriculumRepository(db *sqlx.DB) *CurriculumRepository {
	return &CurriculumRepository{db: db}
}

// GroupExists reports whether a group row exists.
func (r *CurriculumRepository) GroupExists(ctx context.Context, id int64) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM groups WHERE id = $1)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, id); err != nil {
		return false, fmt.Errorf("check group exists: %w", err)
	}
	return exists, nil
}

// GetGroup returns a group by id.
func (r *CurriculumRepository) GetGroup(ctx context.Context, id int64) (*models.Group, error) {
	const query = `SELECT id, level_id, hour_start, days, note, created_at, updated_at FROM groups WHERE id = $1`
	var group models.Group
	if err := r.db.GetContext(ctx, &group, query, id); err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}
	return &group, nil
}

// GetLevel returns a level by id.
func (r *CurriculumRepository) GetLevel(ctx context.Context, id int64) (*models.Level, error) {
	const query = `SELECT id, program_id, name, objective, description, created_at, updated_at FROM levels WHERE id = $1`
	var level models.Level
	if err := r.db.GetContext(ctx, &level, query, id); err != nil {
		return nil, fmt.Errorf("get level: %w", err)
	}
	return &level, nil
}

// GetProgram returns a program by id.
func (r *CurriculumRepository) GetProgram(ctx context.Context, id int64) (*models.Program, error) {
	const query = `SELECT id, name, description, created_at, updated_at FROM programs WHERE id = $1`
	var program models.Program
	if err := r.db.GetContext(ctx, &program, query, id); err != nil {
		return nil, fmt.Errorf("get program: %w", err)
	}
	return &program, nil
}

// ListSkillsByLevel returns the level's skills in progression order.
func (r *CurriculumRepository) ListSkillsByLevel(ctx context.Context, levelID int64) ([]models.Skill, error) {
	const query = `SELECT id, level_id, name, "index", objective, description, drills
FROM skills WHERE level_id = $1 ORDER BY "index" ASC, id ASC`
	var skills []models.Skill
	if err := r.db.SelectContext(ctx, &skills, query, levelID); err != nil {
		return nil, fmt.Errorf("list skills by level: %w", err)
	}
	return skills, nil
}

type swimmerRow struct {
	models.Swimmer
	SkillLevelID     *int64  `db:"skill_level_id"`
	SkillName        *string `db:"skill_name"`
	SkillIndex       *int    `db:"skill_index"`
	SkillObjective   *string `db:"skill_objective"`
	SkillDescription *string `db:"skill_description"`
	SkillDrills      *string `db:"skill_drills"`
}

// ListSwimmersByGroup returns the group's swimmers ordered by id, each with its
// current skill loaded (nil when unassigned).
func (r *CurriculumRepository) ListSwimmersByGroup(ctx context.Context, groupID int64) ([]models.Swimmer, error) {
	const query = `SELECT sw.id, sw.group_id, sw.skill_id, sw.name, sw.observations,
sk.level_id AS skill_level_id, sk.name AS skill_name, sk."index" AS skill_index,
sk.objective AS skill_objective, sk.description AS skill_description, sk.drills AS skill_drills
FROM swimmers sw LEFT JOIN skills sk ON sk.id = sw.skill_id
WHERE sw.group_id = $1 ORDER BY sw.id ASC`
	var rows []swimmerRow
	if err := r.db.SelectContext(ctx, &rows, query, groupID); err != nil {
		return nil, fmt.Errorf("list swimmers by group: %w", err)
	}
	swimmers := make([]models.Swimmer, 0, len(rows))
	for _, row := range rows {
		swimmer := row.Swimmer
		if swimmer.SkillID != nil && row.SkillName != nil {
			skill := &models.Skill{
				ID:          *swimmer.SkillID,
				Name:        *row.SkillName,
				Objective:   row.SkillObjective,
				Description: row.SkillDescription,
				Drills:      row.SkillDrills,
			}
			if row.SkillLevelID != nil {
				skill.LevelID = *row.SkillLevelID
			}
			if row.SkillIndex != nil {
				skill.Index = *row.SkillIndex
			}
			swimmer.CurrentSkill = skill
		}
		swimmers = append(swimmers, swimmer)
	}
	return swimmers, nil
}
