package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurriculumRepositoryGroupExists(t *testing.T) {
	db, mock, cleanup := newGenerationRepoMock(t)
	defer cleanup()
	repo := NewCurriculumRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM groups WHERE id = $1)")).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	exists, err := repo.GroupExists(context.Background(), 5)
	require.NoError(t, err)
	assert.False(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCurriculumRepositoryHierarchy(t *testing.T) {
	db, mock, cleanup := newGenerationRepoMock(t)
	defer cleanup()
	repo := NewCurriculumRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM groups WHERE id = $1")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "level_id", "hour_start", "days", "note", "created_at", "updated_at"}).
			AddRow(1, 2, "17:00", "L-M", nil, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM levels WHERE id = $1")).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "program_id", "name", "objective", "description", "created_at", "updated_at"}).
			AddRow(2, 3, "Nivel 2", "Flotar", nil, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM programs WHERE id = $1")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "created_at", "updated_at"}).
			AddRow(3, "Infantil", "Niños de 4 a 8", now, now))

	group, err := repo.GetGroup(context.Background(), 1)
	require.NoError(t, err)
	level, err := repo.GetLevel(context.Background(), group.LevelID)
	require.NoError(t, err)
	program, err := repo.GetProgram(context.Background(), level.ProgramID)
	require.NoError(t, err)

	assert.Equal(t, "Nivel 2", level.Name)
	require.NotNil(t, level.Objective)
	assert.Equal(t, "Flotar", *level.Objective)
	assert.Nil(t, level.Description)
	assert.Equal(t, "Infantil", program.Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCurriculumRepositoryListSkillsOrdered(t *testing.T) {
	db, mock, cleanup := newGenerationRepoMock(t)
	defer cleanup()
	repo := NewCurriculumRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM skills WHERE level_id = $1 ORDER BY "index" ASC, id ASC`)).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "level_id", "name", "index", "objective", "description", "drills"}).
			AddRow(10, 2, "Flotación", 1, nil, "Dorsal", nil).
			AddRow(11, 2, "Patada", 2, nil, nil, nil))

	skills, err := repo.ListSkillsByLevel(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, skills, 2)
	assert.Equal(t, "Flotación", skills[0].Name)
	assert.Equal(t, 2, skills[1].Index)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCurriculumRepositoryListSwimmersLoadsSkill(t *testing.T) {
	db, mock, cleanup := newGenerationRepoMock(t)
	defer cleanup()
	repo := NewCurriculumRepository(db)

	cols := []string{"id", "group_id", "skill_id", "name", "observations",
		"skill_level_id", "skill_name", "skill_index", "skill_objective", "skill_description", "skill_drills"}
	mock.ExpectQuery(regexp.QuoteMeta("FROM swimmers sw LEFT JOIN skills sk ON sk.id = sw.skill_id WHERE sw.group_id = $1 ORDER BY sw.id ASC")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(1, 1, 10, "Ana", "Miedo al agua", 2, "Flotación", 1, "Flotar 5s", nil, "Estrella").
			AddRow(2, 1, nil, "Luis", nil, nil, nil, nil, nil, nil, nil))

	swimmers, err := repo.ListSwimmersByGroup(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, swimmers, 2)

	require.NotNil(t, swimmers[0].CurrentSkill)
	assert.Equal(t, int64(10), swimmers[0].CurrentSkill.ID)
	assert.Equal(t, "Flotación", swimmers[0].CurrentSkill.Name)
	require.NotNil(t, swimmers[0].CurrentSkill.Drills)
	assert.Equal(t, "Estrella", *swimmers[0].CurrentSkill.Drills)

	assert.Nil(t, swimmers[1].SkillID)
	assert.Nil(t, swimmers[1].CurrentSkill)
	require.NoError(t, mock.ExpectationsWereMet())
}
