package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/swim-planner-api/internal/models"
	"github.com/noah-isme/swim-planner-api/pkg/jobs"
)

type generationRepoStub struct {
	mu      sync.Mutex
	records map[string]*models.ClassGeneration

	createErr error
	getErr    error
	claims    int
}

func newGenerationRepoStub() *generationRepoStub {
	return &generationRepoStub{records: map[string]*models.ClassGeneration{}}
}

func (r *generationRepoStub) Create(ctx context.Context, gen *models.ClassGeneration) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if gen.ID == "" {
		gen.ID = uuid.NewString()
	}
	if gen.Status == "" {
		gen.Status = models.GenerationPending
	}
	if gen.CreatedAt.IsZero() {
		gen.CreatedAt = time.Now().UTC()
	}
	copied := *gen
	r.records[gen.ID] = &copied
	return nil
}

func (r *generationRepoStub) GetByID(ctx context.Context, id string) (*models.ClassGeneration, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	gen, ok := r.records[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *gen
	return &copied, nil
}

func (r *generationRepoStub) transition(id string, from []models.GenerationStatus, apply func(*models.ClassGeneration)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	gen, ok := r.records[id]
	if !ok {
		return false
	}
	for _, s := range from {
		if gen.Status == s {
			apply(gen)
			return true
		}
	}
	return false
}

func (r *generationRepoStub) Claim(ctx context.Context, id string, now time.Time) (bool, error) {
	r.mu.Lock()
	r.claims++
	r.mu.Unlock()
	return r.transition(id, []models.GenerationStatus{models.GenerationPending}, func(g *models.ClassGeneration) {
		g.Status = models.GenerationProcessing
		g.StartedAt = &now
	}), nil
}

func (r *generationRepoStub) Complete(ctx context.Context, id string, content models.JSONContent, now time.Time) (bool, error) {
	return r.transition(id, []models.GenerationStatus{models.GenerationProcessing}, func(g *models.ClassGeneration) {
		g.Status = models.GenerationCompleted
		g.Content = content
		g.ErrorMessage = nil
		g.FinishedAt = &now
	}), nil
}

func (r *generationRepoStub) Fail(ctx context.Context, id string, message string, now time.Time) (bool, error) {
	return r.transition(id, []models.GenerationStatus{models.GenerationPending, models.GenerationProcessing}, func(g *models.ClassGeneration) {
		g.Status = models.GenerationFailed
		g.Content = nil
		g.ErrorMessage = &message
		g.FinishedAt = &now
	}), nil
}

func (r *generationRepoStub) ListPending(ctx context.Context, limit int) ([]models.ClassGeneration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var pending []models.ClassGeneration
	for _, gen := range r.records {
		if gen.Status == models.GenerationPending && len(pending) < limit {
			pending = append(pending, *gen)
		}
	}
	return pending, nil
}

func (r *generationRepoStub) FailStale(ctx context.Context, cutoff time.Time, message string, now time.Time) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for id, gen := range r.records {
		if gen.Status == models.GenerationProcessing && gen.StartedAt != nil && gen.StartedAt.Before(cutoff) {
			msg := message
			gen.Status = models.GenerationFailed
			gen.ErrorMessage = &msg
			gen.FinishedAt = &now
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *generationRepoStub) FailStalePending(ctx context.Context, cutoff time.Time, message string, now time.Time) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for id, gen := range r.records {
		if gen.Status == models.GenerationPending && gen.CreatedAt.Before(cutoff) {
			msg := message
			gen.Status = models.GenerationFailed
			gen.ErrorMessage = &msg
			gen.FinishedAt = &now
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *generationRepoStub) get(id string) models.ClassGeneration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.records[id]
}

type dispatcherStub struct {
	mu   sync.Mutex
	jobs []jobs.Job[GenerationTask]
	err  error
}

func (d *dispatcherStub) Enqueue(ctx context.Context, job jobs.Job[GenerationTask]) error {
	if d.err != nil {
		return d.err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.jobs = append(d.jobs, job)
	return nil
}

type groupCheckerStub struct {
	groups map[int64]bool
	err    error
}

func (g groupCheckerStub) GroupExists(ctx context.Context, id int64) (bool, error) {
	return g.groups[id], g.err
}

// curriculumStub is a small in-memory curriculum.
type curriculumStub struct {
	groups   map[int64]*models.Group
	levels   map[int64]*models.Level
	programs map[int64]*models.Program
	skills   map[int64][]models.Skill
	swimmers map[int64][]models.Swimmer
	listErr  error
}

func (c *curriculumStub) GetGroup(ctx context.Context, id int64) (*models.Group, error) {
	if g, ok := c.groups[id]; ok {
		return g, nil
	}
	return nil, sql.ErrNoRows
}

func (c *curriculumStub) GetLevel(ctx context.Context, id int64) (*models.Level, error) {
	if l, ok := c.levels[id]; ok {
		return l, nil
	}
	return nil, sql.ErrNoRows
}

func (c *curriculumStub) GetProgram(ctx context.Context, id int64) (*models.Program, error) {
	if p, ok := c.programs[id]; ok {
		return p, nil
	}
	return nil, sql.ErrNoRows
}

func (c *curriculumStub) ListSkillsByLevel(ctx context.Context, levelID int64) ([]models.Skill, error) {
	return c.skills[levelID], nil
}

func (c *curriculumStub) ListSwimmersByGroup(ctx context.Context, groupID int64) ([]models.Swimmer, error) {
	if c.listErr != nil {
		return nil, c.listErr
	}
	return c.swimmers[groupID], nil
}

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }

// sampleCurriculum: group 7 at level 2 of program 1 with three swimmers, two
// on "Flotación" and one on "Patada".
func sampleCurriculum() *curriculumStub {
	flotacion := models.Skill{ID: 10, LevelID: 2, Name: "Flotación", Index: 1, Objective: strPtr("Flotar 10s"), Description: strPtr("Dorsal y ventral"), Drills: strPtr("Estrella de mar")}
	patada := models.Skill{ID: 11, LevelID: 2, Name: "Patada", Index: 2, Objective: strPtr("Propulsión"), Description: strPtr("Patada de crol"), Drills: strPtr("Tabla")}
	return &curriculumStub{
		groups:   map[int64]*models.Group{7: {ID: 7, LevelID: 2}},
		levels:   map[int64]*models.Level{2: {ID: 2, ProgramID: 1, Name: "Nivel 2", Objective: strPtr("Autonomía"), Description: strPtr("Desplazamientos cortos")}},
		programs: map[int64]*models.Program{1: {ID: 1, Name: "Infantil", Description: strPtr("Niños de 4 a 8 años")}},
		skills:   map[int64][]models.Skill{2: {flotacion, patada}},
		swimmers: map[int64][]models.Swimmer{7: {
			{ID: 1, GroupID: 7, SkillID: int64Ptr(10), Name: "Ana", Observations: strPtr("Miedo al agua"), CurrentSkill: &flotacion},
			{ID: 2, GroupID: 7, SkillID: int64Ptr(11), Name: "Luis", CurrentSkill: &patada},
			{ID: 3, GroupID: 7, SkillID: int64Ptr(10), Name: "Sofía", Observations: strPtr(""), CurrentSkill: &flotacion},
		}},
	}
}

type generatorStub struct {
	mu      sync.Mutex
	text    string
	err     error
	panicOn bool
	prompts []string
}

func (g *generatorStub) Generate(ctx context.Context, prompt string) (string, error) {
	g.mu.Lock()
	g.prompts = append(g.prompts, prompt)
	g.mu.Unlock()
	if g.panicOn {
		panic("boom")
	}
	return g.text, g.err
}

func (g *generatorStub) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}

type promptStoreStub struct {
	prompts map[string]string
	err     error
	updated map[string]*string
}

func (p *promptStoreStub) GetCustomPrompt(ctx context.Context, userID string) (*string, error) {
	if p.err != nil {
		return nil, p.err
	}
	if v, ok := p.prompts[userID]; ok {
		return &v, nil
	}
	return nil, nil
}

func (p *promptStoreStub) UpdateCustomPrompt(ctx context.Context, userID string, prompt *string, updatedAt time.Time) error {
	if p.err != nil {
		return p.err
	}
	if _, ok := p.prompts[userID]; !ok {
		return sql.ErrNoRows
	}
	if p.updated == nil {
		p.updated = map[string]*string{}
	}
	p.updated[userID] = prompt
	if prompt == nil {
		p.prompts[userID] = ""
	} else {
		p.prompts[userID] = *prompt
	}
	return nil
}

var errBoom = errors.New("boom")
