package models

import "time"

// Program is the top of the curriculum tree (e.g. "Bebés", "Adultos").
type Program struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Level belongs to a program and owns an ordered list of skills.
type Level struct {
	ID          int64     `db:"id" json:"id"`
	ProgramID   int64     `db:"program_id" json:"program_id"`
	Name        string    `db:"name" json:"name"`
	Objective   *string   `db:"objective" json:"objective,omitempty"`
	Description *string   `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Skill is one step of a level's progression, ordered by Index.
type Skill struct {
	ID          int64   `db:"id" json:"id"`
	LevelID     int64   `db:"level_id" json:"level_id"`
	Name        string  `db:"name" json:"name"`
	Index       int     `db:"index" json:"index"`
	Objective   *string `db:"objective" json:"objective,omitempty"`
	Description *string `db:"description" json:"description,omitempty"`
	Drills      *string `db:"drills" json:"drills,omitempty"`
}

// Group is a scheduled class of swimmers at one level.
type Group struct {
	ID        int64     `db:"id" json:"id"`
	LevelID   int64     `db:"level_id" json:"level_id"`
	HourStart *string   `db:"hour_start" json:"hour_start,omitempty"`
	Days      *string   `db:"days" json:"days,omitempty"`
	Note      *string   `db:"note" json:"note,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Swimmer is a student of a group. SkillID is the skill currently worked on;
// nil means the swimmer has not been assessed yet.
type Swimmer struct {
	ID           int64   `db:"id" json:"id"`
	GroupID      int64   `db:"group_id" json:"group_id"`
	SkillID      *int64  `db:"skill_id" json:"skill_id,omitempty"`
	Name         string  `db:"name" json:"name"`
	Observations *string `db:"observations" json:"observations,omitempty"`

	CurrentSkill *Skill `db:"-" json:"current_skill,omitempty"`
}

// Instructor is the authenticated user requesting plans.
type Instructor struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	CustomPrompt *string   `db:"custom_prompt" json:"custom_prompt,omitempty"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Deref returns the pointed string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
