package models

import "strings"

// UnassignedSkillLabel describes swimmers without a current skill.
const UnassignedSkillLabel = "Sin asignar (Principiante)"

// SkillCluster groups the swimmers of a group sharing a current skill.
type SkillCluster struct {
	SkillID      *int64
	SkillName    string
	Objective    string
	Description  string
	Drills       string
	SwimmerNames []string
	// Observations holds the non-empty swimmer notes joined with "; ".
	Observations string
}

// Unassigned reports whether the cluster collects swimmers with no skill.
func (c SkillCluster) Unassigned() bool {
	return c.SkillID == nil
}

// Names joins the swimmer names with ", ".
func (c SkillCluster) Names() string {
	return strings.Join(c.SwimmerNames, ", ")
}

// TeachingContext is the snapshot of a group used to ground a class plan.
type TeachingContext struct {
	GroupID            int64
	ProgramName        string
	ProgramDescription string
	LevelName          string
	LevelObjective     string
	LevelDescription   string
	SkillClusters      []SkillCluster
	// LevelProgression lists every skill of the level as "{index}. {name}: {description}".
	LevelProgression []string
}

// SwimmerCount is the number of swimmers across all clusters.
func (t TeachingContext) SwimmerCount() int {
	n := 0
	for _, c := range t.SkillClusters {
		n += len(c.SwimmerNames)
	}
	return n
}
