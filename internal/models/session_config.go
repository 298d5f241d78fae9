package models

import "strings"

const (
	DefaultFocus     = "Equilibrado"
	DefaultMaterials = "Ninguno específico (usar estándar)"

	MinSessionMinutes = 15
	MaxSessionMinutes = 180
)

// SessionConfig carries the per-request class settings.
type SessionConfig struct {
	DurationMinutes int      `json:"duration_minutes" validate:"min=15,max=180"`
	Focus           string   `json:"focus,omitempty" validate:"max=120"`
	Materials       []string `json:"materials,omitempty" validate:"max=50,dive,max=120"`
	// CustomInstructions comes from the requesting instructor's profile and is
	// resolved when the job runs.
	CustomInstructions string `json:"custom_instructions,omitempty"`
}

// FocusOrDefault returns the trimmed focus or DefaultFocus.
func (s SessionConfig) FocusOrDefault() string {
	if f := strings.TrimSpace(s.Focus); f != "" {
		return f
	}
	return DefaultFocus
}

// MaterialsText joins non-blank materials with ", " or returns DefaultMaterials.
func (s SessionConfig) MaterialsText() string {
	items := make([]string, 0, len(s.Materials))
	for _, m := range s.Materials {
		if m = strings.TrimSpace(m); m != "" {
			items = append(items, m)
		}
	}
	if len(items) == 0 {
		return DefaultMaterials
	}
	return strings.Join(items, ", ")
}
