package service

import (
	"strconv"
	"strings"

	"github.com/noah-isme/swim-planner-api/internal/models"
)

const (
	promptRole = "Actúa como un COORDINADOR ACUÁTICO EXPERTO. Tu objetivo es crear una clase altamente personalizada y técnica."

	customInstructionsHeader = "INSTRUCCIONES PERSONALES DEL PROFESOR:"

	promptGenerationRules = `INSTRUCCIONES DE GENERACIÓN:
Genera una clase donde CADA ejercicio esté diseñado específicamente para las habilidades actuales de los alumnos mencionados.
- Si hay alumnos en la misma habilidad, agrúpalos en la misma estación o carril.
- Si hay alumnos en habilidades diferentes, sugiere ejercicios diferenciados o circuitos donde cada uno trabaje su objetivo.
- Usa los "Ejercicios Recomendados (Drills)" provistos en el perfil del alumno siempre que sea posible.`

	promptResponseShape = `ESTRUCTURA DE RESPUESTA (JSON):
{
  "stages": [
    {
      "etapa": "...",
      "descripcion": "...",
      "organizacion": "...",
      "material": "...",
      "tiempo_minutos": 0,
      "intensidad": "..."
    }
  ]
}
Responde SOLO con el JSON.`
)

// AssemblePrompt renders the generation instructions for one class. It is a
// pure function of its inputs; empty optional values fall back to defaults and
// the custom instructions block is left out when there are none.
func AssemblePrompt(tc models.TeachingContext, cfg models.SessionConfig) string {
	sections := []string{
		promptRole,
		institutionalSection(tc),
		clustersSection(tc.SkillClusters),
		sessionSection(cfg),
		progressionSection(tc.LevelProgression),
	}
	if custom := strings.TrimSpace(cfg.CustomInstructions); custom != "" {
		sections = append(sections, customInstructionsHeader+"\n"+custom)
	}
	sections = append(sections, promptGenerationRules, promptResponseShape)
	return strings.Join(sections, "\n\n")
}

func institutionalSection(tc models.TeachingContext) string {
	var b strings.Builder
	b.WriteString("CONTEXTO INSTITUCIONAL (METODOLOGÍA):\n")
	b.WriteString("- Programa: " + tc.ProgramName + "\n")
	b.WriteString("- Descripción del Programa: " + tc.ProgramDescription + "\n")
	b.WriteString("- Nivel Actual: " + tc.LevelName + "\n")
	b.WriteString("- Objetivo del Nivel: " + tc.LevelObjective + "\n")
	b.WriteString("- Descripción del Nivel: " + tc.LevelDescription)
	return b.String()
}

func clustersSection(clusters []models.SkillCluster) string {
	var b strings.Builder
	b.WriteString("PERFIL DE LA CLASE (ALUMNOS Y SUS NECESIDADES ESPECÍFICAS):")
	if len(clusters) == 0 {
		b.WriteString("\n- Sin alumnos registrados en el grupo.")
		return b.String()
	}
	for _, c := range clusters {
		b.WriteString("\n- Alumnos: " + c.Names() + "\n")
		b.WriteString("   " + skillInfo(c) + "\n")
		b.WriteString("   Observaciones: " + c.Observations)
	}
	return b.String()
}

func skillInfo(c models.SkillCluster) string {
	if c.Unassigned() {
		return "Habilidad: " + models.UnassignedSkillLabel
	}
	return "Habilidad: '" + c.SkillName + "'\n" +
		"   - Objetivo: " + c.Objective + "\n" +
		"   - Descripción Técnica: " + c.Description + "\n" +
		"   - Ejercicios Recomendados (Drills): " + c.Drills
}

func sessionSection(cfg models.SessionConfig) string {
	var b strings.Builder
	b.WriteString("CONFIGURACIÓN DE LA SESIÓN:\n")
	b.WriteString("- Duración: " + strconv.Itoa(cfg.DurationMinutes) + " minutos (CRÍTICO: La suma de etapas debe ser exacta).\n")
	b.WriteString("- Enfoque: " + cfg.FocusOrDefault() + "\n")
	b.WriteString("- Material Disponible: " + cfg.MaterialsText())
	return b.String()
}

func progressionSection(lines []string) string {
	header := "CONTEXTO DE PROGRESIÓN (Skills del nivel):"
	if len(lines) == 0 {
		return header + "\n- Sin habilidades definidas para el nivel."
	}
	return header + "\n" + strings.Join(lines, "\n")
}
