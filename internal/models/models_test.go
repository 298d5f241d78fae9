package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerationStatusTerminal(t *testing.T) {
	assert.False(t, GenerationPending.Terminal())
	assert.False(t, GenerationProcessing.Terminal())
	assert.True(t, GenerationCompleted.Terminal())
	assert.True(t, GenerationFailed.Terminal())
	assert.False(t, GenerationStatus("done").Valid())
}

func TestJSONContentNullHandling(t *testing.T) {
	var c JSONContent
	require.NoError(t, c.Scan(nil))
	assert.True(t, c.IsNull())
	v, err := c.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	out, err := json.Marshal(struct {
		Plan JSONContent `json:"plan"`
	}{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"plan":null}`, string(out))
}

func TestJSONContentScanCopiesBytes(t *testing.T) {
	src := []byte(`{"stages":[]}`)
	var c JSONContent
	require.NoError(t, c.Scan(src))
	src[2] = 'X'
	assert.JSONEq(t, `{"stages":[]}`, string(c))
}

func TestJSONContentEmbedsRawDocument(t *testing.T) {
	c := JSONContent(`{"stages":[{"etapa":"Calentamiento"}]}`)
	out, err := json.Marshal(map[string]interface{}{"plan": c})
	require.NoError(t, err)
	assert.JSONEq(t, `{"plan":{"stages":[{"etapa":"Calentamiento"}]}}`, string(out))

	var back struct {
		Plan JSONContent `json:"plan"`
	}
	require.NoError(t, json.Unmarshal(out, &back))
	assert.JSONEq(t, string(c), string(back.Plan))
}

func TestMinutesAcceptsNumbersAndStrings(t *testing.T) {
	var stages []Stage
	require.NoError(t, json.Unmarshal([]byte(`[{"tiempo_minutos":10},{"tiempo_minutos":"7,5 min"},{"tiempo_minutos":""}]`), &stages))
	assert.Equal(t, Minutes(10), stages[0].TiempoMinutos)
	assert.Equal(t, Minutes(7.5), stages[1].TiempoMinutos)
	assert.Equal(t, Minutes(0), stages[2].TiempoMinutos)
	assert.Equal(t, 17.5, ClassPlan{Stages: stages}.TotalMinutes())

	var bad Stage
	assert.Error(t, json.Unmarshal([]byte(`{"tiempo_minutos":"diez"}`), &bad))
	assert.Error(t, json.Unmarshal([]byte(`{"tiempo_minutos":true}`), &bad))
}

func TestSessionConfigDefaults(t *testing.T) {
	cfg := SessionConfig{DurationMinutes: 45, Materials: []string{" ", ""}}
	assert.Equal(t, DefaultFocus, cfg.FocusOrDefault())
	assert.Equal(t, DefaultMaterials, cfg.MaterialsText())

	cfg = SessionConfig{Focus: " Técnico ", Materials: []string{"Tablas", " Pull buoys "}}
	assert.Equal(t, "Técnico", cfg.FocusOrDefault())
	assert.Equal(t, "Tablas, Pull buoys", cfg.MaterialsText())
}

func TestTeachingContextSwimmerCount(t *testing.T) {
	skill := int64(3)
	ctx := TeachingContext{SkillClusters: []SkillCluster{
		{SkillID: &skill, SwimmerNames: []string{"Ana", "Luis"}},
		{SwimmerNames: []string{"Eva"}},
	}}
	assert.Equal(t, 3, ctx.SwimmerCount())
	assert.True(t, ctx.SkillClusters[1].Unassigned())
	assert.Equal(t, "Ana, Luis", ctx.SkillClusters[0].Names())
}

func TestClaimsSubjectFallback(t *testing.T) {
	c := &JWTClaims{}
	c.RegisteredClaims.Subject = "sub-1"
	assert.Equal(t, "sub-1", c.RequesterID())
	c.UserID = "user-1"
	assert.Equal(t, "user-1", c.RequesterID())
	var nilClaims *JWTClaims
	assert.Empty(t, nilClaims.RequesterID())
}
