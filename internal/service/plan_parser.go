package service

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/noah-isme/swim-planner-api/internal/models"
	appErrors "github.com/noah-isme/swim-planner-api/pkg/errors"
)

// ParsePlan turns generated text into a class plan. Code fences are stripped
// and a bare array of stages is wrapped as {"stages": [...]}. Anything that is
// not a non-empty stages array of objects is ErrParse.
func ParsePlan(text string) (models.ClassPlan, error) {
	body := []byte(stripCodeFence(text))
	if len(body) == 0 {
		return models.ClassPlan{}, parseError("empty response")
	}
	if !json.Valid(body) {
		return models.ClassPlan{}, parseError("response is not valid JSON")
	}

	var stagesRaw json.RawMessage
	var normalized bytes.Buffer
	switch body[0] {
	case '[':
		stagesRaw = body
		normalized.WriteString(`{"stages":`)
		if err := json.Compact(&normalized, body); err != nil {
			return models.ClassPlan{}, parseError(err.Error())
		}
		normalized.WriteString(`}`)
	case '{':
		var doc map[string]json.RawMessage
		if err := json.Unmarshal(body, &doc); err != nil {
			return models.ClassPlan{}, parseError(err.Error())
		}
		raw, ok := doc["stages"]
		if !ok {
			return models.ClassPlan{}, parseError(`missing "stages" key`)
		}
		stagesRaw = bytes.TrimSpace(raw)
		if err := json.Compact(&normalized, body); err != nil {
			return models.ClassPlan{}, parseError(err.Error())
		}
	default:
		return models.ClassPlan{}, parseError("expected a JSON object or array")
	}

	if len(stagesRaw) == 0 || stagesRaw[0] != '[' {
		return models.ClassPlan{}, parseError(`"stages" is not an array`)
	}
	var stages []models.Stage
	if err := json.Unmarshal(stagesRaw, &stages); err != nil {
		return models.ClassPlan{}, parseError("invalid stage: " + err.Error())
	}
	if len(stages) == 0 {
		return models.ClassPlan{}, parseError("plan has no stages")
	}
	return models.ClassPlan{Raw: models.JSONContent(normalized.Bytes()), Stages: stages}, nil
}

// stripCodeFence removes a leading ``` or ```json line and a trailing ```.
func stripCodeFence(text string) string {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if len(s) >= 4 && strings.EqualFold(s[:4], "json") {
			s = s[4:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func parseError(detail string) error {
	return appErrors.Clone(appErrors.ErrParse, "Invalid plan format: "+detail)
}
