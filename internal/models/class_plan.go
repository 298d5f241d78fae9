package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Stage is one segment of a generated class plan. JSON keys follow the
// contract given to the model.
type Stage struct {
	Etapa         string  `json:"etapa"`
	Descripcion   string  `json:"descripcion"`
	Organizacion  string  `json:"organizacion"`
	Material      string  `json:"material"`
	TiempoMinutos Minutes `json:"tiempo_minutos"`
	Intensidad    string  `json:"intensidad"`
}

// ClassPlan is a parsed plan. Raw is the normalised document persisted as
// the generation content; Stages is its typed view.
type ClassPlan struct {
	Raw    JSONContent
	Stages []Stage
}

// TotalMinutes sums the stage durations.
func (p ClassPlan) TotalMinutes() float64 {
	var total float64
	for _, s := range p.Stages {
		total += float64(s.TiempoMinutos)
	}
	return total
}

// Minutes accepts a JSON number or a numeric string ("10", "10 min").
type Minutes float64

// UnmarshalJSON implements json.Unmarshaler.
func (m *Minutes) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*m = Minutes(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("tiempo_minutos: expected number, got %s", string(data))
	}
	fields := strings.Fields(s)
	if len(fields) == 0 {
		*m = 0
		return nil
	}
	n, err := strconv.ParseFloat(strings.ReplaceAll(fields[0], ",", "."), 64)
	if err != nil {
		return fmt.Errorf("tiempo_minutos: %q is not numeric", s)
	}
	*m = Minutes(n)
	return nil
}

// String renders whole minutes without a decimal part.
func (m Minutes) String() string {
	return strconv.FormatFloat(float64(m), 'f', -1, 64)
}
