package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// GenerationStatus captures the class generation lifecycle.
type GenerationStatus string

const (
	GenerationPending    GenerationStatus = "pending"
	GenerationProcessing GenerationStatus = "processing"
	GenerationCompleted  GenerationStatus = "completed"
	GenerationFailed     GenerationStatus = "failed"
)

// Terminal reports whether no further transition can leave the status.
func (s GenerationStatus) Terminal() bool {
	return s == GenerationCompleted || s == GenerationFailed
}

// Valid reports whether s is a known status.
func (s GenerationStatus) Valid() bool {
	switch s {
	case GenerationPending, GenerationProcessing, GenerationCompleted, GenerationFailed:
		return true
	default:
		return false
	}
}

// ClassGeneration is the persisted record of one generation request. Content is
// only set when completed, ErrorMessage only when failed.
type ClassGeneration struct {
	ID           string           `db:"id" json:"id"`
	GroupID      int64            `db:"group_id" json:"group_id"`
	RequestedBy  string           `db:"requested_by" json:"requested_by"`
	Status       GenerationStatus `db:"status" json:"status"`
	Config       JSONContent      `db:"config" json:"config"`
	Content      JSONContent      `db:"content" json:"content"`
	ErrorMessage *string          `db:"error_message" json:"error_message,omitempty"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time        `db:"updated_at" json:"updated_at"`
	StartedAt    *time.Time       `db:"started_at" json:"started_at,omitempty"`
	FinishedAt   *time.Time       `db:"finished_at" json:"finished_at,omitempty"`
}

// SessionConfig decodes the settings submitted with the request.
func (g ClassGeneration) SessionConfig() (SessionConfig, error) {
	var cfg SessionConfig
	if g.Config.IsNull() {
		return cfg, nil
	}
	if err := json.Unmarshal(g.Config, &cfg); err != nil {
		return cfg, fmt.Errorf("decode session config: %w", err)
	}
	return cfg, nil
}

// JSONContent is a nullable JSONB column holding raw JSON.
type JSONContent []byte

var jsonNull = []byte("null")

// IsNull reports whether the column holds no value.
func (j JSONContent) IsNull() bool {
	return len(j) == 0 || bytes.Equal(j, jsonNull)
}

// Value stores the raw document, or NULL.
func (j JSONContent) Value() (driver.Value, error) {
	if j.IsNull() {
		return nil, nil
	}
	return []byte(j), nil
}

// Scan reads a JSONB column.
func (j *JSONContent) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*j = nil
	case []byte:
		*j = append((*j)[:0:0], v...)
	case string:
		*j = JSONContent(v)
	default:
		return fmt.Errorf("unsupported type %T for JSONContent", value)
	}
	return nil
}

// MarshalJSON emits the raw document or null.
func (j JSONContent) MarshalJSON() ([]byte, error) {
	if j.IsNull() {
		return jsonNull, nil
	}
	return j, nil
}

// UnmarshalJSON keeps a copy of the raw document.
func (j *JSONContent) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		*j = nil
		return nil
	}
	*j = append((*j)[:0:0], data...)
	return nil
}
