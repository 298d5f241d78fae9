package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/swim-planner-api/internal/dto"
	appErrors "github.com/noah-isme/swim-planner-api/pkg/errors"
)

type promptSettingsServiceMock struct {
	userID  string
	update  dto.UpdatePromptRequest
	resp    *dto.PromptResponse
	err     error
	updates int
}

func (m *promptSettingsServiceMock) Get(ctx context.Context, userID string) (*dto.PromptResponse, error) {
	m.userID = userID
	return m.resp, m.err
}

func (m *promptSettingsServiceMock) Update(ctx context.Context, userID string, req dto.UpdatePromptRequest) (*dto.PromptResponse, error) {
	m.updates++
	m.userID = userID
	m.update = req
	return m.resp, m.err
}

func TestPromptSettingsHandlerGet(t *testing.T) {
	prompt := "Usa siempre juegos al final."
	mockSvc := &promptSettingsServiceMock{resp: &dto.PromptResponse{Success: true, CustomPrompt: &prompt}}
	h := NewPromptSettingsHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/settings/prompt", nil)
	withUser(c, "instructor-1")
	h.Get(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, prompt, decodeBody(t, w)["custom_prompt"])
	assert.Equal(t, "instructor-1", mockSvc.userID)
}

func TestPromptSettingsHandlerUpdate(t *testing.T) {
	mockSvc := &promptSettingsServiceMock{resp: &dto.PromptResponse{Success: true}}
	h := NewPromptSettingsHandler(mockSvc)

	c, w := newGinContext(http.MethodPut, "/settings/prompt", []byte(`{"custom_prompt":"Más técnica de brazada"}`))
	withUser(c, "instructor-1")
	h.Update(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, mockSvc.update.CustomPrompt)
	assert.Equal(t, "Más técnica de brazada", *mockSvc.update.CustomPrompt)
}

func TestPromptSettingsHandlerUpdateRejectsBadJSON(t *testing.T) {
	mockSvc := &promptSettingsServiceMock{}
	h := NewPromptSettingsHandler(mockSvc)

	c, w := newGinContext(http.MethodPut, "/settings/prompt", []byte(`not-json`))
	withUser(c, "instructor-1")
	h.Update(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, mockSvc.updates)
}

func TestPromptSettingsHandlerPropagatesNotFound(t *testing.T) {
	mockSvc := &promptSettingsServiceMock{err: appErrors.Clone(appErrors.ErrNotFound, "User not found")}
	h := NewPromptSettingsHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/settings/prompt", nil)
	withUser(c, "ghost")
	h.Get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "User not found", decodeBody(t, w)["message"])
}
