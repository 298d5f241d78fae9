// Package llm wraps the Gemini text-generation API used to draft class plans.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/noah-isme/swim-planner-api/pkg/config"
	appErrors "github.com/noah-isme/swim-planner-api/pkg/errors"
)

const (
	defaultModel   = "gemini-2.5-flash"
	defaultTimeout = 120 * time.Second
	apiKeyEnv      = "GEMINI_API_KEY"
)

// Generator turns a prompt into generated text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiClient calls models.generateContent once per Generate call. The API
// key is resolved on every call so a missing key fails the job, not start-up.
type GeminiClient struct {
	apiKey     string
	model      string
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	logger     *zap.Logger
}

// Option customises a GeminiClient.
type Option func(*GeminiClient)

// WithHTTPClient overrides the transport used by the SDK.
func WithHTTPClient(client *http.Client) Option {
	return func(c *GeminiClient) { c.httpClient = client }
}

// NewGeminiClient constructs the client from configuration.
func NewGeminiClient(cfg config.GeminiConfig, logger *zap.Logger, opts ...Option) *GeminiClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &GeminiClient{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: cfg.BaseURL,
		timeout: cfg.Timeout,
		logger:  logger.Named("gemini"),
	}
	if c.model == "" {
		c.model = defaultModel
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *GeminiClient) resolveKey() string {
	if key := strings.TrimSpace(c.apiKey); key != "" {
		return key
	}
	return strings.TrimSpace(os.Getenv(apiKeyEnv))
}

// Generate sends prompt as the sole user content and requests a JSON response.
// Transport errors, non-success statuses and empty bodies are UPSTREAM_ERROR;
// a missing key is CONFIGURATION_ERROR.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	key := c.resolveKey()
	if key == "" {
		return "", appErrors.Clone(appErrors.ErrConfiguration, "API Key not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	clientCfg := &genai.ClientConfig{
		APIKey:     key,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: c.httpClient,
	}
	if c.baseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: c.baseURL}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrConfiguration.Code, appErrors.ErrConfiguration.Status, "failed to create Gemini client")
	}

	start := time.Now()
	resp, err := client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	elapsed := time.Since(start)
	if err != nil {
		c.logger.Warn("gemini call failed", zap.String("model", c.model), zap.Duration("elapsed", elapsed), zap.Error(err))
		msg := "Gemini API Error"
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			msg = fmt.Sprintf("Gemini API timeout after %s", c.timeout)
		}
		return "", appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, msg)
	}

	text := firstText(resp)
	if strings.TrimSpace(text) == "" {
		return "", appErrors.Clone(appErrors.ErrUpstream, "Gemini API returned an empty response")
	}
	c.logger.Debug("gemini call succeeded", zap.String("model", c.model), zap.Duration("elapsed", elapsed), zap.Int("chars", len(text)))
	return text, nil
}

// firstText reads candidates[0].content.parts[0].text.
func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	candidate := resp.Candidates[0]
	if candidate == nil || candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return ""
	}
	part := candidate.Content.Parts[0]
	if part == nil {
		return ""
	}
	return part.Text
}
