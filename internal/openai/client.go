package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/docuflow/statement-extraction-service/internal/extract"
)

const stageInvoke = "invoke_model"

// Config holds configuration for the vision model client.
type Config struct {
	APIKey    string
	BaseURL   string // default https://api.openai.com/v1
	Model     string // e.g. "gpt-4o"
	MaxTokens int    // maximum output tokens for one completion
	Timeout   time.Duration
}

// DefaultConfig returns a default configuration for the client.
func DefaultConfig() Config {
	return Config{
		BaseURL:   "https://api.openai.com/v1",
		Model:     "gpt-4o",
		MaxTokens: 4096,
		Timeout:   120 * time.Second,
	}
}

// Client talks to an OpenAI-compatible chat completions endpoint. It is the
// pipeline's only network dependency; a retry policy, if any, wraps Invoke.
type Client struct {
	cfg        Config
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a vision model client.
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4096
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	return &Client{cfg: cfg, httpClient: &http.Client{}, log: logger}
}

// Configured reports whether a credential is present. Used by the health
// check, which must never perform a completion call.
func (c *Client) Configured() bool {
	return c.cfg.APIKey != ""
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.cfg.Model
}

// Invoke performs a single synchronous chat completion and returns the
// model's raw text reply. The wait is bounded by the configured timeout;
// a slow upstream surfaces as UpstreamTimeout rather than hanging a worker.
func (c *Client) Invoke(ctx context.Context, req extract.ExtractionRequest) (string, error) {
	reqID := uuid.New().String()
	start := time.Now()

	body := map[string]any{
		"model":      c.cfg.Model,
		"messages":   req.Messages,
		"max_tokens": c.cfg.MaxTokens,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", extract.NewError(extract.KindUpstreamUnavailable, stageInvoke,
			fmt.Errorf("marshal request: %w", err))
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", extract.NewError(extract.KindUpstreamUnavailable, stageInvoke, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	c.log.Info().
		Str("req_id", reqID).
		Str("model", c.cfg.Model).
		Int("payload_bytes", len(payload)).
		Msg("sending extraction request to vision model")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		kind := extract.KindUpstreamUnavailable
		if isTimeout(err) {
			kind = extract.KindUpstreamTimeout
		}
		c.log.Error().Str("req_id", reqID).Err(err).
			Dur("elapsed", time.Since(start)).
			Msg("vision model request failed")
		return "", extract.NewError(kind, stageInvoke, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", extract.NewError(extract.KindUpstreamUnavailable, stageInvoke,
			fmt.Errorf("read response: %w", err))
	}

	c.log.Info().
		Str("req_id", reqID).
		Int("status", resp.StatusCode).
		Int("bytes", len(raw)).
		Dur("elapsed", time.Since(start)).
		Msg("vision model responded")

	if resp.StatusCode != http.StatusOK {
		return "", extract.NewError(extract.KindUpstreamRejected, stageInvoke,
			fmt.Errorf("model service returned %s: %s", resp.Status, truncate(raw, 512)))
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		return "", extract.NewError(extract.KindUpstreamRejected, stageInvoke,
			fmt.Errorf("decode response: %w", err))
	}
	if len(cc.Choices) == 0 {
		return "", extract.NewError(extract.KindUpstreamRejected, stageInvoke,
			fmt.Errorf("no choices in model response"))
	}

	return cc.Choices[0].Message.Content, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
