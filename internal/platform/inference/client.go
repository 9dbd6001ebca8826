// Package inference is a client for an Ollama-compatible chat completion
// endpoint (POST {base}/api/chat, non-streaming).
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dentalcare/dentalcare/internal/platform/apperr"
)

// maxResponseBytes caps how much of an upstream reply is read.
const maxResponseBytes = 8 << 20

// Message is one entry of a chat transcript.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

type chatResponse struct {
	Model   string  `json:"model"`
	Message Message `json:"message"`
	Done    bool    `json:"done"`
	Error   string  `json:"error,omitempty"`
}

// Recorder receives one observation per completion call.
type Recorder interface {
	RecordInference(outcome string, d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) RecordInference(string, time.Duration) {}

type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client is safe for concurrent use; one instance is shared by all requests.
type Client struct {
	endpoint   string
	model      string
	timeout    time.Duration
	httpClient *http.Client
	logger     zerolog.Logger
	recorder   Recorder
}

func NewClient(cfg Config, logger zerolog.Logger, rec Recorder) *Client {
	if rec == nil {
		rec = nopRecorder{}
	}
	return &Client{
		endpoint:   strings.TrimRight(cfg.BaseURL, "/") + "/api/chat",
		model:      cfg.Model,
		timeout:    cfg.Timeout,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.With().Str("component", "inference").Logger(),
		recorder:   rec,
	}
}

func (c *Client) Model() string { return c.model }

// Chat sends the transcript and returns the assistant's reply text. Every
// failure (transport, timeout, non-2xx, undecodable body) is
// KindUpstreamUnavailable.
func (c *Client) Chat(ctx context.Context, messages []Message) (string, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(chatRequest{Model: c.model, Messages: messages, Stream: false})
	if err != nil {
		return "", apperr.Internal(fmt.Errorf("encode chat request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", apperr.Internal(fmt.Errorf("build chat request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("model", c.model).Int("messages", len(messages)).Msg("sending chat request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		outcome := "transport_error"
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			outcome = "timeout"
		}
		c.recorder.RecordInference(outcome, time.Since(start))
		c.logger.Error().Err(err).Str("outcome", outcome).Msg("chat request failed")
		return "", apperr.UpstreamUnavailable(fmt.Errorf("post %s: %w", c.endpoint, err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.recorder.RecordInference("transport_error", time.Since(start))
		return "", apperr.UpstreamUnavailable(fmt.Errorf("read chat response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.recorder.RecordInference("upstream_status", time.Since(start))
		c.logger.Error().Int("status", resp.StatusCode).Msg("chat request rejected upstream")
		return "", apperr.UpstreamUnavailable(fmt.Errorf("upstream status %d: %s", resp.StatusCode, truncate(string(raw), 256)))
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		c.recorder.RecordInference("upstream_status", time.Since(start))
		return "", apperr.UpstreamUnavailable(fmt.Errorf("decode chat response: %w", err))
	}
	if out.Error != "" {
		c.recorder.RecordInference("upstream_status", time.Since(start))
		return "", apperr.UpstreamUnavailable(fmt.Errorf("upstream error: %s", out.Error))
	}

	elapsed := time.Since(start)
	c.recorder.RecordInference("ok", elapsed)
	c.logger.Info().Str("model", c.model).Dur("latency", elapsed).Msg("chat response received")
	return out.Message.Content, nil
}

func isTimeout(err error) bool {
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
