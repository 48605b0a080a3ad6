// Package oracle implements the client for the grounded web-search service
// used as the factual-verification authority for timeline entries.
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/blockhistory/chronicle/internal/metrics"
	"github.com/blockhistory/chronicle/internal/monitor"
)

const (
	defaultBaseURL     = "https://api.perplexity.ai"
	defaultModel       = "sonar"
	defaultTemperature = 0.2
	defaultTopP        = 0.9
	defaultTimeout     = 60 * time.Second

	promptPreview = 200
)

// Config holds oracle client settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	TopP        float64
	Timeout     time.Duration
}

// Reply is the oracle's answer to one call: free text expected to contain a
// JSON payload, plus the citation URLs the search grounded it on.
type Reply struct {
	Content   string
	Citations []string
}

// RequestContext annotates a call for the monitoring side channel.
type RequestContext struct {
	Date    string
	Purpose string
}

// Caller is the stage-facing contract for oracle calls.
type Caller interface {
	Call(ctx context.Context, systemPrompt, userPrompt string, rc RequestContext) (*Reply, error)
}

// Client talks to the chat-completions endpoint of the oracle service.
// It performs exactly one HTTP request per Call; retry policy belongs to
// callers.
type Client struct {
	cfg  Config
	http *http.Client
	sink monitor.Sink
}

// NewClient creates an oracle client. A missing API key is fatal: the
// pipeline must not start without a credential. A nil sink disables the
// monitoring side channel.
func NewClient(cfg Config, sink monitor.Sink) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrCredentialMissing
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = defaultTemperature
	}
	if cfg.TopP == 0 {
		cfg.TopP = defaultTopP
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if sink == nil {
		sink = monitor.NopSink{}
	}

	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		sink: sink,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p"`
	Stream      bool          `json:"stream"`
}

type chatResponse struct {
	Citations []string `json:"citations"`
	Choices   []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Call sends one verification request and returns the raw reply. Both
// prompts must be non-empty. The monitoring record transitions
// pending -> success/error with latency and payload size; the side channel
// never influences the returned value.
func (c *Client) Call(ctx context.Context, systemPrompt, userPrompt string, rc RequestContext) (*Reply, error) {
	if systemPrompt == "" || userPrompt == "" {
		return nil, fmt.Errorf("oracle call requires non-empty system and user prompts")
	}

	purpose := rc.Purpose
	if purpose == "" {
		purpose = "fact-check"
	}

	monitorID := c.sink.LogRequest(monitor.Record{
		Service:  "oracle",
		Endpoint: "/chat/completions",
		Purpose:  purpose,
		Date:     rc.Date,
		RequestData: map[string]any{
			"model":       c.cfg.Model,
			"user_prompt": truncate(userPrompt, promptPreview),
			"temperature": c.cfg.Temperature,
		},
	})
	start := time.Now()

	reply, size, err := c.do(ctx, systemPrompt, userPrompt)
	duration := time.Since(start)
	metrics.OracleRequestDuration.Observe(duration.Seconds())

	if err != nil {
		c.sink.UpdateRequest(monitorID, monitor.Update{
			Status:   monitor.StatusError,
			Duration: duration,
			Error:    err.Error(),
		})
		metrics.OracleRequestsTotal.WithLabelValues(purpose, "error").Inc()
		return nil, err
	}

	c.sink.UpdateRequest(monitorID, monitor.Update{
		Status:       monitor.StatusSuccess,
		Duration:     duration,
		ResponseSize: size,
	})
	metrics.OracleRequestsTotal.WithLabelValues(purpose, "success").Inc()
	metrics.OracleResponseBytes.Add(float64(size))

	return reply, nil
}

func (c *Client) do(ctx context.Context, systemPrompt, userPrompt string) (*Reply, int, error) {
	payload := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: c.cfg.Temperature,
		TopP:        c.cfg.TopP,
		Stream:      false,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("oracle request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, 0, &HTTPError{Status: resp.StatusCode, Body: string(respBody)}
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, 0, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return nil, 0, &FormatError{Content: string(respBody), Reason: "no content in reply"}
	}

	return &Reply{
		Content:   parsed.Choices[0].Message.Content,
		Citations: parsed.Citations,
	}, len(respBody), nil
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
