package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vietddude/faxroute/internal/core/config"
	"github.com/vietddude/faxroute/internal/core/domain"
	"github.com/vietddude/faxroute/internal/metrics"
)

const (
	defaultBaseURL   = "https://api.anthropic.com"
	anthropicVersion = "2023-06-01"

	// maxPromptText caps how much document text goes into the prompt.
	maxPromptText = 4000
)

// AnthropicClient implements Classifier using the Anthropic messages API.
type AnthropicClient struct {
	cfg             config.AIConfig
	defaultCategory string
	keywordHints    []string
	httpClient      *http.Client
	log             *slog.Logger
}

// NewAnthropicClient creates a new classification client. keywordHints are
// surfaced inside the prompt as extra guidance; defaultCategory is the label
// the model is told to use when nothing matches.
func NewAnthropicClient(cfg config.AIConfig, defaultCategory string, keywordHints []string, log *slog.Logger) *AnthropicClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if log == nil {
		log = slog.Default()
	}
	return &AnthropicClient{
		cfg:             cfg,
		defaultCategory: defaultCategory,
		keywordHints:    keywordHints,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		log: log,
	}
}

// Classify sends the document text and the closed category set to the model
// and returns the label it answered with, trimmed. Callers must validate the
// label against the configured set.
func (c *AnthropicClient) Classify(ctx context.Context, text string, categories []string) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("ai.classify.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"text_len", len(text),
		"categories", len(categories),
	)

	body := map[string]any{
		"model":      c.cfg.Model,
		"max_tokens": c.cfg.MaxTokens,
		"messages": []map[string]any{
			{"role": "user", "content": buildPrompt(text, categories, c.keywordHints, c.defaultCategory)},
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", domain.Permanent(domain.BoundaryAI, fmt.Errorf("marshal request: %w", err))
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/v1/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", domain.Permanent(domain.BoundaryAI, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.cfg.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.BoundaryErrors.WithLabelValues(domain.BoundaryAI, "transient").Inc()
		c.log.Error("ai.classify.http_error", "req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return "", domain.Transient(domain.BoundaryAI, fmt.Errorf("classify call: %w", err))
	}
	defer resp.Body.Close()

	metrics.BoundaryLatency.WithLabelValues(domain.BoundaryAI).Observe(time.Since(start).Seconds())

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.BoundaryErrors.WithLabelValues(domain.BoundaryAI, "transient").Inc()
		return "", domain.Transient(domain.BoundaryAI, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		kind := "permanent"
		wrap := domain.Permanent
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			kind = "transient"
			wrap = domain.Transient
		}
		metrics.BoundaryErrors.WithLabelValues(domain.BoundaryAI, kind).Inc()
		return "", wrap(domain.BoundaryAI, fmt.Errorf("status %d: %s", resp.StatusCode, truncate(raw, 256)))
	}

	var message struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(raw, &message); err != nil {
		return "", domain.Permanent(domain.BoundaryAI, fmt.Errorf("decode response: %w", err))
	}
	if len(message.Content) == 0 {
		return "", domain.Permanent(domain.BoundaryAI, fmt.Errorf("empty response content"))
	}

	label := strings.TrimSpace(message.Content[0].Text)
	c.log.Info("ai.classify.ok",
		"req_id", rid,
		"label", label,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return label, nil
}

func buildPrompt(text string, categories, keywordHints []string, defaultCategory string) string {
	if len(text) > maxPromptText {
		text = text[:maxPromptText]
	}

	var b strings.Builder
	b.WriteString("Based on the provided text, classify the associated document by selecting only one of the following categories.\n\nCategories:\n")
	for _, category := range categories {
		b.WriteString("- ")
		b.WriteString(category)
		b.WriteString("\n")
	}
	b.WriteString("\nYour response should be the exact name of the classification from the list above, and nothing more. Do not include any explanations or additional text.\n")

	if len(keywordHints) > 0 {
		b.WriteString("\nPay special attention to these keyword rules:\n")
		for _, hint := range keywordHints {
			b.WriteString("- ")
			b.WriteString(hint)
			b.WriteString("\n")
		}
	}

	b.WriteString("\nIf none of the above classifications match, return \"")
	b.WriteString(defaultCategory)
	b.WriteString("\".\n\nDocument text:\n")
	b.WriteString(text)
	return b.String()
}

func truncate(b []byte, max int) string {
	if len(b) <= max {
		return string(b)
	}
	return string(b[:max]) + "...(truncated)"
}
