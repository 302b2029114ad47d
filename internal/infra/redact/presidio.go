package redact

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vietddude/faxroute/internal/core/config"
	"github.com/vietddude/faxroute/internal/core/domain"
	"github.com/vietddude/faxroute/internal/metrics"
)

// DefaultEntities are the PHI entity types requested from the analyzer when
// the config does not override them.
var DefaultEntities = []string{
	"PERSON", "PHONE_NUMBER", "EMAIL_ADDRESS", "DATE_TIME", "LOCATION",
	"MEDICAL_LICENSE", "US_SSN", "IP_ADDRESS", "CREDIT_CARD",
	"US_DRIVER_LICENSE", "US_BANK_NUMBER", "US_ITIN", "US_PASSPORT", "NRP",
}

// PresidioClient implements Redactor against a Presidio deployment:
// /analyze locates PHI spans, /anonymize replaces them.
type PresidioClient struct {
	cfg        config.RedactionConfig
	entities   []string
	httpClient *http.Client
}

// NewPresidioClient creates a new redaction client.
func NewPresidioClient(cfg config.RedactionConfig) *PresidioClient {
	entities := cfg.Entities
	if len(entities) == 0 {
		entities = DefaultEntities
	}
	return &PresidioClient{
		cfg:      cfg,
		entities: entities,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type analyzerResult struct {
	EntityType string  `json:"entity_type"`
	Start      int     `json:"start"`
	End        int     `json:"end"`
	Score      float64 `json:"score"`
}

// Redact runs the analyze/anonymize round trip. Any failure is reported as
// a redaction boundary error; the caller must not fall back to raw text.
func (c *PresidioClient) Redact(ctx context.Context, text string) (string, error) {
	start := time.Now()
	defer func() {
		metrics.BoundaryLatency.WithLabelValues(domain.BoundaryRedaction).Observe(time.Since(start).Seconds())
	}()

	analyzeReq := map[string]any{
		"text":     text,
		"language": "en",
		"entities": c.entities,
	}
	var results []analyzerResult
	if err := c.post(ctx, c.cfg.AnalyzerURL, analyzeReq, &results); err != nil {
		metrics.BoundaryErrors.WithLabelValues(domain.BoundaryRedaction, "transient").Inc()
		return "", domain.Transient(domain.BoundaryRedaction, fmt.Errorf("analyze: %w", err))
	}

	if len(results) == 0 {
		return text, nil
	}

	anonymizeReq := map[string]any{
		"text":             text,
		"analyzer_results": results,
	}
	var anonymized struct {
		Text string `json:"text"`
	}
	if err := c.post(ctx, c.cfg.AnonymizerURL, anonymizeReq, &anonymized); err != nil {
		metrics.BoundaryErrors.WithLabelValues(domain.BoundaryRedaction, "transient").Inc()
		return "", domain.Transient(domain.BoundaryRedaction, fmt.Errorf("anonymize: %w", err))
	}

	return anonymized.Text, nil
}

func (c *PresidioClient) post(ctx context.Context, endpoint string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d from %s", resp.StatusCode, endpoint)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
