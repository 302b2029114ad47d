package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/vietddude/faxroute/internal/core/config"
	"github.com/vietddude/faxroute/internal/core/domain"
	"github.com/vietddude/faxroute/internal/metrics"
)

// HumbleFaxClient implements Client against the HumbleFax REST API using
// basic auth.
type HumbleFaxClient struct {
	cfg        config.GatewayConfig
	httpClient *http.Client
	now        func() time.Time
}

// NewHumbleFaxClient creates a new gateway client.
func NewHumbleFaxClient(cfg config.GatewayConfig) *HumbleFaxClient {
	return &HumbleFaxClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		now: time.Now,
	}
}

type incomingFax struct {
	ID                  string      `json:"id"`
	FromNameAddressBook string      `json:"fromNameAddressBook"`
	Time                json.Number `json:"time"`
}

type listResponse struct {
	Data struct {
		IncomingFaxes []incomingFax `json:"incomingFaxes"`
	} `json:"data"`
}

// ListPending returns the faxes received inside the configured lookback
// window. Overlapping windows across cycles are expected; the processed set
// deduplicates.
func (c *HumbleFaxClient) ListPending(ctx context.Context) ([]domain.FaxSummary, error) {
	now := c.now()

	q := url.Values{}
	q.Set("timeFrom", strconv.FormatInt(now.Add(-c.cfg.Lookback).Unix(), 10))
	q.Set("timeTo", strconv.FormatInt(now.Unix(), 10))
	q.Set("toNumber", c.cfg.ToNumber)

	body, err := c.get(ctx, "/incomingFaxes", q)
	if err != nil {
		return nil, err
	}

	var resp listResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, domain.Permanent(domain.BoundaryGateway, fmt.Errorf("decode listing: %w", err))
	}

	summaries := make([]domain.FaxSummary, 0, len(resp.Data.IncomingFaxes))
	for _, fax := range resp.Data.IncomingFaxes {
		var receivedAt time.Time
		if ts, err := fax.Time.Int64(); err == nil {
			receivedAt = time.Unix(ts, 0)
		}
		summaries = append(summaries, domain.FaxSummary{
			ID:         fax.ID,
			Sender:     fax.FromNameAddressBook,
			ReceivedAt: receivedAt,
		})
	}
	return summaries, nil
}

// Download fetches the TIFF raster and the PDF document for a fax.
func (c *HumbleFaxClient) Download(ctx context.Context, id string) (Blobs, error) {
	raster, err := c.downloadFormat(ctx, id, "tiff")
	if err != nil {
		return Blobs{}, err
	}
	document, err := c.downloadFormat(ctx, id, "pdf")
	if err != nil {
		return Blobs{}, err
	}
	return Blobs{Raster: raster, Document: document}, nil
}

func (c *HumbleFaxClient) downloadFormat(ctx context.Context, id, format string) ([]byte, error) {
	q := url.Values{}
	q.Set("fileFormat", format)
	return c.get(ctx, "/incomingFax/"+url.PathEscape(id)+"/download", q)
}

func (c *HumbleFaxClient) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, domain.Permanent(domain.BoundaryGateway, fmt.Errorf("create request: %w", err))
	}
	req.SetBasicAuth(c.cfg.AccessKey, c.cfg.SecretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.BoundaryErrors.WithLabelValues(domain.BoundaryGateway, "transient").Inc()
		return nil, domain.Transient(domain.BoundaryGateway, fmt.Errorf("gateway call: %w", err))
	}
	defer resp.Body.Close()

	metrics.BoundaryLatency.WithLabelValues(domain.BoundaryGateway).Observe(time.Since(start).Seconds())

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.BoundaryErrors.WithLabelValues(domain.BoundaryGateway, "transient").Inc()
		return nil, domain.Transient(domain.BoundaryGateway, fmt.Errorf("read response: %w", err))
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		metrics.BoundaryErrors.WithLabelValues(domain.BoundaryGateway, "transient").Inc()
		return nil, domain.Transient(domain.BoundaryGateway,
			fmt.Errorf("gateway status %d: %s", resp.StatusCode, truncate(body, 256)))
	default:
		metrics.BoundaryErrors.WithLabelValues(domain.BoundaryGateway, "permanent").Inc()
		return nil, domain.Permanent(domain.BoundaryGateway,
			fmt.Errorf("gateway status %d: %s", resp.StatusCode, truncate(body, 256)))
	}
}

func truncate(b []byte, max int) string {
	if len(b) <= max {
		return string(b)
	}
	return string(b[:max]) + "...(truncated)"
}
