package routing

import (
	"context"
	"math"
	"time"

	"github.com/vietddude/faxroute/internal/core/domain"
	"github.com/vietddude/faxroute/internal/infra/mail"
	"github.com/vietddude/faxroute/internal/metrics"
)

// RetryConfig defines per-destination delivery retry behavior.
type RetryConfig struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultRetryConfig provides sensible defaults.
var DefaultRetryConfig = RetryConfig{
	MaxAttempts:    3,
	InitialBackoff: 5 * time.Second,
	MaxBackoff:     60 * time.Second,
}

// deliverWithRetry runs the bounded-attempt state machine for one
// destination and records the outcome on the delivery. Permanent errors
// stop immediately; transient ones retry with exponential backoff.
func deliverWithRetry(ctx context.Context, sender mail.Sender, msg mail.Message, cfg RetryConfig, d *domain.Delivery) {
	var lastErr error

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		d.Attempts = attempt + 1

		err := sender.Send(ctx, msg)
		if err == nil {
			metrics.DeliveryAttempts.WithLabelValues("ok").Inc()
			d.Status = domain.DeliveryDelivered
			d.LastError = ""
			return
		}

		lastErr = err
		if !domain.IsTransient(err) {
			metrics.DeliveryAttempts.WithLabelValues("permanent").Inc()
			break
		}
		metrics.DeliveryAttempts.WithLabelValues("transient").Inc()

		if attempt == cfg.MaxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			d.Status = domain.DeliveryFailed
			d.LastError = ctx.Err().Error()
			return
		case <-time.After(calculateBackoff(attempt, cfg)):
		}
	}

	d.Status = domain.DeliveryFailed
	d.LastError = lastErr.Error()
}

func calculateBackoff(attempt int, cfg RetryConfig) time.Duration {
	delay := float64(cfg.InitialBackoff) * math.Pow(2, float64(attempt))
	if delay > float64(cfg.MaxBackoff) {
		delay = float64(cfg.MaxBackoff)
	}
	return time.Duration(delay)
}
