// Package routing delivers classified faxes by email to every destination
// mapped from their category, with bounded per-destination retries.
package routing

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/vietddude/faxroute/internal/core/domain"
	"github.com/vietddude/faxroute/internal/infra/mail"
)

// Result is the terminal routing outcome for one fax.
type Result string

const (
	ResultRouted  Result = "routed"  // every destination delivered
	ResultPartial Result = "partial" // some destinations failed after retries
	ResultFailed  Result = "failed"  // no destination delivered
)

// Router maps categories to destinations and drives delivery.
type Router struct {
	table  domain.RoutingTable
	sender mail.Sender
	retry  RetryConfig
	log    *slog.Logger
}

// New creates a router.
func New(table domain.RoutingTable, sender mail.Sender, retry RetryConfig, log *slog.Logger) *Router {
	if log == nil {
		log = slog.Default()
	}
	return &Router{table: table, sender: sender, retry: retry, log: log}
}

// Route delivers the document to every destination for the record's
// category. A destination exhausting its retries does not block the others;
// the partial-failure outcome is surfaced distinctly.
func (r *Router) Route(ctx context.Context, rec *domain.FaxRecord, document []byte) Result {
	destinations := r.table.DestinationsFor(rec.Category)
	if len(destinations) == 0 {
		rec.Status = domain.StatusFailed
		rec.Error = fmt.Sprintf("no destination for category %q and no default configured", rec.Category)
		r.log.Error("route.no_destination", "fax_id", rec.ID, "category", rec.Category)
		return ResultFailed
	}

	rec.Status = domain.StatusRouting
	msg := r.buildMessage(rec, document)

	rec.Deliveries = make([]domain.Delivery, len(destinations))
	var delivered int
	for i, dest := range destinations {
		rec.Deliveries[i] = domain.Delivery{Destination: dest, Status: domain.DeliveryPending}
		msg.To = dest

		deliverWithRetry(ctx, r.sender, msg, r.retry, &rec.Deliveries[i])

		if rec.Deliveries[i].Status == domain.DeliveryDelivered {
			delivered++
			r.log.Info("route.delivered",
				"fax_id", rec.ID,
				"destination", dest,
				"attempts", rec.Deliveries[i].Attempts,
			)
		} else {
			r.log.Error("route.delivery_failed",
				"fax_id", rec.ID,
				"destination", dest,
				"attempts", rec.Deliveries[i].Attempts,
				"error", rec.Deliveries[i].LastError,
			)
		}
	}

	switch {
	case delivered == len(destinations):
		rec.Status = domain.StatusRouted
		return ResultRouted
	case delivered > 0:
		rec.Status = domain.StatusRouted
		rec.Error = "partial delivery failure"
		return ResultPartial
	default:
		rec.Status = domain.StatusFailed
		rec.Error = "all deliveries failed"
		return ResultFailed
	}
}

func (r *Router) buildMessage(rec *domain.FaxRecord, document []byte) mail.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Fax ID: %s\n", rec.ID)
	sender := rec.Sender
	if sender == "" {
		sender = "unknown"
	}
	fmt.Fprintf(&b, "Sender: %s\n", sender)
	fmt.Fprintf(&b, "Category: %s (via %s)\n", rec.Category, rec.Method)
	if !rec.ReceivedAt.IsZero() {
		fmt.Fprintf(&b, "Received: %s\n", rec.ReceivedAt.Format(time.RFC1123))
	}
	if pages, err := api.PageCount(bytes.NewReader(document), nil); err == nil {
		fmt.Fprintf(&b, "Pages: %d\n", pages)
	} else {
		r.log.Debug("route.page_count_failed", "fax_id", rec.ID, "error", err)
	}

	return mail.Message{
		Subject:        fmt.Sprintf("Fax %s - %s", rec.ID, rec.Category),
		Body:           b.String(),
		AttachmentName: fmt.Sprintf("fax_%s.pdf", rec.ID),
		Attachment:     document,
	}
}
