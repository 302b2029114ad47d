// Package gateway wraps the external fax gateway behind the listing and
// download contract the pipeline needs.
package gateway

import (
	"context"

	"github.com/vietddude/faxroute/internal/core/domain"
)

// Blobs carries the two transient artifacts of one fax: the raster image for
// OCR and the print-ready document for delivery.
type Blobs struct {
	Raster   []byte
	Document []byte
}

// Client is the gateway boundary. Errors carry the transient-vs-permanent
// distinction via domain.BoundaryError.
type Client interface {
	// ListPending returns the faxes currently available at the gateway.
	ListPending(ctx context.Context) ([]domain.FaxSummary, error)

	// Download fetches both artifacts for a fax.
	Download(ctx context.Context, id string) (Blobs, error)
}
