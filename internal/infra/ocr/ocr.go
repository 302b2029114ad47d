// Package ocr wraps the external OCR engine behind the text-extraction
// contract the classifier needs.
package ocr

import "context"

// Extractor turns a raster image into raw text. Empty text is a valid
// result; failures surface as domain.BoundaryError.
type Extractor interface {
	ExtractText(ctx context.Context, raster []byte) (string, error)
}
