// Package redact wraps the external PHI redaction service. When privacy
// mode is on, text must pass through this boundary before it leaves the
// process toward the AI backend.
package redact

import "context"

// Redactor replaces PHI in text with entity placeholders.
type Redactor interface {
	Redact(ctx context.Context, text string) (string, error)
}
