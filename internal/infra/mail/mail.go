// Package mail wraps the mail transport behind the delivery contract the
// router needs.
package mail

import "context"

// Message is one delivery: summary body plus the print-ready document.
type Message struct {
	To             string
	Subject        string
	Body           string
	AttachmentName string
	Attachment     []byte
}

// Sender attempts one delivery. Errors carry the transient-vs-permanent
// distinction via domain.BoundaryError; invalid addresses are permanent.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
