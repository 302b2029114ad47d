package domain

import "time"

// FaxStatus tracks where a fax is in the intake pipeline.
type FaxStatus string

const (
	StatusDiscovered  FaxStatus = "discovered"
	StatusDownloading FaxStatus = "downloading"
	StatusDownloaded  FaxStatus = "downloaded"
	StatusClassifying FaxStatus = "classifying"
	StatusClassified  FaxStatus = "classified"
	StatusRouting     FaxStatus = "routing"
	StatusRouted      FaxStatus = "routed"
	StatusCleanedUp   FaxStatus = "cleaned_up"
	StatusFailed      FaxStatus = "failed"
)

// ClassificationMethod records which stage of the decision chain produced
// the category.
type ClassificationMethod string

const (
	MethodSender  ClassificationMethod = "sender"
	MethodKeyword ClassificationMethod = "keyword"
	MethodAI      ClassificationMethod = "ai"
	MethodDefault ClassificationMethod = "default"
)

// FaxSummary is one entry from the gateway listing.
type FaxSummary struct {
	ID         string
	Sender     string
	ReceivedAt time.Time
}

// DeliveryStatus is the terminal state of one destination's delivery attempts.
type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "pending"
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryFailed    DeliveryStatus = "failed"
)

// Delivery tracks the bounded-attempt state machine for one destination.
type Delivery struct {
	Destination string
	Attempts    int
	Status      DeliveryStatus
	LastError   string
}

// FaxRecord is one inbound document under processing. A record is owned by
// exactly one worker at a time and is never mutated concurrently.
type FaxRecord struct {
	ID         string
	Sender     string
	ReceivedAt time.Time
	Status     FaxStatus
	Category   string
	Method     ClassificationMethod
	Deliveries []Delivery
	Error      string
}

// NewFaxRecord creates a record in the Discovered state from a gateway
// listing entry.
func NewFaxRecord(sum FaxSummary) *FaxRecord {
	return &FaxRecord{
		ID:         sum.ID,
		Sender:     sum.Sender,
		ReceivedAt: sum.ReceivedAt,
		Status:     StatusDiscovered,
	}
}

// PartiallyRouted reports whether at least one but not all destinations
// failed after exhausting retries.
func (r *FaxRecord) PartiallyRouted() bool {
	var delivered, failed int
	for _, d := range r.Deliveries {
		switch d.Status {
		case DeliveryDelivered:
			delivered++
		case DeliveryFailed:
			failed++
		}
	}
	return delivered > 0 && failed > 0
}
