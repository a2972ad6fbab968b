package notify

import "time"

// Task type constants
const (
	TaskEventFanout = "events:fanout"
)

// Event kinds published by the matching and fulfillment cores.
const (
	EventRequestCreated   = "request.created"
	EventRequestCancelled = "request.cancelled"
	EventBidCreated       = "bid.created"
	EventBidAccepted      = "bid.accepted"
	EventBidRejected      = "bid.rejected"
	EventTicketStatus     = "ticket.status"
)

// Event is the single envelope carried through the fan-out pipeline. Events
// for the same request or ticket are published in the order their causing
// transitions committed; there is no ordering guarantee across scopes.
type Event struct {
	Kind       string    `json:"kind"`
	RequestID  string    `json:"request_id,omitempty"`
	BidID      string    `json:"bid_id,omitempty"`
	TicketID   string    `json:"ticket_id,omitempty"`
	UserID     string    `json:"user_id,omitempty"` // interested party, if any
	Amount     int64     `json:"amount,omitempty"`
	Status     string    `json:"status,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Scope identifies the request or ticket an event belongs to.
func (e Event) Scope() string {
	if e.TicketID != "" {
		return e.TicketID
	}
	return e.RequestID
}

// Title renders a short human-readable line for in-app notifications.
func (e Event) Title() string {
	switch e.Kind {
	case EventRequestCreated:
		return "New service request posted"
	case EventRequestCancelled:
		return "Service request cancelled"
	case EventBidCreated:
		return "New bid on your request"
	case EventBidAccepted:
		return "Your bid was accepted"
	case EventBidRejected:
		return "Your bid was not selected"
	case EventTicketStatus:
		return "Delivery update: " + e.Status
	}
	return "Update"
}
