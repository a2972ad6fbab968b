package matching

import (
	"time"

	"github.com/fairbid-co/fairbid/internal/fees"
)

type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestConfirmed RequestStatus = "confirmed"
	RequestCancelled RequestStatus = "cancelled"
)

type BidStatus string

const (
	BidPending  BidStatus = "pending"
	BidAccepted BidStatus = "accepted"
	BidRejected BidStatus = "rejected"
)

// Request is a requester's open call for a service, awaiting bids. It is
// mutable only while pending: new bids may arrive, or it may be cancelled.
// Both confirmed and cancelled are terminal.
type Request struct {
	ID            string           `json:"id"`
	RequesterID   string           `json:"requester_id"`
	ServiceType   fees.ServiceType `json:"service_type"`
	Description   string           `json:"description"`
	OfferedPrice  int64            `json:"offered_price"`
	Status        RequestStatus    `json:"status"`
	AcceptedBidID string           `json:"accepted_bid_id,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

// Bid is a worker's priced offer against a request. A bid belongs to exactly
// one request and leaves pending only through the coordinator.
type Bid struct {
	ID        string    `json:"id"`
	RequestID string    `json:"request_id"`
	WorkerID  string    `json:"worker_id"`
	Amount    int64     `json:"amount"`
	Status    BidStatus `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
