package fulfillment

import (
	"time"

	"github.com/fairbid-co/fairbid/internal/fees"
)

type TicketStatus string

const (
	TicketPending   TicketStatus = "pending"
	TicketAssigned  TicketStatus = "assigned"
	TicketInTransit TicketStatus = "in_transit"
	TicketDelivered TicketStatus = "delivered"
	TicketCancelled TicketStatus = "cancelled"
)

// terminal reports whether no further transition is allowed.
func (s TicketStatus) terminal() bool {
	return s == TicketDelivered || s == TicketCancelled
}

// Ticket tracks one paid job from creation to hand-off. The verification code
// is the payer's proof of delivery: it is generated once, stored server-side
// and deliberately excluded from JSON so no list or detail response can leak
// it. Only the creation flow hands it to the payer.
type Ticket struct {
	ID               string           `json:"id"`
	PayerID          string           `json:"payer_id"`
	AssigneeID       string           `json:"assignee_id,omitempty"`
	ServiceType      fees.ServiceType `json:"service_type"`
	Amount           int64            `json:"amount"`
	ServiceFee       int64            `json:"service_fee"`
	DeliveryFee      int64            `json:"delivery_fee"`
	Total            int64            `json:"total"`
	VerificationCode string           `json:"-"`
	Status           TicketStatus     `json:"status"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}
