package fulfillment

import "context"

// Store persists tickets. As in the matching store, every transition is a
// conditional write evaluated against current persisted state; zero affected
// rows surfaces as apperr.ErrConflict.
type Store interface {
	CreateTicket(ctx context.Context, t *Ticket) error
	GetTicket(ctx context.Context, id string) (*Ticket, error)
	// ListOpen returns unassigned pending tickets, oldest first, for the
	// worker console.
	ListOpen(ctx context.Context) ([]Ticket, error)
	// ListForUser returns tickets where the user is payer or assignee,
	// newest first.
	ListForUser(ctx context.Context, userID string) ([]Ticket, error)

	// Assign applies pending -> assigned while assignee is unset.
	Assign(ctx context.Context, id, workerID string) error
	// MarkInTransit applies assigned -> in_transit.
	MarkInTransit(ctx context.Context, id string) error
	// Complete applies any non-terminal status -> delivered. claimant, when
	// non-empty, becomes the assignee only if none was set.
	Complete(ctx context.Context, id, claimant string) error
	// Cancel applies any non-terminal status -> cancelled.
	Cancel(ctx context.Context, id string) error
}
