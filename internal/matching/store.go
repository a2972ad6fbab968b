package matching

import "context"

// Store persists requests and bids. Every mutation is a conditional write:
// it applies only if the row still matches the expected prior state and
// reports apperr.ErrConflict otherwise, so concurrent callers settle
// deterministically without retries. The Postgres path must not rely on
// in-process locking; multiple stateless instances share the database.
type Store interface {
	CreateRequest(ctx context.Context, req *Request) error
	GetRequest(ctx context.Context, id string) (*Request, error)
	// ListOpenRequests returns pending requests, most recent first.
	ListOpenRequests(ctx context.Context) ([]Request, error)
	// CancelRequest applies pending -> cancelled.
	CancelRequest(ctx context.Context, id string) error

	// CreateBid inserts bid only while its request is still pending and the
	// worker has no other pending bid there. The two failure modes surface as
	// distinct conflict messages ("request closed", "duplicate bid").
	CreateBid(ctx context.Context, bid *Bid) error
	GetBid(ctx context.Context, id string) (*Bid, error)
	// ListBids returns a request's bids ordered by amount asc, then created_at asc.
	ListBids(ctx context.Context, requestID string) ([]Bid, error)

	// AcceptBid atomically applies bid pending -> accepted, every other
	// pending bid of the request -> rejected, and request pending ->
	// confirmed with accepted_bid_id set. Preconditions are evaluated
	// against current persisted state; any miss yields apperr.ErrConflict
	// and changes nothing.
	AcceptBid(ctx context.Context, requestID, bidID string) error
}
