package matching

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fairbid-co/fairbid/internal/apperr"
	"github.com/fairbid-co/fairbid/internal/notify"
)

// SubmitBid places a worker's offer against an open request. Requesters may
// not bid on their own requests, and a worker holds at most one pending bid
// per request. The guarded insert re-checks the request's state at write
// time, so a bid never lands on a request settled by a concurrent accept.
func (s *Service) SubmitBid(ctx context.Context, requestID, workerID string, amount int64) (*Bid, error) {
	if workerID == "" {
		return nil, apperr.Unauthorizedf("missing worker")
	}
	if amount <= 0 {
		return nil, apperr.Validationf("bid amount must be positive")
	}

	req, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.RequesterID == workerID {
		return nil, apperr.Validationf("cannot bid on your own request")
	}

	bid := &Bid{
		ID:        uuid.NewString(),
		RequestID: requestID,
		WorkerID:  workerID,
		Amount:    amount,
		Status:    BidPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateBid(ctx, bid); err != nil {
		return nil, err
	}

	s.publish(ctx, notify.Event{
		Kind:      notify.EventBidCreated,
		RequestID: requestID,
		BidID:     bid.ID,
		UserID:    req.RequesterID,
		Amount:    amount,
		Status:    string(bid.Status),
	})
	return bid, nil
}

// ListBids returns a request's bids, cheapest first.
func (s *Service) ListBids(ctx context.Context, requestID string) ([]Bid, error) {
	if _, err := s.store.GetRequest(ctx, requestID); err != nil {
		return nil, err
	}
	return s.store.ListBids(ctx, requestID)
}
