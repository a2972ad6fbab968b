package matching

import (
	"context"

	"github.com/fairbid-co/fairbid/internal/apperr"
	"github.com/fairbid-co/fairbid/internal/identity"
	"github.com/fairbid-co/fairbid/internal/notify"
)

// AcceptBid settles a request on one winning bid. Only the requester may
// accept. The store applies the whole settlement atomically: winning bid to
// accepted, every other pending bid to rejected, request to confirmed. Under
// concurrent accepts exactly one caller wins and the rest get a conflict.
func (s *Service) AcceptBid(ctx context.Context, requestID, bidID string, actor identity.Actor) (*Request, error) {
	req, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.RequesterID != actor.ID {
		return nil, apperr.Unauthorizedf("only the requester can accept a bid")
	}

	bid, err := s.store.GetBid(ctx, bidID)
	if err != nil {
		return nil, err
	}
	if bid.RequestID != requestID {
		return nil, apperr.Conflictf("bid does not belong to this request")
	}

	if err := s.store.AcceptBid(ctx, requestID, bidID); err != nil {
		return nil, err
	}

	req.Status = RequestConfirmed
	req.AcceptedBidID = bidID

	s.publish(ctx, notify.Event{
		Kind:      notify.EventBidAccepted,
		RequestID: requestID,
		BidID:     bidID,
		UserID:    bid.WorkerID,
		Amount:    bid.Amount,
		Status:    string(BidAccepted),
	})

	// Losing bidders hear about it too. The list reflects post-settlement
	// state, so every rejected bid here was rejected by this call.
	if all, lerr := s.store.ListBids(ctx, requestID); lerr == nil {
		for _, b := range all {
			if b.Status == BidRejected {
				s.publish(ctx, notify.Event{
					Kind:      notify.EventBidRejected,
					RequestID: requestID,
					BidID:     b.ID,
					UserID:    b.WorkerID,
					Amount:    b.Amount,
					Status:    string(BidRejected),
				})
			}
		}
	}
	return req, nil
}
