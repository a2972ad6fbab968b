package matching

import (
	"context"
	"sort"
	"sync"

	"github.com/fairbid-co/fairbid/internal/apperr"
)

// MemoryStore keeps requests and bids in process memory behind one mutex.
// It honors the same conditional-write semantics as the Postgres store, which
// is what makes it usable for exercising race behavior in tests and for
// running the API without a database.
type MemoryStore struct {
	mu       sync.Mutex
	requests map[string]*Request
	bids     map[string]*Bid
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		requests: make(map[string]*Request),
		bids:     make(map[string]*Bid),
	}
}

func (s *MemoryStore) CreateRequest(ctx context.Context, req *Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *req
	s.requests[req.ID] = &cp
	return nil
}

func (s *MemoryStore) GetRequest(ctx context.Context, id string) (*Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[id]
	if !ok {
		return nil, apperr.NotFoundf("request %s not found", id)
	}
	cp := *req
	return &cp, nil
}

func (s *MemoryStore) ListOpenRequests(ctx context.Context) ([]Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Request
	for _, req := range s.requests {
		if req.Status == RequestPending {
			out = append(out, *req)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) CancelRequest(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[id]
	if !ok {
		return apperr.NotFoundf("request %s not found", id)
	}
	if req.Status != RequestPending {
		return apperr.Conflictf("request is not open")
	}
	req.Status = RequestCancelled
	return nil
}

func (s *MemoryStore) CreateBid(ctx context.Context, bid *Bid) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[bid.RequestID]
	if !ok {
		return apperr.NotFoundf("request %s not found", bid.RequestID)
	}
	if req.Status != RequestPending {
		return apperr.Conflictf("request closed")
	}
	for _, b := range s.bids {
		if b.RequestID == bid.RequestID && b.WorkerID == bid.WorkerID && b.Status == BidPending {
			return apperr.Conflictf("duplicate bid")
		}
	}
	cp := *bid
	s.bids[bid.ID] = &cp
	return nil
}

func (s *MemoryStore) GetBid(ctx context.Context, id string) (*Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bid, ok := s.bids[id]
	if !ok {
		return nil, apperr.NotFoundf("bid %s not found", id)
	}
	cp := *bid
	return &cp, nil
}

func (s *MemoryStore) ListBids(ctx context.Context, requestID string) ([]Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Bid
	for _, b := range s.bids {
		if b.RequestID == requestID {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount < out[j].Amount
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) AcceptBid(ctx context.Context, requestID, bidID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[requestID]
	if !ok {
		return apperr.NotFoundf("request %s not found", requestID)
	}
	bid, ok := s.bids[bidID]
	if !ok {
		return apperr.NotFoundf("bid %s not found", bidID)
	}
	if req.Status != RequestPending {
		return apperr.Conflictf("request already settled")
	}
	if bid.RequestID != requestID || bid.Status != BidPending {
		return apperr.Conflictf("bid is not open for this request")
	}

	req.Status = RequestConfirmed
	req.AcceptedBidID = bidID
	bid.Status = BidAccepted
	for _, b := range s.bids {
		if b.RequestID == requestID && b.Status == BidPending {
			b.Status = BidRejected
		}
	}
	return nil
}
