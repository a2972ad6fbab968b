package fulfillment

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fairbid-co/fairbid/internal/apperr"
)

// MemoryStore mirrors the Postgres store's conditional semantics behind a
// mutex, for tests and database-free runs.
type MemoryStore struct {
	mu      sync.Mutex
	tickets map[string]*Ticket
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tickets: make(map[string]*Ticket)}
}

func (s *MemoryStore) CreateTicket(ctx context.Context, t *Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.tickets[t.ID] = &cp
	return nil
}

func (s *MemoryStore) GetTicket(ctx context.Context, id string) (*Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[id]
	if !ok {
		return nil, apperr.NotFoundf("ticket %s not found", id)
	}
	cp := *t
	return &cp, nil
}

func (s *MemoryStore) ListOpen(ctx context.Context) ([]Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Ticket
	for _, t := range s.tickets {
		if t.Status == TicketPending && t.AssigneeID == "" {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) ListForUser(ctx context.Context, userID string) ([]Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Ticket
	for _, t := range s.tickets {
		if t.PayerID == userID || t.AssigneeID == userID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) Assign(ctx context.Context, id, workerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[id]
	if !ok {
		return apperr.NotFoundf("ticket %s not found", id)
	}
	if t.Status != TicketPending || t.AssigneeID != "" {
		return apperr.Conflictf("ticket already taken")
	}
	t.Status = TicketAssigned
	t.AssigneeID = workerID
	t.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) MarkInTransit(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[id]
	if !ok {
		return apperr.NotFoundf("ticket %s not found", id)
	}
	if t.Status != TicketAssigned {
		return apperr.Conflictf("ticket is not assigned")
	}
	t.Status = TicketInTransit
	t.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) Complete(ctx context.Context, id, claimant string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[id]
	if !ok {
		return apperr.NotFoundf("ticket %s not found", id)
	}
	if t.Status.terminal() {
		return apperr.Conflictf("ticket already closed")
	}
	if t.AssigneeID == "" && claimant != "" {
		t.AssigneeID = claimant
	}
	t.Status = TicketDelivered
	t.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) Cancel(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[id]
	if !ok {
		return apperr.NotFoundf("ticket %s not found", id)
	}
	if t.Status.terminal() {
		return apperr.Conflictf("ticket already closed")
	}
	t.Status = TicketCancelled
	t.UpdatedAt = time.Now().UTC()
	return nil
}
