package matching

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fairbid-co/fairbid/internal/apperr"
	"github.com/fairbid-co/fairbid/internal/fees"
	"github.com/fairbid-co/fairbid/internal/identity"
	"github.com/fairbid-co/fairbid/internal/notify"
)

// Service owns the request registry, the bid pool and the matching
// coordinator. It validates and authorizes, delegates every state transition
// to the store's conditional writes, and publishes events after the fact.
type Service struct {
	store  Store
	events notify.Sink
}

func NewService(store Store, events notify.Sink) *Service {
	return &Service{store: store, events: events}
}

func (s *Service) publish(ctx context.Context, ev notify.Event) {
	if s.events != nil {
		ev.OccurredAt = time.Now().UTC()
		s.events.Publish(ctx, ev)
	}
}

// CreateRequest opens a new pending request on behalf of the requester.
func (s *Service) CreateRequest(ctx context.Context, requesterID string, serviceType fees.ServiceType, description string, offeredPrice int64) (*Request, error) {
	if requesterID == "" {
		return nil, apperr.Unauthorizedf("missing requester")
	}
	if _, err := fees.ParseServiceType(string(serviceType)); err != nil {
		return nil, err
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, apperr.Validationf("description is required")
	}
	if offeredPrice < 0 {
		return nil, apperr.Validationf("offered price must not be negative")
	}

	req := &Request{
		ID:           uuid.NewString(),
		RequesterID:  requesterID,
		ServiceType:  serviceType,
		Description:  description,
		OfferedPrice: offeredPrice,
		Status:       RequestPending,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.CreateRequest(ctx, req); err != nil {
		return nil, err
	}

	s.publish(ctx, notify.Event{
		Kind:      notify.EventRequestCreated,
		RequestID: req.ID,
		Amount:    req.OfferedPrice,
		Status:    string(req.Status),
	})
	return req, nil
}

// GetRequest loads a single request by id.
func (s *Service) GetRequest(ctx context.Context, id string) (*Request, error) {
	return s.store.GetRequest(ctx, id)
}

// ListOpenRequests returns all pending requests, newest first.
func (s *Service) ListOpenRequests(ctx context.Context) ([]Request, error) {
	return s.store.ListOpenRequests(ctx)
}

// CancelRequest withdraws a pending request. Only its requester or an admin
// may cancel; a settled request stays settled.
func (s *Service) CancelRequest(ctx context.Context, requestID string, actor identity.Actor) (*Request, error) {
	req, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.RequesterID != actor.ID && !actor.IsAdmin() {
		return nil, apperr.Unauthorizedf("not your request")
	}
	if err := s.store.CancelRequest(ctx, requestID); err != nil {
		return nil, err
	}
	req.Status = RequestCancelled

	s.publish(ctx, notify.Event{
		Kind:      notify.EventRequestCancelled,
		RequestID: req.ID,
		Status:    string(req.Status),
	})
	return req, nil
}
