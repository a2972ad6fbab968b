package fulfillment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fairbid-co/fairbid/internal/apperr"
	"github.com/fairbid-co/fairbid/internal/fees"
	"github.com/fairbid-co/fairbid/internal/identity"
	"github.com/fairbid-co/fairbid/internal/notify"
)

// Service runs the fulfillment side of the platform: pricing a ticket,
// tracking its hand-off and verifying delivery against the payer's code.
type Service struct {
	store  Store
	calc   *fees.Calculator
	events notify.Sink
}

func NewService(store Store, calc *fees.Calculator, events notify.Sink) *Service {
	return &Service{store: store, calc: calc, events: events}
}

func (s *Service) publishStatus(ctx context.Context, t *Ticket) {
	if s.events != nil {
		s.events.Publish(ctx, notify.Event{
			Kind:       notify.EventTicketStatus,
			TicketID:   t.ID,
			UserID:     t.PayerID,
			Amount:     t.Total,
			Status:     string(t.Status),
			OccurredAt: time.Now().UTC(),
		})
	}
}

// CreateTicket prices the job and opens a pending ticket. The returned ticket
// is the only place the verification code ever leaves the service; the payer
// keeps it and reveals it at delivery.
func (s *Service) CreateTicket(ctx context.Context, payerID string, serviceType fees.ServiceType, amount int64, distanceKm float64) (*Ticket, error) {
	if payerID == "" {
		return nil, apperr.Unauthorizedf("missing payer")
	}
	if _, err := fees.ParseServiceType(string(serviceType)); err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, apperr.Validationf("amount must be positive")
	}

	quote, err := s.calc.Quote(serviceType, amount, distanceKm)
	if err != nil {
		return nil, err
	}
	code, err := newVerificationCode()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	t := &Ticket{
		ID:               uuid.NewString(),
		PayerID:          payerID,
		ServiceType:      serviceType,
		Amount:           amount,
		ServiceFee:       quote.ServiceFee,
		DeliveryFee:      quote.DeliveryFee,
		Total:            quote.Total,
		VerificationCode: code,
		Status:           TicketPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.store.CreateTicket(ctx, t); err != nil {
		return nil, err
	}

	s.publishStatus(ctx, t)
	return t, nil
}

// GetTicket loads one ticket for its payer, its assignee or an admin.
func (s *Service) GetTicket(ctx context.Context, id string, actor identity.Actor) (*Ticket, error) {
	t, err := s.store.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.PayerID != actor.ID && t.AssigneeID != actor.ID && !actor.IsAdmin() {
		return nil, apperr.Unauthorizedf("not your ticket")
	}
	return t, nil
}

// ListOpen is the worker console: unassigned pending tickets, oldest first.
func (s *Service) ListOpen(ctx context.Context) ([]Ticket, error) {
	return s.store.ListOpen(ctx)
}

// ListMine returns the actor's history as payer or assignee.
func (s *Service) ListMine(ctx context.Context, actor identity.Actor) ([]Ticket, error) {
	if actor.ID == "" {
		return nil, apperr.Unauthorizedf("missing user")
	}
	return s.store.ListForUser(ctx, actor.ID)
}

// Assign lets a worker claim an open ticket. The conditional write makes two
// racing claims settle on exactly one assignee.
func (s *Service) Assign(ctx context.Context, id string, actor identity.Actor) (*Ticket, error) {
	t, err := s.store.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.PayerID == actor.ID {
		return nil, apperr.Validationf("cannot take your own ticket")
	}
	if err := s.store.Assign(ctx, id, actor.ID); err != nil {
		return nil, err
	}
	t.Status = TicketAssigned
	t.AssigneeID = actor.ID

	s.publishStatus(ctx, t)
	return t, nil
}

// MarkInTransit moves an assigned ticket on the road. Assignee or admin only.
func (s *Service) MarkInTransit(ctx context.Context, id string, actor identity.Actor) (*Ticket, error) {
	t, err := s.store.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.AssigneeID != actor.ID && !actor.IsAdmin() {
		return nil, apperr.Unauthorizedf("not your ticket")
	}
	if err := s.store.MarkInTransit(ctx, id); err != nil {
		return nil, err
	}
	t.Status = TicketInTransit

	s.publishStatus(ctx, t)
	return t, nil
}

// VerifyAndComplete closes the ticket against the payer's code. A wrong code
// changes nothing and the error never carries the expected value. On a match
// the conditional write delivers the ticket from any non-terminal state,
// claiming the assignee slot for the verifying worker when it is still empty.
func (s *Service) VerifyAndComplete(ctx context.Context, id, inputCode string, actor identity.Actor) (*Ticket, error) {
	t, err := s.store.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Status.terminal() {
		return nil, apperr.Conflictf("ticket already closed")
	}
	if !codeMatches(t.VerificationCode, inputCode) {
		return nil, apperr.ErrPinMismatch
	}

	if err := s.store.Complete(ctx, id, actor.ID); err != nil {
		return nil, err
	}
	t.Status = TicketDelivered
	if t.AssigneeID == "" {
		t.AssigneeID = actor.ID
	}

	s.publishStatus(ctx, t)
	return t, nil
}

// AdminComplete closes a ticket without a code. Admin role only; there is no
// code value that triggers this path.
func (s *Service) AdminComplete(ctx context.Context, id string, actor identity.Actor) (*Ticket, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Unauthorizedf("admin only")
	}
	t, err := s.store.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.Complete(ctx, id, ""); err != nil {
		return nil, err
	}
	t.Status = TicketDelivered

	s.publishStatus(ctx, t)
	return t, nil
}

// CancelTicket voids a ticket from any non-terminal state. Admin only.
func (s *Service) CancelTicket(ctx context.Context, id string, actor identity.Actor) (*Ticket, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Unauthorizedf("admin only")
	}
	t, err := s.store.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.Cancel(ctx, id); err != nil {
		return nil, err
	}
	t.Status = TicketCancelled

	s.publishStatus(ctx, t)
	return t, nil
}
