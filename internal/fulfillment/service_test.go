package fulfillment

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairbid-co/fairbid/internal/apperr"
	"github.com/fairbid-co/fairbid/internal/fees"
	"github.com/fairbid-co/fairbid/internal/identity"
	"github.com/fairbid-co/fairbid/internal/notify"
)

type recorderSink struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *recorderSink) Publish(_ context.Context, ev notify.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorderSink) statuses() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Status)
	}
	return out
}

func newTestService() (*Service, *recorderSink) {
	sink := &recorderSink{}
	return NewService(NewMemoryStore(), fees.NewCalculator(fees.DefaultDeliveryFee), sink), sink
}

var (
	payer  = identity.Actor{ID: "client-1", Role: identity.RoleClient}
	driver = identity.Actor{ID: "driver-1", Role: identity.RoleDriver}
	admin  = identity.Actor{ID: "admin-1", Role: identity.RoleAdmin}
)

func TestCreateTicketQuotesFees(t *testing.T) {
	svc, sink := newTestService()
	ctx := context.Background()

	tk, err := svc.CreateTicket(ctx, payer.ID, fees.ServiceTransport, 200000, 12.5)
	require.NoError(t, err)
	assert.Equal(t, TicketPending, tk.Status)
	assert.Equal(t, int64(20000), tk.ServiceFee)
	assert.Equal(t, int64(15000), tk.DeliveryFee)
	assert.Equal(t, int64(235000), tk.Total)
	assert.Len(t, tk.VerificationCode, 4)
	assert.Equal(t, []string{"pending"}, sink.statuses())
}

func TestCreateTicketValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreateTicket(ctx, "", fees.ServiceTransport, 200000, 0)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = svc.CreateTicket(ctx, payer.ID, fees.ServiceType("teleport"), 200000, 0)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.CreateTicket(ctx, payer.ID, fees.ServiceTransport, 0, 0)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestVerifyAndComplete(t *testing.T) {
	svc, sink := newTestService()
	ctx := context.Background()

	tk, err := svc.CreateTicket(ctx, payer.ID, fees.ServiceTransport, 200000, 0)
	require.NoError(t, err)

	// Wrong code: nothing moves and the error never echoes the real code.
	_, err = svc.VerifyAndComplete(ctx, tk.ID, "0000", driver)
	require.ErrorIs(t, err, apperr.ErrPinMismatch)
	assert.NotContains(t, err.Error(), tk.VerificationCode)

	cur, err := svc.GetTicket(ctx, tk.ID, payer)
	require.NoError(t, err)
	assert.Equal(t, TicketPending, cur.Status)
	assert.Empty(t, cur.AssigneeID)

	// Right code delivers and claims the assignee slot for the verifier.
	done, err := svc.VerifyAndComplete(ctx, tk.ID, tk.VerificationCode, driver)
	require.NoError(t, err)
	assert.Equal(t, TicketDelivered, done.Status)
	assert.Equal(t, driver.ID, done.AssigneeID)
	assert.Equal(t, []string{"pending", "delivered"}, sink.statuses())

	// Delivered is terminal, even with the right code.
	_, err = svc.VerifyAndComplete(ctx, tk.ID, tk.VerificationCode, driver)
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestVerifyForgivesWhitespace(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	tk, err := svc.CreateTicket(ctx, payer.ID, fees.ServiceCleaning, 50000, 0)
	require.NoError(t, err)

	done, err := svc.VerifyAndComplete(ctx, tk.ID, " "+tk.VerificationCode+" ", driver)
	require.NoError(t, err)
	assert.Equal(t, TicketDelivered, done.Status)
}

func TestAssignFlow(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	tk, err := svc.CreateTicket(ctx, payer.ID, fees.ServiceTransport, 200000, 0)
	require.NoError(t, err)

	_, err = svc.Assign(ctx, tk.ID, payer)
	assert.ErrorIs(t, err, apperr.ErrValidation, "payer cannot take own ticket")

	assigned, err := svc.Assign(ctx, tk.ID, driver)
	require.NoError(t, err)
	assert.Equal(t, TicketAssigned, assigned.Status)
	assert.Equal(t, driver.ID, assigned.AssigneeID)

	// Second claim loses.
	other := identity.Actor{ID: "driver-2", Role: identity.RoleDriver}
	_, err = svc.Assign(ctx, tk.ID, other)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	// A wrong code from the assigned worker still bounces.
	_, err = svc.VerifyAndComplete(ctx, tk.ID, "0000", driver)
	assert.ErrorIs(t, err, apperr.ErrPinMismatch)

	// Only the assignee (or admin) moves it on the road.
	_, err = svc.MarkInTransit(ctx, tk.ID, other)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	moving, err := svc.MarkInTransit(ctx, tk.ID, driver)
	require.NoError(t, err)
	assert.Equal(t, TicketInTransit, moving.Status)

	_, err = svc.MarkInTransit(ctx, tk.ID, driver)
	assert.ErrorIs(t, err, apperr.ErrConflict, "in_transit is not assigned anymore")

	// Verification still works mid-route and keeps the existing assignee.
	done, err := svc.VerifyAndComplete(ctx, tk.ID, tk.VerificationCode, driver)
	require.NoError(t, err)
	assert.Equal(t, TicketDelivered, done.Status)
	assert.Equal(t, driver.ID, done.AssigneeID)
}

func TestAdminComplete(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	tk, err := svc.CreateTicket(ctx, payer.ID, fees.ServiceTransport, 200000, 0)
	require.NoError(t, err)

	_, err = svc.AdminComplete(ctx, tk.ID, driver)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	done, err := svc.AdminComplete(ctx, tk.ID, admin)
	require.NoError(t, err)
	assert.Equal(t, TicketDelivered, done.Status)
	assert.Empty(t, done.AssigneeID, "override completes without claiming")

	_, err = svc.CancelTicket(ctx, tk.ID, admin)
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestCancelTicket(t *testing.T) {
	svc, sink := newTestService()
	ctx := context.Background()

	tk, err := svc.CreateTicket(ctx, payer.ID, fees.ServiceTransport, 200000, 0)
	require.NoError(t, err)

	_, err = svc.CancelTicket(ctx, tk.ID, payer)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	gone, err := svc.CancelTicket(ctx, tk.ID, admin)
	require.NoError(t, err)
	assert.Equal(t, TicketCancelled, gone.Status)
	assert.Equal(t, []string{"pending", "cancelled"}, sink.statuses())

	_, err = svc.VerifyAndComplete(ctx, tk.ID, tk.VerificationCode, driver)
	assert.ErrorIs(t, err, apperr.ErrConflict, "cancelled is terminal")
}

func TestTicketVisibility(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	tk, err := svc.CreateTicket(ctx, payer.ID, fees.ServiceTransport, 200000, 0)
	require.NoError(t, err)

	_, err = svc.GetTicket(ctx, tk.ID, identity.Actor{ID: "stranger", Role: identity.RoleClient})
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = svc.GetTicket(ctx, tk.ID, admin)
	assert.NoError(t, err)

	open, err := svc.ListOpen(ctx)
	require.NoError(t, err)
	require.Len(t, open, 1)

	_, err = svc.Assign(ctx, tk.ID, driver)
	require.NoError(t, err)

	open, err = svc.ListOpen(ctx)
	require.NoError(t, err)
	assert.Empty(t, open)

	mine, err := svc.ListMine(ctx, driver)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, tk.ID, mine[0].ID)
}

func TestConcurrentVerifyOneDelivery(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	tk, err := svc.CreateTicket(ctx, payer.ID, fees.ServiceTransport, 200000, 0)
	require.NoError(t, err)

	const n = 6
	var wg sync.WaitGroup
	results := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			actor := identity.Actor{ID: "driver-" + string(rune('a'+i)), Role: identity.RoleDriver}
			_, err := svc.VerifyAndComplete(ctx, tk.ID, tk.VerificationCode, actor)
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	var ok, conflicts int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case strings.Contains(err.Error(), "closed"):
			conflicts++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, conflicts)

	final, err := svc.GetTicket(ctx, tk.ID, admin)
	require.NoError(t, err)
	assert.Equal(t, TicketDelivered, final.Status)
	assert.NotEmpty(t, final.AssigneeID)
}
