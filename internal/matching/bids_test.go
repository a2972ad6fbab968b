package matching

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairbid-co/fairbid/internal/apperr"
	"github.com/fairbid-co/fairbid/internal/fees"
	"github.com/fairbid-co/fairbid/internal/identity"
	"github.com/fairbid-co/fairbid/internal/notify"
)

func TestSubmitBid(t *testing.T) {
	svc, sink := newTestService()
	ctx := context.Background()

	req, err := svc.CreateRequest(ctx, "client-1", fees.ServiceCleaning, "deep clean", 100000)
	require.NoError(t, err)

	bid, err := svc.SubmitBid(ctx, req.ID, "tech-1", 45000)
	require.NoError(t, err)
	assert.Equal(t, BidPending, bid.Status)
	assert.Equal(t, req.ID, bid.RequestID)

	// The requester is told about the new bid.
	var created *notify.Event
	for i := range sink.events {
		if sink.events[i].Kind == notify.EventBidCreated {
			created = &sink.events[i]
		}
	}
	require.NotNil(t, created)
	assert.Equal(t, "client-1", created.UserID)
	assert.Equal(t, int64(45000), created.Amount)
}

func TestSubmitBidRules(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	req, err := svc.CreateRequest(ctx, "client-1", fees.ServiceCleaning, "deep clean", 100000)
	require.NoError(t, err)

	_, err = svc.SubmitBid(ctx, req.ID, "client-1", 45000)
	assert.ErrorIs(t, err, apperr.ErrValidation, "requester bidding on own request")

	_, err = svc.SubmitBid(ctx, req.ID, "tech-1", 0)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.SubmitBid(ctx, "00000000-0000-0000-0000-000000000000", "tech-1", 45000)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	// One pending bid per worker per request.
	_, err = svc.SubmitBid(ctx, req.ID, "tech-1", 45000)
	require.NoError(t, err)
	_, err = svc.SubmitBid(ctx, req.ID, "tech-1", 42000)
	require.ErrorIs(t, err, apperr.ErrConflict)
	assert.Contains(t, err.Error(), "duplicate bid")

	// A different worker is still free to bid.
	_, err = svc.SubmitBid(ctx, req.ID, "tech-2", 40000)
	assert.NoError(t, err)
}

func TestSubmitBidOnClosedRequest(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	req, err := svc.CreateRequest(ctx, "client-1", fees.ServiceCleaning, "deep clean", 100000)
	require.NoError(t, err)
	_, err = svc.CancelRequest(ctx, req.ID, identity.Actor{ID: "client-1", Role: identity.RoleClient})
	require.NoError(t, err)

	_, err = svc.SubmitBid(ctx, req.ID, "tech-1", 45000)
	require.ErrorIs(t, err, apperr.ErrConflict)
	assert.Contains(t, err.Error(), "request closed")
}

func TestListBidsCheapestFirst(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	req, err := svc.CreateRequest(ctx, "client-1", fees.ServiceCleaning, "deep clean", 100000)
	require.NoError(t, err)

	_, err = svc.SubmitBid(ctx, req.ID, "tech-a", 45000)
	require.NoError(t, err)
	_, err = svc.SubmitBid(ctx, req.ID, "tech-b", 40000)
	require.NoError(t, err)

	bids, err := svc.ListBids(ctx, req.ID)
	require.NoError(t, err)
	require.Len(t, bids, 2)
	assert.Equal(t, int64(40000), bids[0].Amount)
	assert.Equal(t, int64(45000), bids[1].Amount)

	_, err = svc.ListBids(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
