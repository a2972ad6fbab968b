package matching

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairbid-co/fairbid/internal/apperr"
	"github.com/fairbid-co/fairbid/internal/fees"
	"github.com/fairbid-co/fairbid/internal/identity"
	"github.com/fairbid-co/fairbid/internal/notify"
)

func TestAcceptBidSettlesRequest(t *testing.T) {
	svc, sink := newTestService()
	ctx := context.Background()
	requester := identity.Actor{ID: "client-1", Role: identity.RoleClient}

	req, err := svc.CreateRequest(ctx, "client-1", fees.ServiceCleaning, "deep clean", 50000)
	require.NoError(t, err)
	bidA, err := svc.SubmitBid(ctx, req.ID, "tech-a", 45000)
	require.NoError(t, err)
	bidB, err := svc.SubmitBid(ctx, req.ID, "tech-b", 40000)
	require.NoError(t, err)

	settled, err := svc.AcceptBid(ctx, req.ID, bidB.ID, requester)
	require.NoError(t, err)
	assert.Equal(t, RequestConfirmed, settled.Status)
	assert.Equal(t, bidB.ID, settled.AcceptedBidID)

	bids, err := svc.ListBids(ctx, req.ID)
	require.NoError(t, err)
	statuses := map[string]BidStatus{}
	for _, b := range bids {
		statuses[b.ID] = b.Status
	}
	assert.Equal(t, BidAccepted, statuses[bidB.ID])
	assert.Equal(t, BidRejected, statuses[bidA.ID])

	// The settled request admits no further activity.
	_, err = svc.SubmitBid(ctx, req.ID, "tech-c", 30000)
	assert.ErrorIs(t, err, apperr.ErrConflict)
	_, err = svc.CancelRequest(ctx, req.ID, requester)
	assert.ErrorIs(t, err, apperr.ErrConflict)
	_, err = svc.AcceptBid(ctx, req.ID, bidA.ID, requester)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	// Winner and loser each got word.
	var acceptedTo, rejectedTo string
	for _, ev := range sink.events {
		switch ev.Kind {
		case notify.EventBidAccepted:
			acceptedTo = ev.UserID
		case notify.EventBidRejected:
			rejectedTo = ev.UserID
		}
	}
	assert.Equal(t, "tech-b", acceptedTo)
	assert.Equal(t, "tech-a", rejectedTo)
}

func TestAcceptBidAuthorization(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	req, err := svc.CreateRequest(ctx, "client-1", fees.ServiceCleaning, "deep clean", 100000)
	require.NoError(t, err)
	bid, err := svc.SubmitBid(ctx, req.ID, "tech-a", 45000)
	require.NoError(t, err)

	// Not even the bidding worker can accept on the requester's behalf.
	_, err = svc.AcceptBid(ctx, req.ID, bid.ID, identity.Actor{ID: "tech-a", Role: identity.RoleTechnician})
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = svc.AcceptBid(ctx, req.ID, bid.ID, identity.Actor{ID: "client-2", Role: identity.RoleClient})
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestAcceptBidCrossRequest(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	requester := identity.Actor{ID: "client-1", Role: identity.RoleClient}

	reqA, err := svc.CreateRequest(ctx, "client-1", fees.ServiceCleaning, "deep clean", 100000)
	require.NoError(t, err)
	reqB, err := svc.CreateRequest(ctx, "client-1", fees.ServiceOther, "errand", 20000)
	require.NoError(t, err)
	bidOnB, err := svc.SubmitBid(ctx, reqB.ID, "tech-a", 15000)
	require.NoError(t, err)

	_, err = svc.AcceptBid(ctx, reqA.ID, bidOnB.ID, requester)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	_, err = svc.AcceptBid(ctx, reqA.ID, "00000000-0000-0000-0000-000000000000", requester)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestConcurrentAcceptsExactlyOneWins(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	requester := identity.Actor{ID: "client-1", Role: identity.RoleClient}

	req, err := svc.CreateRequest(ctx, "client-1", fees.ServiceCleaning, "deep clean", 100000)
	require.NoError(t, err)

	const n = 8
	bidIDs := make([]string, n)
	for i := 0; i < n; i++ {
		bid, err := svc.SubmitBid(ctx, req.ID, "tech-"+string(rune('a'+i)), int64(30000+i*1000))
		require.NoError(t, err)
		bidIDs[i] = bid.ID
	}

	var wins, conflicts int64
	var wg sync.WaitGroup
	for _, id := range bidIDs {
		wg.Add(1)
		go func(bidID string) {
			defer wg.Done()
			_, err := svc.AcceptBid(ctx, req.ID, bidID, requester)
			switch {
			case err == nil:
				atomic.AddInt64(&wins, 1)
			case apperr.HTTPStatus(err) == 409:
				atomic.AddInt64(&conflicts, 1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, int64(1), wins)
	assert.Equal(t, int64(n-1), conflicts)

	settled, err := svc.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, RequestConfirmed, settled.Status)
	require.NotEmpty(t, settled.AcceptedBidID)

	bids, err := svc.ListBids(ctx, req.ID)
	require.NoError(t, err)
	var accepted int
	for _, b := range bids {
		switch b.Status {
		case BidAccepted:
			accepted++
			assert.Equal(t, settled.AcceptedBidID, b.ID)
		case BidRejected:
		default:
			t.Errorf("bid %s left in status %s", b.ID, b.Status)
		}
	}
	assert.Equal(t, 1, accepted)
}
