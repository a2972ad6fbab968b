package matching

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairbid-co/fairbid/internal/apperr"
)

// PostgresStore is the production store. Every state transition is a single
// conditional UPDATE (or guarded INSERT) so that concurrent writers racing on
// the same row settle inside Postgres: exactly one statement matches the
// pending row, everyone else affects zero rows and maps to a conflict.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) CreateRequest(ctx context.Context, req *Request) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO service_requests (id, requester_id, service_type, description, offered_price, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		req.ID, req.RequesterID, string(req.ServiceType), req.Description, req.OfferedPrice, string(req.Status), req.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert request: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetRequest(ctx context.Context, id string) (*Request, error) {
	var req Request
	var acceptedBid *string
	err := s.pool.QueryRow(ctx,
		`SELECT id::text, requester_id::text, service_type, description, offered_price, status, accepted_bid_id::text, created_at
		 FROM service_requests WHERE id = $1`, id,
	).Scan(&req.ID, &req.RequesterID, &req.ServiceType, &req.Description, &req.OfferedPrice, &req.Status, &acceptedBid, &req.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFoundf("request %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load request: %w", err)
	}
	if acceptedBid != nil {
		req.AcceptedBidID = *acceptedBid
	}
	return &req, nil
}

func (s *PostgresStore) ListOpenRequests(ctx context.Context) ([]Request, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id::text, requester_id::text, service_type, description, offered_price, status, created_at
		 FROM service_requests WHERE status = 'pending' ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer rows.Close()

	var out []Request
	for rows.Next() {
		var req Request
		if err := rows.Scan(&req.ID, &req.RequesterID, &req.ServiceType, &req.Description, &req.OfferedPrice, &req.Status, &req.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CancelRequest(ctx context.Context, id string) error {
	res, err := s.pool.Exec(ctx,
		`UPDATE service_requests SET status = 'cancelled' WHERE id = $1 AND status = 'pending'`, id,
	)
	if err != nil {
		return fmt.Errorf("cancel request: %w", err)
	}
	if res.RowsAffected() == 0 {
		if _, gerr := s.GetRequest(ctx, id); gerr != nil {
			return gerr
		}
		return apperr.Conflictf("request is not open")
	}
	return nil
}

func (s *PostgresStore) CreateBid(ctx context.Context, bid *Bid) error {
	// Guarded insert: the row lands only if the request is still pending and
	// this worker has no other pending bid on it. Zero rows means one of the
	// guards failed; follow-up reads pick the right error.
	res, err := s.pool.Exec(ctx,
		`INSERT INTO bids (id, request_id, worker_id, amount, status, created_at)
		 SELECT $1, $2, $3, $4, $5, $6
		 WHERE EXISTS (SELECT 1 FROM service_requests WHERE id = $2 AND status = 'pending')
		   AND NOT EXISTS (SELECT 1 FROM bids WHERE request_id = $2 AND worker_id = $3 AND status = 'pending')`,
		bid.ID, bid.RequestID, bid.WorkerID, bid.Amount, string(bid.Status), bid.CreatedAt,
	)
	if err != nil {
		// Two simultaneous bids from the same worker slip past NOT EXISTS;
		// the partial unique index catches the second one.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperr.Conflictf("duplicate bid")
		}
		return fmt.Errorf("insert bid: %w", err)
	}
	if res.RowsAffected() == 0 {
		req, gerr := s.GetRequest(ctx, bid.RequestID)
		if gerr != nil {
			return gerr
		}
		if req.Status != RequestPending {
			return apperr.Conflictf("request closed")
		}
		return apperr.Conflictf("duplicate bid")
	}
	return nil
}

func (s *PostgresStore) GetBid(ctx context.Context, id string) (*Bid, error) {
	var bid Bid
	err := s.pool.QueryRow(ctx,
		`SELECT id::text, request_id::text, worker_id::text, amount, status, created_at
		 FROM bids WHERE id = $1`, id,
	).Scan(&bid.ID, &bid.RequestID, &bid.WorkerID, &bid.Amount, &bid.Status, &bid.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFoundf("bid %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load bid: %w", err)
	}
	return &bid, nil
}

func (s *PostgresStore) ListBids(ctx context.Context, requestID string) ([]Bid, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id::text, request_id::text, worker_id::text, amount, status, created_at
		 FROM bids WHERE request_id = $1 ORDER BY amount ASC, created_at ASC`, requestID,
	)
	if err != nil {
		return nil, fmt.Errorf("list bids: %w", err)
	}
	defer rows.Close()

	var out []Bid
	for rows.Next() {
		var bid Bid
		if err := rows.Scan(&bid.ID, &bid.RequestID, &bid.WorkerID, &bid.Amount, &bid.Status, &bid.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan bid: %w", err)
		}
		out = append(out, bid)
	}
	return out, rows.Err()
}

func (s *PostgresStore) AcceptBid(ctx context.Context, requestID, bidID string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin accept: %w", err)
	}
	defer tx.Rollback(ctx)

	// Confirming the request is the linearization point: of N concurrent
	// accepts only one UPDATE finds status='pending'.
	res, err := tx.Exec(ctx,
		`UPDATE service_requests SET status = 'confirmed', accepted_bid_id = $2
		 WHERE id = $1 AND status = 'pending'`, requestID, bidID,
	)
	if err != nil {
		return fmt.Errorf("confirm request: %w", err)
	}
	if res.RowsAffected() == 0 {
		return apperr.Conflictf("request already settled")
	}

	res, err = tx.Exec(ctx,
		`UPDATE bids SET status = 'accepted'
		 WHERE id = $2 AND request_id = $1 AND status = 'pending'`, requestID, bidID,
	)
	if err != nil {
		return fmt.Errorf("accept bid: %w", err)
	}
	if res.RowsAffected() == 0 {
		return apperr.Conflictf("bid is not open for this request")
	}

	if _, err := tx.Exec(ctx,
		`UPDATE bids SET status = 'rejected'
		 WHERE request_id = $1 AND status = 'pending' AND id <> $2`, requestID, bidID,
	); err != nil {
		return fmt.Errorf("reject losing bids: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit accept: %w", err)
	}
	return nil
}
