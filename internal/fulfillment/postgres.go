package fulfillment

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairbid-co/fairbid/internal/apperr"
)

// PostgresStore is the production ticket store. Transitions are single
// conditional UPDATEs, matching the matching store's write discipline.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const ticketColumns = `id::text, payer_id::text, COALESCE(assignee_id::text,''), service_type,
	amount, service_fee, delivery_fee, total, verification_code, status, created_at, updated_at`

func scanTicket(row pgx.Row) (*Ticket, error) {
	var t Ticket
	err := row.Scan(&t.ID, &t.PayerID, &t.AssigneeID, &t.ServiceType,
		&t.Amount, &t.ServiceFee, &t.DeliveryFee, &t.Total, &t.VerificationCode, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *PostgresStore) CreateTicket(ctx context.Context, t *Ticket) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO tickets (id, payer_id, service_type, amount, service_fee, delivery_fee, total, verification_code, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		t.ID, t.PayerID, string(t.ServiceType), t.Amount, t.ServiceFee, t.DeliveryFee, t.Total, t.VerificationCode, string(t.Status), t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ticket: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetTicket(ctx context.Context, id string) (*Ticket, error) {
	t, err := scanTicket(s.pool.QueryRow(ctx,
		`SELECT `+ticketColumns+` FROM tickets WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFoundf("ticket %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load ticket: %w", err)
	}
	return t, nil
}

func (s *PostgresStore) ListOpen(ctx context.Context) ([]Ticket, error) {
	return s.list(ctx,
		`SELECT `+ticketColumns+` FROM tickets
		 WHERE status = 'pending' AND assignee_id IS NULL ORDER BY created_at ASC`)
}

func (s *PostgresStore) ListForUser(ctx context.Context, userID string) ([]Ticket, error) {
	return s.list(ctx,
		`SELECT `+ticketColumns+` FROM tickets
		 WHERE payer_id = $1 OR assignee_id = $1 ORDER BY created_at DESC`, userID)
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]Ticket, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()

	var out []Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Assign(ctx context.Context, id, workerID string) error {
	res, err := s.pool.Exec(ctx,
		`UPDATE tickets SET status = 'assigned', assignee_id = $2, updated_at = NOW()
		 WHERE id = $1 AND status = 'pending' AND assignee_id IS NULL`, id, workerID,
	)
	if err != nil {
		return fmt.Errorf("assign ticket: %w", err)
	}
	if res.RowsAffected() == 0 {
		if _, gerr := s.GetTicket(ctx, id); gerr != nil {
			return gerr
		}
		return apperr.Conflictf("ticket already taken")
	}
	return nil
}

func (s *PostgresStore) MarkInTransit(ctx context.Context, id string) error {
	res, err := s.pool.Exec(ctx,
		`UPDATE tickets SET status = 'in_transit', updated_at = NOW()
		 WHERE id = $1 AND status = 'assigned'`, id,
	)
	if err != nil {
		return fmt.Errorf("mark in transit: %w", err)
	}
	if res.RowsAffected() == 0 {
		if _, gerr := s.GetTicket(ctx, id); gerr != nil {
			return gerr
		}
		return apperr.Conflictf("ticket is not assigned")
	}
	return nil
}

func (s *PostgresStore) Complete(ctx context.Context, id, claimant string) error {
	res, err := s.pool.Exec(ctx,
		`UPDATE tickets SET status = 'delivered',
		        assignee_id = COALESCE(assignee_id, NULLIF($2,'')::uuid),
		        updated_at = NOW()
		 WHERE id = $1 AND status IN ('pending','assigned','in_transit')`, id, claimant,
	)
	if err != nil {
		return fmt.Errorf("complete ticket: %w", err)
	}
	if res.RowsAffected() == 0 {
		if _, gerr := s.GetTicket(ctx, id); gerr != nil {
			return gerr
		}
		return apperr.Conflictf("ticket already closed")
	}
	return nil
}

func (s *PostgresStore) Cancel(ctx context.Context, id string) error {
	res, err := s.pool.Exec(ctx,
		`UPDATE tickets SET status = 'cancelled', updated_at = NOW()
		 WHERE id = $1 AND status IN ('pending','assigned','in_transit')`, id,
	)
	if err != nil {
		return fmt.Errorf("cancel ticket: %w", err)
	}
	if res.RowsAffected() == 0 {
		if _, gerr := s.GetTicket(ctx, id); gerr != nil {
			return gerr
		}
		return apperr.Conflictf("ticket already closed")
	}
	return nil
}
