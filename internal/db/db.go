package db

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
)

var Conn *pgxpool.Pool

// Init connects to Postgres
func Init() {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_HOST"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_NAME"),
	)

	var err error
	Conn, err = pgxpool.New(context.Background(), dsn)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v\n", err)
	}

	if err = Conn.Ping(context.Background()); err != nil {
		log.Fatalf("Unable to ping database: %v\n", err)
	}

	log.Println("Connected to Postgres successfully")

	// Ensure marketplace tables exist
	ensureRequestsSchema()
	ensureBidsSchema()
	ensureTicketsSchema()

	// Ensure notifications table exists for in-app alerts
	ensureNotificationsTable()
}

// ensureRequestsSchema creates the service_requests table if not present
func ensureRequestsSchema() {
	ctx := context.Background()
	_, err := Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS service_requests (
            id UUID PRIMARY KEY,
            requester_id UUID NOT NULL,
            service_type TEXT NOT NULL CHECK (service_type IN ('cleaning','maintenance','concierge','transport','other')),
            description TEXT NOT NULL,
            offered_price BIGINT NOT NULL CHECK (offered_price >= 0),
            status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending','confirmed','cancelled')),
            accepted_bid_id UUID NULL,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        );
        CREATE INDEX IF NOT EXISTS idx_requests_status_created ON service_requests(status, created_at);
        CREATE INDEX IF NOT EXISTS idx_requests_requester ON service_requests(requester_id);
    `)
	if err != nil {
		log.Printf("failed to create service_requests table: %v", err)
	}
}

// ensureBidsSchema creates the bids table if not present. The partial unique
// index backs the one-pending-bid-per-worker rule alongside the guarded insert.
func ensureBidsSchema() {
	ctx := context.Background()
	_, err := Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS bids (
            id UUID PRIMARY KEY,
            request_id UUID NOT NULL REFERENCES service_requests(id) ON DELETE CASCADE,
            worker_id UUID NOT NULL,
            amount BIGINT NOT NULL CHECK (amount > 0),
            status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending','accepted','rejected')),
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        );
        CREATE INDEX IF NOT EXISTS idx_bids_request ON bids(request_id, amount, created_at);
        CREATE UNIQUE INDEX IF NOT EXISTS uq_bids_worker_pending ON bids(request_id, worker_id) WHERE status = 'pending';
    `)
	if err != nil {
		log.Printf("failed to create bids table: %v", err)
	}
}

// ensureTicketsSchema creates the tickets table if not present
func ensureTicketsSchema() {
	ctx := context.Background()
	_, err := Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS tickets (
            id UUID PRIMARY KEY,
            payer_id UUID NOT NULL,
            assignee_id UUID NULL,
            service_type TEXT NOT NULL,
            amount BIGINT NOT NULL CHECK (amount > 0),
            service_fee BIGINT NOT NULL,
            delivery_fee BIGINT NOT NULL,
            total BIGINT NOT NULL,
            verification_code TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending','assigned','in_transit','delivered','cancelled')),
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        );
        CREATE INDEX IF NOT EXISTS idx_tickets_payer ON tickets(payer_id, created_at);
        CREATE INDEX IF NOT EXISTS idx_tickets_assignee ON tickets(assignee_id) WHERE assignee_id IS NOT NULL;
        CREATE INDEX IF NOT EXISTS idx_tickets_open ON tickets(created_at) WHERE status = 'pending' AND assignee_id IS NULL;
    `)
	if err != nil {
		log.Printf("failed to create tickets table: %v", err)
	}
}

// ensureNotificationsTable creates notifications table if it doesn't exist
func ensureNotificationsTable() {
	ctx := context.Background()
	_, err := Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS notifications (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            user_id UUID NOT NULL,
            type TEXT NOT NULL,
            title TEXT NOT NULL,
            body TEXT,
            reference UUID NULL,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            read_at TIMESTAMP WITH TIME ZONE NULL
        );
        CREATE INDEX IF NOT EXISTS idx_notifications_user_created ON notifications(user_id, created_at);
        CREATE INDEX IF NOT EXISTS idx_notifications_user_unread ON notifications(user_id) WHERE read_at IS NULL;
    `)
	if err != nil {
		log.Printf("failed to create notifications table: %v", err)
	}
}
