package admin

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fairbid-co/fairbid/internal/db"
)

// GET /admin/stats
func Stats(c echo.Context) error {
	ctx := context.Background()

	var requests, openRequests, bids, tickets, delivered int

	_ = db.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM service_requests`).Scan(&requests)
	_ = db.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM service_requests WHERE status = 'pending'`).Scan(&openRequests)
	_ = db.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM bids`).Scan(&bids)
	_ = db.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM tickets`).Scan(&tickets)
	_ = db.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM tickets WHERE status = 'delivered'`).Scan(&delivered)

	return c.JSON(http.StatusOK, echo.Map{
		"requests":          requests,
		"open_requests":     openRequests,
		"bids":              bids,
		"tickets":           tickets,
		"delivered_tickets": delivered,
	})
}
