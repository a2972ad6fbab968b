package admin

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fairbid-co/fairbid/internal/db"
)

type AdminTicket struct {
	ID         string    `json:"id"`
	PayerID    string    `json:"payer_id"`
	AssigneeID string    `json:"assignee_id,omitempty"`
	Amount     int64     `json:"amount"`
	Total      int64     `json:"total"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// GET /admin/tickets
// The verification code is never selected here; the admin override completes
// tickets without it.
func ListTickets(c echo.Context) error {
	rows, err := db.Conn.Query(context.Background(),
		`SELECT id::text, payer_id::text, COALESCE(assignee_id::text,''), amount, total, status, created_at, updated_at
		 FROM tickets ORDER BY created_at DESC`,
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not fetch tickets"})
	}
	defer rows.Close()

	var tickets []AdminTicket
	for rows.Next() {
		var t AdminTicket
		if err := rows.Scan(&t.ID, &t.PayerID, &t.AssigneeID, &t.Amount, &t.Total, &t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to read ticket record"})
		}
		tickets = append(tickets, t)
	}
	return c.JSON(http.StatusOK, echo.Map{"tickets": tickets})
}
