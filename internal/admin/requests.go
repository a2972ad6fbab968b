package admin

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fairbid-co/fairbid/internal/db"
)

type AdminRequest struct {
	ID            string    `json:"id"`
	RequesterID   string    `json:"requester_id"`
	ServiceType   string    `json:"service_type"`
	OfferedPrice  int64     `json:"offered_price"`
	Status        string    `json:"status"`
	AcceptedBidID string    `json:"accepted_bid_id,omitempty"`
	BidCount      int       `json:"bid_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// GET /admin/requests
func ListRequests(c echo.Context) error {
	rows, err := db.Conn.Query(context.Background(),
		`SELECT r.id::text, r.requester_id::text, r.service_type, r.offered_price, r.status,
		        COALESCE(r.accepted_bid_id::text,''),
		        (SELECT COUNT(*) FROM bids b WHERE b.request_id = r.id),
		        r.created_at
		 FROM service_requests r ORDER BY r.created_at DESC`,
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not fetch requests"})
	}
	defer rows.Close()

	var requests []AdminRequest
	for rows.Next() {
		var r AdminRequest
		if err := rows.Scan(&r.ID, &r.RequesterID, &r.ServiceType, &r.OfferedPrice, &r.Status, &r.AcceptedBidID, &r.BidCount, &r.CreatedAt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to read request record"})
		}
		requests = append(requests, r)
	}
	return c.JSON(http.StatusOK, echo.Map{"requests": requests})
}
