package matching

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fairbid-co/fairbid/internal/apperr"
	"github.com/fairbid-co/fairbid/internal/fees"
	"github.com/fairbid-co/fairbid/internal/identity"
)

// Handler exposes the matching core over HTTP. Identity comes from the JWT
// middleware (user_id and role on the echo context).
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func actorFrom(c echo.Context) identity.Actor {
	id, _ := c.Get("user_id").(string)
	role, _ := c.Get("role").(string)
	return identity.Actor{ID: id, Role: role}
}

func respondErr(c echo.Context, err error) error {
	status := apperr.HTTPStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	return c.JSON(status, echo.Map{"error": msg})
}

// CreateRequest handles POST /requests
func (h *Handler) CreateRequest(c echo.Context) error {
	var body struct {
		ServiceType  string `json:"service_type"`
		Description  string `json:"description"`
		OfferedPrice int64  `json:"offered_price"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	actor := actorFrom(c)
	req, err := h.svc.CreateRequest(c.Request().Context(), actor.ID, fees.ServiceType(body.ServiceType), body.Description, body.OfferedPrice)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"request": req})
}

// ListOpenRequests handles GET /requests
func (h *Handler) ListOpenRequests(c echo.Context) error {
	reqs, err := h.svc.ListOpenRequests(c.Request().Context())
	if err != nil {
		return respondErr(c, err)
	}
	if reqs == nil {
		reqs = []Request{}
	}
	return c.JSON(http.StatusOK, echo.Map{"requests": reqs})
}

// GetRequest handles GET /requests/:id
func (h *Handler) GetRequest(c echo.Context) error {
	req, err := h.svc.GetRequest(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"request": req})
}

// CancelRequest handles POST /requests/:id/cancel
func (h *Handler) CancelRequest(c echo.Context) error {
	req, err := h.svc.CancelRequest(c.Request().Context(), c.Param("id"), actorFrom(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"request": req})
}

// SubmitBid handles POST /requests/:id/bids
func (h *Handler) SubmitBid(c echo.Context) error {
	var body struct {
		Amount int64 `json:"amount"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	actor := actorFrom(c)
	bid, err := h.svc.SubmitBid(c.Request().Context(), c.Param("id"), actor.ID, body.Amount)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"bid": bid})
}

// ListBids handles GET /requests/:id/bids
func (h *Handler) ListBids(c echo.Context) error {
	bids, err := h.svc.ListBids(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondErr(c, err)
	}
	if bids == nil {
		bids = []Bid{}
	}
	return c.JSON(http.StatusOK, echo.Map{"bids": bids})
}

// AcceptBid handles POST /requests/:id/bids/:bidId/accept
func (h *Handler) AcceptBid(c echo.Context) error {
	req, err := h.svc.AcceptBid(c.Request().Context(), c.Param("id"), c.Param("bidId"), actorFrom(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"request": req})
}
