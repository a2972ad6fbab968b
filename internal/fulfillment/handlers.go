package fulfillment

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fairbid-co/fairbid/internal/apperr"
	"github.com/fairbid-co/fairbid/internal/fees"
	"github.com/fairbid-co/fairbid/internal/identity"
)

// Handler exposes the fulfillment core over HTTP.
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

// CreateTicket handles POST /tickets. This is the one response that carries
// the verification code; the payer is expected to keep it.
func (h *Handler) CreateTicket(c echo.Context) error {
	var body struct {
		ServiceType string  `json:"service_type"`
		Amount      int64   `json:"amount"`
		DistanceKm  float64 `json:"distance_km"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	actor := actorFrom(c)
	t, err := h.svc.CreateTicket(c.Request().Context(), actor.ID, fees.ServiceType(body.ServiceType), body.Amount, body.DistanceKm)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"ticket":            t,
		"verification_code": t.VerificationCode,
	})
}

// GetTicket handles GET /tickets/:id
func (h *Handler) GetTicket(c echo.Context) error {
	t, err := h.svc.GetTicket(c.Request().Context(), c.Param("id"), actorFrom(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"ticket": t})
}

// ListOpenTickets handles GET /tickets/open
func (h *Handler) ListOpenTickets(c echo.Context) error {
	tickets, err := h.svc.ListOpen(c.Request().Context())
	if err != nil {
		return respondErr(c, err)
	}
	if tickets == nil {
		tickets = []Ticket{}
	}
	return c.JSON(http.StatusOK, echo.Map{"tickets": tickets})
}

// ListMyTickets handles GET /tickets/mine
func (h *Handler) ListMyTickets(c echo.Context) error {
	tickets, err := h.svc.ListMine(c.Request().Context(), actorFrom(c))
	if err != nil {
		return respondErr(c, err)
	}
	if tickets == nil {
		tickets = []Ticket{}
	}
	return c.JSON(http.StatusOK, echo.Map{"tickets": tickets})
}

// AssignTicket handles POST /tickets/:id/assign
func (h *Handler) AssignTicket(c echo.Context) error {
	t, err := h.svc.Assign(c.Request().Context(), c.Param("id"), actorFrom(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"ticket": t})
}

// MarkInTransit handles POST /tickets/:id/transit
func (h *Handler) MarkInTransit(c echo.Context) error {
	t, err := h.svc.MarkInTransit(c.Request().Context(), c.Param("id"), actorFrom(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"ticket": t})
}

// VerifyTicket handles POST /tickets/:id/verify
func (h *Handler) VerifyTicket(c echo.Context) error {
	var body struct {
		Code string `json:"code"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	t, err := h.svc.VerifyAndComplete(c.Request().Context(), c.Param("id"), body.Code, actorFrom(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"ticket": t})
}

// AdminCompleteTicket handles POST /admin/tickets/:id/complete
func (h *Handler) AdminCompleteTicket(c echo.Context) error {
	t, err := h.svc.AdminComplete(c.Request().Context(), c.Param("id"), actorFrom(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"ticket": t})
}

// AdminCancelTicket handles POST /admin/tickets/:id/cancel
func (h *Handler) AdminCancelTicket(c echo.Context) error {
	t, err := h.svc.CancelTicket(c.Request().Context(), c.Param("id"), actorFrom(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"ticket": t})
}
