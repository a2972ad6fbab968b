package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	appmw "github.com/fairbid-co/fairbid/internal/middleware"
	"github.com/fairbid-co/fairbid/internal/db"
	"github.com/fairbid-co/fairbid/internal/notify"
	// handlers
	admin "github.com/fairbid-co/fairbid/internal/admin"
	"github.com/fairbid-co/fairbid/internal/fees"
	"github.com/fairbid-co/fairbid/internal/fulfillment"
	"github.com/fairbid-co/fairbid/internal/identity"
	"github.com/fairbid-co/fairbid/internal/matching"
)

func deliveryFee() int64 {
	if raw := os.Getenv("DELIVERY_FEE"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return v
		}
		log.Printf("invalid DELIVERY_FEE %q, using default", raw)
	}
	return fees.DefaultDeliveryFee
}

func main() {
	_ = godotenv.Load()

	// Init subsystems
	db.Init()
	if err := notify.ConfigureMailerFromEnv(); err != nil {
		log.Printf("ops mailer disabled: %v", err)
	}

	publisher := notify.NewPublisherFromEnv()
	defer publisher.Close()
	notify.StartWorker()
	defer notify.StopWorker()

	matchSvc := matching.NewService(matching.NewPostgresStore(db.Conn), publisher)
	matchH := matching.NewHandler(matchSvc)

	fulfillSvc := fulfillment.NewService(fulfillment.NewPostgresStore(db.Conn), fees.NewCalculator(deliveryFee()), publisher)
	fulfillH := fulfillment.NewHandler(fulfillSvc)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Health
	e.GET("/health", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/ready", func(c echo.Context) error {
		if err := db.Conn.Ping(context.Background()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "not_ready", "error": "db unreachable"})
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "ready"})
	})

	// Authenticated group
	g := e.Group("")
	g.Use(appmw.JWTMiddleware)

	workerRoles := appmw.RequireRoles(identity.RoleTechnician, identity.RoleDriver, identity.RoleAdmin)

	// Requests and bids
	g.POST("/requests", matchH.CreateRequest)
	g.GET("/requests", matchH.ListOpenRequests)
	g.GET("/requests/:id", matchH.GetRequest)
	g.POST("/requests/:id/cancel", matchH.CancelRequest)
	g.POST("/requests/:id/bids", matchH.SubmitBid, workerRoles)
	g.GET("/requests/:id/bids", matchH.ListBids)
	g.POST("/requests/:id/bids/:bidId/accept", matchH.AcceptBid)

	// Fulfillment tickets
	g.POST("/tickets", fulfillH.CreateTicket)
	g.GET("/tickets/open", fulfillH.ListOpenTickets, workerRoles)
	g.GET("/tickets/mine", fulfillH.ListMyTickets)
	g.GET("/tickets/:id", fulfillH.GetTicket)
	g.POST("/tickets/:id/assign", fulfillH.AssignTicket, workerRoles)
	g.POST("/tickets/:id/transit", fulfillH.MarkInTransit)
	g.POST("/tickets/:id/verify", fulfillH.VerifyTicket)

	// In-app notifications
	g.GET("/notifications", notify.ListNotifications)
	g.POST("/notifications/:id/read", notify.MarkNotificationRead)

	// Admin routes
	adminGroup := e.Group("/admin")
	adminGroup.Use(appmw.JWTMiddleware)
	adminGroup.Use(appmw.AdminGuard)
	adminGroup.GET("/stats", admin.Stats)
	adminGroup.GET("/requests", admin.ListRequests)
	adminGroup.GET("/tickets", admin.ListTickets)
	adminGroup.POST("/tickets/:id/complete", fulfillH.AdminCompleteTicket)
	adminGroup.POST("/tickets/:id/cancel", fulfillH.AdminCancelTicket)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("API server listening on :%s", port)
	if err := e.Start(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
