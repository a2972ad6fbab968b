package notify

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/hibiken/asynq"

	"github.com/fairbid-co/fairbid/internal/db"
)

var server *asynq.Server

// StartWorker runs the in-process Asynq consumer that turns fan-out events
// into in-app notification rows. Same pattern as the API server: started once
// from main, runs on a goroutine until Shutdown.
func StartWorker() {
	opts := asynq.RedisClientOpt{Addr: redisAddr()}

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskEventFanout, handleEventFanout)

	server = asynq.NewServer(opts, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			"events": 10,
		},
	})
	go func() {
		if err := server.Run(mux); err != nil {
			log.Printf("Asynq server stopped: %v", err)
		}
	}()

	log.Printf("Asynq worker initialized (addr=%s)", redisAddr())
}

// StopWorker shuts the consumer down.
func StopWorker() {
	if server != nil {
		server.Shutdown()
	}
}

func handleEventFanout(ctx context.Context, t *asynq.Task) error {
	var ev Event
	if err := json.Unmarshal(t.Payload(), &ev); err != nil {
		return err
	}

	// Events without an interested party are broadcast-only; the Redis leg
	// already served live subscribers.
	if ev.UserID == "" {
		log.Printf("[notify] %s scope=%s (broadcast)", ev.Kind, ev.Scope())
		return nil
	}

	ref := ev.Scope()
	body := ev.Status
	if err := CreateNotification(ctx, ev.UserID, ev.Kind, ev.Title(), body, ref); err != nil {
		log.Printf("[notify][ERROR] persist %s for user=%s failed: %v", ev.Kind, ev.UserID, err)
		return err
	}
	log.Printf("[notify] %s -> user=%s scope=%s", ev.Kind, ev.UserID, ref)

	// Terminal ticket transitions also go to the ops inbox when one is
	// configured. Best-effort like the rest of the pipeline.
	if ev.Kind == EventTicketStatus && (ev.Status == "delivered" || ev.Status == "cancelled") {
		if ops := os.Getenv("OPS_EMAIL"); ops != "" {
			subject := "Ticket " + ref + " " + ev.Status
			if err := SendEmail(ops, subject, ev.Title()); err != nil {
				log.Printf("[notify] ops email failed: %v", err)
			}
		}
	}
	return nil
}

// CreateNotification inserts an in-app notification row.
func CreateNotification(ctx context.Context, userID, ntype, title, body, reference string) error {
	_, err := db.Conn.Exec(ctx,
		`INSERT INTO notifications (user_id, type, title, body, reference, created_at)
		 VALUES ($1, $2, $3, $4, NULLIF($5,'')::uuid, $6)`,
		userID, ntype, title, body, reference, time.Now(),
	)
	return err
}
