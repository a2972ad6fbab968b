package notify

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// Sink is what the core services publish into. Implementations must be
// best-effort: a failed publish never affects the originating transition.
type Sink interface {
	Publish(ctx context.Context, ev Event)
}

// Publisher fans events out on two legs: an Asynq task (durable, consumed by
// the worker for in-app notifications) and a Redis Pub/Sub channel scoped by
// request/ticket id for live subscribers. Both legs are fire-and-forget.
type Publisher struct {
	client *asynq.Client
	rdb    *redis.Client
}

// redisAddr resolves the Redis address the same way across publisher, worker
// and queue client.
func redisAddr() string {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		return addr
	}
	if host := os.Getenv("REDIS_HOST"); host != "" {
		port := os.Getenv("REDIS_PORT")
		if port == "" {
			port = "6379"
		}
		return host + ":" + port
	}
	// Default to docker-compose service name if running in container; otherwise localhost
	if os.Getenv("RUN_LOCAL") == "true" {
		return "127.0.0.1:6379"
	}
	return "redis:6379"
}

// NewPublisherFromEnv builds the production publisher.
func NewPublisherFromEnv() *Publisher {
	addr := redisAddr()
	return &Publisher{
		client: asynq.NewClient(asynq.RedisClientOpt{Addr: addr}),
		rdb:    redis.NewClient(&redis.Options{Addr: addr}),
	}
}

// Publish delivers ev on both legs. Failures are logged and discarded so the
// caller's committed transition is never rolled back or blocked.
func (p *Publisher) Publish(ctx context.Context, ev Event) {
	b, err := json.Marshal(ev)
	if err != nil {
		log.Printf("[notify] marshal event failed: %v", err)
		return
	}

	if p.client != nil {
		task := asynq.NewTask(TaskEventFanout, b)
		if _, err := p.client.Enqueue(task, asynq.Queue("events")); err != nil {
			log.Printf("[notify] enqueue %s failed: %v", ev.Kind, err)
		}
	}

	if p.rdb != nil {
		channel := "fairbid:events:" + ev.Scope()
		if err := p.rdb.Publish(ctx, channel, b).Err(); err != nil {
			log.Printf("[notify] redis publish %s failed: %v", ev.Kind, err)
		}
	}
}

// Close releases both connections.
func (p *Publisher) Close() {
	if p.client != nil {
		_ = p.client.Close()
	}
	if p.rdb != nil {
		_ = p.rdb.Close()
	}
}
