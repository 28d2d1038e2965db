package worker

// notifier.go
// Redis-list job queue carrying low-stock alert notifications out of the
// request/sweep path. The dispatcher LPushes envelopes; the pool goroutines
// block on BRPOP — zero CPU when idle.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const QueueAlerts = "jobs:alerts"

// envelope is the generic wrapper for all queued jobs.
type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// AlertPayload describes one newly raised low-stock alert.
type AlertPayload struct {
	AlertID      string `json:"alert_id"`
	ProductID    string `json:"product_id"`
	Threshold    int    `json:"threshold"`
	CurrentStock int    `json:"current_stock"`
}

// Dispatcher enqueues async jobs into Redis lists.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher { return &Dispatcher{rdb: rdb} }

// EnqueueAlert pushes a low-stock notification job.
func (d *Dispatcher) EnqueueAlert(ctx context.Context, payload AlertPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(envelope{Type: "low_stock_alert", Payload: data})
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, QueueAlerts, encoded).Err()
}

// AlertHandler consumes one alert notification. Implementations deliver the
// alert somewhere useful (ops channel, e-mail digest); the default handler
// just logs it.
type AlertHandler func(ctx context.Context, p AlertPayload)

// LogAlertHandler writes the alert to the structured log.
func LogAlertHandler(_ context.Context, p AlertPayload) {
	log.Warn().
		Str("alert_id", p.AlertID).
		Str("product_id", p.ProductID).
		Int("threshold", p.Threshold).
		Int("current_stock", p.CurrentStock).
		Msg("low stock alert raised")
}

// StartPool launches numWorkers goroutines consuming the alert queue.
func StartPool(ctx context.Context, rdb *redis.Client, handler AlertHandler, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, handler, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, handler AlertHandler, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx.
			result, err := rdb.BRPop(ctx, 5*time.Second, QueueAlerts).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, handler, result[1])
		}
	}
}

func processJob(ctx context.Context, handler AlertHandler, raw string) {
	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		log.Error().Err(err).Msg("failed to unmarshal job envelope")
		return
	}
	switch env.Type {
	case "low_stock_alert":
		var p AlertPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			log.Error().Err(err).Msg("failed to unmarshal alert payload")
			return
		}
		handler(ctx, p)
	default:
		log.Warn().Str("type", env.Type).Msg("unknown job type, dropping")
	}
}
