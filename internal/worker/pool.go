package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"shopinventory/internal/metrics"
	"shopinventory/internal/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueReceipts = "jobs:receipts"
	QueueAlerts   = "jobs:alerts"

	JobReceipt  = "receipt"
	JobLowStock = "low_stock"

	dequeueBackoff = 2 * time.Second
)

// Queues lists every queue the pool consumes, in BRPOP priority order.
var Queues = []string{QueueReceipts, QueueAlerts}

// Job is the generic envelope for all async tasks. Attempts counts how many
// times the job already went through the dead-letter queue.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts,omitempty"`
}

// ReceiptJobPayload asks for the receipt of a committed sale.
type ReceiptJobPayload struct {
	SaleID string `json:"sale_id"`
}

// LowStockJobPayload describes a product that crossed its reorder threshold.
type LowStockJobPayload struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	SKU       *string `json:"sku,omitempty"`
	Quantity  int     `json:"quantity"`
	Threshold int     `json:"threshold"`
}

// Handler processes one decoded payload. A returned error sends the job to the DLQ.
type Handler interface {
	Process(ctx context.Context, raw json.RawMessage) error
}

// ErrUnknownJob is recorded when no handler is registered for a job type.
var ErrUnknownJob = errors.New("worker: unknown job type")

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueReceipt pushes a receipt job for saleID.
func (d *Dispatcher) EnqueueReceipt(ctx context.Context, saleID uuid.UUID) error {
	return d.enqueue(ctx, QueueReceipts, JobReceipt, ReceiptJobPayload{SaleID: saleID.String()})
}

// EnqueueLowStockAlert pushes an alert for p using its current quantity.
func (d *Dispatcher) EnqueueLowStockAlert(ctx context.Context, p *model.Product) error {
	return d.enqueue(ctx, QueueAlerts, JobLowStock, LowStockJobPayload{
		ProductID: p.ID.String(),
		Name:      p.Name,
		SKU:       p.SKU,
		Quantity:  p.Quantity,
		Threshold: p.ReorderThreshold,
	})
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return pushJob(ctx, d.rdb, queue, Job{Type: jobType, Payload: data})
}

func pushJob(ctx context.Context, rdb redis.Cmdable, queue string, job Job) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return rdb.LPush(ctx, queue, encoded).Err()
}

// StartWorkerPool launches numWorkers goroutines consuming every queue.
// Each goroutine blocks on BRPOP, zero CPU when idle. The returned WaitGroup
// completes once all workers observed ctx cancellation.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, numWorkers int, handlers map[string]Handler) *sync.WaitGroup {
	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			runWorker(ctx, rdb, id, handlers)
		}(i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
	return &wg
}

func runWorker(ctx context.Context, rdb *redis.Client, id int, handlers map[string]Handler) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop, waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, Queues...).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) || ctx.Err() != nil {
					continue // timeout or shutting down
				}
				log.Error().Err(err).Int("worker", id).Msg("worker: dequeue failed, backing off")
				sleepCtx(ctx, dequeueBackoff)
				continue
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, handlers, result[0], result[1])
		}
	}
}

// sleepCtx waits for d or until ctx is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func processJob(ctx context.Context, rdb *redis.Client, handlers map[string]Handler, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("worker: failed to unmarshal job")
		metrics.JobsProcessed.WithLabelValues("invalid", "dropped").Inc()
		return
	}

	err := runHandler(ctx, handlers, job)
	if err == nil {
		metrics.JobsProcessed.WithLabelValues(job.Type, "ok").Inc()
		return
	}

	metrics.JobsProcessed.WithLabelValues(job.Type, "failed").Inc()
	log.Error().Err(err).Str("queue", queue).Str("type", job.Type).Int("attempt", job.Attempts+1).Msg("worker: job failed")
	SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, err.Error(), job.Attempts+1)
}

// runHandler dispatches job to its handler, converting panics into errors so
// one bad payload cannot kill a worker goroutine.
func runHandler(ctx context.Context, handlers map[string]Handler, job Job) (err error) {
	h, ok := handlers[job.Type]
	if !ok {
		return ErrUnknownJob
	}
	defer func() {
		if r := recover(); r != nil {
			err = errors.New("worker: handler panicked")
			log.Error().Interface("panic", r).Str("type", job.Type).Msg("worker: recovered panic")
		}
	}()
	return h.Process(ctx, job.Payload)
}
