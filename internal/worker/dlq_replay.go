package worker

// dlq_replay.go
// Background goroutine that periodically moves dead-lettered jobs back onto
// their queue. Uses the mail Circuit Breaker to avoid hammering a downed
// SMTP relay, and parks jobs that already failed MaxAttempts times.

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"shopinventory/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	replayTickInterval = 30 * time.Second
	replayBatchSize    = 10
	DefaultMaxAttempts = 5
)

// ReplayConfig holds all dependencies for the replay goroutine.
type ReplayConfig struct {
	RDB         redis.Cmdable
	CB          *infra.CircuitBreaker
	Queues      []string
	MaxAttempts int
	Interval    time.Duration
}

// StartDLQReplay launches a background goroutine that ticks every Interval
// (30s by default) and re-queues DLQ entries through ReplayOnce.
// It respects the context for graceful shutdown.
func StartDLQReplay(ctx context.Context, cfg ReplayConfig) {
	if cfg.Interval <= 0 {
		cfg.Interval = replayTickInterval
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if len(cfg.Queues) == 0 {
		cfg.Queues = Queues
	}

	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		log.Info().Msg("dlq_replay: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("dlq_replay: shutting down")
				return
			case <-ticker.C:
				ReplayOnce(ctx, cfg)
			}
		}
	}()
}

// ReplayOnce moves up to replayBatchSize entries per queue. It returns the
// number of jobs re-queued and parked.
func ReplayOnce(ctx context.Context, cfg ReplayConfig) (requeued, parked int) {
	// If CB is open, skip entirely
	if cfg.CB != nil && cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("dlq_replay: circuit breaker is open, skipping tick")
		return 0, 0
	}

	for _, queue := range cfg.Queues {
		for i := 0; i < replayBatchSize; i++ {
			// Check CB state before each move, it may have tripped mid-batch
			if cfg.CB != nil && cfg.CB.State() == infra.CBOpen {
				log.Debug().Msg("dlq_replay: circuit breaker opened mid-batch, stopping")
				return requeued, parked
			}

			raw, err := cfg.RDB.RPop(ctx, DLQPrefix+queue).Result()
			if errors.Is(err, redis.Nil) {
				break
			}
			if err != nil {
				log.Error().Err(err).Str("queue", queue).Msg("dlq_replay: failed to pop entry")
				break
			}

			var entry DLQEntry
			if err := json.Unmarshal([]byte(raw), &entry); err != nil {
				log.Error().Err(err).Str("queue", queue).Msg("dlq_replay: corrupt entry, parking")
				if !park(ctx, cfg.RDB, queue, raw) {
					break
				}
				parked++
				continue
			}

			if entry.Attempts >= cfg.MaxAttempts {
				if !park(ctx, cfg.RDB, queue, raw) {
					break
				}
				log.Error().
					Str("queue", queue).
					Str("job_type", entry.JobType).
					Int("attempts", entry.Attempts).
					Msg("dlq_replay: max attempts exceeded, parked")
				parked++
				continue
			}

			job := Job{Type: entry.JobType, Payload: entry.Payload, Attempts: entry.Attempts}
			if err := pushJob(ctx, cfg.RDB, queue, job); err != nil {
				log.Error().Err(err).Str("queue", queue).Msg("dlq_replay: failed to re-queue, restoring")
				restore(ctx, cfg.RDB, queue, raw)
				break
			}
			requeued++
		}
	}

	if requeued > 0 || parked > 0 {
		log.Info().Int("requeued", requeued).Int("parked", parked).Msg("dlq_replay: tick done")
	}
	return requeued, parked
}

// park moves a popped entry to the parked list. When that fails the entry is
// put back on the tail of its DLQ, where RPop will find it first next tick.
func park(ctx context.Context, rdb redis.Cmdable, queue, raw string) bool {
	if err := rdb.LPush(ctx, ParkedPrefix+queue, raw).Err(); err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq_replay: failed to park entry, restoring")
		restore(ctx, rdb, queue, raw)
		return false
	}
	return true
}

func restore(ctx context.Context, rdb redis.Cmdable, queue, raw string) {
	if err := rdb.RPush(ctx, DLQPrefix+queue, raw).Err(); err != nil {
		log.Error().Err(err).Str("queue", queue).Str("entry", raw).Msg("dlq_replay: failed to restore entry")
	}
}
