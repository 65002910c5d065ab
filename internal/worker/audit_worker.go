package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/quizlive/quizlive-backend/internal/config"
	"github.com/quizlive/quizlive-backend/internal/model"
)

// RedisAuditQueue is the producer side of the audit pipeline. Handlers push
// here; AuditWorker consumes.
type RedisAuditQueue struct {
	rdb *redis.Client
}

// NewRedisAuditQueue creates a RedisAuditQueue.
func NewRedisAuditQueue(rdb *redis.Client) *RedisAuditQueue {
	return &RedisAuditQueue{rdb: rdb}
}

// Push enqueues one serialized audit entry.
func (q *RedisAuditQueue) Push(ctx context.Context, payload []byte) error {
	return q.rdb.RPush(ctx, config.WorkerKey.AuditLogQueue, payload).Err()
}

// AuditWorker consumes audit_log_queue and inserts entries into PostgreSQL.
// Writing the trail off the request path keeps admin operations fast even
// when the database is busy.
type AuditWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

// NewAuditWorker creates a new AuditWorker.
func NewAuditWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *AuditWorker {
	return &AuditWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "audit_worker").Logger(),
	}
}

// Start begins the infinite worker loop. Call in a goroutine.
func (w *AuditWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			// Drain remaining items before exit.
			w.drain(context.Background())
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *AuditWorker) processNext(ctx context.Context) {
	// BLPop blocks until an item is available or timeout (1 second).
	result, err := w.rdb.BLPop(ctx, time.Second, config.WorkerKey.AuditLogQueue).Result()
	if err != nil {
		if err != redis.Nil && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
		}
		return
	}
	if len(result) < 2 {
		return
	}

	if err := w.persistEntry(ctx, []byte(result[1])); err != nil {
		w.log.Error().Err(err).Msg("Persist error, retrying in 5s")
		// Push back to queue for retry.
		w.rdb.RPush(ctx, config.WorkerKey.AuditLogQueue, result[1])
		time.Sleep(5 * time.Second)
	}
}

func (w *AuditWorker) persistEntry(ctx context.Context, raw []byte) error {
	var entry model.AuditLog
	if err := json.Unmarshal(raw, &entry); err != nil {
		// A malformed payload would loop forever; log and drop it.
		w.log.Error().Err(err).Msg("Unmarshal error, dropping entry")
		return nil
	}

	_, err := w.pool.Exec(ctx,
		`INSERT INTO audit_logs (id, action, event_id, payload, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO NOTHING`,
		entry.ID, entry.Action, entry.EventID, entry.Payload, entry.CreatedAt)
	return err
}

// drain processes all remaining items in the queue before shutdown.
func (w *AuditWorker) drain(ctx context.Context) {
	drained := 0
	for {
		result, err := w.rdb.LPop(ctx, config.WorkerKey.AuditLogQueue).Result()
		if err != nil {
			break
		}
		if err := w.persistEntry(ctx, []byte(result)); err != nil {
			w.log.Error().Err(err).Msg("Drain persist error")
			w.rdb.RPush(ctx, config.WorkerKey.AuditLogQueue, result)
			break
		}
		drained++
	}
	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained audit entries")
	}
}
