package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"chatrelay/internal/models"
)

// TranscriptQueue holds exchanges waiting to be written to Postgres.
const TranscriptQueue = "queue:transcripts"

// ExchangeChannel is the pub/sub channel observers of a session listen on.
func ExchangeChannel(sessionID uuid.UUID) string {
	return "chat_events:" + sessionID.String()
}

// ExchangeRecorder receives every confirmed exchange.
type ExchangeRecorder interface {
	Record(ctx context.Context, ex models.Exchange) error
}

// NopRecorder drops exchanges. Used when Redis is not configured.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, models.Exchange) error { return nil }

// RedisRecorder fans an exchange out to live observers and queues it for
// the transcript workers in one MULTI/EXEC.
type RedisRecorder struct {
	redis *redis.Client
}

func NewRedisRecorder(redisClient *redis.Client) *RedisRecorder {
	return &RedisRecorder{redis: redisClient}
}

func (r *RedisRecorder) Record(ctx context.Context, ex models.Exchange) error {
	event, err := json.Marshal(models.WSMessage{Type: models.WSTypeExchange, Payload: ex})
	if err != nil {
		return fmt.Errorf("failed to encode exchange event: %w", err)
	}
	job, err := json.Marshal(ex)
	if err != nil {
		return fmt.Errorf("failed to encode exchange: %w", err)
	}

	pipe := r.redis.TxPipeline()
	pipe.Publish(ctx, ExchangeChannel(ex.SessionID), string(event))
	pipe.RPush(ctx, TranscriptQueue, string(job))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record exchange %s: %w", ex.ID, err)
	}
	return nil
}
