package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"chatrelay/internal/models"
	"chatrelay/internal/services"
)

// FailedQueue receives exchanges that could not be stored.
const FailedQueue = services.TranscriptQueue + ":failed"

const (
	defaultPollTimeout = 30 * time.Second
	lockTTL            = 10 * time.Minute
)

type transcriptWriter interface {
	Create(ctx context.Context, ex *models.Exchange) error
}

// Pool drains the transcript queue into the transcript store.
type Pool struct {
	redis       *redis.Client
	repo        transcriptWriter
	workerCount int
	pollTimeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewPool(redisClient *redis.Client, repo transcriptWriter, workerCount int) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		redis:       redisClient,
		repo:        repo,
		workerCount: workerCount,
		pollTimeout: defaultPollTimeout,
		ctx:         ctx,
		cancel:      cancel,
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	log.Printf("Started %d transcript workers", p.workerCount)
}

// Stop interrupts blocked pops and waits for in-progress writes to finish.
func (p *Pool) Stop() {
	p.cancel()
	p.wg.Wait()
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for {
		if p.ctx.Err() != nil {
			log.Printf("Worker %d shutting down", id)
			return
		}

		// BLPOP with timeout; redis.Nil means the queue stayed empty
		result, err := p.redis.BLPop(p.ctx, p.pollTimeout, services.TranscriptQueue).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) && p.ctx.Err() == nil {
				log.Printf("Worker %d: queue read failed: %v", id, err)
				time.Sleep(time.Second)
			}
			continue
		}
		if len(result) < 2 {
			continue
		}

		if err := p.process(context.WithoutCancel(p.ctx), result[1]); err != nil {
			log.Printf("Worker %d: %v", id, err)
		}
	}
}

func (p *Pool) process(ctx context.Context, payload string) error {
	var ex models.Exchange
	if err := json.Unmarshal([]byte(payload), &ex); err != nil {
		p.redis.RPush(ctx, FailedQueue, payload)
		return fmt.Errorf("failed to parse exchange: %w", err)
	}

	// Try to acquire lock
	lockKey := fmt.Sprintf("transcript_lock:%s", ex.ID.String())
	locked, err := p.redis.SetNX(ctx, lockKey, "1", lockTTL).Result()
	if err != nil {
		p.redis.RPush(ctx, FailedQueue, payload)
		return fmt.Errorf("failed to lock exchange %s: %w", ex.ID, err)
	}
	if !locked {
		return nil // Another worker has this exchange
	}
	defer p.redis.Del(ctx, lockKey)

	if err := p.repo.Create(ctx, &ex); err != nil {
		p.redis.RPush(ctx, FailedQueue, payload)
		return fmt.Errorf("failed to store exchange %s: %w", ex.ID, err)
	}
	return nil
}
