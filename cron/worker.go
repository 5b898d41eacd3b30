package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"convosched/config"
	auditRepo "convosched/database/repository/audit"
	"convosched/services/dialogue"

	"github.com/hibiken/asynq"
)

const TypeSessionExpire = "session:expire"

type sessionExpirePayload struct {
	SessionID string `json:"sessionId"`
	TurnCount int    `json:"turnCount"`
}

// AsynqExpiryScheduler enqueues delayed idle-expiry sweeps. It implements
// dialogue.ExpiryScheduler.
type AsynqExpiryScheduler struct {
	client *asynq.Client
}

func NewAsynqExpiryScheduler() *AsynqExpiryScheduler {
	return &AsynqExpiryScheduler{
		client: asynq.NewClient(queueRedisOpts()),
	}
}

func (s *AsynqExpiryScheduler) ScheduleExpiry(sessionID string, turnCount int, after time.Duration) error {
	payload, err := json.Marshal(sessionExpirePayload{SessionID: sessionID, TurnCount: turnCount})
	if err != nil {
		return err
	}
	task := asynq.NewTask(TypeSessionExpire, payload)
	_, err = s.client.Enqueue(task, asynq.ProcessIn(after))
	return err
}

// InitExpiryWorker runs the async worker in background. When a session's
// Redis key has been evicted by its idle TTL, the audit transcript is marked
// auto-CANCELLED; the recorded turns are preserved.
func InitExpiryWorker(store dialogue.SessionStore, audit auditRepo.TranscriptRepository) {
	srv := asynq.NewServer(
		queueRedisOpts(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeSessionExpire, handleSessionExpire(store, audit))

	// Start async worker with retry logic
	go func() {
		log.Println("[ExpiryWorker] Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[ExpiryWorker] Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[ExpiryWorker] Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

func handleSessionExpire(store dialogue.SessionStore, audit auditRepo.TranscriptRepository) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p sessionExpirePayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[ExpiryHandler] Invalid payload: %v", err)
			return err
		}

		if _, err := store.Get(ctx, p.SessionID); err == dialogue.ErrSessionNotFound {
			log.Printf("[ExpiryHandler] Session %s evicted after turn %d, marking transcript cancelled", p.SessionID, p.TurnCount)
			return audit.MarkCancelledIfOpen(ctx, p.SessionID)
		} else if err != nil {
			return err
		}

		// Key still live: a later turn refreshed the TTL and armed its own sweep.
		return nil
	}
}

func queueRedisOpts() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}
