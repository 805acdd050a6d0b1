package utils

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// OpenRedisPool initializes a Redis connection pool
func OpenRedisPool(dsn string) *redis.Client {
	opt, err := redis.ParseURL(dsn)
	if err != nil {
		log.Fatalf("Failed to parse Redis DSN: %v", err)
	}

	// Configure connection pooling
	opt.PoolSize = 20
	opt.MinIdleConns = 2
	opt.DialTimeout = 5 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(opt)
	if err = client.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Failed to ping redis db 0: %v", err)
	}

	return client
}

// MarkReminderDelivered records that a task's reminder went out and reports
// whether this was the first delivery. The marker keeps a reminder from being
// sent twice when startup rescheduling races an already-queued job. Markers
// expire after a day since due times repeat daily.
func MarkReminderDelivered(client *redis.Client, taskID int) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	key := fmt.Sprintf("reminder_sent:%d", taskID)
	first, err := client.SetNX(ctx, key, time.Now().Format(time.RFC3339), 24*time.Hour).Result()
	if err != nil {
		return false, err
	}
	return first, nil
}
