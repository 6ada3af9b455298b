package database

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ConnectRedis returns a client for redisURL, or nil when no URL is
// configured. Callers treat a nil client as "redis-backed features off".
func ConnectRedis(redisURL string) *redis.Client {
	if redisURL == "" {
		logrus.Warn("REDIS_URL not set, token revocation and live notifications are disabled")
		return nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		logrus.WithError(err).Fatal("invalid REDIS_URL")
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logrus.WithError(err).Fatal("failed to connect to redis")
	}

	return client
}
