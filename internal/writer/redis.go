// internal/writer/redis.go
package writer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/tamzrod/mate3-sunspec/internal/config"
	"github.com/tamzrod/mate3-sunspec/internal/poller"
)

// redisClient is the subset of *redis.Client the sink uses.
type redisClient interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	LTrim(ctx context.Context, key string, start, stop int64) *redis.StatusCmd
	Close() error
}

// RedisWriter publishes one JSON report per cycle on a Pub/Sub channel and
// keeps a capped per-device history list.
type RedisWriter struct {
	client  redisClient
	channel string
	history int64
	log     logrus.FieldLogger
}

// NewRedisWriter connects and pings the server.
func NewRedisWriter(ctx context.Context, c config.RedisConfig, log logrus.FieldLogger) (*RedisWriter, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     c.Addr,
		Password: c.Password,
		DB:       c.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("writer redis: ping %s: %w", c.Addr, err)
	}

	log.WithField("addr", c.Addr).Info("redis connected")

	return newRedisWriter(client, c.Channel, c.History, log), nil
}

func newRedisWriter(client redisClient, channel string, history int64, log logrus.FieldLogger) *RedisWriter {
	return &RedisWriter{
		client:  client,
		channel: channel,
		history: history,
		log:     log,
	}
}

// HistoryKey is the list holding recent reports for one device.
func HistoryKey(deviceID string) string {
	return fmt.Sprintf("mate3:%s:reports", deviceID)
}

// Write publishes the report. History failures are logged, not returned.
func (w *RedisWriter) Write(ctx context.Context, res poller.PollResult) error {
	payload, err := json.Marshal(NewReport(res))
	if err != nil {
		return fmt.Errorf("writer redis: marshal: %w", err)
	}

	if err := w.client.Publish(ctx, w.channel, payload).Err(); err != nil {
		return fmt.Errorf("writer redis: publish: %w", err)
	}

	if w.history <= 0 {
		return nil
	}

	key := HistoryKey(res.DeviceID)
	if err := w.client.LPush(ctx, key, payload).Err(); err != nil {
		w.log.WithError(err).WithField("key", key).Warn("redis history push failed")
		return nil
	}
	if err := w.client.LTrim(ctx, key, 0, w.history-1).Err(); err != nil {
		w.log.WithError(err).WithField("key", key).Warn("redis history trim failed")
	}

	return nil
}

// Close closes the connection.
func (w *RedisWriter) Close() error {
	return w.client.Close()
}
