// Package invalidate tells the rendering side that cached views are stale.
// Signals are fire-and-forget: a failed delivery is logged and counted, never
// returned to the mutation that triggered it.
package invalidate

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sundayezeilo/readit/internal/metrics"
)

// Notifier marks a view path as stale.
type Notifier interface {
	Invalidate(ctx context.Context, path string)
}

// LogNotifier only records the signal in the process log.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Invalidate(ctx context.Context, path string) {
	n.logger.DebugContext(ctx, "view invalidated", "path", path)
	metrics.InvalidationsTotal.WithLabelValues("log", "ok").Inc()
}

// Message is the payload published for every signal.
type Message struct {
	Path string    `json:"path"`
	At   time.Time `json:"at"`
}

// Publisher is the part of *redis.Client the notifier needs.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisNotifier publishes signals on a Redis pub/sub channel.
type RedisNotifier struct {
	pub     Publisher
	channel string
	logger  *slog.Logger
	now     func() time.Time
}

// RedisConfig holds configuration for the Redis notifier.
type RedisConfig struct {
	Publisher Publisher
	Channel   string
	Logger    *slog.Logger
	Now       func() time.Time
}

// NewRedisNotifier creates a RedisNotifier.
func NewRedisNotifier(cfg RedisConfig) *RedisNotifier {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &RedisNotifier{
		pub:     cfg.Publisher,
		channel: cfg.Channel,
		logger:  logger,
		now:     now,
	}
}

func (n *RedisNotifier) Invalidate(ctx context.Context, path string) {
	payload, err := json.Marshal(Message{Path: path, At: n.now().UTC()})
	if err != nil {
		n.fail(ctx, path, err)
		return
	}

	// The request may already be finishing; delivery should not depend on it.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()

	if err := n.pub.Publish(pubCtx, n.channel, payload).Err(); err != nil {
		n.fail(ctx, path, err)
		return
	}

	n.logger.DebugContext(ctx, "view invalidated",
		"path", path,
		"channel", n.channel,
	)
	metrics.InvalidationsTotal.WithLabelValues("redis", "ok").Inc()
}

func (n *RedisNotifier) fail(ctx context.Context, path string, err error) {
	n.logger.WarnContext(ctx, "view invalidation failed",
		"path", path,
		"channel", n.channel,
		"error", err.Error(),
	)
	metrics.InvalidationsTotal.WithLabelValues("redis", "error").Inc()
}

// NewRedisClient parses url and verifies the server answers.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
