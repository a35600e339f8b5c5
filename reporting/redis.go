package reporting

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/zeu5/frozenlake-rl/types"
)

// Event is the message published for every sample and evaluation
type Event struct {
	Experiment string  `json:"experiment"`
	Kind       string  `json:"kind"`
	Episode    int     `json:"episode,omitempty"`
	WinRate    float64 `json:"win_rate"`
}

const (
	SampleEvent     = "sample"
	EvaluationEvent = "evaluation"
)

type publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisPublisher publishes the win rate progress on a redis channel
type RedisPublisher struct {
	client  publisher
	channel string
	ctx     context.Context
	logger  *slog.Logger
}

var _ types.Listener = &RedisPublisher{}

// NewRedisPublisher connects to addr and checks the server answers
func NewRedisPublisher(ctx context.Context, addr, channel string, logger *slog.Logger) (*RedisPublisher, error) {
	cli := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if err := cli.Ping(ctx).Err(); err != nil {
		cli.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}
	return newRedisPublisher(ctx, cli, channel, logger), nil
}

func newRedisPublisher(ctx context.Context, client publisher, channel string, logger *slog.Logger) *RedisPublisher {
	return &RedisPublisher{
		client:  client,
		channel: channel,
		ctx:     ctx,
		logger:  logger,
	}
}

func (r *RedisPublisher) publish(e Event) {
	bs, err := json.Marshal(e)
	if err != nil {
		r.logger.Error("encoding event", "error", err)
		return
	}
	if err := r.client.Publish(r.ctx, r.channel, bs).Err(); err != nil {
		r.logger.Warn("publishing event", "channel", r.channel, "error", err)
	}
}

func (r *RedisPublisher) EpisodeDone(_ string, _ *types.EpisodeContext) {}

func (r *RedisPublisher) WinRateSampled(name string, sample types.WinRateSample) {
	r.publish(Event{
		Experiment: name,
		Kind:       SampleEvent,
		Episode:    sample.Episode,
		WinRate:    sample.WinRate,
	})
}

func (r *RedisPublisher) Evaluated(name string, winRate float64) {
	r.publish(Event{
		Experiment: name,
		Kind:       EvaluationEvent,
		WinRate:    winRate,
	})
}

func (r *RedisPublisher) Close() error {
	if c, ok := r.client.(*redis.Client); ok {
		return c.Close()
	}
	return nil
}
