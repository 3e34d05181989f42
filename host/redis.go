package host

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/DavideSigurta/Donatio-sub000/sdk"
)

const (
	DefaultStateKey    = "donatio:state"
	DefaultEventStream = "donatio.events"
)

// OpenRedis parses a redis:// URL and checks the server answers.
func OpenRedis(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// RedisStore keeps the state map in one hash.
type RedisStore struct {
	rdb *redis.Client
	key string
}

func NewRedisStore(rdb *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultStateKey
	}
	return &RedisStore{rdb: rdb, key: key}
}

func (s *RedisStore) Load(ctx context.Context) (map[string]string, error) {
	db, err := s.rdb.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis load %s: %w", s.key, err)
	}
	return db, nil
}

// Apply sends the write set as one MULTI/EXEC block.
func (s *RedisStore) Apply(ctx context.Context, changes map[string]*string) error {
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for k, v := range changes {
			if v == nil {
				pipe.HDel(ctx, s.key, k)
				continue
			}
			pipe.HSet(ctx, s.key, k, *v)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis apply %s: %w", s.key, err)
	}
	return nil
}

// RedisEvents publishes every event to a stream, one entry per event with the
// name under "ev" and each attribute as its own field.
type RedisEvents struct {
	rdb     *redis.Client
	stream  string
	timeout time.Duration
	log     *slog.Logger
}

func NewRedisEvents(rdb *redis.Client, stream string, log *slog.Logger) *RedisEvents {
	if stream == "" {
		stream = DefaultEventStream
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &RedisEvents{rdb: rdb, stream: stream, timeout: 2 * time.Second, log: log}
}

// Emit cannot fail the call that produced the event, so errors are logged.
func (r *RedisEvents) Emit(e sdk.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if err := r.Publish(ctx, e); err != nil {
		r.log.Error("event publish failed", "stream", r.stream, "event", e.Name, "err", err)
	}
}

func (r *RedisEvents) Publish(ctx context.Context, e sdk.Event) error {
	values := make(map[string]interface{}, len(e.Attrs)+1)
	values["ev"] = e.Name
	for _, a := range e.Attrs {
		values[a.Key] = a.Value
	}
	_, err := r.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: r.stream,
		Values: values,
	}).Result()
	return err
}
