package jobstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/huddle-dev/huddle/internal/core"
	"github.com/huddle-dev/huddle/internal/domain"
)

const redisTTL = 24 * time.Hour

// Redis keeps job results across process restarts. Selected by config
// when a redis address is set.
type Redis struct {
	rdb *redis.Client
}

func NewRedis(addr string) *Redis {
	return &Redis{rdb: redis.NewClient(&redis.Options{Addr: addr})}
}

func key(token string) string { return "huddle:job:" + token }

func (r *Redis) Save(ctx context.Context, job *domain.ExecutionJob) error {
	b, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	return r.rdb.Set(ctx, key(job.Token), b, redisTTL).Err()
}

func (r *Redis) Get(ctx context.Context, token string) (*domain.ExecutionJob, error) {
	b, err := r.rdb.Get(ctx, key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, core.ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}
	var job domain.ExecutionJob
	if err := json.Unmarshal(b, &job); err != nil {
		return nil, fmt.Errorf("unmarshal job: %w", err)
	}
	return &job, nil
}
