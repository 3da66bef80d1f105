package core

import (
	"context"
	"errors"

	"github.com/huddle-dev/huddle/internal/domain"
)

// ErrJobNotFound is returned when no job exists for the given token.
var ErrJobNotFound = errors.New("job not found")

// JobStore holds terminal execution jobs keyed by provider token.
type JobStore interface {
	Save(ctx context.Context, job *domain.ExecutionJob) error
	Get(ctx context.Context, token string) (*domain.ExecutionJob, error)
}
