// Package jobstore persists terminal execution jobs keyed by provider
// token.
package jobstore

import (
	"context"
	"sync"

	"github.com/huddle-dev/huddle/internal/core"
	"github.com/huddle-dev/huddle/internal/domain"
)

// Memory is the default in-process store.
type Memory struct {
	mu   sync.RWMutex
	jobs map[string]*domain.ExecutionJob
}

func NewMemory() *Memory {
	return &Memory{jobs: make(map[string]*domain.ExecutionJob)}
}

func (m *Memory) Save(_ context.Context, job *domain.ExecutionJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.Token] = job
	return nil
}

func (m *Memory) Get(_ context.Context, token string) (*domain.ExecutionJob, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[token]
	if !ok {
		return nil, core.ErrJobNotFound
	}
	return job, nil
}
