package domain

import (
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
	JobTimedOut  JobStatus = "timed_out"
)

// Terminal reports whether the status is final. A terminal job is never
// retried automatically.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobSucceeded, JobFailed, JobTimedOut:
		return true
	}
	return false
}

// ExecutionJob is one remotely executed snippet. Token is assigned by the
// execution provider on submit and stays empty when submission never
// reached the provider.
type ExecutionJob struct {
	ID          string    `json:"id"`
	Token       string    `json:"token,omitempty"`
	Language    Language  `json:"language"`
	Source      string    `json:"-"`
	Status      JobStatus `json:"status"`
	Stdout      string    `json:"stdout"`
	Stderr      string    `json:"stderr"`
	ExitCode    int       `json:"exit_code"`
	Error       string    `json:"error,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}

func NewExecutionJob(source string, lang Language) *ExecutionJob {
	return &ExecutionJob{
		ID:          uuid.NewString(),
		Language:    lang,
		Source:      source,
		Status:      JobPending,
		SubmittedAt: time.Now(),
	}
}

// Fail marks the job failed with a relay-level error message. Provider
// diagnostics go to Stderr instead, see the relay.
func (j *ExecutionJob) Fail(msg string) *ExecutionJob {
	j.Status = JobFailed
	j.Error = msg
	j.ExitCode = 1
	return j
}
