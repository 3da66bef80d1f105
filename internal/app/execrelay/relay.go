// Package execrelay submits a source snippet to the external execution
// service and polls it to completion under a fixed timeout/retry budget.
package execrelay

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/huddle-dev/huddle/internal/core"
	"github.com/huddle-dev/huddle/internal/domain"
)

// languageIDs maps recognized languages to the provider's numeric ids.
var languageIDs = map[domain.Language]int{
	domain.LangC:          50, // C (GCC 9.2.0)
	domain.LangCPP:        54, // C++ (GCC 9.2.0)
	domain.LangPython:     71, // Python (3.8.1)
	domain.LangJavaScript: 63, // JavaScript (Node.js 12.14.0)
	domain.LangJava:       62, // Java (OpenJDK 13.0.1)
}

const (
	// Fixed poll policy: 10 attempts at one interval of spacing, no
	// backoff. Timing is observable behavior; do not tune it here.
	defaultPollBudget   = 10
	defaultPollInterval = time.Second
)

// Relay drives one submission at a time per call. It does not
// deduplicate across unrelated invocations; superseding or rejecting a
// concurrent run is the caller's policy.
type Relay struct {
	svc      core.ExecutionService
	budget   int
	interval time.Duration
}

type Option func(*Relay)

// WithPollInterval overrides the poll spacing. Test hook.
func WithPollInterval(d time.Duration) Option {
	return func(r *Relay) { r.interval = d }
}

func New(svc core.ExecutionService, opts ...Option) *Relay {
	r := &Relay{
		svc:      svc,
		budget:   defaultPollBudget,
		interval: defaultPollInterval,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Submit runs the snippet remotely. The returned job is always non-nil;
// relay-level failures additionally return a typed *core.ExecutionError
// and are terminal, never retried. Provider-reported run failures are
// not errors: they land in the job's stderr/exit fields.
func (r *Relay) Submit(ctx context.Context, source string, lang domain.Language) (*domain.ExecutionJob, error) {
	job := domain.NewExecutionJob(source, lang)

	langID, ok := languageIDs[lang]
	if !ok {
		err := &core.ExecutionError{Kind: core.UnsupportedLanguage, Err: fmt.Errorf("unsupported language: %s", lang)}
		job.Fail(err.Error())
		job.Stderr = fmt.Sprintf("Unsupported language: %s", lang)
		return job, err
	}

	if !r.svc.Authorized() {
		err := &core.ExecutionError{Kind: core.MissingCredential}
		return job.Fail(err.Error()), err
	}

	token, err := r.svc.Submit(ctx, core.SubmissionRequest{
		LanguageID: langID,
		SourceCode: source,
		Stdin:      "",
	})
	if err != nil {
		werr := &core.ExecutionError{Kind: core.SubmissionFailed, Err: err}
		return job.Fail(werr.Error()), werr
	}
	if token == "" {
		werr := &core.ExecutionError{Kind: core.ProtocolViolation, Err: fmt.Errorf("submission returned no token")}
		return job.Fail(werr.Error()), werr
	}
	job.Token = token
	job.Status = domain.JobRunning

	return r.poll(ctx, job)
}

// poll fetches the job status by token in a bounded loop: while the
// provider reports queued/processing, wait one interval and retry,
// decrementing the attempt budget. Exhausting the budget marks the job
// timed_out.
func (r *Relay) poll(ctx context.Context, job *domain.ExecutionJob) (*domain.ExecutionJob, error) {
	for attempt := 0; attempt < r.budget; attempt++ {
		res, err := r.svc.Result(ctx, job.Token)
		if err != nil {
			werr := &core.ExecutionError{Kind: core.SubmissionFailed, Err: err}
			return job.Fail(werr.Error()), werr
		}

		if res.StatusID > core.StatusProcessing {
			return r.finish(job, res), nil
		}

		select {
		case <-time.After(r.interval):
		case <-ctx.Done():
			// Caller-initiated abort: stop polling, no further side
			// effects.
			err := ctx.Err()
			log.Info().
				Str("module", "app.execrelay").
				Str("job", job.ID).
				Err(err).
				Msg("poll aborted")
			return job.Fail(err.Error()), err
		}
	}

	job.Status = domain.JobTimedOut
	job.Error = "timed out waiting for execution result"
	job.ExitCode = 1
	werr := &core.ExecutionError{Kind: core.ExecutionTimeout}
	log.Warn().
		Str("module", "app.execrelay").
		Str("job", job.ID).
		Int("attempts", r.budget).
		Msg("poll budget exhausted")
	return job, werr
}

// finish maps the provider's terminal status onto the job. Accepted is
// the only success code; every other terminal status is a failure with
// diagnostics in stderr.
func (r *Relay) finish(job *domain.ExecutionJob, res core.SubmissionResult) *domain.ExecutionJob {
	job.Stdout = res.Stdout
	job.Stderr = res.Diagnostics()
	if res.StatusID == core.StatusAccepted {
		job.Status = domain.JobSucceeded
		job.ExitCode = 0
	} else {
		job.Status = domain.JobFailed
		job.ExitCode = 1
	}
	log.Info().
		Str("module", "app.execrelay").
		Str("job", job.ID).
		Str("status", string(job.Status)).
		Int("provider_status", res.StatusID).
		Msg("job finished")
	return job
}
