package core

import "context"

// Provider status ids. Accepted is the only success code; anything at or
// below Processing means still queued/processing.
const (
	StatusInQueue    = 1
	StatusProcessing = 2
	StatusAccepted   = 3
)

type SubmissionRequest struct {
	LanguageID int    `json:"language_id"`
	SourceCode string `json:"source_code"`
	Stdin      string `json:"stdin"`
}

type SubmissionResult struct {
	StatusID      int    `json:"-"`
	Stdout        string `json:"stdout"`
	Stderr        string `json:"stderr"`
	CompileOutput string `json:"compile_output"`
}

// Diagnostics returns stderr, falling back to the compiler output.
func (r SubmissionResult) Diagnostics() string {
	if r.Stderr != "" {
		return r.Stderr
	}
	return r.CompileOutput
}

// ExecutionService is the remote execution API. Submit returns the
// provider-assigned job token; Result fetches the current status by
// token.
type ExecutionService interface {
	// Authorized reports whether an access credential is configured.
	Authorized() bool
	Submit(ctx context.Context, req SubmissionRequest) (token string, err error)
	Result(ctx context.Context, token string) (SubmissionResult, error)
}
