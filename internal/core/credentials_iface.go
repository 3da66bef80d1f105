package core

import (
	"context"

	"github.com/huddle-dev/huddle/internal/domain"
)

// ConnectionDescriptor authorizes exactly one connection attempt. A stale
// descriptor must not be reused across reconnects.
type ConnectionDescriptor struct {
	ServerURL        string `json:"serverUrl"`
	ParticipantToken string `json:"participantToken"`
}

type CredentialRequest struct {
	Session         domain.SessionName
	ParticipantName string
	Region          string
}

// CredentialIssuer is the external token issuer. Non-2xx responses come
// back as ConnectionError{Kind: CredentialFetchFailed} carrying the
// status text.
type CredentialIssuer interface {
	Fetch(ctx context.Context, req CredentialRequest) (ConnectionDescriptor, error)
}
