// Package credentials fetches short-lived connection descriptors from
// the external token issuer.
package credentials

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/huddle-dev/huddle/internal/core"
)

type Client struct {
	endpoint string
	http     *http.Client
}

func NewClient(endpoint string) *Client {
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Fetch requests one descriptor. Every connection attempt gets a fresh
// one; descriptors are never reused across reconnects.
func (c *Client) Fetch(ctx context.Context, req core.CredentialRequest) (core.ConnectionDescriptor, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return core.ConnectionDescriptor{}, &core.ConnectionError{Kind: core.CredentialFetchFailed, Err: err}
	}
	q := u.Query()
	q.Set("roomName", string(req.Session))
	q.Set("participantName", req.ParticipantName)
	if req.Region != "" {
		q.Set("region", req.Region)
	}
	u.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return core.ConnectionDescriptor{}, &core.ConnectionError{Kind: core.CredentialFetchFailed, Err: err}
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return core.ConnectionDescriptor{}, &core.ConnectionError{Kind: core.CredentialFetchFailed, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warn().
			Str("module", "adapters.credentials").
			Str("session", string(req.Session)).
			Str("status", resp.Status).
			Msg("credential fetch rejected")
		return core.ConnectionDescriptor{}, &core.ConnectionError{
			Kind:   core.CredentialFetchFailed,
			Status: resp.Status,
		}
	}

	var desc core.ConnectionDescriptor
	if err := json.NewDecoder(resp.Body).Decode(&desc); err != nil {
		return core.ConnectionDescriptor{}, &core.ConnectionError{
			Kind: core.CredentialFetchFailed,
			Err:  fmt.Errorf("decode response: %w", err),
		}
	}
	return desc, nil
}
