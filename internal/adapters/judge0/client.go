// Package judge0 is the remote execution API client.
package judge0

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/huddle-dev/huddle/internal/core"
)

const DefaultBaseURL = "https://judge0-ce.p.rapidapi.com"

type Client struct {
	baseURL string
	apiKey  string
	apiHost string
	http    *http.Client
}

func NewClient(baseURL, apiKey, apiHost string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		apiHost: apiHost,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// Authorized reports whether an access credential is configured. The
// relay checks this before issuing any request.
func (c *Client) Authorized() bool { return c.apiKey != "" }

func (c *Client) headers(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-RapidAPI-Host", c.apiHost)
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
}

type submitResponse struct {
	Token string `json:"token"`
}

// Submit posts the submission and returns the provider-assigned token.
func (c *Client) Submit(ctx context.Context, sub core.SubmissionRequest) (string, error) {
	body, err := json.Marshal(sub)
	if err != nil {
		return "", err
	}

	u := c.baseURL + "/submissions?base64_encoded=false&wait=false"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	c.headers(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("API error: %s", resp.Status)
	}

	var out submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode submit response: %w", err)
	}
	return out.Token, nil
}

type statusResponse struct {
	Status struct {
		ID int `json:"id"`
	} `json:"status"`
	Stdout        string `json:"stdout"`
	Stderr        string `json:"stderr"`
	CompileOutput string `json:"compile_output"`
}

// Result fetches the submission status by token.
func (c *Client) Result(ctx context.Context, token string) (core.SubmissionResult, error) {
	u := fmt.Sprintf("%s/submissions/%s?base64_encoded=false&fields=stdout,stderr,status_id,compile_output,status", c.baseURL, token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return core.SubmissionResult{}, err
	}
	c.headers(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return core.SubmissionResult{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return core.SubmissionResult{}, fmt.Errorf("API error: %s", resp.Status)
	}

	var out statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return core.SubmissionResult{}, fmt.Errorf("decode status response: %w", err)
	}
	return core.SubmissionResult{
		StatusID:      out.Status.ID,
		Stdout:        out.Stdout,
		Stderr:        out.Stderr,
		CompileOutput: out.CompileOutput,
	}, nil
}
