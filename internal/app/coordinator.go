// Package app composes the key provisioner, connection manager, document
// bridge and execution relay into one session handle for the surface
// layer.
package app

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/huddle-dev/huddle/internal/app/conn"
	"github.com/huddle-dev/huddle/internal/app/docsync"
	"github.com/huddle-dev/huddle/internal/app/e2ee"
	"github.com/huddle-dev/huddle/internal/app/execrelay"
	"github.com/huddle-dev/huddle/internal/core"
	"github.com/huddle-dev/huddle/internal/domain"
)

// Handle is one participant's live membership in a session.
type Handle struct {
	ID      string
	Session domain.Session
	Choices domain.ParticipantChoices

	conn *conn.Manager
	keys *e2ee.Provisioner // nil when encryption was not requested

	mu      sync.Mutex
	binding *docsync.Binding
	running bool
}

// State exposes the connection state for the surface layer.
func (h *Handle) State() conn.State { return h.conn.State() }

// Encrypted reports whether the media room runs under an installed key.
func (h *Handle) Encrypted() bool {
	return h.keys != nil && h.keys.Context().Enabled()
}

// Coordinator builds and owns the per-session component graph.
type Coordinator struct {
	rooms  core.RoomFactory
	issuer core.CredentialIssuer
	docs   core.DocProvider
	relay  *execrelay.Relay
	jobs   core.JobStore

	reg *Registry
}

func NewCoordinator(rooms core.RoomFactory, issuer core.CredentialIssuer, docs core.DocProvider, relay *execrelay.Relay, jobs core.JobStore) *Coordinator {
	docsync.RegisterModes()
	return &Coordinator{
		rooms:  rooms,
		issuer: issuer,
		docs:   docs,
		relay:  relay,
		jobs:   jobs,
		reg:    NewRegistry(),
	}
}

// Join opens the media room for one participant. Encryption is requested
// by a non-empty session passphrase. Concurrent joins for the same
// session id are serialized; a failed attempt returns the typed error
// and leaves no handle behind.
func (c *Coordinator) Join(ctx context.Context, session domain.Session, choices domain.ParticipantChoices) (*Handle, error) {
	lock := c.reg.JoinLock(session.Name)
	lock.Lock()
	defer lock.Unlock()

	encrypted := session.Passphrase != ""
	var keys *e2ee.Provisioner
	if encrypted {
		keys = e2ee.NewProvisioner()
	}

	m := conn.New(session, c.rooms(), c.issuer, keys)
	if err := m.Join(ctx, choices, encrypted); err != nil {
		return nil, err
	}

	h := &Handle{
		ID:      uuid.NewString(),
		Session: session,
		Choices: choices,
		conn:    m,
		keys:    keys,
	}
	c.reg.Bind(h)
	log.Info().
		Str("module", "app.coordinator").
		Str("handle", h.ID).
		Str("session", string(session.Name)).
		Bool("encrypted", encrypted).
		Msg("joined session")
	return h, nil
}

// Leave tears the handle down: connection manager first, then the
// document binding. Execution jobs in flight are not touched; they
// finish or time out on their own.
func (c *Coordinator) Leave(h *Handle) {
	h.conn.Leave()

	h.mu.Lock()
	binding := h.binding
	h.binding = nil
	h.mu.Unlock()
	if binding != nil {
		binding.Detach()
	}

	c.reg.Unbind(h.ID)
	log.Info().
		Str("module", "app.coordinator").
		Str("handle", h.ID).
		Str("session", string(h.Session.Name)).
		Msg("left session")
}

// AttachDocument binds the handle's editable surface to the session's
// shared document. One surface per handle; a second attach conflicts.
func (c *Coordinator) AttachDocument(h *Handle, surface core.EditorSurface) (*docsync.Binding, error) {
	bridge := c.reg.BridgeFor(h.Session.Name, func() *docsync.Bridge {
		return docsync.NewBridge(
			h.Session.Name,
			c.docs.Text(h.Session.Name),
			c.docs.Awareness(h.Session.Name),
		)
	})

	// The slot check and the assignment stay under one critical section
	// so concurrent attaches cannot both pass the nil check and leak a
	// binding.
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.binding != nil {
		return nil, &core.SyncError{Kind: core.AttachConflict}
	}

	binding, err := bridge.Attach(surface, core.AwarenessState{
		Name:  h.Choices.Username,
		Color: colorFor(h.ID),
	})
	if err != nil {
		return nil, err
	}

	h.binding = binding
	return binding, nil
}

// DetachDocument drops the handle's binding, if any. Idempotent.
func (c *Coordinator) DetachDocument(h *Handle) {
	h.mu.Lock()
	binding := h.binding
	h.binding = nil
	h.mu.Unlock()
	if binding != nil {
		binding.Detach()
	}
}

// RunCode relays the snippet to the execution service. At most one run
// per handle is in flight; a second one is rejected. Terminal jobs that
// reached the provider are persisted for later retrieval by token.
func (c *Coordinator) RunCode(ctx context.Context, h *Handle, source string, lang domain.Language) (*domain.ExecutionJob, error) {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return nil, ErrRunInFlight
	}
	h.running = true
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		h.running = false
		h.mu.Unlock()
	}()

	if strings.TrimSpace(source) == "" {
		job := domain.NewExecutionJob(source, lang)
		job.Status = domain.JobFailed
		job.Stderr = "No code to execute"
		job.ExitCode = 1
		return job, nil
	}

	job, err := c.relay.Submit(ctx, source, lang)
	if job.Token != "" && job.Status.Terminal() {
		if serr := c.jobs.Save(ctx, job); serr != nil {
			log.Warn().
				Str("module", "app.coordinator").
				Str("job", job.ID).
				Err(serr).
				Msg("persist job result")
		}
	}
	return job, err
}

// Job retrieves a persisted terminal job by provider token.
func (c *Coordinator) Job(ctx context.Context, token string) (*domain.ExecutionJob, error) {
	return c.jobs.Get(ctx, token)
}

// Sessions lists active sessions with member counts.
func (c *Coordinator) Sessions() []SessionInfo { return c.reg.Sessions() }

// Handle resolves a handle id from the registry.
func (c *Coordinator) Handle(id string) (*Handle, bool) { return c.reg.Get(id) }

// colorFor picks a stable marker color for a handle.
func colorFor(id string) string {
	palette := []string{"#f44336", "#2196f3", "#4caf50", "#ff9800", "#9c27b0", "#00bcd4"}
	var sum int
	for _, r := range id {
		sum += int(r)
	}
	return palette[sum%len(palette)]
}
