// Package conn owns the media-room connection lifecycle for one session:
// key setup gate, credential fetch, connect handshake, device enablement
// and teardown.
package conn

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/huddle-dev/huddle/internal/app/e2ee"
	"github.com/huddle-dev/huddle/internal/core"
	"github.com/huddle-dev/huddle/internal/domain"
)

type State int

const (
	StateIdle State = iota
	StateKeySetup
	StateConnecting
	StateConnected
	StateDisconnected
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateKeySetup:
		return "key_setup"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

var (
	// ErrJoinInFlight is returned when a join attempt is started while
	// another one for the same session has not resolved yet.
	ErrJoinInFlight = errors.New("join already in flight")
	// ErrNotIdle is returned when Join is called on a used-up manager.
	// Failed and Disconnected are terminal for a connection attempt;
	// recovery needs a fresh manager with a fresh descriptor.
	ErrNotIdle = errors.New("connection attempt already consumed")
)

// Manager drives one connection attempt through
// Idle -> KeySetup? -> Connecting -> Connected -> Disconnected,
// with any state going to Failed on an unrecoverable error.
type Manager struct {
	session domain.Session
	room    core.MediaRoom
	issuer  core.CredentialIssuer
	keys    *e2ee.Provisioner
	enc     *e2ee.Context // referenced, owned by keys

	mu      sync.Mutex
	state   State
	joining bool
	unsubs  []core.Unsubscribe

	teardown sync.Once

	// onEvent receives room events and non-fatal device errors after
	// Connected. Optional.
	onEvent func(core.RoomEvent)
}

func New(session domain.Session, room core.MediaRoom, issuer core.CredentialIssuer, keys *e2ee.Provisioner) *Manager {
	m := &Manager{
		session: session,
		room:    room,
		issuer:  issuer,
		keys:    keys,
		state:   StateIdle,
	}
	if keys != nil {
		m.enc = keys.Context()
	}
	return m
}

// OnEvent sets the caller's event sink. Must be set before Join.
func (m *Manager) OnEvent(fn func(core.RoomEvent)) { m.onEvent = fn }

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	prev := m.state
	m.state = s
	m.mu.Unlock()
	log.Info().
		Str("module", "app.conn").
		Str("session", string(m.session.Name)).
		Str("from", prev.String()).
		Str("to", s.String()).
		Msg("state transition")
}

// Join runs the full connection attempt. Transitions are strictly
// sequential: no transition begins before the prior asynchronous step
// resolves. Event subscriptions are registered only once Connected is
// reached, so teardown never races against unregistered handlers.
func (m *Manager) Join(ctx context.Context, choices domain.ParticipantChoices, encrypted bool) error {
	m.mu.Lock()
	if m.joining {
		m.mu.Unlock()
		return ErrJoinInFlight
	}
	if m.state != StateIdle {
		m.mu.Unlock()
		return ErrNotIdle
	}
	m.joining = true
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.joining = false
		m.mu.Unlock()
	}()

	if encrypted {
		if err := m.keySetup(); err != nil {
			return m.fail(err)
		}
	}

	m.setState(StateConnecting)

	// A descriptor is single-use: fetched fresh for every attempt.
	desc, err := m.issuer.Fetch(ctx, core.CredentialRequest{
		Session:         m.session.Name,
		ParticipantName: choices.Username,
		Region:          m.session.Region,
	})
	if err != nil {
		return m.fail(err)
	}

	if err := m.room.Connect(ctx, desc, m.connectOptions(encrypted)); err != nil {
		return m.fail(&core.ConnectionError{Kind: core.HandshakeFailed, Err: err})
	}

	unsub := m.room.Subscribe(m.handleRoomEvent)
	m.mu.Lock()
	m.unsubs = append(m.unsubs, unsub)
	m.mu.Unlock()

	m.setState(StateConnected)

	m.enableDevices(ctx, choices)
	return nil
}

// keySetup gates Connecting on a successfully installed key.
func (m *Manager) keySetup() error {
	m.setState(StateKeySetup)

	if !m.room.SupportsE2EE() {
		return &core.EncryptionError{Kind: core.DeviceUnsupported}
	}
	if err := m.keys.Install(m.session.Passphrase); err != nil {
		return &core.EncryptionError{Kind: core.InstallFailed, Err: err}
	}
	if err := m.room.SetEncryptionKey(m.enc.Key()); err != nil {
		return &core.EncryptionError{Kind: core.InstallFailed, Err: err}
	}
	if err := m.room.EnableEncryption(); err != nil {
		return &core.EncryptionError{Kind: core.InstallFailed, Err: err}
	}
	// Only now may the room be considered encrypted.
	m.enc.MarkEnabled()
	return nil
}

func (m *Manager) connectOptions(encrypted bool) core.ConnectOptions {
	codec := m.session.Codec
	// The provider cannot end-to-end encrypt vp9/av1 streams; drop the
	// preference and let it pick.
	if encrypted && (codec == domain.CodecVP9 || codec == domain.CodecAV1) {
		codec = ""
	}
	return core.ConnectOptions{
		Codec:         codec,
		Quality:       m.session.Quality,
		Encrypted:     encrypted,
		AutoSubscribe: true,
	}
}

// enableDevices turns local devices on per the participant choices,
// camera first, then microphone. Each failure is reported on its own and
// does not roll back the other device.
func (m *Manager) enableDevices(ctx context.Context, choices domain.ParticipantChoices) {
	if choices.VideoEnabled {
		if err := m.room.EnableCamera(ctx, choices.VideoDeviceID); err != nil {
			m.reportDeviceError("camera", err)
		}
	}
	if choices.AudioEnabled {
		if err := m.room.EnableMicrophone(ctx, choices.AudioDeviceID); err != nil {
			m.reportDeviceError("microphone", err)
		}
	}
}

func (m *Manager) reportDeviceError(device string, err error) {
	log.Warn().
		Str("module", "app.conn").
		Str("session", string(m.session.Name)).
		Str("device", device).
		Err(err).
		Msg("device enable failed")
	if m.onEvent != nil {
		m.onEvent(core.RoomEvent{
			Kind: core.EventMediaDeviceError,
			Err:  &core.ConnectionError{Kind: core.DeviceError, Err: err},
		})
	}
}

func (m *Manager) handleRoomEvent(ev core.RoomEvent) {
	switch ev.Kind {
	case core.EventDisconnected:
		// Remote side closed the session.
		m.unregister()
		m.setState(StateDisconnected)
	case core.EventEncryptionError:
		// Terminal: release the room here instead of waiting for an
		// explicit Leave.
		m.unregister()
		m.room.Disconnect()
		m.setState(StateFailed)
	case core.EventMediaDeviceError:
		// Non-fatal, reported only.
	}
	if m.onEvent != nil {
		m.onEvent(ev)
	}
}

// fail moves to Failed and runs the single teardown path. The typed
// error is returned to the caller, never thrown across the async
// boundary.
func (m *Manager) fail(err error) error {
	log.Error().
		Str("module", "app.conn").
		Str("session", string(m.session.Name)).
		Err(err).
		Msg("join attempt failed")
	m.unregister()
	m.setState(StateFailed)
	return err
}

// Leave is the explicit teardown. Safe at any point of the attempt,
// including before Connected when nothing was registered yet.
func (m *Manager) Leave() {
	m.unregister()
	m.room.Disconnect()
	m.mu.Lock()
	terminal := m.state == StateFailed
	m.mu.Unlock()
	if !terminal {
		m.setState(StateDisconnected)
	}
}

// unregister drops all event subscriptions exactly once. Reachable from
// every terminal state; a no-op when none were registered.
func (m *Manager) unregister() {
	m.teardown.Do(func() {
		m.mu.Lock()
		unsubs := m.unsubs
		m.unsubs = nil
		m.mu.Unlock()
		for _, u := range unsubs {
			u()
		}
	})
}
