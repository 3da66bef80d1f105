package core

import (
	"context"

	"github.com/huddle-dev/huddle/internal/domain"
)

// Unsubscribe removes a previously registered handler. Implementations
// must tolerate being called more than once.
type Unsubscribe func()

type RoomEventKind int

const (
	EventDisconnected RoomEventKind = iota
	EventEncryptionError
	EventMediaDeviceError
)

func (k RoomEventKind) String() string {
	switch k {
	case EventDisconnected:
		return "disconnected"
	case EventEncryptionError:
		return "encryption_error"
	case EventMediaDeviceError:
		return "media_device_error"
	}
	return "unknown"
}

// RoomEvent is emitted by the media provider after the room is connected.
type RoomEvent struct {
	Kind RoomEventKind
	Err  error
}

// ConnectOptions is the per-attempt room configuration derived from the
// session and participant choices.
type ConnectOptions struct {
	Codec         domain.Codec
	Quality       domain.QualityTier
	Encrypted     bool
	AutoSubscribe bool
}

// MediaRoom is the conferencing provider's contract, consumed as a black
// box. Connect performs the handshake against one ConnectionDescriptor;
// a descriptor is single-use and a reconnect needs a fresh one.
type MediaRoom interface {
	// SupportsE2EE reports whether the runtime can encrypt media frames.
	SupportsE2EE() bool
	// SetEncryptionKey installs the session key. Must succeed before
	// EnableEncryption is called.
	SetEncryptionKey(key []byte) error
	EnableEncryption() error

	Connect(ctx context.Context, desc ConnectionDescriptor, opts ConnectOptions) error
	// Subscribe registers an event handler and returns its unsubscribe.
	Subscribe(fn func(RoomEvent)) Unsubscribe

	EnableCamera(ctx context.Context, deviceID string) error
	EnableMicrophone(ctx context.Context, deviceID string) error

	Disconnect()
}

// RoomFactory builds a fresh MediaRoom for one connection attempt.
type RoomFactory func() MediaRoom
