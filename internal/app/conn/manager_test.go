package conn

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/huddle-dev/huddle/internal/app/e2ee"
	"github.com/huddle-dev/huddle/internal/core"
	"github.com/huddle-dev/huddle/internal/core/mocks"
	"github.com/huddle-dev/huddle/internal/domain"
)

func testSession(t *testing.T, passphrase string) domain.Session {
	s, err := domain.NewSession("standup")
	require.NoError(t, err)
	s.Passphrase = passphrase
	return *s
}

func testChoices(t *testing.T, video, audio bool) domain.ParticipantChoices {
	c, err := domain.NewParticipantChoices("alice", video, audio)
	require.NoError(t, err)
	return c
}

func noopUnsub() {}

func TestJoinPlainSkipsKeySetup(t *testing.T) {
	ctrl := gomock.NewController(t)
	room := mocks.NewMockMediaRoom(ctrl)
	issuer := mocks.NewMockCredentialIssuer(ctrl)

	desc := core.ConnectionDescriptor{ServerURL: "wss://media.example", ParticipantToken: "jwt"}
	issuer.EXPECT().Fetch(gomock.Any(), core.CredentialRequest{
		Session:         "standup",
		ParticipantName: "alice",
	}).Return(desc, nil)
	// No SupportsE2EE/SetEncryptionKey calls expected at all.
	room.EXPECT().Connect(gomock.Any(), desc, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ core.ConnectionDescriptor, opts core.ConnectOptions) error {
			assert.False(t, opts.Encrypted)
			assert.Equal(t, domain.CodecVP9, opts.Codec)
			return nil
		})
	room.EXPECT().Subscribe(gomock.Any()).Return(core.Unsubscribe(noopUnsub))

	m := New(testSession(t, ""), room, issuer, nil)
	err := m.Join(context.Background(), testChoices(t, false, false), false)

	require.NoError(t, err)
	assert.Equal(t, StateConnected, m.State())
}

func TestJoinEncryptedInstallsKeyBeforeConnect(t *testing.T) {
	ctrl := gomock.NewController(t)
	room := mocks.NewMockMediaRoom(ctrl)
	issuer := mocks.NewMockCredentialIssuer(ctrl)
	keys := e2ee.NewProvisioner()

	gomock.InOrder(
		room.EXPECT().SupportsE2EE().Return(true),
		room.EXPECT().SetEncryptionKey(gomock.Len(32)).Return(nil),
		room.EXPECT().EnableEncryption().Return(nil),
		issuer.EXPECT().Fetch(gomock.Any(), gomock.Any()).Return(core.ConnectionDescriptor{}, nil),
		room.EXPECT().Connect(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ core.ConnectionDescriptor, opts core.ConnectOptions) error {
				assert.True(t, opts.Encrypted)
				// vp9 cannot be encrypted; the preference is dropped.
				assert.Equal(t, domain.Codec(""), opts.Codec)
				return nil
			}),
		room.EXPECT().Subscribe(gomock.Any()).Return(core.Unsubscribe(noopUnsub)),
	)

	m := New(testSession(t, "hunter2"), room, issuer, keys)
	err := m.Join(context.Background(), testChoices(t, false, false), true)

	require.NoError(t, err)
	assert.Equal(t, StateConnected, m.State())
	assert.True(t, keys.Context().Enabled())
}

func TestJoinDeviceUnsupportedNeverSubscribes(t *testing.T) {
	ctrl := gomock.NewController(t)
	room := mocks.NewMockMediaRoom(ctrl)
	issuer := mocks.NewMockCredentialIssuer(ctrl)

	room.EXPECT().SupportsE2EE().Return(false)
	// No Connect, no Subscribe: the attempt dies in key setup.

	m := New(testSession(t, "hunter2"), room, issuer, e2ee.NewProvisioner())
	err := m.Join(context.Background(), testChoices(t, false, false), true)

	var encErr *core.EncryptionError
	require.ErrorAs(t, err, &encErr)
	assert.Equal(t, core.DeviceUnsupported, encErr.Kind)
	assert.Equal(t, StateFailed, m.State())
}

func TestJoinCredentialFetchFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	room := mocks.NewMockMediaRoom(ctrl)
	issuer := mocks.NewMockCredentialIssuer(ctrl)

	wantErr := &core.ConnectionError{Kind: core.CredentialFetchFailed, Status: "502 Bad Gateway"}
	issuer.EXPECT().Fetch(gomock.Any(), gomock.Any()).Return(core.ConnectionDescriptor{}, wantErr)

	m := New(testSession(t, ""), room, issuer, nil)
	err := m.Join(context.Background(), testChoices(t, false, false), false)

	var connErr *core.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, core.CredentialFetchFailed, connErr.Kind)
	assert.Equal(t, StateFailed, m.State())
}

func TestJoinHandshakeFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	room := mocks.NewMockMediaRoom(ctrl)
	issuer := mocks.NewMockCredentialIssuer(ctrl)

	issuer.EXPECT().Fetch(gomock.Any(), gomock.Any()).Return(core.ConnectionDescriptor{}, nil)
	room.EXPECT().Connect(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("dial tcp: refused"))

	m := New(testSession(t, ""), room, issuer, nil)
	err := m.Join(context.Background(), testChoices(t, false, false), false)

	var connErr *core.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, core.HandshakeFailed, connErr.Kind)
	assert.Equal(t, StateFailed, m.State())
}

func TestJoinCameraFailureDoesNotBlockMicrophone(t *testing.T) {
	ctrl := gomock.NewController(t)
	room := mocks.NewMockMediaRoom(ctrl)
	issuer := mocks.NewMockCredentialIssuer(ctrl)

	issuer.EXPECT().Fetch(gomock.Any(), gomock.Any()).Return(core.ConnectionDescriptor{}, nil)
	room.EXPECT().Connect(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	room.EXPECT().Subscribe(gomock.Any()).Return(core.Unsubscribe(noopUnsub))
	gomock.InOrder(
		room.EXPECT().EnableCamera(gomock.Any(), "").Return(errors.New("device busy")),
		room.EXPECT().EnableMicrophone(gomock.Any(), "").Return(nil),
	)

	var events []core.RoomEvent
	m := New(testSession(t, ""), room, issuer, nil)
	m.OnEvent(func(ev core.RoomEvent) { events = append(events, ev) })

	err := m.Join(context.Background(), testChoices(t, true, true), false)

	require.NoError(t, err)
	assert.Equal(t, StateConnected, m.State())
	require.Len(t, events, 1)
	assert.Equal(t, core.EventMediaDeviceError, events[0].Kind)
}

func TestJoinRejectedWhenNotIdle(t *testing.T) {
	ctrl := gomock.NewController(t)
	room := mocks.NewMockMediaRoom(ctrl)
	issuer := mocks.NewMockCredentialIssuer(ctrl)

	issuer.EXPECT().Fetch(gomock.Any(), gomock.Any()).Return(core.ConnectionDescriptor{}, nil)
	room.EXPECT().Connect(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	room.EXPECT().Subscribe(gomock.Any()).Return(core.Unsubscribe(noopUnsub))

	m := New(testSession(t, ""), room, issuer, nil)
	require.NoError(t, m.Join(context.Background(), testChoices(t, false, false), false))

	err := m.Join(context.Background(), testChoices(t, false, false), false)
	assert.ErrorIs(t, err, ErrNotIdle)
}

func TestLeaveBeforeConnectedIsSafe(t *testing.T) {
	ctrl := gomock.NewController(t)
	room := mocks.NewMockMediaRoom(ctrl)
	issuer := mocks.NewMockCredentialIssuer(ctrl)

	room.EXPECT().Disconnect().Times(2)

	m := New(testSession(t, ""), room, issuer, nil)
	m.Leave()
	m.Leave()

	assert.Equal(t, StateDisconnected, m.State())
}

func TestLeaveUnsubscribesOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	room := mocks.NewMockMediaRoom(ctrl)
	issuer := mocks.NewMockCredentialIssuer(ctrl)

	var unsubCount int
	issuer.EXPECT().Fetch(gomock.Any(), gomock.Any()).Return(core.ConnectionDescriptor{}, nil)
	room.EXPECT().Connect(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	room.EXPECT().Subscribe(gomock.Any()).Return(core.Unsubscribe(func() { unsubCount++ }))
	room.EXPECT().Disconnect().Times(2)

	m := New(testSession(t, ""), room, issuer, nil)
	require.NoError(t, m.Join(context.Background(), testChoices(t, false, false), false))

	m.Leave()
	m.Leave()

	assert.Equal(t, 1, unsubCount)
	assert.Equal(t, StateDisconnected, m.State())
}

func TestRemoteDisconnectEvent(t *testing.T) {
	ctrl := gomock.NewController(t)
	room := mocks.NewMockMediaRoom(ctrl)
	issuer := mocks.NewMockCredentialIssuer(ctrl)

	var handler func(core.RoomEvent)
	issuer.EXPECT().Fetch(gomock.Any(), gomock.Any()).Return(core.ConnectionDescriptor{}, nil)
	room.EXPECT().Connect(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	room.EXPECT().Subscribe(gomock.Any()).
		DoAndReturn(func(fn func(core.RoomEvent)) core.Unsubscribe {
			handler = fn
			return noopUnsub
		})

	var forwarded []core.RoomEvent
	m := New(testSession(t, ""), room, issuer, nil)
	m.OnEvent(func(ev core.RoomEvent) { forwarded = append(forwarded, ev) })
	require.NoError(t, m.Join(context.Background(), testChoices(t, false, false), false))

	handler(core.RoomEvent{Kind: core.EventDisconnected})

	assert.Equal(t, StateDisconnected, m.State())
	require.Len(t, forwarded, 1)
	assert.Equal(t, core.EventDisconnected, forwarded[0].Kind)
}

func TestEncryptionEventFailsConnection(t *testing.T) {
	ctrl := gomock.NewController(t)
	room := mocks.NewMockMediaRoom(ctrl)
	issuer := mocks.NewMockCredentialIssuer(ctrl)

	var handler func(core.RoomEvent)
	issuer.EXPECT().Fetch(gomock.Any(), gomock.Any()).Return(core.ConnectionDescriptor{}, nil)
	room.EXPECT().Connect(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	room.EXPECT().Subscribe(gomock.Any()).
		DoAndReturn(func(fn func(core.RoomEvent)) core.Unsubscribe {
			handler = fn
			return noopUnsub
		})
	var disconnects int
	room.EXPECT().Disconnect().Do(func() { disconnects++ }).Times(2)

	m := New(testSession(t, ""), room, issuer, nil)
	require.NoError(t, m.Join(context.Background(), testChoices(t, false, false), false))

	handler(core.RoomEvent{Kind: core.EventEncryptionError, Err: errors.New("bad frame")})
	assert.Equal(t, StateFailed, m.State())
	// The terminal event releases the room itself, not a later Leave.
	assert.Equal(t, 1, disconnects)

	// Failed is terminal; an explicit leave must not demote it.
	m.Leave()
	assert.Equal(t, StateFailed, m.State())
	assert.Equal(t, 2, disconnects)
}
