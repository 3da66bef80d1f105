// Package media connects to the conferencing provider: signalling over
// websocket, media over a pion PeerConnection. The provider hosts the
// SFU and the roster; this side only holds one participant's connection.
package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/huddle-dev/huddle/internal/core"
)

var (
	ErrNotConnected  = errors.New("room not connected")
	ErrNoKey         = errors.New("no encryption key installed")
	ErrKeyAfterJoin  = errors.New("cannot install key on a connected room")
	errAnswerTimeout = errors.New("timed out waiting for answer")
)

const handshakeTimeout = 15 * time.Second

func DefaultWebRTCConfig() webrtc.Configuration {
	return webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{
			{URLs: []string{"stun:stun.l.google.com:19302"}},
		},
	}
}

// signalMsg is the provider's signalling envelope.
type signalMsg struct {
	Type      string                     `json:"type"`
	Token     string                     `json:"token,omitempty"`
	Codec     string                     `json:"codec,omitempty"`
	Quality   string                     `json:"quality,omitempty"`
	Encrypted bool                       `json:"encrypted,omitempty"`
	SDP       *webrtc.SessionDescription `json:"sdp,omitempty"`
	Candidate *webrtc.ICECandidateInit   `json:"candidate,omitempty"`
	Scope     string                     `json:"scope,omitempty"`
	Message   string                     `json:"message,omitempty"`
}

// Room implements core.MediaRoom for one connection attempt. A Room is
// single-use, like the descriptor it connects with.
type Room struct {
	e2eeCapable bool

	mu        sync.Mutex
	key       []byte
	encrypted bool
	connected bool
	closed    bool
	pc        *webrtc.PeerConnection
	ws        *websocket.Conn
	cancel    context.CancelFunc
	nextSub   int
	subs      map[int]func(core.RoomEvent)
}

// NewFactory returns a RoomFactory producing fresh rooms. e2eeCapable
// reflects whether the runtime can encrypt media frames.
func NewFactory(e2eeCapable bool) core.RoomFactory {
	return func() core.MediaRoom { return NewRoom(e2eeCapable) }
}

func NewRoom(e2eeCapable bool) *Room {
	return &Room{
		e2eeCapable: e2eeCapable,
		subs:        make(map[int]func(core.RoomEvent)),
	}
}

func (r *Room) SupportsE2EE() bool { return r.e2eeCapable }

// SetEncryptionKey installs the session key. Must happen before Connect.
// The key is held for the provider-side frame cryptor negotiated during
// the handshake; frames are not encrypted locally.
func (r *Room) SetEncryptionKey(key []byte) error {
	if !r.e2eeCapable {
		return ErrNoKey
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.connected {
		return ErrKeyAfterJoin
	}
	r.key = append([]byte(nil), key...)
	return nil
}

func (r *Room) EnableEncryption() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.key) == 0 {
		return ErrNoKey
	}
	r.encrypted = true
	return nil
}

// Connect performs the handshake: dial the signalling endpoint with the
// participant credential, send the join, exchange offer/answer, trickle
// ICE. The descriptor is consumed; reconnecting needs a fresh room.
func (r *Room) Connect(ctx context.Context, desc core.ConnectionDescriptor, opts core.ConnectOptions) error {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	ws, _, err := dialer.DialContext(ctx, desc.ServerURL, nil)
	if err != nil {
		return fmt.Errorf("signalling dial: %w", err)
	}

	pc, err := webrtc.NewPeerConnection(DefaultWebRTCConfig())
	if err != nil {
		_ = ws.Close()
		return fmt.Errorf("peer connection: %w", err)
	}

	connCtx, cancel := context.WithCancel(context.Background())

	r.mu.Lock()
	r.ws = ws
	r.pc = pc
	r.cancel = cancel
	r.mu.Unlock()

	join := signalMsg{
		Type:      "join",
		Token:     desc.ParticipantToken,
		Codec:     string(opts.Codec),
		Quality:   string(opts.Quality),
		Encrypted: opts.Encrypted,
	}
	if err := r.writeMsg(join); err != nil {
		r.Disconnect()
		return fmt.Errorf("send join: %w", err)
	}

	pc.OnICECandidate(func(cand *webrtc.ICECandidate) {
		if cand == nil {
			return
		}
		init := cand.ToJSON()
		if err := r.writeMsg(signalMsg{Type: "candidate", Candidate: &init}); err != nil {
			log.Error().Err(err).Str("module", "adapters.media").Msg("send candidate")
		}
	})

	pc.OnConnectionStateChange(func(s webrtc.PeerConnectionState) {
		log.Info().
			Str("module", "adapters.media").
			Str("peer_connection_state", s.String()).
			Msg("peer state")
		switch s {
		case webrtc.PeerConnectionStateFailed, webrtc.PeerConnectionStateClosed, webrtc.PeerConnectionStateDisconnected:
			r.emit(core.RoomEvent{Kind: core.EventDisconnected})
		}
	})

	offer, err := pc.CreateOffer(nil)
	if err != nil {
		r.Disconnect()
		return fmt.Errorf("create offer: %w", err)
	}
	gatherComplete := webrtc.GatheringCompletePromise(pc)
	if err := pc.SetLocalDescription(offer); err != nil {
		r.Disconnect()
		return fmt.Errorf("set local description: %w", err)
	}
	<-gatherComplete

	if err := r.writeMsg(signalMsg{Type: "offer", SDP: pc.LocalDescription()}); err != nil {
		r.Disconnect()
		return fmt.Errorf("send offer: %w", err)
	}

	answer, err := r.awaitAnswer(ctx)
	if err != nil {
		r.Disconnect()
		return err
	}
	if err := pc.SetRemoteDescription(*answer); err != nil {
		r.Disconnect()
		return fmt.Errorf("set remote description: %w", err)
	}

	r.mu.Lock()
	r.connected = true
	r.mu.Unlock()

	go r.readLoop(connCtx)
	return nil
}

// awaitAnswer reads signalling frames until the provider's answer
// arrives, applying candidates on the way.
func (r *Room) awaitAnswer(ctx context.Context) (*webrtc.SessionDescription, error) {
	deadline := time.Now().Add(handshakeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = r.ws.SetReadDeadline(deadline)
	defer r.ws.SetReadDeadline(time.Time{})

	for {
		var msg signalMsg
		if err := r.ws.ReadJSON(&msg); err != nil {
			return nil, fmt.Errorf("%w: %v", errAnswerTimeout, err)
		}
		switch msg.Type {
		case "answer":
			if msg.SDP == nil {
				return nil, errors.New("answer without sdp")
			}
			return msg.SDP, nil
		case "candidate":
			if msg.Candidate != nil {
				_ = r.pc.AddICECandidate(*msg.Candidate)
			}
		case "error":
			return nil, fmt.Errorf("provider rejected join: %s", msg.Message)
		}
	}
}

// readLoop consumes post-handshake signalling: late candidates, provider
// errors, the remote close.
func (r *Room) readLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		var msg signalMsg
		if err := r.ws.ReadJSON(&msg); err != nil {
			r.emit(core.RoomEvent{Kind: core.EventDisconnected})
			return
		}
		switch msg.Type {
		case "candidate":
			if msg.Candidate != nil {
				_ = r.pc.AddICECandidate(*msg.Candidate)
			}
		case "error":
			kind := core.EventMediaDeviceError
			if msg.Scope == "encryption" {
				kind = core.EventEncryptionError
			}
			r.emit(core.RoomEvent{Kind: kind, Err: errors.New(msg.Message)})
		case "close":
			r.emit(core.RoomEvent{Kind: core.EventDisconnected})
			return
		}
	}
}

func (r *Room) Subscribe(fn func(core.RoomEvent)) core.Unsubscribe {
	r.mu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = fn
	r.mu.Unlock()
	return func() {
		r.mu.Lock()
		delete(r.subs, id)
		r.mu.Unlock()
	}
}

func (r *Room) emit(ev core.RoomEvent) {
	r.mu.Lock()
	subs := make([]func(core.RoomEvent), 0, len(r.subs))
	for _, fn := range r.subs {
		subs = append(subs, fn)
	}
	r.mu.Unlock()
	for _, fn := range subs {
		fn(ev)
	}
}

// EnableCamera publishes the local video track.
func (r *Room) EnableCamera(_ context.Context, deviceID string) error {
	return r.addTrack(webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP8}, "video", deviceID)
}

// EnableMicrophone publishes the local audio track.
func (r *Room) EnableMicrophone(_ context.Context, deviceID string) error {
	return r.addTrack(webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus}, "audio", deviceID)
}

func (r *Room) addTrack(codec webrtc.RTPCodecCapability, kind, deviceID string) error {
	r.mu.Lock()
	pc := r.pc
	connected := r.connected
	r.mu.Unlock()
	if !connected || pc == nil {
		return ErrNotConnected
	}
	id := kind
	if deviceID != "" {
		id = fmt.Sprintf("%s-%s", kind, deviceID)
	}
	track, err := webrtc.NewTrackLocalStaticRTP(codec, id, "huddle")
	if err != nil {
		return fmt.Errorf("create %s track: %w", kind, err)
	}
	if _, err := pc.AddTrack(track); err != nil {
		return fmt.Errorf("add %s track: %w", kind, err)
	}
	log.Info().
		Str("module", "adapters.media").
		Str("kind", kind).
		Str("device", deviceID).
		Msg("local track enabled")
	return nil
}

func (r *Room) writeMsg(msg signalMsg) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ws == nil || r.closed {
		return ErrNotConnected
	}
	_ = r.ws.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return r.ws.WriteMessage(websocket.TextMessage, b)
}

// Disconnect releases the peer connection and the signalling socket.
// Safe to call at any point, including mid-handshake.
func (r *Room) Disconnect() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.connected = false
	cancel := r.cancel
	pc := r.pc
	ws := r.ws
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if pc != nil {
		if err := pc.Close(); err != nil {
			log.Error().Err(err).Str("module", "adapters.media").Msg("close peer connection")
		}
	}
	if ws != nil {
		_ = ws.Close()
	}
	log.Info().Str("module", "adapters.media").Msg("room disconnected")
}
