package crdt

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/huddle-dev/huddle/internal/core"
	"github.com/huddle-dev/huddle/internal/domain"
)

var errBackpressure = errors.New("backpressure")

// envelope is the provider's wire format.
type envelope struct {
	Type        string               `json:"type"`
	Session     string               `json:"session,omitempty"`
	Participant string               `json:"participant,omitempty"`
	Delta       *core.TextDelta      `json:"delta,omitempty"`
	State       *core.AwarenessState `json:"state,omitempty"`
}

// document is one session's replica plus its awareness channel. Local
// mutations are applied to the buffer, fanned out to local subscribers
// and forwarded to the provider; delivered remote mutations take the
// same path minus the forward.
type document struct {
	session     domain.SessionName
	participant string

	mu       sync.RWMutex
	buf      []rune
	conn     *websocket.Conn
	send     chan []byte
	closed   bool
	nextSub  int
	textSubs map[int]func(core.TextDelta)
	awSubs   map[int]func(string, *core.AwarenessState)
}

func newDocument(name domain.SessionName) *document {
	return &document{
		session:     name,
		participant: uuid.NewString(),
		send:        make(chan []byte, 64),
		textSubs:    make(map[int]func(core.TextDelta)),
		awSubs:      make(map[int]func(string, *core.AwarenessState)),
	}
}

func (d *document) dial(endpoint string) error {
	u := fmt.Sprintf("%s?session=%s&participant=%s", endpoint, d.session, d.participant)
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.conn = conn
	d.mu.Unlock()

	go d.writePump()
	go d.readPump()
	return nil
}

// Apply mutates the replica with a local delta and forwards it to the
// provider. Local subscribers are notified too; bindings drop their own
// origin.
func (d *document) Apply(delta core.TextDelta) error {
	d.mutate(delta)
	d.notifyText(delta)
	return d.forward(envelope{
		Type:        "update",
		Session:     string(d.session),
		Participant: d.participant,
		Delta:       &delta,
	})
}

func (d *document) Snapshot() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return string(d.buf)
}

func (d *document) OnUpdate(fn func(core.TextDelta)) core.Unsubscribe {
	d.mu.Lock()
	id := d.nextSub
	d.nextSub++
	d.textSubs[id] = fn
	d.mu.Unlock()
	return func() {
		d.mu.Lock()
		delete(d.textSubs, id)
		d.mu.Unlock()
	}
}

func (d *document) Publish(st core.AwarenessState) error {
	return d.forward(envelope{
		Type:        "awareness",
		Session:     string(d.session),
		Participant: d.participant,
		State:       &st,
	})
}

func (d *document) OnUpdateAwareness(fn func(string, *core.AwarenessState)) core.Unsubscribe {
	d.mu.Lock()
	id := d.nextSub
	d.nextSub++
	d.awSubs[id] = fn
	d.mu.Unlock()
	return func() {
		d.mu.Lock()
		delete(d.awSubs, id)
		d.mu.Unlock()
	}
}

// mutate applies an index-based delta to the rune buffer, clamped to the
// current bounds.
func (d *document) mutate(delta core.TextDelta) {
	d.mu.Lock()
	defer d.mu.Unlock()

	idx := delta.Index
	if idx < 0 {
		idx = 0
	}
	if idx > len(d.buf) {
		idx = len(d.buf)
	}
	if delta.Delete > 0 {
		end := idx + delta.Delete
		if end > len(d.buf) {
			end = len(d.buf)
		}
		d.buf = append(d.buf[:idx], d.buf[end:]...)
	}
	if delta.Insert != "" {
		ins := []rune(delta.Insert)
		d.buf = append(d.buf[:idx], append(ins, d.buf[idx:]...)...)
	}
}

func (d *document) notifyText(delta core.TextDelta) {
	d.mu.RLock()
	subs := make([]func(core.TextDelta), 0, len(d.textSubs))
	for _, fn := range d.textSubs {
		subs = append(subs, fn)
	}
	d.mu.RUnlock()
	for _, fn := range subs {
		fn(delta)
	}
}

func (d *document) notifyAwareness(participant string, st *core.AwarenessState) {
	d.mu.RLock()
	subs := make([]func(string, *core.AwarenessState), 0, len(d.awSubs))
	for _, fn := range d.awSubs {
		subs = append(subs, fn)
	}
	d.mu.RUnlock()
	for _, fn := range subs {
		fn(participant, st)
	}
}

func (d *document) forward(env envelope) error {
	b, err := json.Marshal(env)
	if err != nil {
		return err
	}
	// The lock is held across the send: close() closes the channel under
	// the write lock, so a send can never hit a just-closed channel.
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.conn == nil || d.closed {
		return nil
	}
	select {
	case d.send <- b:
		return nil
	default:
		return errBackpressure
	}
}

func (d *document) writePump() {
	for data := range d.send {
		if err := d.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
			log.Error().Err(err).Str("module", "adapters.crdt").Msg("writePump set deadline")
			return
		}
		if err := d.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Error().Err(err).Str("module", "adapters.crdt").Msg("writePump write error")
			return
		}
	}
}

func (d *document) readPump() {
	defer d.close()
	for {
		_, data, err := d.conn.ReadMessage()
		if err != nil {
			log.Info().
				Str("module", "adapters.crdt").
				Str("session", string(d.session)).
				Err(err).
				Msg("readPump closing")
			return
		}
		d.handle(data)
	}
}

func (d *document) handle(data []byte) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "adapters.crdt").Msg("bad json")
		return
	}
	// The provider echoes nothing of ours back.
	if env.Participant == d.participant {
		return
	}
	switch env.Type {
	case "update":
		if env.Delta == nil {
			return
		}
		delta := *env.Delta
		if delta.Origin == "" {
			delta.Origin = env.Participant
		}
		d.mutate(delta)
		d.notifyText(delta)
	case "awareness":
		// nil state means the participant disconnected and its entry
		// was collected.
		d.notifyAwareness(env.Participant, env.State)
	default:
		log.Warn().Str("module", "adapters.crdt").Str("type", env.Type).Msg("unknown envelope")
	}
}

func (d *document) close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.send)
	conn := d.conn
	d.mu.Unlock()
	if conn != nil {
		_ = conn.Close()
	}
}
