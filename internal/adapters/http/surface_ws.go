package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/huddle-dev/huddle/internal/app"
	"github.com/huddle-dev/huddle/internal/app/docsync"
	"github.com/huddle-dev/huddle/internal/core"
	"github.com/huddle-dev/huddle/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// DocController attaches a websocket client as the editable surface of a
// session document. Handles are resolved through the REST controller's
// membership map.
type DocController struct {
	coord *app.Coordinator
	rest  *Controller
}

func NewDocController(coord *app.Coordinator, rest *Controller) *DocController {
	return &DocController{coord: coord, rest: rest}
}

// docMsg is the surface wire format, both directions.
type docMsg struct {
	Type        string          `json:"type"`
	Index       int             `json:"index,omitempty"`
	Insert      string          `json:"insert,omitempty"`
	Delete      int             `json:"delete,omitempty"`
	Start       int             `json:"start,omitempty"`
	End         int             `json:"end,omitempty"`
	Language    domain.Language `json:"language,omitempty"`
	Participant string          `json:"participant,omitempty"`
	Marker      *core.Marker    `json:"marker,omitempty"`
	Error       string          `json:"error,omitempty"`
}

// wsSurface is a core.EditorSurface whose edits arrive over the socket
// and whose remote ops and markers are pushed back out.
type wsSurface struct {
	conn *websocket.Conn
	send chan []byte

	mu          sync.RWMutex
	closed      bool
	onEdit      func(core.EditOp)
	onSelection func(core.Selection)
}

func newWSSurface(conn *websocket.Conn) *wsSurface {
	return &wsSurface{
		conn: conn,
		send: make(chan []byte, 32),
	}
}

func (s *wsSurface) trySend(msg docMsg) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return errors.New("connection closed")
	}
	select {
	case s.send <- b:
	default:
		return ErrBackpressure
	}
	return nil
}

func (s *wsSurface) ApplyRemote(op core.EditOp) error {
	return s.trySend(docMsg{Type: "op", Index: op.Index, Insert: op.Insert, Delete: op.Delete})
}

func (s *wsSurface) OnEdit(fn func(core.EditOp)) core.Unsubscribe {
	s.mu.Lock()
	s.onEdit = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		s.onEdit = nil
		s.mu.Unlock()
	}
}

func (s *wsSurface) OnSelection(fn func(core.Selection)) core.Unsubscribe {
	s.mu.Lock()
	s.onSelection = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		s.onSelection = nil
		s.mu.Unlock()
	}
}

func (s *wsSurface) SetMarker(participant string, m core.Marker) {
	_ = s.trySend(docMsg{Type: "marker", Participant: participant, Marker: &m})
}

func (s *wsSurface) ClearMarker(participant string) {
	_ = s.trySend(docMsg{Type: "marker_clear", Participant: participant})
}

func (s *wsSurface) SetLanguage(lang domain.Language) {
	_ = s.trySend(docMsg{Type: "language", Language: lang})
}

func (s *wsSurface) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.send)
	_ = s.conn.Close()
}

// HandleDoc upgrades the request and binds the socket as the client's
// editable surface. The binding is detached when the socket goes away,
// whichever side closes first.
func (ctl *DocController) HandleDoc(ctx context.Context, c *gin.Context) {
	h, ok := ctl.rest.handleFor(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": app.ErrHandleNotFound.Error()})
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("ws upgrade")
		return
	}

	surface := newWSSurface(ws)
	binding, err := ctl.coord.AttachDocument(h, surface)
	if err != nil {
		msg, _ := json.Marshal(docMsg{Type: "error", Error: err.Error()})
		_ = ws.WriteMessage(websocket.TextMessage, msg)
		_ = ws.Close()
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, surface)
	go ctl.readPump(ctx, cancel, h, binding, surface)
}

func (ctl *DocController) writePump(ctx context.Context, s *wsSurface) {
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-s.send:
			if !ok {
				return
			}
			if err := s.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "adapters.http").Msg("writePump set deadline")
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "adapters.http").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *DocController) readPump(ctx context.Context, cancel context.CancelFunc, h *app.Handle, binding *docsync.Binding, s *wsSurface) {
	defer func() {
		ctl.coord.DetachDocument(h)
		cancel()
		s.close()
		log.Info().
			Str("module", "adapters.http").
			Str("session", string(h.Session.Name)).
			Msg("doc surface closed")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := s.conn.ReadMessage()
			if err != nil {
				return
			}
			ctl.handleMsg(binding, s, data)
		}
	}
}

func (ctl *DocController) handleMsg(binding *docsync.Binding, s *wsSurface, data []byte) {
	var msg docMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("bad json")
		return
	}
	switch msg.Type {
	case "edit":
		s.mu.RLock()
		fn := s.onEdit
		s.mu.RUnlock()
		if fn != nil {
			fn(core.EditOp{Index: msg.Index, Insert: msg.Insert, Delete: msg.Delete})
		}
	case "select":
		s.mu.RLock()
		fn := s.onSelection
		s.mu.RUnlock()
		if fn != nil {
			fn(core.Selection{Start: msg.Start, End: msg.End})
		}
	case "language":
		binding.SetLanguage(msg.Language)
	case "ping":
		_ = s.trySend(docMsg{Type: "pong"})
	default:
		log.Warn().Str("module", "adapters.http").Str("type", msg.Type).Msg("unknown doc message")
	}
}
