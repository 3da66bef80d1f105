// Package docsync binds a locally-editable text surface to the
// replicated shared document and its awareness channel.
package docsync

import (
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/huddle-dev/huddle/internal/core"
	"github.com/huddle-dev/huddle/internal/domain"
)

// Bridge translates local edits into replica mutations and applies
// remote mutations back to the surface, in the provider's delivered
// order and with echo suppression. One bridge serves one session.
type Bridge struct {
	session   domain.SessionName
	text      core.SharedText
	awareness core.AwarenessChannel

	mu    sync.Mutex
	bound map[core.EditorSurface]*Binding
}

func NewBridge(session domain.SessionName, text core.SharedText, awareness core.AwarenessChannel) *Bridge {
	return &Bridge{
		session:   session,
		text:      text,
		awareness: awareness,
		bound:     make(map[core.EditorSurface]*Binding),
	}
}

// Binding is one attached surface. Detach is idempotent and safe even if
// the attach never fully completed.
type Binding struct {
	bridge  *Bridge
	surface core.EditorSurface
	origin  string

	mu       sync.Mutex
	applying bool
	state    core.AwarenessState

	unsubs []core.Unsubscribe
	once   sync.Once
}

// Attach binds the surface to the replica. A surface binds to exactly
// one replica at a time; a second attach for the same surface is
// rejected with SyncError{AttachConflict}.
func (b *Bridge) Attach(surface core.EditorSurface, participant core.AwarenessState) (*Binding, error) {
	b.mu.Lock()
	if _, ok := b.bound[surface]; ok {
		b.mu.Unlock()
		return nil, &core.SyncError{Kind: core.AttachConflict}
	}
	binding := &Binding{
		bridge:  b,
		surface: surface,
		origin:  uuid.NewString(),
		state:   participant,
	}
	b.bound[surface] = binding
	b.mu.Unlock()

	// Seed the surface with the current replica content.
	if snap := b.text.Snapshot(); snap != "" {
		binding.applyRemote(core.EditOp{Index: 0, Insert: snap})
	}

	binding.unsubs = append(binding.unsubs,
		surface.OnEdit(binding.onLocalEdit),
		b.text.OnUpdate(binding.onReplicaUpdate),
		surface.OnSelection(binding.onLocalSelection),
		b.awareness.OnUpdate(binding.onAwareness),
	)

	log.Info().
		Str("module", "app.docsync").
		Str("session", string(b.session)).
		Str("origin", binding.origin).
		Msg("surface attached")
	return binding, nil
}

// onLocalEdit forwards a surface edit into the replica, tagged with the
// binding origin so the echo is suppressed on the way back.
func (bd *Binding) onLocalEdit(op core.EditOp) {
	bd.mu.Lock()
	applying := bd.applying
	bd.mu.Unlock()
	if applying {
		return
	}
	if err := bd.bridge.text.Apply(core.TextDelta{
		Origin: bd.origin,
		Index:  op.Index,
		Insert: op.Insert,
		Delete: op.Delete,
	}); err != nil {
		log.Error().
			Str("module", "app.docsync").
			Str("session", string(bd.bridge.session)).
			Err(err).
			Msg("apply local edit to replica")
	}
}

// onReplicaUpdate applies a delivered mutation to the surface. Deltas the
// binding itself produced are dropped; everything else is applied in
// delivery order without re-triggering an outbound edit.
func (bd *Binding) onReplicaUpdate(d core.TextDelta) {
	if d.Origin == bd.origin {
		return
	}
	bd.applyRemote(core.EditOp{Index: d.Index, Insert: d.Insert, Delete: d.Delete})
}

func (bd *Binding) applyRemote(op core.EditOp) {
	bd.mu.Lock()
	bd.applying = true
	bd.mu.Unlock()
	defer func() {
		bd.mu.Lock()
		bd.applying = false
		bd.mu.Unlock()
	}()
	if err := bd.surface.ApplyRemote(op); err != nil {
		log.Error().
			Str("module", "app.docsync").
			Str("session", string(bd.bridge.session)).
			Err(err).
			Msg("apply remote mutation to surface")
	}
}

// onLocalSelection publishes cursor/selection on every local change.
func (bd *Binding) onLocalSelection(sel core.Selection) {
	bd.mu.Lock()
	st := bd.state
	st.Cursor = sel.End
	st.SelStart = sel.Start
	st.SelEnd = sel.End
	bd.state = st
	bd.mu.Unlock()

	if err := bd.bridge.awareness.Publish(st); err != nil {
		log.Warn().
			Str("module", "app.docsync").
			Str("session", string(bd.bridge.session)).
			Err(err).
			Msg("publish awareness")
	}
}

// onAwareness renders a remote participant's state as a labeled marker,
// or clears it when the participant disconnected.
func (bd *Binding) onAwareness(participant string, st *core.AwarenessState) {
	if st == nil {
		bd.surface.ClearMarker(participant)
		return
	}
	bd.surface.SetMarker(participant, core.Marker{
		Participant: participant,
		Name:        st.Name,
		Color:       st.Color,
		Cursor:      st.Cursor,
		SelStart:    st.SelStart,
		SelEnd:      st.SelEnd,
	})
}

// SetLanguage switches the surface's language mode. Language is a local,
// unsynced concern; the replica is only touched when the document is
// still empty, to seed the starter template as a regular local edit.
func (bd *Binding) SetLanguage(lang domain.Language) {
	bd.surface.SetLanguage(lang)
	if strings.TrimSpace(bd.bridge.text.Snapshot()) != "" {
		return
	}
	if tpl := Template(lang); tpl != "" {
		bd.onLocalEdit(core.EditOp{Index: 0, Insert: tpl})
		bd.applyRemote(core.EditOp{Index: 0, Insert: tpl})
	}
}

// Detach releases the surface listener, the awareness subscription and
// drops the binding. Safe to call multiple times or never.
func (bd *Binding) Detach() {
	bd.once.Do(func() {
		for _, u := range bd.unsubs {
			u()
		}
		bd.unsubs = nil

		bd.bridge.mu.Lock()
		delete(bd.bridge.bound, bd.surface)
		bd.bridge.mu.Unlock()

		log.Info().
			Str("module", "app.docsync").
			Str("session", string(bd.bridge.session)).
			Str("origin", bd.origin).
			Msg("surface detached")
	})
}
